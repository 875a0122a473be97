package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/elonfeng/opsdash/internal/config"
	"github.com/elonfeng/opsdash/internal/pipeline"
	"github.com/elonfeng/opsdash/internal/store"
	"github.com/elonfeng/opsdash/pkg/report"
	"github.com/elonfeng/opsdash/pkg/server"
	"github.com/elonfeng/opsdash/pkg/source"
)

type reportOpts struct {
	start      string
	end        string
	windowDays int
	topN       int
	outputJSON string
	persist    bool
	dbPath     string
	history    int
}

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func buildSource(cfg *config.Config) (source.DataSource, error) {
	switch cfg.Source.Mode {
	case "", "mock":
		creds := source.Credentials{
			AccessKey:    cfg.Source.Amazon.AccessKey,
			SecretKey:    cfg.Source.Amazon.SecretKey,
			AssociateTag: cfg.Source.Amazon.AssociateTag,
			Marketplace:  cfg.Source.Amazon.Marketplace,
		}
		return source.NewMockBusinessReports(creds, source.MockSettings{
			Seed:  cfg.Source.Seed,
			ASINs: cfg.Source.ASINs,
		}), nil
	default:
		return nil, fmt.Errorf("data source mode %q is not wired; use mock or plug in a real source", cfg.Source.Mode)
	}
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(store.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return t, nil
}

func runReport(opts reportOpts) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.windowDays > 0 {
		cfg.Dashboard.WindowDays = opts.windowDays
	}
	if opts.dbPath != "" {
		cfg.Database.Path = opts.dbPath
	}

	src, err := buildSource(cfg)
	if err != nil {
		return err
	}

	start, err := parseDate(opts.start)
	if err != nil {
		return err
	}
	end, err := parseDate(opts.end)
	if err != nil {
		return err
	}

	ctx := context.Background()
	summary, err := pipeline.New(cfg, src).Run(ctx, start, end, opts.topN)
	if err != nil {
		return err
	}

	fmt.Println(report.FormatText(summary))

	if opts.outputJSON != "" {
		if err := writePayload(opts.outputJSON, report.ToPayload(summary)); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "JSON report written to: %s\n", opts.outputJSON)
	}

	if !opts.persist && opts.dbPath == "" {
		return nil
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	id, err := db.SaveSummary(ctx, summary)
	if err != nil {
		return fmt.Errorf("save summary: %w", err)
	}
	fmt.Fprintf(os.Stderr, "summary saved to %s (id=%d)\n", cfg.Database.Path, id)

	if opts.history > 0 {
		stored, err := db.FetchRecent(ctx, opts.history)
		if err != nil {
			return fmt.Errorf("fetch history: %w", err)
		}
		fmt.Printf("\nLast %d summaries:\n", opts.history)
		for _, s := range stored {
			fmt.Printf("[%d] %s~%s | Revenue %.2f | Units %d | Sessions %d\n",
				s.ID, s.Start, s.End, s.TotalRevenue, s.TotalUnits, s.TotalSessions)
		}
	}
	return nil
}

func writePayload(path string, payload report.Payload) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func runHistory(limit int, jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	summaries, err := db.FetchRecent(context.Background(), limit)
	if err != nil {
		return fmt.Errorf("fetch history: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	if len(summaries) == 0 {
		fmt.Println("no stored summaries (persist one first: opsdash report --persist)")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWINDOW\tREVENUE\tUNITS\tSESSIONS\tCVR\tCREATED")
	for _, s := range summaries {
		fmt.Fprintf(w, "%d\t%s~%s\t%.2f\t%d\t%d\t%.2f%%\t%s\n",
			s.ID, s.Start, s.End, s.TotalRevenue, s.TotalUnits,
			s.TotalSessions, s.ConversionRate*100, s.CreatedAt)
	}
	return w.Flush()
}

func runCompare(limit int, jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	summaries, err := db.FetchRecent(ctx, limit)
	if err != nil {
		return fmt.Errorf("fetch history: %w", err)
	}
	if len(summaries) == 0 {
		fmt.Println("no stored summaries to compare")
		return nil
	}

	yoy, err := report.FindYoY(ctx, db, summaries[0].Start)
	if err != nil {
		return fmt.Errorf("find year-over-year base: %w", err)
	}

	analysis := report.AnalyzeHistory(summaries, yoy)

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	}

	fmt.Printf("Current window: %s~%s\n", summaries[0].Start, summaries[0].End)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tCURRENT\tMOM\tYOY")
	for _, name := range []string{"revenue", "units", "sessions"} {
		trend := analysis[name]
		fmt.Fprintf(w, "%s\t%.2f\t%s\t%s\n",
			name, trend.Current, formatGrowth(trend.MoM), formatGrowth(trend.YoY))
	}
	return w.Flush()
}

func formatGrowth(g *float64) string {
	if g == nil {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f%%", *g*100)
}

func runExport(limit int, output string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	summaries, err := db.FetchRecent(context.Background(), limit)
	if err != nil {
		return fmt.Errorf("fetch history: %w", err)
	}
	if len(summaries) == 0 {
		fmt.Println("no stored summaries to export")
		return nil
	}

	if dir := filepath.Dir(output); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir %s: %w", dir, err)
		}
	}
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	defer f.Close()

	if err := report.WriteHistoryCSV(f, summaries); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "exported %d summaries to %s\n", len(summaries), output)
	return nil
}

func runServe(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if port == 0 {
		port = cfg.Server.Port
	}

	src, err := buildSource(cfg)
	if err != nil {
		return err
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	srv := server.New(db, pipeline.New(cfg, src), port)
	return srv.ListenAndServe()
}
