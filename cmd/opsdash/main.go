package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "opsdash",
		Short: "Build, persist, and compare periodic business-performance summaries",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(reportCmd())
	root.AddCommand(historyCmd())
	root.AddCommand(compareCmd())
	root.AddCommand(exportCmd())
	root.AddCommand(serveCmd())

	return root
}

func reportCmd() *cobra.Command {
	var opts reportOpts

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run the dashboard pipeline and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(opts)
		},
	}

	cmd.Flags().StringVar(&opts.start, "start", "", "window start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.end, "end", "", "window end date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&opts.windowDays, "window-days", 0, "rolling window length when no explicit dates (default: from config)")
	cmd.Flags().IntVar(&opts.topN, "top-n", 0, "how many top products to surface (default: from config)")
	cmd.Flags().StringVar(&opts.outputJSON, "output-json", "", "path to save the JSON payload")
	cmd.Flags().BoolVar(&opts.persist, "persist", false, "persist the summary into the database")
	cmd.Flags().StringVar(&opts.dbPath, "db-path", "", "override database path when persisting")
	cmd.Flags().IntVar(&opts.history, "history", 0, "show latest N historical summaries after saving")
	return cmd
}

func historyCmd() *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently stored summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(limit, jsonOutput)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "max summaries to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func compareCmd() *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Show period-over-period growth from stored history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(limit, jsonOutput)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 6, "history depth to analyze")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func exportCmd() *cobra.Command {
	var (
		limit  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored summaries as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(limit, output)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "max summaries to export")
	cmd.Flags().StringVar(&output, "output", "history.csv", "CSV output path")
	return cmd
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}
