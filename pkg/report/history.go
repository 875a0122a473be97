package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/elonfeng/opsdash/internal/store"
)

// MetricTrend is one KPI's current value with its growth against the
// previous period (MoM) and the same window a year earlier (YoY). A nil
// growth means no base period exists or the base was zero.
type MetricTrend struct {
	Current float64  `json:"current"`
	MoM     *float64 `json:"mom"`
	YoY     *float64 `json:"yoy"`
}

// HistoryAnalysis maps a metric name to its trend.
type HistoryAnalysis map[string]MetricTrend

// Growth returns (current-base)/base, or nil when the base is zero.
func Growth(current, base float64) *float64 {
	if base == 0 {
		return nil
	}
	g := (current - base) / base
	return &g
}

// FindYoY looks up the stored summary whose window started one year before
// the given start date. Returns (nil, nil) when none exists.
func FindYoY(ctx context.Context, st store.Store, currentStart string) (*store.StoredSummary, error) {
	start, err := time.Parse(store.DateLayout, currentStart)
	if err != nil {
		return nil, fmt.Errorf("parse start date %q: %w", currentStart, err)
	}
	return st.FetchByStartDate(ctx, start.AddDate(-1, 0, 0))
}

// AnalyzeHistory derives revenue/units/sessions trends from stored
// summaries ordered most-recent-first. summaries[0] is the current period,
// summaries[1] (when present) the MoM base, yoy the year-earlier base.
func AnalyzeHistory(summaries []store.StoredSummary, yoy *store.StoredSummary) HistoryAnalysis {
	if len(summaries) == 0 {
		return HistoryAnalysis{}
	}
	current := summaries[0]
	var previous *store.StoredSummary
	if len(summaries) > 1 {
		previous = &summaries[1]
	}

	analysis := HistoryAnalysis{}
	for name, pick := range historyMetrics {
		trend := MetricTrend{Current: pick(current)}
		if previous != nil {
			trend.MoM = Growth(trend.Current, pick(*previous))
		}
		if yoy != nil {
			trend.YoY = Growth(trend.Current, pick(*yoy))
		}
		analysis[name] = trend
	}
	return analysis
}

var historyMetrics = map[string]func(store.StoredSummary) float64{
	"revenue":  func(s store.StoredSummary) float64 { return s.TotalRevenue },
	"units":    func(s store.StoredSummary) float64 { return float64(s.TotalUnits) },
	"sessions": func(s store.StoredSummary) float64 { return float64(s.TotalSessions) },
}

// WriteHistoryCSV exports stored summaries as CSV, one header row per
// summary, most recent first.
func WriteHistoryCSV(w io.Writer, summaries []store.StoredSummary) error {
	cw := csv.NewWriter(w)
	header := []string{
		"id", "start", "end", "total_revenue", "total_units",
		"total_sessions", "conversion_rate", "refund_rate", "created_at",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, s := range summaries {
		row := []string{
			strconv.FormatInt(s.ID, 10),
			s.Start,
			s.End,
			strconv.FormatFloat(s.TotalRevenue, 'f', -1, 64),
			strconv.Itoa(s.TotalUnits),
			strconv.Itoa(s.TotalSessions),
			strconv.FormatFloat(s.ConversionRate, 'f', -1, 64),
			strconv.FormatFloat(s.RefundRate, 'f', -1, 64),
			s.CreatedAt,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", s.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
