// Package pipeline wires a data source to the metrics layer for one
// reporting window.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/elonfeng/opsdash/internal/config"
	"github.com/elonfeng/opsdash/pkg/metrics"
	"github.com/elonfeng/opsdash/pkg/source"
)

// Pipeline fetches sales and traffic records and folds them into a summary.
type Pipeline struct {
	cfg *config.Config
	src source.DataSource
}

// New creates a pipeline over the given data source.
func New(cfg *config.Config, src source.DataSource) *Pipeline {
	return &Pipeline{cfg: cfg, src: src}
}

// Run builds the dashboard summary for [start, end]. Zero start or end
// falls back to the configured recent window ending today. topN of zero or
// less falls back to the configured ranking size.
func (p *Pipeline) Run(ctx context.Context, start, end time.Time, topN int) (*metrics.Summary, error) {
	if start.IsZero() || end.IsZero() {
		start, end = RecentPeriod(p.cfg.Dashboard.WindowDays)
	}
	if topN <= 0 {
		topN = p.cfg.Dashboard.TopN
	}

	sales, err := p.src.FetchSales(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch sales from %s: %w", p.src.Name(), err)
	}
	traffic, err := p.src.FetchTraffic(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch traffic from %s: %w", p.src.Name(), err)
	}

	summary := metrics.BuildSummary(p.src.Name(), start, end, sales, traffic, topN)
	return &summary, nil
}

// RecentPeriod returns the inclusive window of the last days calendar days
// ending today. days below 1 is treated as 1.
func RecentPeriod(days int) (time.Time, time.Time) {
	if days < 1 {
		days = 1
	}
	now := time.Now().UTC()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -(days - 1))
	return start, end
}
