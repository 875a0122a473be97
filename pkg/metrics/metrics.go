// Package metrics turns raw sales and traffic records into the KPI
// summary the dashboard persists and reports on.
package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/elonfeng/opsdash/pkg/source"
)

// KPIOverview holds the top-level KPIs for a reporting window.
type KPIOverview struct {
	TotalRevenue   float64 `json:"revenue"`
	TotalUnits     int     `json:"units"`
	TotalSessions  int     `json:"sessions"`
	ConversionRate float64 `json:"conversion_rate"`
	RefundRate     float64 `json:"refund_rate"`
}

// ProductPerformance is one ASIN's aggregated performance over the window.
// BuyBoxPercentage is nil when no traffic record carried one.
type ProductPerformance struct {
	ASIN             string   `json:"asin"`
	Title            string   `json:"title"`
	Revenue          float64  `json:"revenue"`
	Units            int      `json:"units"`
	Sessions         int      `json:"sessions"`
	ConversionRate   float64  `json:"conversion_rate"`
	Refunds          int      `json:"refunds"`
	BuyBoxPercentage *float64 `json:"buy_box_percentage"`
}

// Summary is the dashboard result for one reporting window.
type Summary struct {
	Start       time.Time
	End         time.Time
	SourceName  string
	Totals      KPIOverview
	TopProducts []ProductPerformance
}

// accumulator collects per-ASIN values before ranking.
type accumulator struct {
	title            string
	revenue          float64
	units            int
	sessionsEstimate int
	sessions         int
	refunds          int
	buyBoxSum        float64
	buyBoxCount      int
}

// BuildSummary aggregates sales and traffic by ASIN and returns window
// totals plus the top N products by revenue. Traffic sessions win over the
// sales-report estimate when both are present.
func BuildSummary(sourceName string, start, end time.Time, sales []source.SalesRecord, traffic []source.TrafficRecord, topN int) Summary {
	byASIN := make(map[string]*accumulator)
	var order []string

	get := func(asin, title string) *accumulator {
		acc, ok := byASIN[asin]
		if !ok {
			acc = &accumulator{title: title}
			byASIN[asin] = acc
			order = append(order, asin)
		}
		return acc
	}

	for _, rec := range sales {
		acc := get(rec.ASIN, rec.Title)
		if rec.Title != "" {
			acc.title = rec.Title
		}
		acc.revenue += rec.OrderedRevenue
		acc.units += rec.UnitsOrdered
		acc.sessionsEstimate += rec.Sessions
		acc.refunds += rec.Refunds
	}

	for _, rec := range traffic {
		acc := get(rec.ASIN, "Unknown ASIN")
		acc.sessions += rec.Sessions
		acc.buyBoxSum += rec.BuyBoxPercentage
		acc.buyBoxCount++
	}

	var totalRevenue float64
	var totalUnits, totalSessions, totalRefunds int

	products := make([]ProductPerformance, 0, len(order))
	for _, asin := range order {
		acc := byASIN[asin]
		sessions := acc.sessions
		if sessions == 0 {
			sessions = acc.sessionsEstimate
		}
		conversion := 0.0
		if sessions > 0 {
			conversion = float64(acc.units) / float64(sessions)
		}
		var buyBox *float64
		if acc.buyBoxCount > 0 {
			v := round2(acc.buyBoxSum / float64(acc.buyBoxCount))
			buyBox = &v
		}

		totalRevenue += acc.revenue
		totalUnits += acc.units
		totalSessions += sessions
		totalRefunds += acc.refunds

		products = append(products, ProductPerformance{
			ASIN:             asin,
			Title:            acc.title,
			Revenue:          round2(acc.revenue),
			Units:            acc.units,
			Sessions:         sessions,
			ConversionRate:   round4(conversion),
			Refunds:          acc.refunds,
			BuyBoxPercentage: buyBox,
		})
	}

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Revenue > products[j].Revenue
	})
	if topN > 0 && len(products) > topN {
		products = products[:topN]
	}

	conversionRate := 0.0
	if totalSessions > 0 {
		conversionRate = float64(totalUnits) / float64(totalSessions)
	}
	refundRate := 0.0
	if totalUnits > 0 {
		refundRate = float64(totalRefunds) / float64(totalUnits)
	}

	return Summary{
		Start:      start,
		End:        end,
		SourceName: sourceName,
		Totals: KPIOverview{
			TotalRevenue:   round2(totalRevenue),
			TotalUnits:     totalUnits,
			TotalSessions:  totalSessions,
			ConversionRate: round4(conversionRate),
			RefundRate:     round4(refundRate),
		},
		TopProducts: products,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
