// Package report renders dashboard summaries for humans and machines and
// derives period-over-period growth from stored history.
package report

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/elonfeng/opsdash/pkg/metrics"
)

// Payload is the JSON shape of a dashboard summary.
type Payload struct {
	Source      string           `json:"source"`
	Window      WindowPayload    `json:"window"`
	Totals      TotalsPayload    `json:"totals"`
	TopProducts []ProductPayload `json:"top_products"`
}

type WindowPayload struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type TotalsPayload struct {
	Revenue        float64 `json:"revenue"`
	Units          int     `json:"units"`
	Sessions       int     `json:"sessions"`
	ConversionRate float64 `json:"conversion_rate"`
	RefundRate     float64 `json:"refund_rate"`
}

type ProductPayload struct {
	ASIN             string   `json:"asin"`
	Title            string   `json:"title"`
	Revenue          float64  `json:"revenue"`
	Units            int      `json:"units"`
	Sessions         int      `json:"sessions"`
	ConversionRate   float64  `json:"conversion_rate"`
	Refunds          int      `json:"refunds"`
	BuyBoxPercentage *float64 `json:"buy_box_percentage"`
}

const dateLayout = "2006-01-02"

// ToPayload converts a summary into its JSON-serializable form.
func ToPayload(s *metrics.Summary) Payload {
	products := make([]ProductPayload, 0, len(s.TopProducts))
	for _, p := range s.TopProducts {
		products = append(products, ProductPayload{
			ASIN:             p.ASIN,
			Title:            p.Title,
			Revenue:          p.Revenue,
			Units:            p.Units,
			Sessions:         p.Sessions,
			ConversionRate:   p.ConversionRate,
			Refunds:          p.Refunds,
			BuyBoxPercentage: p.BuyBoxPercentage,
		})
	}
	return Payload{
		Source: s.SourceName,
		Window: WindowPayload{
			Start: s.Start.Format(dateLayout),
			End:   s.End.Format(dateLayout),
		},
		Totals: TotalsPayload{
			Revenue:        s.Totals.TotalRevenue,
			Units:          s.Totals.TotalUnits,
			Sessions:       s.Totals.TotalSessions,
			ConversionRate: s.Totals.ConversionRate,
			RefundRate:     s.Totals.RefundRate,
		},
		TopProducts: products,
	}
}

// FormatText renders the console report: window, source, totals, and the
// ranked product list.
func FormatText(s *metrics.Summary) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("Window: %s to %s",
		s.Start.Format(dateLayout), s.End.Format(dateLayout)))
	lines = append(lines, fmt.Sprintf("Source: %s", s.SourceName))
	lines = append(lines, fmt.Sprintf(
		"Totals: Revenue $%s, Units %d, Sessions %d, CVR %.2f%%, Refund Rate %.2f%%",
		humanize.CommafWithDigits(s.Totals.TotalRevenue, 2),
		s.Totals.TotalUnits, s.Totals.TotalSessions,
		s.Totals.ConversionRate*100, s.Totals.RefundRate*100))

	if len(s.TopProducts) == 0 {
		lines = append(lines, "No product records available.")
		return strings.Join(lines, "\n")
	}

	lines = append(lines, "Top products (by revenue):")
	for i, p := range s.TopProducts {
		lines = append(lines, formatProductLine(i+1, p))
	}
	return strings.Join(lines, "\n")
}

func formatProductLine(rank int, p metrics.ProductPerformance) string {
	buyBox := "Buy Box n/a"
	if p.BuyBoxPercentage != nil {
		buyBox = fmt.Sprintf("Buy Box %.2f%%", *p.BuyBoxPercentage)
	}
	return fmt.Sprintf(
		"%d. %s (%s) - Revenue $%s, Units %d, Sessions %d, CVR %.2f%%, Refunds %d, %s",
		rank, p.Title, p.ASIN,
		humanize.CommafWithDigits(p.Revenue, 2),
		p.Units, p.Sessions, p.ConversionRate*100, p.Refunds, buyBox)
}
