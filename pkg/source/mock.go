package source

import (
	"context"
	"math"
	"time"
)

// MockSettings controls the synthetic report generator.
type MockSettings struct {
	Seed  int64
	ASINs []string
}

var defaultASINs = []string{"B0TESTSKU01", "B0TESTSKU02", "B0TESTSKU03"}

// MockBusinessReports fabricates Amazon business-report output using a
// seeded generator, so repeated runs over the same window produce
// identical records.
type MockBusinessReports struct {
	creds    Credentials
	settings MockSettings
	asins    []string
}

// NewMockBusinessReports creates a deterministic mock data source. The
// credentials are placeholders and do not affect generation.
func NewMockBusinessReports(creds Credentials, settings MockSettings) *MockBusinessReports {
	if settings.Seed == 0 {
		settings.Seed = 2024
	}
	asins := settings.ASINs
	if len(asins) == 0 {
		asins = defaultASINs
	}
	return &MockBusinessReports{creds: creds, settings: settings, asins: asins}
}

func (m *MockBusinessReports) Name() string {
	return "mock_amazon_business_report"
}

func (m *MockBusinessReports) FetchSales(ctx context.Context, start, end time.Time) ([]SalesRecord, error) {
	rng := newLehmer(m.settings.Seed + 1)
	days := daysBetween(start, end)

	var records []SalesRecord
	for _, asin := range m.asins {
		baseUnits := max(10, rng.intn(20, 80))
		baseRevenue := max(400, rng.intn(800, 2000))
		for _, day := range days {
			units := max(0, int(float64(baseUnits)*rng.uniform(0.6, 1.3)))
			revenue := round2(float64(baseRevenue) * rng.uniform(0.6, 1.2))
			sessions := max(units*rng.intn(4, 9), 1)
			conversion := round4(float64(units) / float64(sessions))
			records = append(records, SalesRecord{
				Day:            day,
				ASIN:           asin,
				Title:          "Mock Product " + asin[len(asin)-2:],
				UnitsOrdered:   units,
				OrderedRevenue: revenue,
				Sessions:       sessions,
				Conversions:    conversion,
				Refunds:        rng.intn(0, 2),
			})
		}
	}
	return records, nil
}

func (m *MockBusinessReports) FetchTraffic(ctx context.Context, start, end time.Time) ([]TrafficRecord, error) {
	rng := newLehmer(m.settings.Seed + 2)
	days := daysBetween(start, end)

	var records []TrafficRecord
	for _, asin := range m.asins {
		baseSessions := max(50, rng.intn(150, 400))
		for _, day := range days {
			sessions := max(1, int(float64(baseSessions)*rng.uniform(0.5, 1.3)))
			records = append(records, TrafficRecord{
				Day:              day,
				ASIN:             asin,
				Sessions:         sessions,
				PageViews:        sessions + rng.intn(20, 200),
				BuyBoxPercentage: round2(rng.uniform(75, 98)),
			})
		}
	}
	return records, nil
}

// daysBetween returns each calendar day of the inclusive [start, end] window.
func daysBetween(start, end time.Time) []time.Time {
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// lehmer is a minimal multiplicative congruential generator. math/rand would
// work too, but this keeps the fixture stream stable across Go releases.
type lehmer struct {
	state int64
}

const lehmerModulus = 2147483647

func newLehmer(seed int64) *lehmer {
	s := seed % lehmerModulus
	if s < 0 {
		s = -s
	}
	if s == 0 {
		s = 42
	}
	return &lehmer{state: s}
}

func (l *lehmer) next() float64 {
	l.state = (l.state * 48271) % lehmerModulus
	return float64(l.state) / lehmerModulus
}

func (l *lehmer) uniform(low, high float64) float64 {
	return low + (high-low)*l.next()
}

func (l *lehmer) intn(low, high int) int {
	return low + int(float64(high-low)*l.next())
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
