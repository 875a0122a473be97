package source

import (
	"context"
	"time"
)

// SalesRecord is one ASIN's sales performance for a single day.
type SalesRecord struct {
	Day            time.Time `json:"day"`
	ASIN           string    `json:"asin"`
	Title          string    `json:"title"`
	UnitsOrdered   int       `json:"units_ordered"`
	OrderedRevenue float64   `json:"ordered_revenue"`
	Sessions       int       `json:"sessions"`
	Conversions    float64   `json:"conversions"`
	Refunds        int       `json:"refunds"`
}

// TrafficRecord is one ASIN's traffic metrics for a single day.
type TrafficRecord struct {
	Day              time.Time `json:"day"`
	ASIN             string    `json:"asin"`
	Sessions         int       `json:"sessions"`
	PageViews        int       `json:"page_views"`
	BuyBoxPercentage float64   `json:"buy_box_percentage"`
}

// Credentials identifies the seller account a data source reads for.
type Credentials struct {
	AccessKey    string
	SecretKey    string
	AssociateTag string
	Marketplace  string
}

// DataSource is the interface every sales/traffic provider must implement.
// Both fetches cover the inclusive [start, end] date window.
type DataSource interface {
	Name() string
	FetchSales(ctx context.Context, start, end time.Time) ([]SalesRecord, error)
	FetchTraffic(ctx context.Context, start, end time.Time) ([]TrafficRecord, error)
}
