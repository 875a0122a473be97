package store

import (
	"database/sql"
	"fmt"
)

// rowScanner is the slice of a result cursor the mapping functions need.
// Both *sqlx.Row and *sqlx.Rows satisfy it, as does any hand-built row in
// tests.
type rowScanner interface {
	Scan(dest ...any) error
}

// Column lists paired with the scan functions below; queries must select
// exactly these, in this order.
const (
	summaryColumns = `id, start_date, end_date, source, total_revenue,
		total_units, total_sessions, conversion_rate, refund_rate, created_at`
	productColumns = `asin, title, revenue, units, sessions,
		conversion_rate, refunds, buy_box_percentage`
)

func scanSummary(row rowScanner) (StoredSummary, error) {
	var s StoredSummary
	err := row.Scan(
		&s.ID, &s.Start, &s.End, &s.Source,
		&s.TotalRevenue, &s.TotalUnits, &s.TotalSessions,
		&s.ConversionRate, &s.RefundRate, &s.CreatedAt,
	)
	if err != nil {
		return s, fmt.Errorf("scan summary row: %w", err)
	}
	return s, nil
}

func scanProduct(row rowScanner) (StoredProduct, error) {
	var p StoredProduct
	var buyBox sql.NullFloat64
	err := row.Scan(
		&p.ASIN, &p.Title, &p.Revenue, &p.Units,
		&p.Sessions, &p.ConversionRate, &p.Refunds, &buyBox,
	)
	if err != nil {
		return p, fmt.Errorf("scan product row: %w", err)
	}
	if buyBox.Valid {
		p.BuyBoxPercentage = &buyBox.Float64
	}
	return p, nil
}
