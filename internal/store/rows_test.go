package store

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRow feeds hand-built values to the scan functions.
type fakeRow struct {
	vals []any
	err  error
}

func (f fakeRow) Scan(dest ...any) error {
	if f.err != nil {
		return f.err
	}
	if len(dest) != len(f.vals) {
		return fmt.Errorf("got %d dests, want %d", len(dest), len(f.vals))
	}
	for i, v := range f.vals {
		switch d := dest[i].(type) {
		case *int64:
			*d = v.(int64)
		case *int:
			*d = v.(int)
		case *string:
			*d = v.(string)
		case *float64:
			*d = v.(float64)
		case *sql.NullFloat64:
			if v == nil {
				*d = sql.NullFloat64{}
			} else {
				*d = sql.NullFloat64{Float64: v.(float64), Valid: true}
			}
		default:
			return fmt.Errorf("unsupported dest type %T", d)
		}
	}
	return nil
}

func TestScanSummary(t *testing.T) {
	row := fakeRow{vals: []any{
		int64(7), "2024-01-01", "2024-01-07", "reportA",
		1000.0, 50, 500, 0.1, 0.02, "2024-01-08T00:00:00",
	}}

	s, err := scanSummary(row)
	require.NoError(t, err)
	assert.Equal(t, int64(7), s.ID)
	assert.Equal(t, "2024-01-01", s.Start)
	assert.Equal(t, "2024-01-07", s.End)
	assert.Equal(t, "reportA", s.Source)
	assert.Equal(t, 1000.0, s.TotalRevenue)
	assert.Equal(t, 50, s.TotalUnits)
	assert.Equal(t, 500, s.TotalSessions)
	assert.Equal(t, 0.1, s.ConversionRate)
	assert.Equal(t, 0.02, s.RefundRate)
	assert.Equal(t, "2024-01-08T00:00:00", s.CreatedAt)
}

func TestScanSummaryError(t *testing.T) {
	boom := errors.New("cursor closed")
	_, err := scanSummary(fakeRow{err: boom})
	require.ErrorIs(t, err, boom)
}

func TestScanProduct(t *testing.T) {
	row := fakeRow{vals: []any{
		"P1", "Product One", 600.0, 30, 300, 0.1, 1, 91.5,
	}}

	p, err := scanProduct(row)
	require.NoError(t, err)
	assert.Equal(t, "P1", p.ASIN)
	assert.Equal(t, "Product One", p.Title)
	assert.Equal(t, 600.0, p.Revenue)
	assert.Equal(t, 30, p.Units)
	assert.Equal(t, 300, p.Sessions)
	assert.Equal(t, 0.1, p.ConversionRate)
	assert.Equal(t, 1, p.Refunds)
	require.NotNil(t, p.BuyBoxPercentage)
	assert.Equal(t, 91.5, *p.BuyBoxPercentage)
}

func TestScanProductNullBuyBox(t *testing.T) {
	row := fakeRow{vals: []any{
		"P2", "Product Two", 400.0, 20, 200, 0.1, 0, nil,
	}}

	p, err := scanProduct(row)
	require.NoError(t, err)
	assert.Nil(t, p.BuyBoxPercentage)
}
