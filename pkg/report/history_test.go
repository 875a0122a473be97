package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elonfeng/opsdash/internal/store"
	"github.com/elonfeng/opsdash/pkg/metrics"
)

func TestGrowth(t *testing.T) {
	g := Growth(120, 100)
	require.NotNil(t, g)
	assert.InDelta(t, 0.2, *g, 0.0001)

	g = Growth(80, 100)
	require.NotNil(t, g)
	assert.InDelta(t, -0.2, *g, 0.0001)

	assert.Nil(t, Growth(120, 0))
}

func storedSummary(id int64, start string, revenue float64, units, sessions int) store.StoredSummary {
	return store.StoredSummary{
		ID:            id,
		Start:         start,
		End:           start,
		Source:        "reportA",
		TotalRevenue:  revenue,
		TotalUnits:    units,
		TotalSessions: sessions,
		CreatedAt:     "2024-01-08T00:00:00",
	}
}

func TestAnalyzeHistory(t *testing.T) {
	summaries := []store.StoredSummary{
		storedSummary(2, "2024-01-08", 1200, 60, 600),
		storedSummary(1, "2024-01-01", 1000, 50, 500),
	}
	yoy := storedSummary(0, "2023-01-08", 600, 30, 300)

	analysis := AnalyzeHistory(summaries, &yoy)

	revenue := analysis["revenue"]
	assert.Equal(t, 1200.0, revenue.Current)
	require.NotNil(t, revenue.MoM)
	assert.InDelta(t, 0.2, *revenue.MoM, 0.0001)
	require.NotNil(t, revenue.YoY)
	assert.InDelta(t, 1.0, *revenue.YoY, 0.0001)

	units := analysis["units"]
	assert.Equal(t, 60.0, units.Current)
	sessions := analysis["sessions"]
	assert.Equal(t, 600.0, sessions.Current)
}

func TestAnalyzeHistorySinglePeriod(t *testing.T) {
	summaries := []store.StoredSummary{storedSummary(1, "2024-01-01", 1000, 50, 500)}

	analysis := AnalyzeHistory(summaries, nil)

	revenue := analysis["revenue"]
	assert.Equal(t, 1000.0, revenue.Current)
	assert.Nil(t, revenue.MoM)
	assert.Nil(t, revenue.YoY)
}

func TestAnalyzeHistoryEmpty(t *testing.T) {
	assert.Empty(t, AnalyzeHistory(nil, nil))
}

func TestFindYoY(t *testing.T) {
	ctx := context.Background()
	st, err := store.New(filepath.Join(t.TempDir(), "opsdash.db"))
	require.NoError(t, err)
	defer st.Close()

	prior := summaryForWindow("2023-01-01", "2023-01-07")
	_, err = st.SaveSummary(ctx, prior)
	require.NoError(t, err)

	got, err := FindYoY(ctx, st, "2024-01-01")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2023-01-01", got.Start)

	missing, err := FindYoY(ctx, st, "2024-06-01")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFindYoYBadDate(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "opsdash.db"))
	require.NoError(t, err)
	defer st.Close()

	_, err = FindYoY(context.Background(), st, "not-a-date")
	require.Error(t, err)
}

func TestWriteHistoryCSV(t *testing.T) {
	summaries := []store.StoredSummary{
		storedSummary(2, "2024-01-08", 1200, 60, 600),
		storedSummary(1, "2024-01-01", 1000, 50, 500),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteHistoryCSV(&buf, summaries))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{
		"id", "start", "end", "total_revenue", "total_units",
		"total_sessions", "conversion_rate", "refund_rate", "created_at",
	}, rows[0])
	assert.Equal(t, "2", rows[1][0])
	assert.Equal(t, "2024-01-08", rows[1][1])
	assert.Equal(t, "1200", rows[1][3])
	assert.Equal(t, "1", rows[2][0])
}

func summaryForWindow(start, end string) *metrics.Summary {
	s, _ := time.Parse(store.DateLayout, start)
	e, _ := time.Parse(store.DateLayout, end)
	return &metrics.Summary{
		Start:      s,
		End:        e,
		SourceName: "reportA",
		Totals:     metrics.KPIOverview{TotalRevenue: 500, TotalUnits: 25, TotalSessions: 250},
	}
}
