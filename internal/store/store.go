package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/elonfeng/opsdash/pkg/metrics"
)

// DateLayout is the stored form of window start/end dates.
const DateLayout = "2006-01-02"

// timestampLayout is the stored form of created_at, UTC at second precision.
const timestampLayout = "2006-01-02T15:04:05"

// StoredProduct is one row of the products table.
type StoredProduct struct {
	ASIN             string   `json:"asin"`
	Title            string   `json:"title"`
	Revenue          float64  `json:"revenue"`
	Units            int      `json:"units"`
	Sessions         int      `json:"sessions"`
	ConversionRate   float64  `json:"conversion_rate"`
	Refunds          int      `json:"refunds"`
	BuyBoxPercentage *float64 `json:"buy_box_percentage"`
}

// StoredSummary is one summaries row with its products attached, ordered by
// revenue descending. Dates come back as they are stored: start/end in
// YYYY-MM-DD form, CreatedAt as a UTC timestamp string.
type StoredSummary struct {
	ID             int64           `json:"id"`
	Start          string          `json:"start"`
	End            string          `json:"end"`
	Source         string          `json:"source"`
	TotalRevenue   float64         `json:"total_revenue"`
	TotalUnits     int             `json:"total_units"`
	TotalSessions  int             `json:"total_sessions"`
	ConversionRate float64         `json:"conversion_rate"`
	RefundRate     float64         `json:"refund_rate"`
	CreatedAt      string          `json:"created_at"`
	Products       []StoredProduct `json:"products"`
}

// Store is the persistence interface.
type Store interface {
	SaveSummary(ctx context.Context, summary *metrics.Summary) (int64, error)
	FetchRecent(ctx context.Context, limit int) ([]StoredSummary, error)
	FetchByStartDate(ctx context.Context, start time.Time) (*StoredSummary, error)
	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens the SQLite database at path, creating missing parent
// directories, and ensures the schema exists. Idempotent: existing tables
// and rows are left untouched. Foreign keys are enabled on the connection
// so deleting a summary cascades to its products.
func New(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir %s: %w", dir, err)
		}
	}

	db, err := sqlx.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveSummary writes the header and all product rows in one transaction and
// returns the new summary's surrogate key. The creation timestamp is stamped
// here, not taken from the caller. A product colliding on (summary, asin)
// replaces the existing row.
func (s *SQLiteStore) SaveSummary(ctx context.Context, summary *metrics.Summary) (int64, error) {
	createdAt := time.Now().UTC().Format(timestampLayout)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin save summary: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO summaries (
			start_date, end_date, source,
			total_revenue, total_units, total_sessions,
			conversion_rate, refund_rate, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, summary.Start.Format(DateLayout), summary.End.Format(DateLayout), summary.SourceName,
		summary.Totals.TotalRevenue, summary.Totals.TotalUnits, summary.Totals.TotalSessions,
		summary.Totals.ConversionRate, summary.Totals.RefundRate, createdAt)
	if err != nil {
		return 0, fmt.Errorf("insert summary: %w", err)
	}

	summaryID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("summary id: %w", err)
	}

	for _, p := range summary.TopProducts {
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO products (
				summary_id, asin, title, revenue, units, sessions,
				conversion_rate, refunds, buy_box_percentage
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, summaryID, p.ASIN, p.Title, p.Revenue, p.Units, p.Sessions,
			p.ConversionRate, p.Refunds, p.BuyBoxPercentage)
		if err != nil {
			return 0, fmt.Errorf("insert product %s: %w", p.ASIN, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit summary: %w", err)
	}
	return summaryID, nil
}

// FetchRecent returns up to limit summaries, newest window first, ties on
// start date broken by the higher surrogate key. A limit of zero or less
// falls back to 10. An empty store yields an empty slice.
func (s *SQLiteStore) FetchRecent(ctx context.Context, limit int) ([]StoredSummary, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryxContext(ctx, `
		SELECT `+summaryColumns+`
		FROM summaries
		ORDER BY start_date DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	defer rows.Close()

	summaries := []StoredSummary{}
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}

	for i := range summaries {
		products, err := s.fetchProducts(ctx, summaries[i].ID)
		if err != nil {
			return nil, err
		}
		summaries[i].Products = products
	}
	return summaries, nil
}

// FetchByStartDate returns the summary whose window starts on the given
// date, or (nil, nil) when none exists. When recomputation produced several
// summaries for the same start date, the most recently created one wins.
func (s *SQLiteStore) FetchByStartDate(ctx context.Context, start time.Time) (*StoredSummary, error) {
	row := s.db.QueryRowxContext(ctx, `
		SELECT `+summaryColumns+`
		FROM summaries
		WHERE start_date = ?
		ORDER BY id DESC
		LIMIT 1
	`, start.Format(DateLayout))

	summary, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	products, err := s.fetchProducts(ctx, summary.ID)
	if err != nil {
		return nil, err
	}
	summary.Products = products
	return &summary, nil
}

func (s *SQLiteStore) fetchProducts(ctx context.Context, summaryID int64) ([]StoredProduct, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE summary_id = ?
		ORDER BY revenue DESC
	`, summaryID)
	if err != nil {
		return nil, fmt.Errorf("list products for summary %d: %w", summaryID, err)
	}
	defer rows.Close()

	var products []StoredProduct
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
