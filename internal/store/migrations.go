package store

const schema = `
CREATE TABLE IF NOT EXISTS summaries (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    start_date      TEXT NOT NULL,
    end_date        TEXT NOT NULL,
    source          TEXT NOT NULL,
    total_revenue   REAL NOT NULL,
    total_units     INTEGER NOT NULL,
    total_sessions  INTEGER NOT NULL,
    conversion_rate REAL NOT NULL,
    refund_rate     REAL NOT NULL,
    created_at      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_summaries_start_date ON summaries(start_date);

CREATE TABLE IF NOT EXISTS products (
    id                 INTEGER PRIMARY KEY AUTOINCREMENT,
    summary_id         INTEGER NOT NULL REFERENCES summaries(id) ON DELETE CASCADE,
    asin               TEXT NOT NULL,
    title              TEXT NOT NULL,
    revenue            REAL NOT NULL,
    units              INTEGER NOT NULL,
    sessions           INTEGER NOT NULL,
    conversion_rate    REAL NOT NULL,
    refunds            INTEGER NOT NULL,
    buy_box_percentage REAL,
    UNIQUE(summary_id, asin)
);

CREATE INDEX IF NOT EXISTS idx_products_summary ON products(summary_id);
`
