// Package store provides a SQLite-backed search-history store. Every
// completed search — query, pipeline toggles, and the generated report —
// is persisted so past research can be reviewed via the CLI or the HTTP API.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// SearchRecord is one completed search and its generated report.
type SearchRecord struct {
	// Query is the user's search query text.
	Query string
	// UsedTags reports whether tag filtering was enabled for this search.
	UsedTags bool
	// UsedReranker reports whether the cross-encoder rerank pass ran.
	UsedReranker bool
	// Report is the generated markdown report.
	Report string
	// CreatedAt is when the record was persisted.
	CreatedAt time.Time
}

// HistoryStore persists and retrieves completed searches. Implementations
// must be safe for concurrent use.
type HistoryStore interface {
	// Append persists a single completed search.
	Append(ctx context.Context, rec SearchRecord) error
	// Recent returns the most recent n records, newest-first. If fewer than
	// n records exist, all are returned.
	Recent(ctx context.Context, n int) ([]SearchRecord, error)
	// Close releases any resources held by the store.
	Close() error
}

// SQLiteStore is a HistoryStore backed by a local SQLite database.
type SQLiteStore struct {
	// db is the underlying database connection pool.
	db *sql.DB
}

// DefaultDBPath returns the default path for the search history database.
// It resolves to ~/.smartfind/history.db, creating the directory if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("store: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".smartfind")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("store: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "history.db"), nil
}

// Open opens (or creates) a SQLiteStore at the given path and runs the schema
// migration. Use ":memory:" for an in-memory database in tests.
func Open(path string) (*SQLiteStore, error) {
	// WAL mode improves concurrent read performance and is safe for single-host use.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// Limit to a single writer connection to avoid SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the schema if it does not already exist.
func (s *SQLiteStore) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS searches (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    query         TEXT    NOT NULL,
    used_tags     INTEGER NOT NULL CHECK(used_tags IN (0,1)),
    used_reranker INTEGER NOT NULL CHECK(used_reranker IN (0,1)),
    report        TEXT    NOT NULL,
    created_at    INTEGER NOT NULL  -- Unix timestamp (seconds)
);
CREATE INDEX IF NOT EXISTS idx_searches_created
    ON searches (created_at);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Append persists a single completed search.
func (s *SQLiteStore) Append(ctx context.Context, rec SearchRecord) error {
	const q = `INSERT INTO searches (query, used_tags, used_reranker, report, created_at) VALUES (?, ?, ?, ?, ?)`
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	if _, err := s.db.ExecContext(ctx, q, rec.Query, boolInt(rec.UsedTags), boolInt(rec.UsedReranker), rec.Report, createdAt.Unix()); err != nil {
		return fmt.Errorf("store: append: %w", err)
	}
	return nil
}

// Recent returns the most recent n records, newest-first.
func (s *SQLiteStore) Recent(ctx context.Context, n int) ([]SearchRecord, error) {
	const q = `
SELECT query, used_tags, used_reranker, report, created_at
FROM   searches
ORDER  BY created_at DESC, id DESC
LIMIT  ?`

	rows, err := s.db.QueryContext(ctx, q, n)
	if err != nil {
		return nil, fmt.Errorf("store: recent: %w", err)
	}
	defer rows.Close()

	var recs []SearchRecord
	for rows.Next() {
		var rec SearchRecord
		var usedTags, usedReranker int
		var ts int64
		if err := rows.Scan(&rec.Query, &usedTags, &usedReranker, &rec.Report, &ts); err != nil {
			return nil, fmt.Errorf("store: recent scan: %w", err)
		}
		rec.UsedTags = usedTags == 1
		rec.UsedReranker = usedReranker == 1
		rec.CreatedAt = time.Unix(ts, 0)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: recent rows: %w", err)
	}
	return recs, nil
}

// Close releases the database connection pool.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
