package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps :memory: databases coherent across the
	// pool and sidesteps writer contention on file databases.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return &DB{db}, nil
}

// EnsureSchema creates the transcript tables and indexes if they do not
// exist. Safe to call more than once; an existing schema is treated as
// success.
func (db *DB) EnsureSchema(ctx context.Context) error {
	schema := `
-- Transcript records: one JSON activity document per row, with the
-- queryable fields promoted to indexed columns. ts is the activity
-- timestamp in unix nanoseconds so ordering and cursor comparisons are
-- plain integer comparisons.
CREATE TABLE IF NOT EXISTS transcript_records (
    id TEXT PRIMARY KEY,
    channel_id TEXT NOT NULL,
    conversation_id TEXT NOT NULL,
    start INTEGER NOT NULL DEFAULT 0,
    ts INTEGER NOT NULL,
    doc TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transcript_conversation
    ON transcript_records(channel_id, conversation_id, ts);
CREATE INDEX IF NOT EXISTS idx_transcript_start
    ON transcript_records(channel_id, start, ts);
`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create transcript schema: %w", err)
	}

	return nil
}
