// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/sporeid/pkg/types"
)

// SQLiteStore persists records in a single SQLite table.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens or creates the database at path, creating the
// parent directory and the schema if they do not exist.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("history path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection serializes writes.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, path: path}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			label TEXT NOT NULL,
			confidence REAL NOT NULL,
			timestamp INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_timestamp ON history(timestamp)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) Append(ctx context.Context, rec types.HistoryRecord) (types.HistoryRecord, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO history (label, confidence, timestamp) VALUES (?, ?, ?)`,
		rec.Label, rec.Confidence, rec.Timestamp)
	if err != nil {
		return types.HistoryRecord{}, fmt.Errorf("inserting history record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return types.HistoryRecord{}, fmt.Errorf("reading history id: %w", err)
	}
	rec.ID = id
	return rec, nil
}

// List orders by timestamp, newest first; equal timestamps fall back to
// insertion order, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]types.HistoryRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, label, confidence, timestamp FROM history ORDER BY timestamp DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	records := []types.HistoryRecord{}
	for rows.Next() {
		var r types.HistoryRecord
		if err := rows.Scan(&r.ID, &r.Label, &r.Confidence, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}
	return records, nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Durable() bool { return true }

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
