// Package history persists per-file conversion outcomes in SQLite so the
// UI and CLI can show what was converted in past sessions.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry statuses recorded for finished jobs.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Entry is one converted (or failed) file.
type Entry struct {
	ID         int64     `json:"id"`
	BatchID    string    `json:"batchId"`
	InputPath  string    `json:"inputPath"`
	OutputPath string    `json:"outputPath"`
	Format     string    `json:"format"`
	Status     string    `json:"status"`
	Message    string    `json:"message,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS conversions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    batch_id TEXT NOT NULL,
    input_path TEXT NOT NULL,
    output_path TEXT NOT NULL,
    format TEXT NOT NULL,
    status TEXT NOT NULL,
    message TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversions_created_at ON conversions(created_at);
`

// Store manages history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts the outcomes of one finished batch.
func (s *Store) Record(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, entry := range entries {
		createdAt := now
		if !entry.CreatedAt.IsZero() {
			createdAt = entry.CreatedAt.UTC().Format(time.RFC3339Nano)
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO conversions (
                batch_id, input_path, output_path, format, status, message, created_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			entry.BatchID,
			entry.InputPath,
			entry.OutputPath,
			entry.Format,
			entry.Status,
			entry.Message,
			createdAt,
		); err != nil {
			return fmt.Errorf("insert history entry: %w", err)
		}
	}

	return tx.Commit()
}

// Recent returns the newest entries, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, batch_id, input_path, output_path, format, status, message, created_at
         FROM conversions ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var createdAt string
		if err := rows.Scan(
			&entry.ID,
			&entry.BatchID,
			&entry.InputPath,
			&entry.OutputPath,
			&entry.Format,
			&entry.Status,
			&entry.Message,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		if parsed, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			entry.CreatedAt = parsed
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	return entries, nil
}

// Prune deletes everything beyond the newest max entries.
func (s *Store) Prune(ctx context.Context, max int) error {
	if max <= 0 {
		return nil
	}

	_, err := s.db.ExecContext(
		ctx,
		`DELETE FROM conversions WHERE id NOT IN (
            SELECT id FROM conversions ORDER BY id DESC LIMIT ?
        )`,
		max,
	)
	if err != nil {
		return fmt.Errorf("prune history: %w", err)
	}
	return nil
}
