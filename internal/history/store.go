// Package history persists completed requests in SQLite. It implements
// the pipeline's HistoryStore collaborator; the core packages never
// import it.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/querysmith/querysmith/internal/pipeline"
)

//go:embed schema.sql
var schemaSQL string

// Store records requests and their recommended documents.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db *sql.DB
}

// Open creates or opens the history database at path. Idempotent; the
// schema is applied on every open.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to history database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent recording.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores one completed request.
func (s *Store) Record(ctx context.Context, e pipeline.HistoryEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO requests (request_id, index_pattern, raw_query, perspective, overall_score, document, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.RequestID, e.IndexPattern, e.RawQuery, e.Perspective, e.Overall,
		string(e.Document), e.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record request %s: %w", e.RequestID, err)
	}
	return nil
}

// Recent returns the newest n entries, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]pipeline.HistoryEntry, error) {
	if n <= 0 {
		n = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT request_id, index_pattern, raw_query, perspective, overall_score, document, created_at
		FROM requests ORDER BY created_at DESC, request_id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	defer rows.Close()

	var out []pipeline.HistoryEntry
	for rows.Next() {
		var e pipeline.HistoryEntry
		var doc, created string
		if err := rows.Scan(&e.RequestID, &e.IndexPattern, &e.RawQuery, &e.Perspective, &e.Overall, &doc, &created); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		e.Document = []byte(doc)
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			e.CreatedAt = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
