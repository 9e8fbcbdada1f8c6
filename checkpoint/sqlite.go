package checkpoint

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a SQLite-backed Store, for operators who want node
// checkpoint markers centralized in one file database rather than
// scattered ".chkp" files — useful when many nodes share a volume and an
// operator wants a single thing to back up.
//
// Schema is a single table keyed by node name; Store is an upsert, Load
// is a read-then-delete to preserve the one-shot handoff semantics of
// Store.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (creating if necessary) a SQLite database at path
// and ensures the checkpoint table exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("checkpoint: enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS node_checkpoints (
			node_name TEXT PRIMARY KEY,
			marker    TEXT NOT NULL
		)
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("checkpoint: create table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load implements Store.
func (s *SQLiteStore) Load(name string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, fmt.Errorf("checkpoint: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback is a no-op after a successful commit

	var marker string
	err = tx.QueryRowContext(ctx, `SELECT marker FROM node_checkpoints WHERE node_name = ?`, name).Scan(&marker)
	switch {
	case err == sql.ErrNoRows:
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("checkpoint: load %s: %w", name, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM node_checkpoints WHERE node_name = ?`, name); err != nil {
		return "", false, fmt.Errorf("checkpoint: consume %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return "", false, fmt.Errorf("checkpoint: commit load %s: %w", name, err)
	}

	return marker, true, nil
}

// Store implements Store.
func (s *SQLiteStore) Store(name string, marker string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(context.Background(), `
		INSERT INTO node_checkpoints (node_name, marker) VALUES (?, ?)
		ON CONFLICT(node_name) DO UPDATE SET marker = excluded.marker
	`, name, marker)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}
