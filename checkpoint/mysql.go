package checkpoint

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLStore is a MySQL/MariaDB-backed Store for operators running many
// chassis processes across hosts that want checkpoint markers centralized
// in the same database the graph's other metadata lives in.
//
// The DSN format is the standard go-sql-driver/mysql DSN, e.g.
// "user:password@tcp(127.0.0.1:3306)/flowfabric?parseTime=true".
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore opens a connection pool to dsn and ensures the
// checkpoint table exists.
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open mysql: %w", err)
	}
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS node_checkpoints (
			node_name VARCHAR(255) PRIMARY KEY,
			marker    TEXT NOT NULL
		) ENGINE=InnoDB
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("checkpoint: create table: %w", err)
	}

	return &MySQLStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *MySQLStore) Close() error {
	return s.db.Close()
}

// Load implements Store.
func (s *MySQLStore) Load(name string) (string, bool, error) {
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, fmt.Errorf("checkpoint: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback is a no-op after a successful commit

	var marker string
	err = tx.QueryRowContext(ctx, `SELECT marker FROM node_checkpoints WHERE node_name = ? FOR UPDATE`, name).Scan(&marker)
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
func (s *MySQLStore) Store(name string, marker string) error {
	_, err := s.db.ExecContext(context.Background(), `
		INSERT INTO node_checkpoints (node_name, marker) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE marker = VALUES(marker)
	`, name, marker)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}
