// Package sqlite provides a local file-backed store. It cannot push changes,
// so observers poll it.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/mcoot/hptracker/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	parent TEXT NOT NULL,
	name   TEXT NOT NULL,
	value  BLOB NOT NULL,
	PRIMARY KEY (parent, name)
)`

// Storage persists values in a single SQLite table. The (parent, name)
// primary key serves as the directory index for List.
type Storage struct {
	db *sql.DB
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Open opens (creating if needed) the database at path
func Open(path string) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single connection serialises writers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database handle
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) Get(ctx context.Context, path string) ([]byte, error) {
	dir, name := storage.Split(path)

	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE parent = ? AND name = ?`, dir, name,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	return value, nil
}

func (s *Storage) Set(ctx context.Context, path string, value []byte) error {
	dir, name := storage.Split(path)
	if value == nil {
		value = []byte{}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (parent, name, value) VALUES (?, ?, ?)
		 ON CONFLICT (parent, name) DO UPDATE SET value = excluded.value`,
		dir, name, value,
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	return nil
}

func (s *Storage) List(ctx context.Context, dir string) (map[string][]byte, error) {
	dir = storage.CleanDir(dir)

	rows, err := s.db.QueryContext(ctx, `SELECT name, value FROM kv WHERE parent = ?`, dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	defer rows.Close()

	children := make(map[string][]byte)
	for rows.Next() {
		var name string
		var value []byte
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("list %s: %w", dir, err)
		}
		children[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	return children, nil
}
