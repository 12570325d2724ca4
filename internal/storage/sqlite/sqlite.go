// Package sqlite implements the run repository on SQLite.
package sqlite

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// Store implements storage.RunRepository using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a new SQLite store at the given path.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON")
	if err != nil {
		return nil, err
	}

	// SQLite works best with a single connection for writes.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &Store{db: db}, nil
}

// Migrate runs database migrations.
func (s *Store) Migrate(ctx context.Context) error {
	return Migrate(ctx, s.db)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
