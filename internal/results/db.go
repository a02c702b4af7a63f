// Package results is the durable store for Monte Carlo batch output: batch
// metadata, the run registry with sampled parameters, per-run summaries and
// time series, and the error log. The store is a single SQLite file owned
// exclusively by the batch orchestrator; worker tasks never touch it.
package results

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DB wraps sql.DB for the results store.
type DB struct {
	*sql.DB
	path string
}

// Standard errors
var (
	ErrNotFound = errors.New("results: not found")
)

// Open creates or opens a results store at path and ensures the schema
// exists. Safe to call on an existing store. The mattn/go-sqlite3 driver
// must be registered by the importing binary or test.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("results: create store dir: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("results: open %s: %w", path, err)
	}
	// An in-memory database exists per connection; the pool must never hand
	// out a second one.
	if path == ":memory:" || strings.Contains(path, "mode=memory") {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("results: ping %s: %w", path, err)
	}

	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("results: enable foreign keys: %w", err)
	}

	db := &DB{DB: sqlDB, path: path}
	if err := db.initSchema(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Path returns the store's file path.
func (db *DB) Path() string {
	return db.path
}

// WithTransaction executes fn within a transaction, committing on success
// and rolling back on error or panic. Every per-run write goes through this
// so a crash mid-write cannot leave a run half-recorded.
func (db *DB) WithTransaction(fn func(*sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// IsNotFound checks if error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, sql.ErrNoRows)
}

// IsDuplicate checks if error is a duplicate key error
func IsDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
