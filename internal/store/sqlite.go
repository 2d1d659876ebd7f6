package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-sqlite3"
)

// OpenSQLite opens (and creates, if absent) a file-based sqlite database.
// The parent directory is created when missing, matching the original
// deployment layout where the database lives under a db/ folder.
func OpenSQLite(path string, log *slog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	return &Store{
		db:  db,
		d:   sqliteDialect{},
		log: log.With("component", "store"),
	}, nil
}

type sqliteDialect struct{}

func (sqliteDialect) name() string { return "sqlite" }

func (sqliteDialect) createTable() string {
	return `CREATE TABLE IF NOT EXISTS records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		eid TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		rights TEXT NOT NULL,
		status TEXT NOT NULL,
		remarks TEXT NOT NULL DEFAULT '',
		updated_at DATETIME NOT NULL
	)`
}

// sqlite takes ? placeholders natively.
func (sqliteDialect) rebind(query string) string { return query }

func (sqliteDialect) isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
