// Package store keeps the gateway's event journal in an in-memory SQLite
// database. Nothing is written to disk; the journal starts empty on every
// boot.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection to the in-memory journal database.
type DB struct {
	*sql.DB
	Path      string
	maxEvents int
}

// OpenMemory opens the journal, keeping at most maxEvents entries.
func OpenMemory(maxEvents int) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)

	if maxEvents < 1 {
		maxEvents = 1
	}
	db := &DB{DB: sqlDB, Path: ":memory:", maxEvents: maxEvents}
	if err := db.configurePragmas(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func (db *DB) configurePragmas() error {
	pragmas := []string{
		"PRAGMA synchronous=OFF",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	return nil
}
