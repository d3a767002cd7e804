package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hasteapp/hastecore/pkg/types"
)

// Store persists clipboard items and their full-text index in one SQLite file.
type Store struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// WAL keeps the primary table and FTS index readable mid-write and
	// survives a crash without tearing a transaction
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	// Single connection: the engine is a single logical caller and SQLite
	// benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return db, nil
}

// Open opens or creates the database at dbPath and applies migrations.
func Open(dbPath string) (*Store, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", types.ErrStorage, err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		if errors.Is(err, types.ErrCorruption) || errors.Is(err, types.ErrStorage) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to apply migrations: %v", types.ErrStorage, err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// storageErr tags err with types.ErrStorage while keeping the driver's text.
func storageErr(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %v", types.ErrStorage, op, err)
}

// corruptionErr tags err with types.ErrCorruption.
func corruptionErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", types.ErrCorruption, op, err)
}
