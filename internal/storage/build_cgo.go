//go:build sqlite_fts5
// +build sqlite_fts5

package storage

// This file is compiled when building with CGO and the sqlite_fts5 tag.
// It uses the C SQLite implementation for faster queries.
//
// Build command:
//   CGO_ENABLED=1 go build -tags "sqlite_fts5 fts5" ./...
//
// The fts5 tag is required so the driver compiles SQLite with FTS5,
// which the items_fts index depends on.
//
// Driver used: github.com/mattn/go-sqlite3

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite3"

	// BuildMode describes the current build configuration
	BuildMode = "cgo"
)
