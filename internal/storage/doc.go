// Package storage provides SQLite-based persistence for clipboard history.
//
// The storage layer manages:
//   - The primary items table (one row per capture)
//   - The items_fts FTS5 index over text/rtf content
//   - Schema migrations
//
// # Database Schema
//
// Tables:
//   - schema_version: applied migration bookkeeping
//   - items: clipboard items (kind, content_ref, source_app, created_at, pinned, tags)
//   - items_fts: FTS5 full-text index keyed by item id
//
// The FTS index is written inside the same transaction as the items row,
// so a reader never observes the two out of sync. Which kinds contribute
// indexed text is decided by the caller per insert; the index itself never
// holds rows for kinds that were not indexed.
//
// # Basic Usage
//
//	store, err := storage.Open("~/.haste/history.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	id, err := store.InsertItem(ctx, &types.NewItem{
//	    Kind:       types.KindText,
//	    ContentRef: "hello world",
//	    CreatedAt:  time.Now().UnixMilli(),
//	}, "hello world")
//
// # Build Modes
//
// Two SQLite drivers are supported, selected at build time:
//   - default: modernc.org/sqlite (pure Go, no C compiler required)
//   - sqlite_fts5 tag: github.com/mattn/go-sqlite3 (cgo, faster)
//
// Both ship FTS5 with the unicode61 tokenizer used by the schema.
package storage
