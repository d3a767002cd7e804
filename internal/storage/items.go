package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hasteapp/hastecore/pkg/types"
)

// InsertItem creates a new items row and, when indexText is non-empty,
// a matching items_fts row in the same transaction. Returns the new id.
func (s *Store) InsertItem(ctx context.Context, item *types.NewItem, indexText string) (int64, error) {
	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to serialize tags: %v", types.ErrInvalidArgument, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, storageErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO items (kind, content_ref, source_app, created_at, pinned, tags)
		VALUES (?, ?, ?, ?, 0, ?)
	`, string(item.Kind), item.ContentRef, nullString(item.SourceApp), item.CreatedAt, string(tagsJSON))
	if err != nil {
		return 0, storageErr("insert item", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, storageErr("read inserted id", err)
	}

	if indexText != "" {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO items_fts (text, item_id) VALUES (?, ?)", indexText, id)
		if err != nil {
			return 0, storageErr("index item text", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, storageErr("commit insert", err)
	}
	return id, nil
}

// GetItem returns the item with the given id, or types.ErrNotFound.
func (s *Store) GetItem(ctx context.Context, id int64) (*types.Item, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, kind, content_ref, source_app, created_at, pinned, tags
		FROM items
		WHERE id = ?
	`, id)

	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes the items row and all of its index rows in one
// transaction. Returns types.ErrNotFound if the id does not exist.
func (s *Store) DeleteItem(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM items_fts WHERE item_id = ?", id); err != nil {
		return storageErr("delete index rows", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id)
	if err != nil {
		return storageErr("delete item", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return storageErr("read affected rows", err)
	}
	if rows == 0 {
		return types.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit delete", err)
	}
	return nil
}

// SetPinned updates the pinned flag of an item.
func (s *Store) SetPinned(ctx context.Context, id int64, pinned bool) error {
	flag := 0
	if pinned {
		flag = 1
	}
	result, err := s.db.ExecContext(ctx, "UPDATE items SET pinned = ? WHERE id = ?", flag, id)
	if err != nil {
		return storageErr("update pinned flag", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return storageErr("read affected rows", err)
	}
	if rows == 0 {
		return types.ErrNotFound
	}
	return nil
}

// TouchItem bumps an item's created_at so it resurfaces as most recent.
// The id, content and pinned flag are left untouched.
func (s *Store) TouchItem(ctx context.Context, id int64, createdAt int64) error {
	result, err := s.db.ExecContext(ctx, "UPDATE items SET created_at = ? WHERE id = ?", createdAt, id)
	if err != nil {
		return storageErr("touch item", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return storageErr("read affected rows", err)
	}
	if rows == 0 {
		return types.ErrNotFound
	}
	return nil
}

// ListRecent returns up to limit items, newest first, ties broken by id
// descending. An optional kind filter narrows the listing.
func (s *Store) ListRecent(ctx context.Context, limit int, kinds ...types.Kind) ([]*types.Item, error) {
	query := `
		SELECT id, kind, content_ref, source_app, created_at, pinned, tags
		FROM items
	`
	args := make([]interface{}, 0, len(kinds)+1)
	if len(kinds) > 0 {
		placeholders := make([]string, len(kinds))
		for i, k := range kinds {
			placeholders[i] = "?"
			args = append(args, string(k))
		}
		query += " WHERE kind IN (" + strings.Join(placeholders, ", ") + ")"
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list recent items", err)
	}
	defer func() { _ = rows.Close() }()

	return collectItems(rows)
}

// FingerprintSeed is one row of the data needed to rebuild the dedup index.
type FingerprintSeed struct {
	ID         int64
	Kind       types.Kind
	ContentRef string
}

// ListFingerprintSeeds returns id/kind/content for every stored item,
// oldest first, so that replaying registrations leaves the most recent
// item as the winner for each fingerprint.
func (s *Store) ListFingerprintSeeds(ctx context.Context) ([]FingerprintSeed, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, content_ref
		FROM items
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, storageErr("list fingerprint seeds", err)
	}
	defer func() { _ = rows.Close() }()

	seeds := make([]FingerprintSeed, 0)
	for rows.Next() {
		var seed FingerprintSeed
		var kindStr string
		if err := rows.Scan(&seed.ID, &kindStr, &seed.ContentRef); err != nil {
			return nil, storageErr("scan fingerprint seed", err)
		}
		kind, err := types.ParseKind(kindStr)
		if err != nil {
			return nil, corruptionErr("stored item has unknown kind", err)
		}
		seed.Kind = kind
		seeds = append(seeds, seed)
	}
	return seeds, rows.Err()
}

// ListUnpinnedIDs returns the ids of all unpinned items, oldest first.
// Used by the full-history clear, which deletes item by item.
func (s *Store) ListUnpinnedIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM items WHERE pinned = 0 ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, storageErr("list unpinned ids", err)
	}
	defer func() { _ = rows.Close() }()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, storageErr("scan id", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountItems returns the number of stored items.
func (s *Store) CountItems(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&count); err != nil {
		return 0, storageErr("count items", err)
	}
	return count, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanItem decodes one items row. Unknown kinds and undecodable tags are
// surfaced as corruption, not skipped.
func scanItem(row rowScanner) (*types.Item, error) {
	var item types.Item
	var kindStr string
	var sourceApp sql.NullString
	var pinned int
	var tagsJSON string

	err := row.Scan(&item.ID, &kindStr, &item.ContentRef, &sourceApp,
		&item.CreatedAt, &pinned, &tagsJSON)
	if err != nil {
		return nil, err
	}

	kind, err := types.ParseKind(kindStr)
	if err != nil {
		return nil, corruptionErr(fmt.Sprintf("item %d has unknown kind", item.ID), err)
	}
	item.Kind = kind

	if sourceApp.Valid {
		item.SourceApp = sourceApp.String
	}
	item.Pinned = pinned != 0

	item.Tags = []string{}
	if err := json.Unmarshal([]byte(tagsJSON), &item.Tags); err != nil {
		return nil, corruptionErr(fmt.Sprintf("item %d has undecodable tags", item.ID), err)
	}

	return &item, nil
}

// collectItems drains rows into a slice of items.
func collectItems(rows *sql.Rows) ([]*types.Item, error) {
	items := make([]*types.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// nullString maps an empty string to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
