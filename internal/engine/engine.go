package engine

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hasteapp/hastecore/internal/dedup"
	"github.com/hasteapp/hastecore/internal/storage"
	"github.com/hasteapp/hastecore/pkg/types"
)

// defaultCacheSize bounds the search result cache.
const defaultCacheSize = 256

// Engine is the facade over clipboard history persistence: item CRUD,
// duplicate suppression and ranked text search over one database file.
type Engine struct {
	store          *storage.Store
	index          *dedup.Index
	cache          *lru.Cache[[32]byte, []*types.Item]
	blobDir        string
	indexFileNames bool
	cacheSize      int
}

// Open opens or creates the database at dbPath, ensures blobDir exists and
// rebuilds the dedup index from stored items.
func Open(dbPath, blobDir string, opts ...Option) (*Engine, error) {
	e := &Engine{
		blobDir:   blobDir,
		cacheSize: defaultCacheSize,
	}
	for _, opt := range opts {
		opt(e)
	}

	store, err := storage.Open(dbPath)
	if err != nil {
		return nil, err
	}
	e.store = store

	if err := os.MkdirAll(blobDir, 0o755); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("%w: failed to create blob directory: %v", types.ErrStorage, err)
	}

	cache, err := lru.New[[32]byte, []*types.Item](e.cacheSize)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("%w: invalid search cache size: %v", types.ErrInvalidArgument, err)
	}
	e.cache = cache

	e.index = dedup.New()
	if err := e.warmDedupIndex(context.Background()); err != nil {
		_ = store.Close()
		return nil, err
	}

	return e, nil
}

// warmDedupIndex replays stored items into the fingerprint index.
func (e *Engine) warmDedupIndex(ctx context.Context) error {
	rows, err := e.store.ListFingerprintSeeds(ctx)
	if err != nil {
		return err
	}
	seeds := make([]dedup.Seed, 0, len(rows))
	for _, row := range rows {
		seeds = append(seeds, dedup.Seed{
			ID:          row.ID,
			Fingerprint: fingerprintOf(row.Kind, row.ContentRef),
		})
	}
	e.index.Warm(seeds)
	return nil
}

// Close releases the database handle. The engine must not be used after.
func (e *Engine) Close() error {
	return e.store.Close()
}

// AddItem inserts unconditionally, with no duplicate check. CreatedAt
// defaults to the current time when zero. Returns the new item's id.
func (e *Engine) AddItem(ctx context.Context, item *types.NewItem) (int64, error) {
	if err := validateNewItem(item); err != nil {
		return 0, err
	}
	if item.CreatedAt == 0 {
		item.CreatedAt = time.Now().UnixMilli()
	}

	id, err := e.store.InsertItem(ctx, item, e.indexTextFor(item))
	if err != nil {
		return 0, err
	}

	e.index.Register(item.Fingerprint(), id)
	e.cache.Purge()
	return id, nil
}

// DedupeInsert inserts the capture unless a live item already holds the
// same content, in which case that item's timestamp is bumped instead.
// Empty or whitespace-only text is dropped as a no-op, not an error.
func (e *Engine) DedupeInsert(ctx context.Context, item *types.NewItem) (types.Outcome, error) {
	if !item.Kind.Valid() {
		return types.Outcome{}, fmt.Errorf("%w: invalid item kind %q", types.ErrInvalidArgument, item.Kind)
	}
	if item.NormalizedContent() == "" {
		return types.Outcome{Status: types.StatusRejected}, nil
	}
	if item.CreatedAt == 0 {
		item.CreatedAt = time.Now().UnixMilli()
	}

	fp := item.Fingerprint()
	if id, ok := e.index.Lookup(fp); ok {
		err := e.store.TouchItem(ctx, id, item.CreatedAt)
		if errors.Is(err, types.ErrNotFound) {
			// Stale registration; fall through to a fresh insert
			e.index.Forget(fp, id)
		} else if err != nil {
			return types.Outcome{}, err
		} else {
			e.cache.Purge()
			return types.Outcome{Status: types.StatusTouched, ID: id}, nil
		}
	}

	id, err := e.store.InsertItem(ctx, item, e.indexTextFor(item))
	if err != nil {
		return types.Outcome{}, err
	}
	e.index.Register(fp, id)
	e.cache.Purge()
	return types.Outcome{Status: types.StatusInserted, ID: id}, nil
}

// Search returns up to limit items for the query. An empty or blank query
// lists the most recent items across all kinds; a non-empty query returns
// ranked matches over the indexed kinds only.
func (e *Engine) Search(ctx context.Context, query string, limit int) ([]*types.Item, error) {
	if limit <= 0 {
		return []*types.Item{}, nil
	}

	key := cacheKey(query, limit)
	if items, ok := e.cache.Get(key); ok {
		return items, nil
	}

	var items []*types.Item
	var err error
	if strings.TrimSpace(query) == "" {
		items, err = e.store.ListRecent(ctx, limit)
	} else {
		items, err = e.store.SearchItems(ctx, query, limit, e.indexedKinds())
	}
	if err != nil {
		return nil, err
	}

	e.cache.Add(key, items)
	return items, nil
}

// GetItem returns the item with the given id, or types.ErrNotFound.
func (e *Engine) GetItem(ctx context.Context, id int64) (*types.Item, error) {
	return e.store.GetItem(ctx, id)
}

// DeleteItem removes the item and its index entries. Terminal: the id
// never reappears from search or listing.
func (e *Engine) DeleteItem(ctx context.Context, id int64) error {
	item, err := e.store.GetItem(ctx, id)
	if err != nil {
		return err
	}
	if err := e.store.DeleteItem(ctx, id); err != nil {
		return err
	}
	e.index.Forget(fingerprintOf(item.Kind, item.ContentRef), id)
	e.cache.Purge()
	return nil
}

// PinItem sets or clears the pinned flag.
func (e *Engine) PinItem(ctx context.Context, id int64, pinned bool) error {
	if err := e.store.SetPinned(ctx, id, pinned); err != nil {
		return err
	}
	e.cache.Purge()
	return nil
}

// Clear deletes the full history item by item, skipping pinned items.
// Returns the number of items deleted.
func (e *Engine) Clear(ctx context.Context) (int, error) {
	ids, err := e.store.ListUnpinnedIDs(ctx)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, id := range ids {
		if err := e.DeleteItem(ctx, id); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// Count returns the number of stored items.
func (e *Engine) Count(ctx context.Context) (int64, error) {
	return e.store.CountItems(ctx)
}

// indexedKinds returns the kinds whose content participates in search.
func (e *Engine) indexedKinds() []types.Kind {
	kinds := []types.Kind{types.KindText, types.KindRtf}
	if e.indexFileNames {
		kinds = append(kinds, types.KindImage, types.KindFile)
	}
	return kinds
}

// indexTextFor returns the text to register in the search index for the
// item, or empty when the item does not participate.
func (e *Engine) indexTextFor(item *types.NewItem) string {
	if item.Kind.Textual() {
		return item.ContentRef
	}
	if e.indexFileNames {
		return filepath.Base(item.ContentRef)
	}
	return ""
}

// validateNewItem checks kind and content before any write.
func validateNewItem(item *types.NewItem) error {
	if !item.Kind.Valid() {
		return fmt.Errorf("%w: invalid item kind %q", types.ErrInvalidArgument, item.Kind)
	}
	if item.ContentRef == "" {
		return fmt.Errorf("%w: empty content", types.ErrInvalidArgument)
	}
	return nil
}

// fingerprintOf computes the dedup fingerprint of stored content.
func fingerprintOf(kind types.Kind, contentRef string) types.Fingerprint {
	item := &types.NewItem{Kind: kind, ContentRef: contentRef}
	return item.Fingerprint()
}

// cacheKey hashes query+limit into a fixed-size search cache key.
func cacheKey(query string, limit int) [32]byte {
	h := sha256.New()
	h.Write([]byte(query))
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(limit))
	h.Write(buf[:])
	var key [32]byte
	copy(key[:], h.Sum(nil))
	return key
}
