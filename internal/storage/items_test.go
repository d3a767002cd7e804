package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasteapp/hastecore/pkg/types"
)

func setupTestStore(t *testing.T) *Store {
	// Use in-memory database for testing
	store, err := Open(":memory:")
	require.NoError(t, err)
	require.NotNil(t, store)
	return store
}

// insertText is a helper that inserts an indexed text item.
func insertText(t *testing.T, store *Store, content string, createdAt int64) int64 {
	t.Helper()
	item := &types.NewItem{
		Kind:       types.KindText,
		ContentRef: content,
		CreatedAt:  createdAt,
	}
	id, err := store.InsertItem(context.Background(), item, content)
	require.NoError(t, err)
	return id
}

func TestOpen(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	assert.NotNil(t, store.db)
}

func TestClose(t *testing.T) {
	store := setupTestStore(t)
	err := store.Close()
	assert.NoError(t, err)
}

func TestInsertItem(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	id, err := store.InsertItem(ctx, &types.NewItem{
		Kind:       types.KindText,
		ContentRef: "hello world",
		SourceApp:  "terminal",
		CreatedAt:  1000,
		Tags:       []string{"work"},
	}, "hello world")
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	second := insertText(t, store, "second", 2000)
	assert.Greater(t, second, id, "ids are monotonically increasing")
}

func TestGetItem(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	id, err := store.InsertItem(ctx, &types.NewItem{
		Kind:       types.KindText,
		ContentRef: "hello world",
		SourceApp:  "terminal",
		CreatedAt:  1000,
		Tags:       []string{"work", "snippets"},
	}, "hello world")
	require.NoError(t, err)

	item, err := store.GetItem(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, item.ID)
	assert.Equal(t, types.KindText, item.Kind)
	assert.Equal(t, "hello world", item.ContentRef)
	assert.Equal(t, "terminal", item.SourceApp)
	assert.Equal(t, int64(1000), item.CreatedAt)
	assert.False(t, item.Pinned)
	assert.Equal(t, []string{"work", "snippets"}, item.Tags)
}

func TestGetItem_EmptyOptionalFields(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	id, err := store.InsertItem(ctx, &types.NewItem{
		Kind:       types.KindImage,
		ContentRef: "/blobs/shot.png",
		CreatedAt:  1000,
	}, "")
	require.NoError(t, err)

	item, err := store.GetItem(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, item.SourceApp)
	assert.Equal(t, []string{}, item.Tags)
}

func TestGetItem_NotFound(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	_, err := store.GetItem(context.Background(), 999)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestDeleteItem(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	id := insertText(t, store, "doomed", 1000)

	err := store.DeleteItem(ctx, id)
	require.NoError(t, err)

	_, err = store.GetItem(ctx, id)
	assert.ErrorIs(t, err, types.ErrNotFound)

	// Index rows go with the item
	var ftsRows int
	err = store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items_fts WHERE item_id = ?", id).Scan(&ftsRows)
	require.NoError(t, err)
	assert.Zero(t, ftsRows)
}

func TestDeleteItem_NotFound(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	err := store.DeleteItem(context.Background(), 999)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestSetPinned(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	id := insertText(t, store, "keep me", 1000)

	require.NoError(t, store.SetPinned(ctx, id, true))
	item, err := store.GetItem(ctx, id)
	require.NoError(t, err)
	assert.True(t, item.Pinned)

	require.NoError(t, store.SetPinned(ctx, id, false))
	item, err = store.GetItem(ctx, id)
	require.NoError(t, err)
	assert.False(t, item.Pinned)
}

func TestSetPinned_NotFound(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	err := store.SetPinned(context.Background(), 999, true)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestTouchItem(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	id := insertText(t, store, "bump me", 1000)
	require.NoError(t, store.SetPinned(ctx, id, true))

	require.NoError(t, store.TouchItem(ctx, id, 5000))

	item, err := store.GetItem(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), item.CreatedAt)
	assert.Equal(t, "bump me", item.ContentRef)
	assert.True(t, item.Pinned, "touch must not unpin")
}

func TestTouchItem_NotFound(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	err := store.TouchItem(context.Background(), 999, 5000)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestListRecent_Order(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	a := insertText(t, store, "oldest", 1000)
	b := insertText(t, store, "middle", 2000)
	c := insertText(t, store, "newest", 3000)

	items, err := store.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []int64{c, b, a}, []int64{items[0].ID, items[1].ID, items[2].ID})
}

func TestListRecent_TieBrokenByID(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	a := insertText(t, store, "first", 1000)
	b := insertText(t, store, "second", 1000)

	items, err := store.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, b, items[0].ID)
	assert.Equal(t, a, items[1].ID)
}

func TestListRecent_Limit(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	for i := 0; i < 5; i++ {
		insertText(t, store, "item", int64(1000+i))
	}

	items, err := store.ListRecent(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestListRecent_KindFilter(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	insertText(t, store, "some text", 1000)
	_, err := store.InsertItem(ctx, &types.NewItem{
		Kind:       types.KindImage,
		ContentRef: "/blobs/shot.png",
		CreatedAt:  2000,
	}, "")
	require.NoError(t, err)

	items, err := store.ListRecent(ctx, 10, types.KindImage)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, types.KindImage, items[0].Kind)
}

func TestListFingerprintSeeds(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	a := insertText(t, store, "older", 1000)
	b := insertText(t, store, "newer", 2000)

	seeds, err := store.ListFingerprintSeeds(context.Background())
	require.NoError(t, err)
	require.Len(t, seeds, 2)
	// Oldest first, so replaying registrations leaves the newest winning
	assert.Equal(t, a, seeds[0].ID)
	assert.Equal(t, b, seeds[1].ID)
	assert.Equal(t, "older", seeds[0].ContentRef)
	assert.Equal(t, types.KindText, seeds[0].Kind)
}

func TestListUnpinnedIDs(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	a := insertText(t, store, "plain", 1000)
	b := insertText(t, store, "pinned", 2000)
	require.NoError(t, store.SetPinned(ctx, b, true))

	ids, err := store.ListUnpinnedIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{a}, ids)
}

func TestCountItems(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	count, err := store.CountItems(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)

	insertText(t, store, "one", 1000)
	insertText(t, store, "two", 2000)

	count, err = store.CountItems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
