package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasteapp/hastecore/pkg/types"
)

func TestApplyMigrations_RecordsVersion(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	var version string
	err := store.db.QueryRow("SELECT version FROM schema_version ORDER BY applied_at DESC LIMIT 1").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, version)
}

func TestApplyMigrations_CreatesTables(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	for _, table := range []string{"schema_version", "items", "items_fts"} {
		var name string
		err := store.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type IN ('table') AND name = ?", table).Scan(&name)
		require.NoError(t, err, "missing table %s", table)
	}
}

func TestApplyMigrations_IdempotentOnReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(dbPath)
	require.NoError(t, err)
	id := insertText(t, store, "survives reopen", 1000)
	require.NoError(t, store.Close())

	// Second open replays migration logic against the existing schema
	store, err = Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	item, err := store.GetItem(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "survives reopen", item.ContentRef)

	var count int
	err = store.db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "migration must apply exactly once")
}

func TestRollbackMigration(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	err := RollbackMigration(context.Background(), store.db)
	require.NoError(t, err)

	var name string
	err = store.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='items'").Scan(&name)
	assert.Error(t, err, "items table should be dropped")
}

func TestOpen_UnreadableSchemaVersion(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(dbPath)
	require.NoError(t, err)
	_, err = store.db.Exec("DELETE FROM schema_version")
	require.NoError(t, err)
	_, err = store.db.Exec("INSERT INTO schema_version (version) VALUES ('not-a-version')")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = Open(dbPath)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrCorruption)
	assert.NotErrorIs(t, err, types.ErrStorage)
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "nested", "history.db"))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrStorage)
}
