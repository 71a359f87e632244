package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zotero-rag/internal/adapters/driven/storage/storagetest"
	"github.com/custodia-labs/zotero-rag/internal/core/ports/driven"
)

func setupTestStore(t *testing.T, dir string) *Store {
	t.Helper()
	store, err := NewStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_Contract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) driven.SnapshotStore {
		return setupTestStore(t, t.TempDir())
	})
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	store := setupTestStore(t, dir)

	assert.Equal(t, filepath.Join(dir, DBName), store.Path())
	assert.FileExists(t, store.Path())
}

func TestNewStore_BadDirectory(t *testing.T) {
	_, err := NewStore("/dev/null/data")
	assert.Error(t, err)
}

func TestStore_MigrationsRecordedOnce(t *testing.T) {
	dir := t.TempDir()
	first := setupTestStore(t, dir)
	require.NoError(t, first.Save(context.Background(), storagetest.Sample("gen-1")))
	require.NoError(t, first.Close())

	reopened := setupTestStore(t, dir)

	var versions int
	require.NoError(t, reopened.db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&versions))
	assert.Equal(t, 1, versions)

	snap, err := reopened.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "gen-1", snap.GenerationID)
}

func TestStore_SingleRow(t *testing.T) {
	store := setupTestStore(t, t.TempDir())
	ctx := context.Background()
	for _, gen := range []string{"a", "b", "c"} {
		require.NoError(t, store.Save(ctx, storagetest.Sample(gen)))
	}

	var rows int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM snapshots`).Scan(&rows))
	assert.Equal(t, 1, rows)
}
