package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zotero-rag/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/zotero-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/zotero-rag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/zotero-rag/internal/core/domain"
)

func TestNewSnapshotStore(t *testing.T) {
	dir := t.TempDir()

	store, closer, err := NewSnapshotStore(domain.StorageSettings{Backend: domain.StorageFile, Dir: dir})
	require.NoError(t, err)
	assert.IsType(t, &file.Store{}, store)
	assert.NoError(t, closer.Close())

	store, closer, err = NewSnapshotStore(domain.StorageSettings{Dir: dir})
	require.NoError(t, err)
	assert.IsType(t, &file.Store{}, store)
	assert.NoError(t, closer.Close())

	store, closer, err = NewSnapshotStore(domain.StorageSettings{Backend: domain.StorageSQLite, Dir: dir})
	require.NoError(t, err)
	assert.IsType(t, &sqlite.Store{}, store)
	assert.FileExists(t, filepath.Join(dir, sqlite.DBName))
	assert.NoError(t, closer.Close())

	store, closer, err = NewSnapshotStore(domain.StorageSettings{Backend: domain.StorageMemory})
	require.NoError(t, err)
	assert.IsType(t, &memory.SnapshotStore{}, store)
	assert.NoError(t, closer.Close())
}

func TestNewSnapshotStore_Unsupported(t *testing.T) {
	_, _, err := NewSnapshotStore(domain.StorageSettings{Backend: "s3"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}
