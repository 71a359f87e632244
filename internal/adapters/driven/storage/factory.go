// Package storage selects the snapshot store for the configured backend.
package storage

import (
	"fmt"
	"io"

	"github.com/custodia-labs/zotero-rag/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/zotero-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/zotero-rag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/zotero-rag/internal/core/domain"
	"github.com/custodia-labs/zotero-rag/internal/core/ports/driven"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewSnapshotStore opens the store for settings.Backend in settings.Dir.
// The returned closer releases backend resources and is never nil.
func NewSnapshotStore(settings domain.StorageSettings) (driven.SnapshotStore, io.Closer, error) {
	switch settings.Backend {
	case domain.StorageFile, "":
		store, err := file.NewStore(settings.Dir)
		if err != nil {
			return nil, nil, err
		}
		return store, nopCloser{}, nil

	case domain.StorageSQLite:
		store, err := sqlite.NewStore(settings.Dir)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil

	case domain.StorageMemory:
		return memory.NewSnapshotStore(), nopCloser{}, nil

	default:
		return nil, nil, fmt.Errorf("%w: storage backend %q", domain.ErrUnsupportedType, settings.Backend)
	}
}
