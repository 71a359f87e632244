package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
	"github.com/custodia-labs/zotero-rag/internal/core/ports/driven"
)

// Ensure SnapshotStore implements the interface.
var _ driven.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore keeps the latest snapshot in memory. Snapshots are copied
// on the way in and out so callers never share slices with the store.
type SnapshotStore struct {
	mu       sync.RWMutex
	snapshot *domain.IndexSnapshot
}

// NewSnapshotStore creates an empty in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Save replaces the stored snapshot.
func (s *SnapshotStore) Save(_ context.Context, snapshot *domain.IndexSnapshot) error {
	if snapshot == nil {
		return domain.ErrInvalidInput
	}
	cp := clone(snapshot)

	s.mu.Lock()
	s.snapshot = cp
	s.mu.Unlock()
	return nil
}

// Load returns a copy of the stored snapshot.
func (s *SnapshotStore) Load(_ context.Context) (*domain.IndexSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, domain.ErrSnapshotNotFound
	}
	return clone(s.snapshot), nil
}

// Exists reports whether a snapshot is stored.
func (s *SnapshotStore) Exists(_ context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot != nil, nil
}

// Clear drops the stored snapshot.
func (s *SnapshotStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.snapshot = nil
	s.mu.Unlock()
	return nil
}

func clone(src *domain.IndexSnapshot) *domain.IndexSnapshot {
	dst := *src
	dst.Chunks = append([]domain.Chunk(nil), src.Chunks...)
	if src.State != nil {
		dst.State = append([]byte(nil), src.State...)
	}
	dst.Metadata.Titles = append([]string(nil), src.Metadata.Titles...)
	dst.Metadata.DocumentMetadata = make(map[string]domain.DocumentMetadata, len(src.Metadata.DocumentMetadata))
	for k, v := range src.Metadata.DocumentMetadata {
		dst.Metadata.DocumentMetadata[k] = v
	}
	return &dst
}
