package driven

import (
	"context"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
)

// SnapshotStore persists the most recent index snapshot.
// Save replaces any previous snapshot atomically.
type SnapshotStore interface {
	// Save persists the snapshot, replacing the previous one.
	Save(ctx context.Context, snapshot *domain.IndexSnapshot) error

	// Load returns the last saved snapshot.
	// Returns domain.ErrSnapshotNotFound if nothing was saved.
	Load(ctx context.Context) (*domain.IndexSnapshot, error)

	// Exists reports whether a snapshot is available.
	Exists(ctx context.Context) (bool, error)

	// Clear removes any saved snapshot.
	Clear(ctx context.Context) error
}
