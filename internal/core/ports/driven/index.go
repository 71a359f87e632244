package driven

import (
	"context"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
)

// Index is a built, queryable retrieval index over a fixed chunk list.
// Row i of the backend representation always corresponds to Chunks()[i].
// An Index is never mutated once built; rebuilding produces a new Index.
// Implementations must be safe for concurrent queries.
type Index interface {
	// Strategy returns the retrieval strategy that built this index.
	Strategy() domain.RetrievalStrategy

	// Query returns at most k results sorted by non-increasing score.
	// Ties keep chunk order. A backend that failed to initialise returns an
	// empty result rather than an error on every call.
	Query(ctx context.Context, query string, k int) ([]domain.RetrievalResult, error)

	// Chunks returns the indexed chunks in row order.
	Chunks() []domain.Chunk

	// State returns the backend's fitted state for persistence.
	// Backends without fitted state return nil.
	State() ([]byte, error)

	// Close releases resources.
	Close() error
}

// IndexBuilder constructs indexes for one retrieval strategy.
// Build is all-or-nothing: on error no partially built index is returned.
type IndexBuilder interface {
	// Strategy returns the strategy this builder produces.
	Strategy() domain.RetrievalStrategy

	// Build fits the backend over chunks and returns a fresh index.
	Build(ctx context.Context, chunks []domain.Chunk) (Index, error)

	// Restore rebuilds an index from a snapshot without refitting,
	// reproducing identical scores for identical queries.
	Restore(ctx context.Context, snapshot *domain.IndexSnapshot) (Index, error)
}
