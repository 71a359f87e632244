package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
)

// RAGService is the library surface of the retrieval-augmented generation core.
// None of the query methods return errors: every outcome, including failures
// and the not-ready state, is a displayable string or an empty result.
type RAGService interface {
	// ProcessDocuments starts indexing docs in the background and returns at once.
	// onComplete (may be nil) receives true when the new index is live.
	// Returns domain.ErrProcessingInProgress if a run is already in flight.
	ProcessDocuments(docs []domain.Document, onComplete func(ok bool)) error

	// GenerateResponse answers a question against the current index.
	GenerateResponse(ctx context.Context, query string) string

	// RetrieveRelevantDocuments returns up to k ranked chunks for query.
	RetrieveRelevantDocuments(ctx context.Context, query string, k int) []domain.RetrievalResult

	// IsReady reports whether a consistent index is being served.
	IsReady() bool

	// GetProcessingStatus reports whether an indexing run is in flight.
	GetProcessingStatus() bool

	// LoadSavedData restores the last persisted index. Returns false if none
	// exists or it could not be restored.
	LoadSavedData(ctx context.Context) bool

	// SetSystemPrompt replaces the generation system prompt.
	SetSystemPrompt(prompt string)

	// Status returns a snapshot of the manager's state for display.
	Status() Status

	// Wait blocks until no indexing run is in flight or ctx is done.
	Wait(ctx context.Context) error
}

// Status describes the manager for status displays.
type Status struct {
	// State is the lifecycle state.
	State domain.ManagerState

	// Ready mirrors IsReady.
	Ready bool

	// Processing mirrors GetProcessingStatus.
	Processing bool

	// GenerationID identifies the index build being served (empty if none).
	GenerationID string

	// Strategy is the retrieval strategy of the served index.
	Strategy domain.RetrievalStrategy

	// Backend is the configured generation provider.
	Backend domain.AIProvider

	// Model is the configured generation model (empty for the fallback).
	Model string

	// ChunkCount is the number of indexed chunks.
	ChunkCount int

	// Titles lists the titles of the last ingested batch.
	Titles []string

	// LastError describes the most recent failed build.
	LastError string

	// BuiltAt is when the served index was built.
	BuiltAt time.Time
}
