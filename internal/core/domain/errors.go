package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown strategy, provider or backend name.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrProcessingInProgress indicates an indexing run is already in flight.
	// A second run is rejected, never queued.
	ErrProcessingInProgress = errors.New("document processing already in progress")

	// ErrNotReady indicates no index has been built yet.
	ErrNotReady = errors.New("index not ready")

	// ErrNoChunks indicates a build was attempted over zero chunks.
	ErrNoChunks = errors.New("no chunks to index")

	// ErrEmptyVocabulary indicates the vectorizer could not keep any term.
	ErrEmptyVocabulary = errors.New("empty vocabulary")

	// ErrIndexUnavailable indicates the index backend failed to initialise.
	// Queries against such an index return no results.
	ErrIndexUnavailable = errors.New("index backend unavailable")

	// ErrSnapshotNotFound indicates no persisted index exists.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrSnapshotMismatch indicates a persisted index was built by another strategy.
	ErrSnapshotMismatch = errors.New("snapshot strategy mismatch")

	// Generation Errors.

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Generation degrades to the keyword fallback.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrServiceNotRunning indicates a local inference server refused the connection.
	ErrServiceNotRunning = errors.New("service not running")

	// ErrBackendTimeout indicates a generation backend exceeded its timeout.
	ErrBackendTimeout = errors.New("backend timeout")

	// ErrMalformedResponse indicates a backend answered with an unusable body.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrBackendStatus indicates a backend answered with a non-success HTTP status.
	ErrBackendStatus = errors.New("backend returned error status")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Dense retrieval is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
