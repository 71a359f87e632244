package domain

// RetrievalResult pairs a chunk with its backend-defined relevance score.
// Higher scores are more relevant. Scores are only comparable within a
// single query against a single index build.
type RetrievalResult struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// GenerationRequest is the ephemeral input to a generation backend.
type GenerationRequest struct {
	// Query is the user's question.
	Query string

	// Context is the budgeted context assembled from retrieved chunks.
	Context string
}
