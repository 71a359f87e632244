package driven

import (
	"context"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
)

// PostProcessor turns a document into chunks or transforms existing chunks.
// PostProcessors are chained in a pipeline.
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a document and returns chunks.
	// A processor that creates chunks (e.g., chunker) receives nil and returns new chunks.
	// A processor that modifies chunks receives and returns chunks.
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the document through all processors in order.
	// Returns the final chunks after all processing.
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)

	// ProcessBatch runs every document through the pipeline with at most
	// workers in flight and returns the chunks in document order.
	// A document that fails is logged and skipped.
	ProcessBatch(ctx context.Context, docs []domain.Document, workers int) ([]domain.Chunk, error)
}
