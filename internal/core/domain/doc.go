// Package domain defines the core business entities for the RAG pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: Extracted text of a paper plus bibliographic metadata
//   - Chunk: A sentence-respecting slice of a document, the unit of retrieval
//   - RetrievalResult: A chunk paired with a relevance score
//   - IndexSnapshot: The persisted form of a built index
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
