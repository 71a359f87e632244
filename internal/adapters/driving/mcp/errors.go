// Package mcp exposes the RAG service to AI assistants over the Model Context Protocol.
package mcp

import "errors"

// ErrMissingRAGService is returned when the RAG service is not provided.
var ErrMissingRAGService = errors.New("mcp: rag service is required")
