package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/zotero-rag/internal/core/services"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed documents"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer string `json:"answer"`
	Ready  bool   `json:"ready"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"the text to match against indexed chunks"`
	K     int    `json:"k,omitempty" jsonschema:"maximum number of chunks to return (default 5)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Results []ChunkOutput `json:"results"`
	Count   int           `json:"count"`
}

// ChunkOutput is a single retrieved chunk.
type ChunkOutput struct {
	DocumentID    string   `json:"document_id"`
	DocumentTitle string   `json:"document_title"`
	ChunkIndex    int      `json:"chunk_index"`
	Score         float64  `json:"score"`
	Text          string   `json:"text"`
	Authors       []string `json:"authors,omitempty"`
	Year          string   `json:"year,omitempty"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using the indexed research documents",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Return the indexed passages most relevant to a query",
	}, s.handleRetrieve)
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer := s.ports.RAG.GenerateResponse(ctx, input.Question)
	return nil, AskOutput{Answer: answer, Ready: s.ports.RAG.IsReady()}, nil
}

func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	k := input.K
	if k <= 0 {
		k = services.DefaultTopK
	}

	results := s.ports.RAG.RetrieveRelevantDocuments(ctx, strings.TrimSpace(input.Query), k)

	output := RetrieveOutput{
		Results: make([]ChunkOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		c := results[i].Chunk
		output.Results[i] = ChunkOutput{
			DocumentID:    c.DocumentID,
			DocumentTitle: c.DocumentTitle,
			ChunkIndex:    c.ChunkIndex,
			Score:         results[i].Score,
			Text:          c.Text,
			Authors:       c.Metadata.Authors,
			Year:          c.Metadata.Year,
		}
	}
	return nil, output, nil
}
