package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const uriScheme = "zrag://"

// statusResource is the JSON body of zrag://status.
type statusResource struct {
	State        string    `json:"state"`
	Ready        bool      `json:"ready"`
	Processing   bool      `json:"processing"`
	GenerationID string    `json:"generation_id,omitempty"`
	Strategy     string    `json:"strategy,omitempty"`
	Backend      string    `json:"backend"`
	Model        string    `json:"model,omitempty"`
	ChunkCount   int       `json:"chunk_count"`
	Documents    int       `json:"documents"`
	LastError    string    `json:"last_error,omitempty"`
	BuiltAt      time.Time `json:"built_at,omitzero"`
}

// documentResource is the JSON body of zrag://documents/{index}.
type documentResource struct {
	Index int    `json:"index"`
	Title string `json:"title"`
}

func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "status",
		Name:        "status",
		Description: "Indexing state, backend and corpus size",
		MIMEType:    "application/json",
	}, s.handleStatusResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{index}",
		Name:        "document",
		Description: "Title of a document in the last ingested batch, by position",
		MIMEType:    "application/json",
	}, s.handleDocumentResource)
}

func (s *Server) handleStatusResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	st := s.ports.RAG.Status()
	return jsonResult(req.Params.URI, statusResource{
		State:        st.State.String(),
		Ready:        st.Ready,
		Processing:   st.Processing,
		GenerationID: st.GenerationID,
		Strategy:     st.Strategy.String(),
		Backend:      st.Backend.String(),
		Model:        st.Model,
		ChunkCount:   st.ChunkCount,
		Documents:    len(st.Titles),
		LastError:    st.LastError,
		BuiltAt:      st.BuiltAt,
	})
}

func (s *Server) handleDocumentResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	index, ok := extractDocumentIndex(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	titles := s.ports.RAG.Status().Titles
	if index >= len(titles) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return jsonResult(req.Params.URI, documentResource{Index: index, Title: titles[index]})
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractDocumentIndex parses the index from zrag://documents/{index}.
func extractDocumentIndex(uri string) (int, bool) {
	rest, ok := strings.CutPrefix(uri, uriScheme+"documents/")
	if !ok || rest == "" {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
