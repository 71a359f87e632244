package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zotero-rag/internal/adapters/driven/index/keyword"
	"github.com/custodia-labs/zotero-rag/internal/core/domain"
	"github.com/custodia-labs/zotero-rag/internal/core/ports/driving"
	"github.com/custodia-labs/zotero-rag/internal/core/services"
	"github.com/custodia-labs/zotero-rag/internal/postprocessors"
)

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	rec := do(t, NewServer(&mockRAGService{}).Handler(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
}

func TestIngest(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		processErr error
		wantCode   int
		wantDocs   int
	}{
		{"wrapped", `{"documents":[{"id":"A","title":"T","text":"body"}]}`, nil, http.StatusAccepted, 1},
		{"bare array", `[{"id":"A","text":"x"},{"id":"B","text":"y"}]`, nil, http.StatusAccepted, 2},
		{"empty list", `{"documents":[]}`, nil, http.StatusBadRequest, 0},
		{"malformed", `{"documents":`, nil, http.StatusBadRequest, 0},
		{"busy", `[{"id":"A","text":"x"}]`, domain.ErrProcessingInProgress, http.StatusConflict, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rag := &mockRAGService{processErr: tt.processErr}
			rec := do(t, NewServer(rag).Handler(), http.MethodPost, "/v1/documents", tt.body)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusAccepted {
				resp := decode[IngestResponse](t, rec)
				assert.Equal(t, "processing", resp.Status)
				assert.Equal(t, tt.wantDocs, resp.Documents)
				assert.Len(t, rag.processed, tt.wantDocs)
			} else {
				assert.NotEmpty(t, decode[map[string]string](t, rec)["error"])
			}
		})
	}
}

func TestAsk(t *testing.T) {
	rag := &mockRAGService{answer: "Based on the documents...", ready: true}
	h := NewServer(rag).Handler()

	rec := do(t, h, http.MethodPost, "/v1/ask", `{"question":"what is attention?"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[AskResponse](t, rec)
	assert.Equal(t, "Based on the documents...", resp.Answer)
	assert.True(t, resp.Ready)
	assert.Equal(t, "what is attention?", rag.lastQuery)

	rec = do(t, h, http.MethodPost, "/v1/ask", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/ask", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRetrieve(t *testing.T) {
	rag := &mockRAGService{results: []domain.RetrievalResult{
		{Chunk: domain.Chunk{Text: "chunk", DocumentTitle: "Doc"}, Score: 2},
	}}
	h := NewServer(rag).Handler()

	rec := do(t, h, http.MethodGet, "/v1/retrieve?q=machine+learning&k=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[RetrieveResponse](t, rec)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "Doc", resp.Results[0].Chunk.DocumentTitle)
	assert.Equal(t, "machine learning", rag.lastQuery)
	assert.Equal(t, 3, rag.lastK)

	rec = do(t, h, http.MethodGet, "/v1/retrieve?q=x", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.DefaultTopK, rag.lastK)

	for _, k := range []string{"0", "-2", "many"} {
		rec = do(t, h, http.MethodGet, "/v1/retrieve?q=x&k="+k, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "k=%s", k)
	}
}

func TestRetrieve_EmptyIsArray(t *testing.T) {
	rec := do(t, NewServer(&mockRAGService{}).Handler(), http.MethodGet, "/v1/retrieve?q=", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"results":[],"count":0}`, rec.Body.String())
}

func TestStatus(t *testing.T) {
	built := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	rag := &mockRAGService{status: driving.Status{
		State:        domain.StateReady,
		Ready:        true,
		GenerationID: "gen",
		Strategy:     domain.StrategyKeyword,
		Backend:      domain.AIProviderOllama,
		Model:        "llama3.2:3b",
		ChunkCount:   4,
		Titles:       []string{"A"},
		BuiltAt:      built,
	}}

	rec := do(t, NewServer(rag).Handler(), http.MethodGet, "/v1/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[StatusResponse](t, rec)
	assert.Equal(t, "ready", resp.State)
	assert.Equal(t, "keyword", resp.Strategy)
	assert.Equal(t, "ollama", resp.Backend)
	assert.Equal(t, 4, resp.ChunkCount)
	assert.True(t, built.Equal(resp.BuiltAt))

	rec = do(t, NewServer(&mockRAGService{}).Handler(), http.MethodGet, "/v1/status", "")
	assert.Contains(t, rec.Body.String(), `"titles":[]`)
}

func TestEndToEnd_WithManager(t *testing.T) {
	settings := domain.DefaultAppSettings()
	pipeline, err := postprocessors.NewChunkingPipeline(domain.ChunkingSettings{Size: 200, Overlap: 50})
	require.NoError(t, err)
	manager := services.NewRAGManager(
		pipeline,
		keyword.NewBuilder(),
		services.NewContextBudgeter(settings.Budget),
		services.NewResponseGenerator(nil, nil, settings.LLM),
		settings.Retrieval,
	)
	t.Cleanup(func() { _ = manager.Close() })

	srv := httptest.NewServer(NewServer(manager).Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Post(srv.URL+"/v1/ask", "application/json", strings.NewReader(`{"question":"anything"}`))
	require.NoError(t, err)
	var ask AskResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ask))
	resp.Body.Close()
	assert.Equal(t, domain.MsgStillProcessing, ask.Answer)

	body := `[{"id":"ML","title":"ML Basics","text":"Machine learning models learn from data. Deep learning is a subset."}]`
	resp, err = http.Post(srv.URL+"/v1/documents", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, manager.Wait(ctx))

	resp, err = http.Get(srv.URL + "/v1/retrieve?q=machine+learning&k=1")
	require.NoError(t, err)
	var got RetrieveResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	resp.Body.Close()
	require.Equal(t, 1, got.Count)
	assert.Equal(t, "ML Basics", got.Results[0].Chunk.DocumentTitle)
	assert.Equal(t, 2.0, got.Results[0].Score)
}
