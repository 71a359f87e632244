package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
	"github.com/custodia-labs/zotero-rag/internal/core/services"
)

// IngestRequest is the body of POST /v1/documents. A bare JSON array of
// documents is accepted too.
type IngestRequest struct {
	Documents []domain.Document `json:"documents"`
}

// IngestResponse acknowledges an accepted ingestion batch.
type IngestResponse struct {
	Status    string `json:"status"`
	Documents int    `json:"documents"`
}

// AskRequest is the body of POST /v1/ask.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse carries the generated answer.
type AskResponse struct {
	Answer string `json:"answer"`
	Ready  bool   `json:"ready"`
}

// RetrieveResponse lists ranked chunks.
type RetrieveResponse struct {
	Results []domain.RetrievalResult `json:"results"`
	Count   int                      `json:"count"`
}

// StatusResponse describes the manager.
type StatusResponse struct {
	State        string    `json:"state"`
	Ready        bool      `json:"ready"`
	Processing   bool      `json:"processing"`
	GenerationID string    `json:"generation_id,omitempty"`
	Strategy     string    `json:"strategy,omitempty"`
	Backend      string    `json:"backend"`
	Model        string    `json:"model,omitempty"`
	ChunkCount   int       `json:"chunk_count"`
	Titles       []string  `json:"titles"`
	LastError    string    `json:"last_error,omitempty"`
	BuiltAt      time.Time `json:"built_at,omitzero"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	docs, err := decodeDocuments(body)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(docs) == 0 {
		s.respondError(w, http.StatusBadRequest, "no documents")
		return
	}

	if err := s.rag.ProcessDocuments(docs, nil); err != nil {
		if errors.Is(err, domain.ErrProcessingInProgress) {
			s.respondError(w, http.StatusConflict, err.Error())
			return
		}
		s.logger.Error("ingest failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusAccepted, IngestResponse{Status: "processing", Documents: len(docs)})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answer := s.rag.GenerateResponse(r.Context(), req.Question)
	s.respondJSON(w, http.StatusOK, AskResponse{Answer: answer, Ready: s.rag.IsReady()})
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	k := services.DefaultTopK
	if raw := r.URL.Query().Get("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.respondError(w, http.StatusBadRequest, "k must be a positive integer")
			return
		}
		k = n
	}

	results := s.rag.RetrieveRelevantDocuments(r.Context(), query, k)
	if results == nil {
		results = []domain.RetrievalResult{}
	}
	s.respondJSON(w, http.StatusOK, RetrieveResponse{Results: results, Count: len(results)})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	st := s.rag.Status()
	titles := st.Titles
	if titles == nil {
		titles = []string{}
	}
	s.respondJSON(w, http.StatusOK, StatusResponse{
		State:        st.State.String(),
		Ready:        st.Ready,
		Processing:   st.Processing,
		GenerationID: st.GenerationID,
		Strategy:     st.Strategy.String(),
		Backend:      st.Backend.String(),
		Model:        st.Model,
		ChunkCount:   st.ChunkCount,
		Titles:       titles,
		LastError:    st.LastError,
		BuiltAt:      st.BuiltAt,
	})
}

func decodeDocuments(body []byte) ([]domain.Document, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var docs []domain.Document
		err := json.Unmarshal(trimmed, &docs)
		return docs, err
	}
	var req IngestRequest
	err := json.Unmarshal(trimmed, &req)
	return req.Documents, err
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
