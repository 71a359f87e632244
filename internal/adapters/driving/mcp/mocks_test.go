package mcp

import (
	"context"
	"sync"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
	"github.com/custodia-labs/zotero-rag/internal/core/ports/driving"
)

// mockRAGService is a mock implementation of driving.RAGService.
type mockRAGService struct {
	mu        sync.Mutex
	answer    string
	results   []domain.RetrievalResult
	status    driving.Status
	ready     bool
	lastQuery string
	lastK     int
}

func (m *mockRAGService) ProcessDocuments(_ []domain.Document, onComplete func(bool)) error {
	if onComplete != nil {
		onComplete(true)
	}
	return nil
}

func (m *mockRAGService) GenerateResponse(_ context.Context, query string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastQuery = query
	return m.answer
}

func (m *mockRAGService) RetrieveRelevantDocuments(_ context.Context, query string, k int) []domain.RetrievalResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastQuery, m.lastK = query, k
	return m.results
}

func (m *mockRAGService) IsReady() bool                      { return m.ready }
func (m *mockRAGService) GetProcessingStatus() bool          { return m.status.Processing }
func (m *mockRAGService) LoadSavedData(context.Context) bool { return false }
func (m *mockRAGService) SetSystemPrompt(string)             {}
func (m *mockRAGService) Status() driving.Status             { return m.status }
func (m *mockRAGService) Wait(context.Context) error         { return nil }
