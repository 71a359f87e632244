package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
	"github.com/custodia-labs/zotero-rag/internal/core/ports/driven"
)

// mockLLM records requests and replies with a canned answer or error.
type mockLLM struct {
	mu       sync.Mutex
	provider domain.AIProvider
	model    string
	baseURL  string
	answer   string
	err      error
	requests [][]driven.ChatMessage
	opts     []driven.ChatOptions
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, messages)
	m.opts = append(m.opts, opts)
	return m.answer, m.err
}

func (m *mockLLM) Provider() domain.AIProvider  { return m.provider }
func (m *mockLLM) ModelName() string            { return m.model }
func (m *mockLLM) BaseURL() string              { return m.baseURL }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

func (m *mockLLM) lastRequest() []driven.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

// mockPromptStore serves prompts from a map.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", domain.ErrNotFound
}

func (m *mockPromptStore) Reload() {}

// mockSnapshotStore keeps one snapshot in memory.
type mockSnapshotStore struct {
	mu       sync.Mutex
	snapshot *domain.IndexSnapshot
	saveErr  error
	saves    int
}

func (m *mockSnapshotStore) Save(_ context.Context, s *domain.IndexSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snapshot = s
	return nil
}

func (m *mockSnapshotStore) Load(_ context.Context) (*domain.IndexSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapshot == nil {
		return nil, domain.ErrSnapshotNotFound
	}
	return m.snapshot, nil
}

func (m *mockSnapshotStore) Exists(_ context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot != nil, nil
}

func (m *mockSnapshotStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = nil
	return nil
}

func (m *mockSnapshotStore) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// failingBuilder wraps a builder and fails Build on demand.
type failingBuilder struct {
	driven.IndexBuilder
	mu   sync.Mutex
	fail bool
	gate chan struct{}
}

var errBuildFailed = errors.New("build failed")

func (b *failingBuilder) Build(ctx context.Context, chunks []domain.Chunk) (driven.Index, error) {
	if b.gate != nil {
		<-b.gate
	}
	b.mu.Lock()
	fail := b.fail
	b.mu.Unlock()
	if fail {
		return nil, errBuildFailed
	}
	return b.IndexBuilder.Build(ctx, chunks)
}

func (b *failingBuilder) setFail(fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail = fail
}
