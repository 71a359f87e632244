package dense

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// mockEmbedder embeds text as counts of a fixed vocabulary.
type mockEmbedder struct {
	vocab []string
	model string
	err   error

	mu    sync.Mutex
	calls int
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{
		vocab: []string{"neural", "network", "pasta", "water", "learning"},
		model: "mock-embed",
	}
}

func (m *mockEmbedder) vector(text string) []float32 {
	lower := strings.ToLower(text)
	v := make([]float32, len(m.vocab))
	for i, w := range m.vocab {
		v[i] = float32(strings.Count(lower, w))
	}
	return v
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.vector(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return len(m.vocab) }
func (m *mockEmbedder) ModelName() string            { return m.model }
func (m *mockEmbedder) Ping(_ context.Context) error { return m.err }
func (m *mockEmbedder) Close() error                 { return nil }

var errEmbedDown = errors.New("embedding server down")
