package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
)

func TestNewConfigValidator(t *testing.T) {
	require.NotNil(t, NewConfigValidator())
}

func TestConfigValidator_NothingConfigured(t *testing.T) {
	v := NewConfigValidator()
	ctx := context.Background()

	assert.NoError(t, v.ValidateEmbedding(ctx, nil))
	assert.NoError(t, v.ValidateEmbedding(ctx, &domain.EmbeddingSettings{Model: "m"}))
	assert.NoError(t, v.ValidateLLM(ctx, nil))
	assert.NoError(t, v.ValidateLLM(ctx, &domain.LLMSettings{Provider: domain.AIProviderNone}))
}

func TestConfigValidator_ValidateLLM_Ollama(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	err := NewConfigValidator().ValidateLLM(context.Background(),
		&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: srv.URL})
	assert.NoError(t, err)
}

func TestConfigValidator_ValidateLLM_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	err := NewConfigValidator().ValidateLLM(context.Background(),
		&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: srv.URL})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.ErrorIs(t, err, domain.ErrServiceNotRunning)
}

func TestConfigValidator_ValidateEmbedding_Ollama(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewConfigValidator().ValidateEmbedding(context.Background(),
		&domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: srv.URL})
	assert.ErrorIs(t, err, domain.ErrBackendStatus)
}
