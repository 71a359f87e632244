package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
)

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.LLMSettings
		want     domain.AIProvider
		wantErr  error
	}{
		{name: "nil", settings: nil},
		{name: "none", settings: &domain.LLMSettings{Provider: domain.AIProviderNone}},
		{name: "empty", settings: &domain.LLMSettings{}},
		{name: "ollama", settings: &domain.LLMSettings{Provider: domain.AIProviderOllama}, want: domain.AIProviderOllama},
		{name: "openai", settings: &domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "k"}, want: domain.AIProviderOpenAI},
		{name: "anthropic", settings: &domain.LLMSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"}, want: domain.AIProviderAnthropic},
		{name: "missing key", settings: &domain.LLMSettings{Provider: domain.AIProviderAnthropic}, wantErr: domain.ErrInvalidInput},
		{name: "unknown", settings: &domain.LLMSettings{Provider: "gemini"}, wantErr: domain.ErrUnsupportedType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			if tt.want == "" {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			assert.Equal(t, tt.want, svc.Provider())
		})
	}
}

func TestCreateLLMService_PassesModelAndURL(t *testing.T) {
	svc, err := CreateLLMService(&domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		Model:    "mistral",
		BaseURL:  "http://gpu-box:11434",
		Timeout:  90 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, "mistral", svc.ModelName())
	assert.Equal(t, "http://gpu-box:11434", svc.BaseURL())
}

func TestCreateEmbeddingService(t *testing.T) {
	svc, err := CreateEmbeddingService(&domain.EmbeddingSettings{Provider: domain.AIProviderOllama})
	require.NoError(t, err)
	require.NotNil(t, svc)
	assert.Equal(t, "nomic-embed-text", svc.ModelName())

	svc, err = CreateEmbeddingService(&domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI, APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, 1536, svc.Dimensions())

	svc, err = CreateEmbeddingService(&domain.EmbeddingSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"})
	assert.NoError(t, err)
	assert.Nil(t, svc)

	svc, err = CreateEmbeddingService(nil)
	assert.NoError(t, err)
	assert.Nil(t, svc)
}

func TestInit(t *testing.T) {
	settings := domain.DefaultAppSettings()
	result := Init(&settings)
	defer result.Close()
	assert.Nil(t, result.LLMService)
	assert.True(t, result.FellBack)
	assert.Empty(t, result.Warnings)
	assert.Nil(t, result.EmbeddingService)

	settings.LLM.Provider = domain.AIProviderOpenAI
	settings.Retrieval.Strategy = domain.StrategyDense
	result = Init(&settings)
	assert.Nil(t, result.LLMService)
	assert.True(t, result.FellBack)
	assert.Len(t, result.Warnings, 2)

	settings.LLM.Provider = domain.AIProviderOllama
	settings.Embedding.Provider = domain.AIProviderOllama
	result = Init(&settings)
	assert.NotNil(t, result.LLMService)
	assert.NotNil(t, result.EmbeddingService)
	assert.False(t, result.FellBack)
	assert.Empty(t, result.Warnings)
}
