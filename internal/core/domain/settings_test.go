package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRetrievalStrategy_IsValid tests all valid and invalid strategies
func TestRetrievalStrategy_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		strategy RetrievalStrategy
		expected bool
	}{
		{name: "keyword is valid", strategy: StrategyKeyword, expected: true},
		{name: "tfidf is valid", strategy: StrategyTFIDF, expected: true},
		{name: "bleve is valid", strategy: StrategyBleve, expected: true},
		{name: "dense is valid", strategy: StrategyDense, expected: true},
		{name: "empty string is invalid", strategy: RetrievalStrategy(""), expected: false},
		{name: "unknown strategy is invalid", strategy: RetrievalStrategy("faiss"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.strategy.IsValid())
		})
	}
}

func TestRetrievalStrategy_RequiresEmbedding(t *testing.T) {
	assert.True(t, StrategyDense.RequiresEmbedding())
	assert.False(t, StrategyKeyword.RequiresEmbedding())
	assert.False(t, StrategyTFIDF.RequiresEmbedding())
	assert.False(t, StrategyBleve.RequiresEmbedding())
}

func TestRetrievalStrategy_Description(t *testing.T) {
	for _, s := range AllStrategies() {
		assert.NotEqual(t, unknownDescription, s.Description(), s.String())
	}
	assert.Equal(t, unknownDescription, RetrievalStrategy("nope").Description())
}

// TestAIProvider_Properties tests provider classification helpers
func TestAIProvider_Properties(t *testing.T) {
	tests := []struct {
		provider AIProvider
		valid    bool
		needsKey bool
		local    bool
		remote   bool
	}{
		{AIProviderNone, true, false, false, false},
		{AIProviderOllama, true, false, true, false},
		{AIProviderOpenAI, true, true, false, true},
		{AIProviderAnthropic, true, true, false, true},
		{AIProvider("gemini"), false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.provider.String(), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.provider.IsValid())
			assert.Equal(t, tt.needsKey, tt.provider.RequiresAPIKey())
			assert.Equal(t, tt.local, tt.provider.IsLocal())
			assert.Equal(t, tt.remote, tt.provider.IsRemote())
		})
	}
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings LLMSettings
		expected bool
	}{
		{"none provider", LLMSettings{Provider: AIProviderNone}, false},
		{"empty provider", LLMSettings{}, false},
		{"ollama without key", LLMSettings{Provider: AIProviderOllama}, true},
		{"anthropic without key", LLMSettings{Provider: AIProviderAnthropic}, false},
		{"anthropic with key", LLMSettings{Provider: AIProviderAnthropic, APIKey: "sk-ant"}, true},
		{"openai with key", LLMSettings{Provider: AIProviderOpenAI, APIKey: "sk"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	assert.True(t, EmbeddingSettings{Provider: AIProviderOllama}.IsConfigured())
	assert.False(t, EmbeddingSettings{Provider: AIProviderOpenAI}.IsConfigured())
	assert.True(t, EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk"}.IsConfigured())
	assert.False(t, EmbeddingSettings{Provider: AIProviderAnthropic, APIKey: "sk"}.IsConfigured())
	assert.False(t, EmbeddingSettings{}.IsConfigured())
}

func TestBudgetSettings_ContextLimit(t *testing.T) {
	b := BudgetSettings{
		DefaultContextLimit: 4000,
		ContextLimits:       map[string]int{"claude-3-haiku-20240307": 16000, "broken": 0},
	}

	assert.Equal(t, 16000, b.ContextLimit("claude-3-haiku-20240307"))
	assert.Equal(t, 4000, b.ContextLimit("unknown-model"))
	assert.Equal(t, 4000, b.ContextLimit("broken"))
}

func TestBudgetSettings_TokenBudget(t *testing.T) {
	b := BudgetSettings{DefaultContextLimit: 4000}
	assert.Equal(t, 4000, b.TokenBudget("x"))

	b.ContextFraction = 0.5
	assert.Equal(t, 2000, b.TokenBudget("x"))

	b.ContextFraction = 1.5
	assert.Equal(t, 4000, b.TokenBudget("x"))
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, 1000, s.Chunking.Size)
	assert.Equal(t, 200, s.Chunking.Overlap)
	assert.Equal(t, StrategyTFIDF, s.Retrieval.Strategy)
	assert.Equal(t, 5, s.Retrieval.TopK)
	assert.Equal(t, AIProviderNone, s.LLM.Provider)
	assert.False(t, s.LLM.IsConfigured())
	assert.Equal(t, 0.7, s.LLM.Temperature)
	assert.Equal(t, 0.9, s.LLM.TopP)
	assert.Equal(t, 40, s.LLM.TopK)
	assert.Equal(t, StorageFile, s.Storage.Backend)
	require.NotEmpty(t, s.Budget.ContextLimits)
	assert.Equal(t, 100, s.Budget.MinPartialTokens)
}

func TestDefaultModels(t *testing.T) {
	for _, p := range AllLLMProviders() {
		if p == AIProviderNone {
			continue
		}
		assert.NotEmpty(t, DefaultLLMModels()[p], p.String())
		assert.NotZero(t, DefaultLLMTimeouts()[p], p.String())
	}
	for _, p := range AllEmbeddingProviders() {
		model := DefaultEmbeddingModels()[p]
		assert.NotEmpty(t, model)
		assert.NotZero(t, EmbeddingDimensions()[model])
	}
	assert.GreaterOrEqual(t, DefaultLLMTimeouts()[AIProviderOllama], 60*time.Second)
}

func TestStorageBackend_IsValid(t *testing.T) {
	assert.True(t, StorageFile.IsValid())
	assert.True(t, StorageSQLite.IsValid())
	assert.True(t, StorageMemory.IsValid())
	assert.False(t, StorageBackend("s3").IsValid())
}
