package domain

import "time"

const unknownDescription = "Unknown"

// RetrievalStrategy selects the index backend used to rank chunks.
type RetrievalStrategy string

// Available retrieval strategies.
const (
	// StrategyKeyword counts distinct query words contained in each chunk.
	StrategyKeyword RetrievalStrategy = "keyword"

	// StrategyTFIDF ranks by cosine similarity of TF-IDF vectors.
	StrategyTFIDF RetrievalStrategy = "tfidf"

	// StrategyBleve ranks with bleve full-text scoring over an in-memory index.
	StrategyBleve RetrievalStrategy = "bleve"

	// StrategyDense ranks by cosine similarity of model embeddings.
	StrategyDense RetrievalStrategy = "dense"
)

// IsValid returns true if the strategy is recognised.
func (s RetrievalStrategy) IsValid() bool {
	switch s {
	case StrategyKeyword, StrategyTFIDF, StrategyBleve, StrategyDense:
		return true
	default:
		return false
	}
}

// RequiresEmbedding returns true if this strategy needs an embedding provider.
func (s RetrievalStrategy) RequiresEmbedding() bool {
	return s == StrategyDense
}

// String returns the string representation.
func (s RetrievalStrategy) String() string {
	return string(s)
}

// Description returns a human-readable description of the strategy.
func (s RetrievalStrategy) Description() string {
	switch s {
	case StrategyKeyword:
		return "Keyword overlap (baseline)"
	case StrategyTFIDF:
		return "TF-IDF cosine similarity"
	case StrategyBleve:
		return "Full-text relevance (bleve)"
	case StrategyDense:
		return "Dense embeddings (cosine)"
	default:
		return unknownDescription
	}
}

// AllStrategies returns all available retrieval strategies.
func AllStrategies() []RetrievalStrategy {
	return []RetrievalStrategy{
		StrategyKeyword,
		StrategyTFIDF,
		StrategyBleve,
		StrategyDense,
	}
}

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderNone disables model backends; generation uses the keyword fallback.
	AIProviderNone AIProvider = "none"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderNone, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// IsRemote returns true if this provider is a hosted API.
func (p AIProvider) IsRemote() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderNone:
		return "None (keyword fallback)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// ChunkingSettings configures the chunk processor.
type ChunkingSettings struct {
	// Size is the target maximum chunk length in characters.
	Size int

	// Overlap is the maximum length of trailing sentences repeated in the next chunk.
	Overlap int
}

// RetrievalSettings configures the index and query path.
type RetrievalSettings struct {
	// Strategy is the index backend.
	Strategy RetrievalStrategy

	// TopK is the number of chunks retrieved per question.
	TopK int

	// CacheSize bounds the query result cache (0 disables it).
	CacheSize int
}

// TFIDFSettings configures the TF-IDF vectorizer.
type TFIDFSettings struct {
	// MinDF drops terms appearing in fewer chunks than this.
	MinDF int

	// MaxDF drops terms appearing in more than this fraction of chunks.
	MaxDF float64

	// MaxFeatures keeps only the most frequent terms (0 = unlimited).
	MaxFeatures int

	// NGramMax is the largest n-gram length (1 = unigrams only).
	NGramMax int
}

// BudgetSettings configures context assembly.
type BudgetSettings struct {
	// ReservedSystemTokens is reserved for the system prompt.
	ReservedSystemTokens int

	// ReservedResponseTokens is reserved for the model's answer.
	ReservedResponseTokens int

	// MinPartialTokens is the smallest remaining budget worth a truncated chunk.
	MinPartialTokens int

	// DefaultContextLimit is used for models missing from ContextLimits.
	DefaultContextLimit int

	// ContextLimits maps model names to their context window in tokens.
	ContextLimits map[string]int

	// ContextFraction scales the model limit down to the retrieval budget (0 < f <= 1).
	ContextFraction float64
}

// ContextLimit returns the context window for model.
func (b BudgetSettings) ContextLimit(model string) int {
	if limit, ok := b.ContextLimits[model]; ok && limit > 0 {
		return limit
	}
	return b.DefaultContextLimit
}

// TokenBudget returns the retrieval token budget for model.
func (b BudgetSettings) TokenBudget(model string) int {
	limit := b.ContextLimit(model)
	if b.ContextFraction > 0 && b.ContextFraction < 1 {
		return int(float64(limit) * b.ContextFraction)
	}
	return limit
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (optional override).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// MaxTokens is the response length limit (num_predict for Ollama).
	MaxTokens int

	// Temperature controls randomness.
	Temperature float64

	// TopP is the nucleus sampling threshold.
	TopP float64

	// TopK limits sampling to the K most likely tokens (Ollama only).
	TopK int

	// Timeout bounds a single generation request.
	Timeout time.Duration
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderNone {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if e.Provider != AIProviderOllama && e.Provider != AIProviderOpenAI {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// StorageBackend selects where index snapshots are persisted.
type StorageBackend string

// Available storage backends.
const (
	StorageFile   StorageBackend = "file"
	StorageSQLite StorageBackend = "sqlite"
	StorageMemory StorageBackend = "memory"
)

// IsValid returns true if the storage backend is recognised.
func (s StorageBackend) IsValid() bool {
	switch s {
	case StorageFile, StorageSQLite, StorageMemory:
		return true
	default:
		return false
	}
}

// StorageSettings configures snapshot persistence.
type StorageSettings struct {
	// Backend is the snapshot store implementation.
	Backend StorageBackend

	// Dir is the data directory (empty = ~/.zrag/data).
	Dir string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Chunking  ChunkingSettings
	Retrieval RetrievalSettings
	TFIDF     TFIDFSettings
	Budget    BudgetSettings
	LLM       LLMSettings
	Embedding EmbeddingSettings
	Storage   StorageSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The LLM is left unconfigured, so answers use the keyword fallback
// until a provider is set.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Chunking: ChunkingSettings{
			Size:    1000,
			Overlap: 200,
		},
		Retrieval: RetrievalSettings{
			Strategy:  StrategyTFIDF,
			TopK:      5,
			CacheSize: 128,
		},
		TFIDF: TFIDFSettings{
			MinDF:       1,
			MaxDF:       1.0,
			MaxFeatures: 10000,
			NGramMax:    2,
		},
		Budget: BudgetSettings{
			ReservedSystemTokens:   500,
			ReservedResponseTokens: 1000,
			MinPartialTokens:       100,
			DefaultContextLimit:    4000,
			ContextLimits:          DefaultContextLimits(),
			ContextFraction:        1.0,
		},
		LLM: LLMSettings{
			Provider:    AIProviderNone,
			MaxTokens:   1000,
			Temperature: 0.7,
			TopP:        0.9,
			TopK:        40,
		},
		Embedding: EmbeddingSettings{},
		Storage: StorageSettings{
			Backend: StorageFile,
		},
	}
}

// DefaultContextLimits returns the retrieval context budget for known models.
// These are deliberately below the models' full windows: the context is only
// one part of the request.
func DefaultContextLimits() map[string]int {
	return map[string]int{
		"claude-3-haiku-20240307":  16000,
		"claude-3-5-sonnet-latest": 16000,
		"claude-3-5-haiku-latest":  16000,
		"gpt-4o-mini":              16000,
		"gpt-4o":                   16000,
		"llama3.2:3b":              4000,
		"llama3.2":                 4000,
		"mistral":                  4000,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderNone,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2:3b",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-haiku-20240307",
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// DefaultLLMTimeouts returns the request timeout for each provider.
// Local inference is slower than hosted APIs.
func DefaultLLMTimeouts() map[AIProvider]time.Duration {
	return map[AIProvider]time.Duration{
		AIProviderOllama:    120 * time.Second,
		AIProviderOpenAI:    30 * time.Second,
		AIProviderAnthropic: 30 * time.Second,
	}
}
