package file

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
	"github.com/custodia-labs/zotero-rag/internal/core/ports/driven"
)

// Environment variables consulted when the config file has no API key.
const (
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
)

// LoadEnv loads .env files from the given directories into the process
// environment. Missing files are skipped and existing variables win.
func LoadEnv(dirs ...string) error {
	for _, dir := range dirs {
		path := filepath.Join(dir, ".env")
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// LoadSettings resolves typed settings from the store, starting from
// domain.DefaultAppSettings. Keys that are absent keep their default.
func LoadSettings(store driven.ConfigStore) domain.AppSettings {
	s := domain.DefaultAppSettings()
	if store == nil {
		return s
	}

	r := reader{store}

	r.int("chunking.size", &s.Chunking.Size)
	r.int("chunking.overlap", &s.Chunking.Overlap)

	if v := store.GetString("retrieval.strategy"); v != "" {
		s.Retrieval.Strategy = domain.RetrievalStrategy(strings.ToLower(v))
	}
	r.int("retrieval.top_k", &s.Retrieval.TopK)
	r.int("retrieval.cache_size", &s.Retrieval.CacheSize)

	r.int("tfidf.min_df", &s.TFIDF.MinDF)
	r.float("tfidf.max_df", &s.TFIDF.MaxDF)
	r.int("tfidf.max_features", &s.TFIDF.MaxFeatures)
	r.int("tfidf.ngram_max", &s.TFIDF.NGramMax)

	r.int("budget.reserved_system_tokens", &s.Budget.ReservedSystemTokens)
	r.int("budget.reserved_response_tokens", &s.Budget.ReservedResponseTokens)
	r.int("budget.min_partial_tokens", &s.Budget.MinPartialTokens)
	r.int("budget.default_context_limit", &s.Budget.DefaultContextLimit)
	r.float("budget.context_fraction", &s.Budget.ContextFraction)
	for model, limit := range store.GetIntMap("budget.context_limits") {
		s.Budget.ContextLimits[model] = limit
	}

	if v := store.GetString("llm.provider"); v != "" {
		s.LLM.Provider = domain.AIProvider(strings.ToLower(v))
	}
	r.str("llm.model", &s.LLM.Model)
	r.str("llm.base_url", &s.LLM.BaseURL)
	r.str("llm.api_key", &s.LLM.APIKey)
	r.int("llm.max_tokens", &s.LLM.MaxTokens)
	r.float("llm.temperature", &s.LLM.Temperature)
	r.float("llm.top_p", &s.LLM.TopP)
	r.int("llm.top_k", &s.LLM.TopK)
	if secs := store.GetInt("llm.timeout_seconds"); secs > 0 {
		s.LLM.Timeout = time.Duration(secs) * time.Second
	}
	if s.LLM.Model == "" {
		s.LLM.Model = domain.DefaultLLMModels()[s.LLM.Provider]
	}
	if s.LLM.APIKey == "" {
		s.LLM.APIKey = envKey(s.LLM.Provider)
	}

	if v := store.GetString("embedding.provider"); v != "" {
		s.Embedding.Provider = domain.AIProvider(strings.ToLower(v))
	}
	r.str("embedding.model", &s.Embedding.Model)
	r.str("embedding.base_url", &s.Embedding.BaseURL)
	r.str("embedding.api_key", &s.Embedding.APIKey)
	if s.Embedding.Model == "" {
		s.Embedding.Model = domain.DefaultEmbeddingModels()[s.Embedding.Provider]
	}
	if s.Embedding.APIKey == "" {
		s.Embedding.APIKey = envKey(s.Embedding.Provider)
	}

	if v := store.GetString("storage.backend"); v != "" {
		s.Storage.Backend = domain.StorageBackend(strings.ToLower(v))
	}
	r.str("storage.dir", &s.Storage.Dir)

	return s
}

func envKey(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderAnthropic:
		return os.Getenv(EnvAnthropicAPIKey)
	case domain.AIProviderOpenAI:
		return os.Getenv(EnvOpenAIAPIKey)
	default:
		return ""
	}
}

// reader copies present keys over defaults.
type reader struct {
	store driven.ConfigStore
}

func (r reader) has(key string) bool {
	_, ok := r.store.Get(key)
	return ok
}

func (r reader) str(key string, dst *string) {
	if v := r.store.GetString(key); v != "" {
		*dst = v
	}
}

func (r reader) int(key string, dst *int) {
	if r.has(key) {
		*dst = r.store.GetInt(key)
	}
}

func (r reader) float(key string, dst *float64) {
	if r.has(key) {
		*dst = r.store.GetFloat(key)
	}
}
