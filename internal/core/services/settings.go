package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
	"github.com/custodia-labs/zotero-rag/internal/core/ports/driven"
	"github.com/custodia-labs/zotero-rag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// ContextLimitPrefix addresses the per-model context limit table.
const ContextLimitPrefix = "budget.context_limits."

type settingKind int

const (
	kindString settingKind = iota
	kindPositiveInt
	kindInt
	kindFraction
	kindFloat
	kindStrategy
	kindLLMProvider
	kindEmbeddingProvider
	kindBackend
	kindSecret
)

var settingKeys = map[string]settingKind{
	"chunking.size":                   kindPositiveInt,
	"chunking.overlap":                kindInt,
	"retrieval.strategy":              kindStrategy,
	"retrieval.top_k":                 kindPositiveInt,
	"retrieval.cache_size":            kindInt,
	"tfidf.min_df":                    kindPositiveInt,
	"tfidf.max_df":                    kindFraction,
	"tfidf.max_features":              kindInt,
	"tfidf.ngram_max":                 kindPositiveInt,
	"budget.reserved_system_tokens":   kindInt,
	"budget.reserved_response_tokens": kindInt,
	"budget.min_partial_tokens":       kindInt,
	"budget.default_context_limit":    kindPositiveInt,
	"budget.context_fraction":         kindFraction,
	"llm.provider":                    kindLLMProvider,
	"llm.model":                       kindString,
	"llm.base_url":                    kindString,
	"llm.api_key":                     kindSecret,
	"llm.max_tokens":                  kindPositiveInt,
	"llm.temperature":                 kindFloat,
	"llm.top_p":                       kindFraction,
	"llm.top_k":                       kindInt,
	"llm.timeout_seconds":             kindPositiveInt,
	"embedding.provider":              kindEmbeddingProvider,
	"embedding.model":                 kindString,
	"embedding.base_url":              kindString,
	"embedding.api_key":               kindSecret,
	"storage.backend":                 kindBackend,
	"storage.dir":                     kindString,
}

// SettingsService edits the configuration store one key at a time.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a settings service.
// aiValidator may be nil, in which case Validate skips connectivity checks.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Keys returns the settable keys, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKeys)+1)
	for key := range settingKeys {
		keys = append(keys, key)
	}
	keys = append(keys, ContextLimitPrefix+"<model>")
	sort.Strings(keys)
	return keys
}

// Value returns the stored value for key.
func (s *SettingsService) Value(key string) (any, bool) {
	return s.configStore.Get(key)
}

// Set parses value according to the key's type and persists it.
// API keys are rejected here; use SetAPIKey.
func (s *SettingsService) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)

	kind, ok := settingKeys[key]
	if !ok {
		if model, found := strings.CutPrefix(key, ContextLimitPrefix); found && model != "" {
			kind = kindPositiveInt
		} else {
			return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
		}
	}
	if kind == kindSecret {
		return fmt.Errorf("%w: %s is a secret, use set-key", domain.ErrInvalidInput, key)
	}

	parsed, err := parseSetting(kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	return s.configStore.Set(key, parsed)
}

func parseSetting(kind settingKind, value string) (any, error) {
	switch kind {
	case kindPositiveInt, kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", value)
		}
		if n < 0 || (kind == kindPositiveInt && n == 0) {
			return nil, fmt.Errorf("%d is out of range", n)
		}
		return int64(n), nil

	case kindFraction, kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", value)
		}
		if f < 0 || (kind == kindFraction && (f == 0 || f > 1)) {
			return nil, fmt.Errorf("%g is out of range", f)
		}
		return f, nil

	case kindStrategy:
		strategy := domain.RetrievalStrategy(strings.ToLower(value))
		if !strategy.IsValid() {
			return nil, fmt.Errorf("unknown strategy %q", value)
		}
		return strategy.String(), nil

	case kindLLMProvider:
		provider := domain.AIProvider(strings.ToLower(value))
		if !provider.IsValid() {
			return nil, fmt.Errorf("unknown provider %q", value)
		}
		return provider.String(), nil

	case kindEmbeddingProvider:
		provider := domain.AIProvider(strings.ToLower(value))
		if provider != domain.AIProviderNone && !isEmbeddingProvider(provider) {
			return nil, fmt.Errorf("%q cannot produce embeddings", value)
		}
		return provider.String(), nil

	case kindBackend:
		backend := domain.StorageBackend(strings.ToLower(value))
		if !backend.IsValid() {
			return nil, fmt.Errorf("unknown storage backend %q", value)
		}
		return string(backend), nil

	default:
		return value, nil
	}
}

func isEmbeddingProvider(p domain.AIProvider) bool {
	for _, candidate := range domain.AllEmbeddingProviders() {
		if candidate == p {
			return true
		}
	}
	return false
}

// SetAPIKey stores key under the LLM or embedding section that uses provider.
// OpenAI keys are written to both sections.
func (s *SettingsService) SetAPIKey(provider domain.AIProvider, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: empty API key", domain.ErrInvalidInput)
	}
	switch provider {
	case domain.AIProviderAnthropic:
		return s.configStore.Set("llm.api_key", key)
	case domain.AIProviderOpenAI:
		if err := s.configStore.Set("llm.api_key", key); err != nil {
			return err
		}
		return s.configStore.Set("embedding.api_key", key)
	default:
		return fmt.Errorf("%w: %s does not use an API key", domain.ErrInvalidInput, provider)
	}
}

// Validate checks that the strategy, providers and backend are usable
// together, then pings the configured backends. All problems are joined.
func (s *SettingsService) Validate(ctx context.Context, settings domain.AppSettings) error {
	var errs []error

	if !settings.Retrieval.Strategy.IsValid() {
		errs = append(errs, fmt.Errorf("%w: retrieval strategy %q", domain.ErrUnsupportedType, settings.Retrieval.Strategy))
	}
	if !settings.Storage.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("%w: storage backend %q", domain.ErrUnsupportedType, settings.Storage.Backend))
	}
	if settings.Chunking.Overlap >= settings.Chunking.Size {
		errs = append(errs, fmt.Errorf("%w: chunking.overlap must be smaller than chunking.size", domain.ErrInvalidInput))
	}

	if settings.Retrieval.Strategy.RequiresEmbedding() && !settings.Embedding.IsConfigured() {
		errs = append(errs, fmt.Errorf("%w: strategy %q needs embedding.provider",
			domain.ErrEmbeddingUnavailable, settings.Retrieval.Strategy))
	}

	llmWanted := settings.LLM.Provider != domain.AIProviderNone && settings.LLM.Provider != ""
	switch {
	case !settings.LLM.Provider.IsValid() && llmWanted:
		errs = append(errs, fmt.Errorf("%w: LLM provider %q", domain.ErrUnsupportedType, settings.LLM.Provider))
	case llmWanted && !settings.LLM.IsConfigured():
		errs = append(errs, fmt.Errorf("%w: %s needs an API key", domain.ErrLLMUnavailable, settings.LLM.Provider))
	}

	if len(errs) > 0 || s.aiValidator == nil {
		return errors.Join(errs...)
	}

	if settings.Retrieval.Strategy.RequiresEmbedding() {
		if err := s.aiValidator.ValidateEmbedding(ctx, &settings.Embedding); err != nil {
			errs = append(errs, fmt.Errorf("embedding: %w", err))
		}
	}
	if llmWanted {
		if err := s.aiValidator.ValidateLLM(ctx, &settings.LLM); err != nil {
			errs = append(errs, fmt.Errorf("llm: %w", err))
		}
	}
	return errors.Join(errs...)
}
