// Package openai provides an LLM service adapter using the OpenAI chat completions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/zotero-rag/internal/adapters/driven/llm/ratelimit"
	"github.com/custodia-labs/zotero-rag/internal/adapters/driven/llm/transport"
	"github.com/custodia-labs/zotero-rag/internal/core/domain"
	"github.com/custodia-labs/zotero-rag/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultLLMModel   = "gpt-4o-mini"
	DefaultLLMTimeout = 30 * time.Second
)

// LLMConfig holds configuration for the OpenAI LLM service.
type LLMConfig struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for OpenAI-compatible servers.
	BaseURL string

	// Model is the LLM model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// Limiter throttles requests (default: the provider limit).
	Limiter *ratelimit.Limiter
}

// LLMService provides chat completions through go-openai.
type LLMService struct {
	client  *openai.Client
	baseURL string
	model   string
	limiter *ratelimit.Limiter
}

// NewLLMService creates a new OpenAI LLM service.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: %w: API key is required", domain.ErrInvalidInput)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}
	if cfg.Limiter == nil {
		cfg.Limiter = ratelimit.New(domain.AIProviderOpenAI)
	}

	return &LLMService{
		client:  NewClient(cfg.APIKey, cfg.BaseURL, cfg.Timeout),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		limiter: cfg.Limiter,
	}, nil
}

// NewClient builds a go-openai client on the shared instrumented transport.
func NewClient(apiKey, baseURL string, timeout time.Duration) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = strings.TrimRight(baseURL, "/")
	config.HTTPClient = transport.NewClient(timeout)
	return openai.NewClientWithConfig(config)
}

// Chat sends the conversation as a chat completion.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
		MaxTokens:   opts.MaxTokens,
		Temperature: float32(opts.Temperature),
		TopP:        float32(opts.TopP),
	}
	for _, msg := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    chatRole(msg.Role),
			Content: msg.Content,
		})
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", transport.Classify(err)
	}

	rsp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", s.classify(err)
	}
	if len(rsp.Choices) == 0 || rsp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai: %w: no choices returned", domain.ErrMalformedResponse)
	}
	return rsp.Choices[0].Message.Content, nil
}

func chatRole(role string) string {
	switch role {
	case driven.RoleSystem:
		return openai.ChatMessageRoleSystem
	case driven.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}

// classify maps go-openai errors onto the domain sentinels.
func (s *LLMService) classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			s.limiter.Backoff(0)
		}
		return transport.StatusError("openai", apiErr.HTTPStatusCode, []byte(apiErr.Message))
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		if reqErr.HTTPStatusCode == http.StatusTooManyRequests {
			s.limiter.Backoff(0)
		}
		return transport.StatusError("openai", reqErr.HTTPStatusCode, []byte(reqErr.Error()))
	}
	return fmt.Errorf("openai: %w", transport.Classify(err))
}

// Provider identifies the backend.
func (s *LLMService) Provider() domain.AIProvider {
	return domain.AIProviderOpenAI
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// BaseURL returns the API endpoint.
func (s *LLMService) BaseURL() string {
	return s.baseURL
}

// Ping validates the API key by listing models.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		return s.classify(err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
