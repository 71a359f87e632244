package driven

import (
	"context"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
)

// LLMService is a language model generation backend.
// This is an optional service - when nil, answers degrade to the keyword fallback.
//
// Implementations include:
//   - Anthropic (Claude, remote)
//   - OpenAI (GPT, remote)
//   - Ollama (local models)
//
// Errors wrap the domain sentinels so callers can tell a connection refusal
// (domain.ErrServiceNotRunning) or timeout (domain.ErrBackendTimeout) from a
// bad response (domain.ErrBackendStatus, domain.ErrMalformedResponse).
type LLMService interface {
	// Chat sends a system prompt and conversation and returns the reply text.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// Provider identifies the backend.
	Provider() domain.AIProvider

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// BaseURL returns the endpoint the service talks to.
	BaseURL() string

	// Ping validates the service is reachable by making a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ModelLister is implemented by backends that can enumerate installed models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures generation behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// TopP is the nucleus sampling threshold.
	TopP float64

	// TopK limits sampling to the K most likely tokens (local backends only).
	TopK int
}
