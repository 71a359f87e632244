// Package ollama provides an LLM service adapter for a local Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/zotero-rag/internal/adapters/driven/llm/transport"
	"github.com/custodia-labs/zotero-rag/internal/core/domain"
	"github.com/custodia-labs/zotero-rag/internal/core/ports/driven"
)

// Ensure LLMService implements the interfaces.
var (
	_ driven.LLMService  = (*LLMService)(nil)
	_ driven.ModelLister = (*LLMService)(nil)
)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "llama3.2:3b"
	DefaultLLMTimeout = 120 * time.Second

	// ListTimeout bounds model listing and ping requests.
	ListTimeout = 5 * time.Second
)

// LLMConfig holds configuration for the Ollama LLM service.
type LLMConfig struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the LLM model to use (default: llama3.2:3b).
	Model string

	// Timeout is the generation request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService provides completions through /api/generate.
type LLMService struct {
	client     *http.Client
	listClient *http.Client
	baseURL    string
	model      string
}

// generateRequest is the Ollama /api/generate request format.
type generateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Options options `json:"options"`
}

// options holds generation parameters.
type options struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature"`
	TopK        int     `json:"top_k,omitempty"`
	TopP        float64 `json:"top_p,omitempty"`
}

// generateResponse is the Ollama /api/generate response format.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// tagsResponse is the Ollama /api/tags response format.
type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// NewLLMService creates a new Ollama LLM service.
func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &LLMService{
		client:     transport.NewClient(cfg.Timeout),
		listClient: transport.NewClient(ListTimeout),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
	}
}

// Chat flattens the conversation into a single prompt for /api/generate.
// A lone user message is sent verbatim.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	return s.generate(ctx, flatten(messages), opts)
}

func flatten(messages []driven.ChatMessage) string {
	if len(messages) == 1 {
		return messages[0].Content
	}
	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case driven.RoleSystem:
			parts = append(parts, msg.Content)
		case driven.RoleAssistant:
			parts = append(parts, "Assistant: "+msg.Content)
		default:
			parts = append(parts, "User: "+msg.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (s *LLMService) generate(ctx context.Context, prompt string, opts driven.ChatOptions) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  s.model,
		Prompt: prompt,
		Stream: false,
		Options: options{
			NumPredict:  opts.MaxTokens,
			Temperature: opts.Temperature,
			TopK:        opts.TopK,
			TopP:        opts.TopP,
		},
	})
	if err != nil {
		return "", fmt.Errorf("ollama: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ollama: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama: send request: %w", transport.Classify(err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ollama: read response: %w", transport.Classify(err))
	}
	if resp.StatusCode != http.StatusOK {
		return "", transport.StatusError("ollama", resp.StatusCode, respBody)
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", fmt.Errorf("ollama: %w: %v", domain.ErrMalformedResponse, err)
	}
	if genResp.Error != "" {
		return "", fmt.Errorf("ollama: %w: %s", domain.ErrBackendStatus, genResp.Error)
	}
	if strings.TrimSpace(genResp.Response) == "" {
		return "", fmt.Errorf("ollama: %w: empty response", domain.ErrMalformedResponse)
	}
	return genResp.Response, nil
}

// ListModels returns the names of installed models, sorted.
func (s *LLMService) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("ollama: create tags request: %w", err)
	}

	resp, err := s.listClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama: list models: %w", transport.Classify(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, transport.StatusError("ollama", resp.StatusCode, body)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("ollama: %w: %v", domain.ErrMalformedResponse, err)
	}
	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	sort.Strings(names)
	return names, nil
}

// Provider identifies the backend.
func (s *LLMService) Provider() domain.AIProvider {
	return domain.AIProviderOllama
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// BaseURL returns the server address.
func (s *LLMService) BaseURL() string {
	return s.baseURL
}

// Ping checks the server is up by listing models.
func (s *LLMService) Ping(ctx context.Context) error {
	_, err := s.ListModels(ctx)
	return err
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
