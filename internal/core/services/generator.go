package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
	"github.com/custodia-labs/zotero-rag/internal/core/ports/driven"
	"github.com/custodia-labs/zotero-rag/internal/logger"
)

const tracerName = "github.com/custodia-labs/zotero-rag/internal/core/services"

// ResponseGenerator turns a question and a budgeted context into an answer.
// The backend is fixed at construction: a remote chat API, a local model
// server, or the keyword fallback when llm is nil.
// Generate never fails; every error path ends in a displayable string.
type ResponseGenerator struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	opts    driven.ChatOptions
	timeout time.Duration

	mu           sync.RWMutex
	systemPrompt string
}

// NewResponseGenerator creates a generator. llm and prompts may be nil.
func NewResponseGenerator(llm driven.LLMService, prompts driven.PromptStore, settings domain.LLMSettings) *ResponseGenerator {
	g := &ResponseGenerator{
		llm:     llm,
		prompts: prompts,
		opts: driven.ChatOptions{
			MaxTokens:   settings.MaxTokens,
			Temperature: settings.Temperature,
			TopP:        settings.TopP,
			TopK:        settings.TopK,
		},
		timeout:      settings.Timeout,
		systemPrompt: domain.DefaultSystemPrompt,
	}
	if g.timeout <= 0 && llm != nil {
		g.timeout = domain.DefaultLLMTimeouts()[llm.Provider()]
	}
	if prompt := g.template(driven.PromptSystem, ""); prompt != "" {
		g.systemPrompt = prompt
	}
	return g
}

// Backend returns the provider answering questions.
func (g *ResponseGenerator) Backend() domain.AIProvider {
	if g.llm == nil {
		return domain.AIProviderNone
	}
	return g.llm.Provider()
}

// Model returns the generation model name (empty for the fallback).
func (g *ResponseGenerator) Model() string {
	if g.llm == nil {
		return ""
	}
	return g.llm.ModelName()
}

// SetSystemPrompt replaces the system prompt for subsequent requests.
func (g *ResponseGenerator) SetSystemPrompt(prompt string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.systemPrompt = prompt
}

// SystemPrompt returns the current system prompt.
func (g *ResponseGenerator) SystemPrompt() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.systemPrompt
}

// Generate answers query from the budgeted docContext.
func (g *ResponseGenerator) Generate(ctx context.Context, query, docContext string) string {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "ResponseGenerator.Generate")
	defer span.End()
	span.SetAttributes(attribute.String("backend", g.Backend().String()))

	if strings.TrimSpace(docContext) == "" {
		return domain.MsgNoRelevantInformation
	}
	if g.llm == nil {
		return FallbackAnswer(query, docContext)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	var answer string
	var err error
	if g.llm.Provider().IsLocal() {
		answer, err = g.generateLocal(ctx, query, docContext)
	} else {
		answer, err = g.generateRemote(ctx, query, docContext)
	}
	if err == nil && strings.TrimSpace(answer) != "" {
		return strings.TrimSpace(answer)
	}
	if err == nil {
		err = fmt.Errorf("%w: empty answer", domain.ErrMalformedResponse)
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	if g.llm.Provider().IsLocal() {
		switch {
		case errors.Is(err, domain.ErrServiceNotRunning):
			logger.Warn("local model not reachable at %s: %v", g.llm.BaseURL(), err)
			return fmt.Sprintf(domain.MsgServiceNotRunningFormat, g.llm.BaseURL())
		case errors.Is(err, domain.ErrBackendTimeout):
			logger.Warn("local model timed out after %s: %v", g.timeout, err)
			return fmt.Sprintf(domain.MsgLocalTimeoutFormat, g.llm.BaseURL(), g.timeout)
		}
	}
	logger.Warn("%s generation failed, using keyword fallback: %v", g.llm.Provider(), err)
	return FallbackAnswer(query, docContext)
}

func (g *ResponseGenerator) generateRemote(ctx context.Context, query, docContext string) (string, error) {
	user := fmt.Sprintf(g.template(driven.PromptQuestion, domain.DefaultQuestionPrompt), query, docContext)
	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: g.SystemPrompt()},
		{Role: driven.RoleUser, Content: user},
	}
	return g.llm.Chat(ctx, messages, g.opts)
}

func (g *ResponseGenerator) generateLocal(ctx context.Context, query, docContext string) (string, error) {
	prompt := fmt.Sprintf(g.template(driven.PromptLocal, domain.DefaultLocalPrompt), g.SystemPrompt(), docContext, query)
	logger.Debug("local prompt: ~%d tokens (model %s)", EstimateTokens(prompt), g.llm.ModelName())
	messages := []driven.ChatMessage{{Role: driven.RoleUser, Content: prompt}}
	return g.llm.Chat(ctx, messages, g.opts)
}

// template loads a prompt template, falling back to def.
func (g *ResponseGenerator) template(name, def string) string {
	if g.prompts == nil {
		return def
	}
	prompt, err := g.prompts.Load(name)
	if err != nil || strings.TrimSpace(prompt) == "" {
		return def
	}
	return prompt
}
