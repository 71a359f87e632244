// Package app wires the adapters into the services the CLI drives.
package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/zotero-rag/internal/adapters/driven/ai"
	"github.com/custodia-labs/zotero-rag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/zotero-rag/internal/adapters/driven/corpus"
	"github.com/custodia-labs/zotero-rag/internal/adapters/driven/index"
	ollamallm "github.com/custodia-labs/zotero-rag/internal/adapters/driven/llm/ollama"
	"github.com/custodia-labs/zotero-rag/internal/adapters/driven/storage"
	"github.com/custodia-labs/zotero-rag/internal/adapters/driving/cli"
	"github.com/custodia-labs/zotero-rag/internal/core/domain"
	"github.com/custodia-labs/zotero-rag/internal/core/ports/driving"
	"github.com/custodia-labs/zotero-rag/internal/core/services"
	"github.com/custodia-labs/zotero-rag/internal/logger"
	"github.com/custodia-labs/zotero-rag/internal/postprocessors"
)

// Ensure Bootstrap matches the CLI hook.
var _ cli.BootstrapFunc = Bootstrap

// Bootstrap loads configuration and returns the CLI services. The index
// pipeline is only built when a command first asks for it, so config
// commands keep working when the retrieval settings are broken.
func Bootstrap(_ context.Context, opts cli.Options) (*cli.Services, error) {
	configDir := opts.ConfigDir
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config directory: %w", err)
		}
		configDir = dir
	}

	if err := file.LoadEnv(".", configDir); err != nil {
		logger.Warn("load .env: %v", err)
	}

	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settings := file.LoadSettings(store)
	if opts.DataDir != "" {
		settings.Storage.Dir = opts.DataDir
	}
	if settings.Storage.Dir == "" {
		settings.Storage.Dir = filepath.Join(configDir, "data")
	}

	var closers []func()
	svc := &cli.Services{
		Settings:    services.NewSettingsService(store, ai.NewConfigValidator()),
		AppSettings: settings,
		ConfigPath:  store.Path(),
		Loader:      corpus.NewLoader(),
		Models:      ollamallm.NewLLMService(ollamallm.LLMConfig{BaseURL: ollamaBaseURL(settings)}),
		Close: func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		},
	}
	svc.OpenRAG = func(ctx context.Context) (driving.RAGService, error) {
		manager, closeAll, err := OpenRAG(ctx, settings, filepath.Join(configDir, "prompts"))
		if err != nil {
			return nil, err
		}
		closers = append(closers, closeAll)
		return manager, nil
	}
	return svc, nil
}

// OpenRAG builds the RAG manager for settings and restores the saved index.
// The returned func releases the manager, its backends and its store.
func OpenRAG(ctx context.Context, settings domain.AppSettings, promptDir string) (*services.RAGManager, func(), error) {
	backends := ai.Init(&settings)
	for _, warning := range backends.Warnings {
		logger.Warn("%s", warning)
	}

	pipeline, err := postprocessors.NewChunkingPipeline(settings.Chunking)
	if err != nil {
		backends.Close()
		return nil, nil, err
	}
	builder, err := index.NewBuilder(&settings, backends.EmbeddingService)
	if err != nil {
		backends.Close()
		return nil, nil, err
	}
	snapshots, storeCloser, err := storage.NewSnapshotStore(settings.Storage)
	if err != nil {
		backends.Close()
		return nil, nil, fmt.Errorf("open index store: %w", err)
	}
	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		backends.Close()
		_ = storeCloser.Close()
		return nil, nil, err
	}

	generator := services.NewResponseGenerator(backends.LLMService, prompts, settings.LLM)
	manager := services.NewRAGManager(
		pipeline,
		builder,
		services.NewContextBudgeter(settings.Budget),
		generator,
		settings.Retrieval,
	)
	manager.SetSnapshotStore(snapshots)

	if manager.LoadSavedData(ctx) {
		logger.Debug("restored saved %s index", settings.Retrieval.Strategy)
	}

	closeAll := func() {
		_ = manager.Close()
		backends.Close()
		if err := storeCloser.Close(); err != nil {
			logger.Warn("close index store: %v", err)
		}
	}
	return manager, closeAll, nil
}

func ollamaBaseURL(settings domain.AppSettings) string {
	if settings.LLM.Provider == domain.AIProviderOllama {
		return settings.LLM.BaseURL
	}
	if settings.Embedding.Provider == domain.AIProviderOllama {
		return settings.Embedding.BaseURL
	}
	return ""
}
