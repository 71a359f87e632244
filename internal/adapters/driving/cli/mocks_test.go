package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/zotero-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/zotero-rag/internal/core/domain"
	"github.com/custodia-labs/zotero-rag/internal/core/ports/driving"
	settingsvc "github.com/custodia-labs/zotero-rag/internal/core/services"
)

// mockRAGService is a mock implementation of driving.RAGService.
// ProcessDocuments completes synchronously with ok unless processErr is set.
type mockRAGService struct {
	mu           sync.Mutex
	answer       string
	results      []domain.RetrievalResult
	status       driving.Status
	ready        bool
	processErr   error
	buildFails   bool
	batches      [][]domain.Document
	lastQuery    string
	lastK        int
	systemPrompt string
}

func (m *mockRAGService) ProcessDocuments(docs []domain.Document, onComplete func(bool)) error {
	m.mu.Lock()
	if m.processErr != nil {
		m.mu.Unlock()
		return m.processErr
	}
	m.batches = append(m.batches, docs)
	ok := !m.buildFails
	if ok {
		m.ready = true
		m.status.Ready = true
		m.status.ChunkCount = len(docs)
		m.status.GenerationID = "gen-test"
	} else {
		m.status.LastError = "empty vocabulary"
	}
	m.mu.Unlock()

	if onComplete != nil {
		onComplete(ok)
	}
	return nil
}

func (m *mockRAGService) GenerateResponse(_ context.Context, query string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastQuery = query
	return m.answer
}

func (m *mockRAGService) RetrieveRelevantDocuments(_ context.Context, query string, k int) []domain.RetrievalResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastQuery, m.lastK = query, k
	return m.results
}

func (m *mockRAGService) IsReady() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

func (m *mockRAGService) GetProcessingStatus() bool { return false }

func (m *mockRAGService) LoadSavedData(context.Context) bool { return false }

func (m *mockRAGService) SetSystemPrompt(prompt string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.systemPrompt = prompt
}

func (m *mockRAGService) Status() driving.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *mockRAGService) Wait(context.Context) error { return nil }

func (m *mockRAGService) batchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.batches)
}

// mockLoader returns fixed documents for any location.
type mockLoader struct {
	docs      []domain.Document
	err       error
	locations []string
}

func (m *mockLoader) Load(_ context.Context, location string) ([]domain.Document, error) {
	m.locations = append(m.locations, location)
	return m.docs, m.err
}

// mockModelLister returns a fixed model list.
type mockModelLister struct {
	models []string
	err    error
}

func (m *mockModelLister) ListModels(context.Context) ([]string, error) {
	return m.models, m.err
}

// testServices holds the mocks behind an installed Services.
type testServices struct {
	rag    *mockRAGService
	loader *mockLoader
	models *mockModelLister
	config *memory.ConfigStore
}

// setupTestServices installs mock services for the duration of the test.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()

	ts := &testServices{
		rag:    &mockRAGService{},
		loader: &mockLoader{},
		models: &mockModelLister{},
		config: memory.NewConfigStore(nil),
	}
	settings := domain.DefaultAppSettings()

	original := services
	services = &Services{
		Settings:    settingsvc.NewSettingsService(ts.config, nil),
		AppSettings: settings,
		ConfigPath:  "/tmp/zrag/config.toml",
		Loader:      ts.loader,
		Models:      ts.models,
		RAG:         ts.rag,
	}
	t.Cleanup(func() {
		services = original
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetContexts(rootCmd)
	})
	return ts
}

// resetFlags restores every flag under cmd to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// resetContexts drops contexts cobra cached on the command tree.
func resetContexts(cmd *cobra.Command) {
	cmd.SetContext(context.Background())
	for _, sub := range cmd.Commands() {
		resetContexts(sub)
	}
}

// run executes the root command with args and returns its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// runWithInput is run with stdin replaced by input.
func runWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	rootCmd.SetIn(strings.NewReader(input))
	return run(t, args...)
}
