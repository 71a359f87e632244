package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
	"github.com/custodia-labs/zotero-rag/internal/core/ports/driven"
	"github.com/custodia-labs/zotero-rag/internal/core/ports/driving"
	"github.com/custodia-labs/zotero-rag/internal/logger"
	"github.com/custodia-labs/zotero-rag/internal/lru"
)

// Ensure RAGManager implements the interface.
var _ driving.RAGService = (*RAGManager)(nil)

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 5

// served is one immutable index build together with its identity.
// Queries hold mu for reading; retiring an index takes it for writing,
// so an index is only closed once its in-flight queries finish.
type served struct {
	index        driven.Index
	generationID string
	builtAt      time.Time
	titles       []string

	mu     sync.RWMutex
	closed bool
}

func (s *served) retire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if err := s.index.Close(); err != nil {
		logger.Warn("close index %s: %v", s.generationID, err)
	}
}

// RAGManager ties ingestion, retrieval, budgeting and generation together.
// One build runs at a time; queries run concurrently against whichever
// index build they loaded.
type RAGManager struct {
	pipeline  driven.PostProcessorPipeline
	builder   driven.IndexBuilder
	budgeter  *ContextBudgeter
	generator *ResponseGenerator
	snapshots driven.SnapshotStore
	topK      int
	workers   int

	current atomic.Pointer[served]
	cache   *lru.Cache[string, []domain.RetrievalResult]

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	state     domain.ManagerState
	lastError string
	done      chan struct{}
}

// NewRAGManager creates a manager in the uninitialized state.
func NewRAGManager(
	pipeline driven.PostProcessorPipeline,
	builder driven.IndexBuilder,
	budgeter *ContextBudgeter,
	generator *ResponseGenerator,
	settings domain.RetrievalSettings,
) *RAGManager {
	topK := settings.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &RAGManager{
		pipeline:  pipeline,
		builder:   builder,
		budgeter:  budgeter,
		generator: generator,
		topK:      topK,
		cache:     lru.New[string, []domain.RetrievalResult](settings.CacheSize),
		ctx:       ctx,
		cancel:    cancel,
		state:     domain.StateUninitialized,
	}
}

// SetSnapshotStore enables persistence of built indexes.
func (m *RAGManager) SetSnapshotStore(store driven.SnapshotStore) {
	m.snapshots = store
}

// SetWorkers bounds chunking parallelism (0 = GOMAXPROCS).
func (m *RAGManager) SetWorkers(workers int) {
	m.workers = workers
}

// ProcessDocuments starts a background build over docs.
func (m *RAGManager) ProcessDocuments(docs []domain.Document, onComplete func(ok bool)) error {
	m.mu.Lock()
	if !m.state.CanTransitionTo(domain.StateProcessing) {
		state := m.state
		m.mu.Unlock()
		logger.Warn("ignoring document batch: manager is %s", state)
		return domain.ErrProcessingInProgress
	}
	m.state = domain.StateProcessing
	done := make(chan struct{})
	m.done = done
	m.mu.Unlock()

	batch := make([]domain.Document, len(docs))
	copy(batch, docs)

	go m.build(batch, done, onComplete)
	return nil
}

func (m *RAGManager) build(docs []domain.Document, done chan struct{}, onComplete func(bool)) {
	ctx, span := otel.Tracer(tracerName).Start(m.ctx, "RAGManager.build",
		trace.WithAttributes(
			attribute.Int("documents", len(docs)),
			attribute.String("strategy", m.builder.Strategy().String()),
		),
	)
	defer span.End()

	logger.Section("Indexing")
	start := time.Now()

	idx, err := m.buildIndex(ctx, docs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("index build failed: %v", err)
		m.finish(done, nil, err)
		if onComplete != nil {
			onComplete(false)
		}
		return
	}

	next := &served{
		index:        idx,
		generationID: uuid.NewString(),
		builtAt:      time.Now().UTC(),
		titles:       domain.NewSnapshotMetadata(docs).Titles,
	}
	m.persist(ctx, next, docs)
	m.finish(done, next, nil)

	logger.Info("indexed %d chunks from %d documents in %s (generation %s)",
		len(idx.Chunks()), len(docs), time.Since(start).Round(time.Millisecond), next.generationID)
	if onComplete != nil {
		onComplete(true)
	}
}

func (m *RAGManager) buildIndex(ctx context.Context, docs []domain.Document) (driven.Index, error) {
	chunks, err := m.pipeline.ProcessBatch(ctx, docs, m.workers)
	if err != nil {
		return nil, err
	}
	logger.Debug("chunked %d documents into %d chunks", len(docs), len(chunks))
	return m.builder.Build(ctx, chunks)
}

// finish leaves the processing state. A nil next keeps the previous index.
func (m *RAGManager) finish(done chan struct{}, next *served, err error) {
	var old *served
	if next != nil {
		old = m.current.Swap(next)
		m.cache.Purge()
	}

	m.mu.Lock()
	if err != nil {
		m.state = domain.StateFailed
		m.lastError = err.Error()
		// Failed falls back to the previous index, if any.
		if m.current.Load() != nil {
			m.state = domain.StateReady
		} else {
			m.state = domain.StateUninitialized
		}
	} else {
		m.state = domain.StateReady
		m.lastError = ""
	}
	close(done)
	m.mu.Unlock()

	if old != nil {
		go old.retire()
	}
}

// persist saves a snapshot of s. Failures are logged; the build still counts.
func (m *RAGManager) persist(ctx context.Context, s *served, docs []domain.Document) {
	if m.snapshots == nil {
		return
	}
	state, err := s.index.State()
	if err != nil {
		logger.Warn("snapshot skipped: %v", err)
		return
	}
	snapshot := &domain.IndexSnapshot{
		Strategy:     s.index.Strategy(),
		GenerationID: s.generationID,
		CreatedAt:    s.builtAt,
		Chunks:       s.index.Chunks(),
		State:        state,
		Metadata:     domain.NewSnapshotMetadata(docs),
	}
	if err := m.snapshots.Save(ctx, snapshot); err != nil {
		logger.Warn("save snapshot %s: %v", s.generationID, err)
	}
}

// acquire returns the live index build read-locked, or nil.
// Callers must release with s.mu.RUnlock.
func (m *RAGManager) acquire() *served {
	for {
		s := m.current.Load()
		if s == nil {
			return nil
		}
		s.mu.RLock()
		if !s.closed {
			return s
		}
		s.mu.RUnlock()
	}
}

// GenerateResponse answers query against the current index.
func (m *RAGManager) GenerateResponse(ctx context.Context, query string) string {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "RAGManager.GenerateResponse")
	defer span.End()

	if !m.IsReady() {
		return domain.MsgStillProcessing
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.MsgEmptyQuestion
	}

	results := m.RetrieveRelevantDocuments(ctx, query, m.topK)
	span.SetAttributes(attribute.Int("results", len(results)))

	budget := m.budgeter.ResolveBudget(m.generator.Model())
	docContext := m.budgeter.BuildContext(query, results, budget)
	logger.Debug("context: %d results, ~%d of %d tokens", len(results), EstimateTokens(docContext), budget)

	return m.generator.Generate(ctx, query, docContext)
}

// RetrieveRelevantDocuments returns up to k ranked chunks (k <= 0 uses the default).
func (m *RAGManager) RetrieveRelevantDocuments(ctx context.Context, query string, k int) []domain.RetrievalResult {
	if k <= 0 {
		k = m.topK
	}
	if strings.TrimSpace(query) == "" {
		return []domain.RetrievalResult{}
	}

	s := m.acquire()
	if s == nil {
		return []domain.RetrievalResult{}
	}
	defer s.mu.RUnlock()

	key := queryCacheKey(query, k, s.generationID)
	if cached, ok := m.cache.Get(key); ok {
		trace.SpanFromContext(ctx).AddEvent("query cache hit", trace.WithAttributes(attribute.Int("k", k)))
		return append([]domain.RetrievalResult(nil), cached...)
	}

	results, err := s.index.Query(ctx, query, k)
	if err != nil {
		logger.Warn("query %q failed: %v", query, err)
		return []domain.RetrievalResult{}
	}
	if results == nil {
		results = []domain.RetrievalResult{}
	}
	m.cache.Set(key, results)
	return append([]domain.RetrievalResult(nil), results...)
}

func queryCacheKey(query string, k int, generationID string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(query), " "))
	return normalized + "\x00" + strconv.Itoa(k) + "\x00" + generationID
}

// IsReady reports whether an index is being served.
func (m *RAGManager) IsReady() bool {
	return m.current.Load() != nil
}

// GetProcessingStatus reports whether a build is in flight.
func (m *RAGManager) GetProcessingStatus() bool {
	return m.State() == domain.StateProcessing
}

// State returns the lifecycle state.
func (m *RAGManager) State() domain.ManagerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// LoadSavedData restores the last persisted snapshot.
func (m *RAGManager) LoadSavedData(ctx context.Context) bool {
	if m.snapshots == nil {
		return false
	}

	m.mu.Lock()
	if !m.state.CanTransitionTo(domain.StateProcessing) {
		m.mu.Unlock()
		logger.Warn("cannot load saved data while processing")
		return false
	}
	m.state = domain.StateProcessing
	done := make(chan struct{})
	m.done = done
	m.mu.Unlock()

	next, err := m.restore(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrSnapshotNotFound) {
			logger.Debug("no saved index")
		} else {
			logger.Warn("load saved index: %v", err)
		}
		m.mu.Lock()
		if m.current.Load() != nil {
			m.state = domain.StateReady
		} else {
			m.state = domain.StateUninitialized
		}
		close(done)
		m.mu.Unlock()
		return false
	}

	m.finish(done, next, nil)
	logger.Info("loaded saved index %s (%d chunks)", next.generationID, len(next.index.Chunks()))
	return true
}

func (m *RAGManager) restore(ctx context.Context) (*served, error) {
	snapshot, err := m.snapshots.Load(ctx)
	if err != nil {
		return nil, err
	}
	if snapshot.Strategy != m.builder.Strategy() {
		return nil, fmt.Errorf("%w: snapshot strategy %s, configured %s",
			domain.ErrSnapshotMismatch, snapshot.Strategy, m.builder.Strategy())
	}
	idx, err := m.builder.Restore(ctx, snapshot)
	if err != nil {
		return nil, err
	}
	generationID := snapshot.GenerationID
	if generationID == "" {
		generationID = uuid.NewString()
	}
	return &served{
		index:        idx,
		generationID: generationID,
		builtAt:      snapshot.CreatedAt,
		titles:       snapshot.Metadata.Titles,
	}, nil
}

// SetSystemPrompt replaces the generation system prompt.
func (m *RAGManager) SetSystemPrompt(prompt string) {
	m.generator.SetSystemPrompt(prompt)
}

// Status returns a snapshot of the manager for display.
func (m *RAGManager) Status() driving.Status {
	m.mu.Lock()
	status := driving.Status{
		State:      m.state,
		Processing: m.state == domain.StateProcessing,
		LastError:  m.lastError,
		Strategy:   m.builder.Strategy(),
		Backend:    m.generator.Backend(),
		Model:      m.generator.Model(),
	}
	m.mu.Unlock()

	if s := m.current.Load(); s != nil {
		status.Ready = true
		status.GenerationID = s.generationID
		status.Strategy = s.index.Strategy()
		status.ChunkCount = len(s.index.Chunks())
		status.Titles = append([]string(nil), s.titles...)
		status.BuiltAt = s.builtAt
	}
	return status
}

// Wait blocks until no build is in flight or ctx is done.
func (m *RAGManager) Wait(ctx context.Context) error {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels any running build and releases the served index.
func (m *RAGManager) Close() error {
	m.cancel()
	_ = m.Wait(context.Background())
	if s := m.current.Swap(nil); s != nil {
		s.retire()
	}
	return nil
}
