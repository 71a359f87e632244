// Package dense implements embedding cosine-similarity retrieval.
package dense

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/custodia-labs/zotero-rag/internal/adapters/driven/index/rank"
	"github.com/custodia-labs/zotero-rag/internal/core/domain"
	"github.com/custodia-labs/zotero-rag/internal/core/ports/driven"
	"github.com/custodia-labs/zotero-rag/internal/logger"
	"github.com/custodia-labs/zotero-rag/internal/lru"
)

// DefaultBatchSize is the number of chunks embedded per request.
const DefaultBatchSize = 32

// DefaultQueryCacheSize bounds the query embedding cache.
const DefaultQueryCacheSize = 256

// Ensure Builder implements driven.IndexBuilder.
var _ driven.IndexBuilder = (*Builder)(nil)

// Ensure Index implements driven.Index.
var _ driven.Index = (*Index)(nil)

// Builder embeds chunks through an EmbeddingService.
type Builder struct {
	embedder  driven.EmbeddingService
	batchSize int
	cacheSize int
}

// Option configures the builder.
type Option func(*Builder)

// WithBatchSize sets the embedding batch size.
func WithBatchSize(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.batchSize = n
		}
	}
}

// WithQueryCacheSize sets the query embedding cache capacity (0 disables).
func WithQueryCacheSize(n int) Option {
	return func(b *Builder) {
		if n >= 0 {
			b.cacheSize = n
		}
	}
}

// NewBuilder creates a dense index builder. embedder may be nil, in which
// case Build fails and restored indexes answer with no results.
func NewBuilder(embedder driven.EmbeddingService, opts ...Option) *Builder {
	b := &Builder{
		embedder:  embedder,
		batchSize: DefaultBatchSize,
		cacheSize: DefaultQueryCacheSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Strategy returns the dense strategy.
func (b *Builder) Strategy() domain.RetrievalStrategy {
	return domain.StrategyDense
}

// Build embeds every chunk. Any embedding failure fails the whole build.
func (b *Builder) Build(ctx context.Context, chunks []domain.Chunk) (driven.Index, error) {
	if len(chunks) == 0 {
		return nil, domain.ErrNoChunks
	}
	if b.embedder == nil {
		return nil, fmt.Errorf("dense: %w", domain.ErrEmbeddingUnavailable)
	}

	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += b.batchSize {
		end := min(start+b.batchSize, len(chunks))

		texts := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			texts = append(texts, chunks[i].Text)
		}

		batch, err := b.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("dense: embed chunks %d-%d: %w", start, end-1, err)
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("dense: %w: %d embeddings for %d texts",
				domain.ErrMalformedResponse, len(batch), len(texts))
		}
		for _, v := range batch {
			vectors = append(vectors, normalize(v))
		}
	}

	logger.Debug("dense: embedded %d chunks with %s", len(vectors), b.embedder.ModelName())
	return b.newIndex(chunks, vectors, b.embedder.ModelName()), nil
}

// Restore loads persisted vectors. The query model must match the model the
// vectors were built with.
func (b *Builder) Restore(_ context.Context, snapshot *domain.IndexSnapshot) (driven.Index, error) {
	var st state
	if err := json.Unmarshal(snapshot.State, &st); err != nil {
		return nil, fmt.Errorf("dense: decode state: %w", err)
	}
	if len(st.Vectors) != len(snapshot.Chunks) {
		return nil, fmt.Errorf("dense: %w: %d vectors for %d chunks",
			domain.ErrSnapshotMismatch, len(st.Vectors), len(snapshot.Chunks))
	}
	if b.embedder != nil && b.embedder.ModelName() != st.Model {
		return nil, fmt.Errorf("dense: %w: built with %q, configured %q",
			domain.ErrSnapshotMismatch, st.Model, b.embedder.ModelName())
	}
	return b.newIndex(snapshot.Chunks, st.Vectors, st.Model), nil
}

func (b *Builder) newIndex(chunks []domain.Chunk, vectors [][]float32, model string) *Index {
	return &Index{
		chunks:   rank.CopyChunks(chunks),
		vectors:  vectors,
		model:    model,
		embedder: b.embedder,
		cache:    lru.New[string, []float32](b.cacheSize),
	}
}

type state struct {
	Model   string      `json:"model"`
	Vectors [][]float32 `json:"vectors"`
}

// Index holds L2-normalised chunk embeddings. Row i is chunks[i].
type Index struct {
	chunks   []domain.Chunk
	vectors  [][]float32
	model    string
	embedder driven.EmbeddingService
	cache    *lru.Cache[string, []float32]

	warnOnce sync.Once
}

// Strategy returns the dense strategy.
func (i *Index) Strategy() domain.RetrievalStrategy {
	return domain.StrategyDense
}

// Query embeds the query and ranks chunks by cosine similarity.
// An unreachable embedding service yields no results, not an error.
func (i *Index) Query(ctx context.Context, query string, k int) ([]domain.RetrievalResult, error) {
	if rank.IsBlank(query) {
		return []domain.RetrievalResult{}, nil
	}
	if i.embedder == nil {
		i.warnOnce.Do(func() {
			logger.Warn("dense: no embedding service configured, returning no results")
		})
		return []domain.RetrievalResult{}, nil
	}

	q, err := i.embedQuery(ctx, query)
	if err != nil {
		logger.Warn("dense: embed query: %v", err)
		return []domain.RetrievalResult{}, nil
	}

	var results []domain.RetrievalResult
	for row, v := range i.vectors {
		if score := dot(q, v); score > 0 {
			results = append(results, domain.RetrievalResult{Chunk: i.chunks[row], Score: score})
		}
	}
	return rank.TopK(results, k), nil
}

func (i *Index) embedQuery(ctx context.Context, query string) ([]float32, error) {
	key := strings.ToLower(strings.TrimSpace(query))
	if v, ok := i.cache.Get(key); ok {
		return v, nil
	}
	v, err := i.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	v = normalize(v)
	i.cache.Set(key, v)
	return v, nil
}

// Chunks returns the indexed chunks.
func (i *Index) Chunks() []domain.Chunk {
	return i.chunks
}

// State serialises the embedding matrix and model name.
func (i *Index) State() ([]byte, error) {
	return json.Marshal(state{Model: i.model, Vectors: i.vectors})
}

// Close is a no-op; the embedding service is owned by the caller.
func (i *Index) Close() error {
	return nil
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}
	norm := math.Sqrt(sum)
	for n, x := range v {
		out[n] = float32(float64(x) / norm)
	}
	return out
}

func dot(a, b []float32) float64 {
	n := min(len(a), len(b))
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
