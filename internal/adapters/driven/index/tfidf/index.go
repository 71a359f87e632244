// Package tfidf implements a TF-IDF cosine-similarity retrieval backend.
// The vectorizer is fitted once per build; queries are transformed with the
// same fitted vocabulary and never refit.
package tfidf

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/custodia-labs/zotero-rag/internal/adapters/driven/index/rank"
	"github.com/custodia-labs/zotero-rag/internal/core/domain"
	"github.com/custodia-labs/zotero-rag/internal/core/ports/driven"
	"github.com/custodia-labs/zotero-rag/internal/logger"
)

// Ensure Builder implements driven.IndexBuilder.
var _ driven.IndexBuilder = (*Builder)(nil)

// Ensure Index implements driven.Index.
var _ driven.Index = (*Index)(nil)

// Builder fits TF-IDF indexes.
type Builder struct {
	opts Options
}

// NewBuilder creates a TF-IDF index builder.
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts}
}

// Strategy returns the tfidf strategy.
func (b *Builder) Strategy() domain.RetrievalStrategy {
	return domain.StrategyTFIDF
}

// Build fits the vectorizer over the chunk texts and vectorizes every row.
func (b *Builder) Build(ctx context.Context, chunks []domain.Chunk) (driven.Index, error) {
	if len(chunks) == 0 {
		return nil, domain.ErrNoChunks
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}

	vec, err := Fit(texts, b.opts)
	if err != nil {
		return nil, fmt.Errorf("tfidf: fit vectorizer: %w", err)
	}

	rows := make([]SparseVector, len(texts))
	for i, text := range texts {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rows[i] = vec.Transform(text)
	}

	logger.Debug("tfidf: %d rows, vocabulary %d", len(rows), vec.Size())
	return &Index{chunks: rank.CopyChunks(chunks), vec: vec, rows: rows}, nil
}

// Restore loads the persisted vectorizer and matrix without refitting.
func (b *Builder) Restore(_ context.Context, snapshot *domain.IndexSnapshot) (driven.Index, error) {
	if len(snapshot.State) == 0 {
		return nil, fmt.Errorf("tfidf: %w: snapshot has no vectorizer state", domain.ErrSnapshotMismatch)
	}

	var st state
	if err := json.Unmarshal(snapshot.State, &st); err != nil {
		return nil, fmt.Errorf("tfidf: decode state: %w", err)
	}
	if st.Vectorizer == nil || len(st.Vectorizer.IDF) == 0 {
		return nil, fmt.Errorf("tfidf: %w", domain.ErrEmptyVocabulary)
	}
	if len(st.Rows) != len(snapshot.Chunks) {
		return nil, fmt.Errorf("tfidf: %w: %d rows for %d chunks",
			domain.ErrSnapshotMismatch, len(st.Rows), len(snapshot.Chunks))
	}

	return &Index{chunks: rank.CopyChunks(snapshot.Chunks), vec: st.Vectorizer, rows: st.Rows}, nil
}

// state is the persisted form of a TF-IDF index.
type state struct {
	Vectorizer *Vectorizer    `json:"vectorizer"`
	Rows       []SparseVector `json:"rows"`
}

// Index is a fitted TF-IDF index. Row i of the matrix is chunks[i].
type Index struct {
	chunks []domain.Chunk
	vec    *Vectorizer
	rows   []SparseVector

	warnOnce sync.Once
}

// Strategy returns the tfidf strategy.
func (i *Index) Strategy() domain.RetrievalStrategy {
	return domain.StrategyTFIDF
}

// Query ranks chunks by cosine similarity to the query vector.
// Chunks with zero similarity are excluded.
func (i *Index) Query(_ context.Context, query string, k int) ([]domain.RetrievalResult, error) {
	if i.vec == nil {
		i.warnOnce.Do(func() {
			logger.Warn("tfidf: vectorizer unavailable, returning no results")
		})
		return []domain.RetrievalResult{}, nil
	}
	if rank.IsBlank(query) {
		return []domain.RetrievalResult{}, nil
	}

	q := i.vec.Transform(query)
	if len(q.Indices) == 0 {
		return []domain.RetrievalResult{}, nil
	}

	var results []domain.RetrievalResult
	for row := range i.rows {
		if score := q.Dot(i.rows[row]); score > 0 {
			results = append(results, domain.RetrievalResult{Chunk: i.chunks[row], Score: score})
		}
	}
	return rank.TopK(results, k), nil
}

// Chunks returns the indexed chunks.
func (i *Index) Chunks() []domain.Chunk {
	return i.chunks
}

// State serialises the vectorizer and document matrix.
func (i *Index) State() ([]byte, error) {
	if i.vec == nil {
		return nil, domain.ErrIndexUnavailable
	}
	return json.Marshal(state{Vectorizer: i.vec, Rows: i.rows})
}

// Close is a no-op.
func (i *Index) Close() error {
	return nil
}
