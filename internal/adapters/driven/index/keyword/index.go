// Package keyword implements the keyword-overlap retrieval baseline.
//
// A chunk scores the number of distinct lower-cased, whitespace-separated
// query words that occur anywhere in its lower-cased text (substring match).
// Chunks scoring zero are excluded and ties keep chunk order.
package keyword

import (
	"context"
	"strings"

	"github.com/custodia-labs/zotero-rag/internal/adapters/driven/index/rank"
	"github.com/custodia-labs/zotero-rag/internal/core/domain"
	"github.com/custodia-labs/zotero-rag/internal/core/ports/driven"
)

// Ensure Builder implements driven.IndexBuilder.
var _ driven.IndexBuilder = (*Builder)(nil)

// Ensure Index implements driven.Index.
var _ driven.Index = (*Index)(nil)

// Builder builds keyword indexes. It has no fitted state.
type Builder struct{}

// NewBuilder creates a keyword index builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Strategy returns the keyword strategy.
func (b *Builder) Strategy() domain.RetrievalStrategy {
	return domain.StrategyKeyword
}

// Build indexes chunks.
func (b *Builder) Build(ctx context.Context, chunks []domain.Chunk) (driven.Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, domain.ErrNoChunks
	}

	idx := &Index{
		chunks:  rank.CopyChunks(chunks),
		lowered: make([]string, len(chunks)),
	}
	for i := range chunks {
		idx.lowered[i] = strings.ToLower(chunks[i].Text)
	}
	return idx, nil
}

// Restore rebuilds the index from the snapshot's chunks.
func (b *Builder) Restore(ctx context.Context, snapshot *domain.IndexSnapshot) (driven.Index, error) {
	return b.Build(ctx, snapshot.Chunks)
}

// Index is a keyword-overlap index.
type Index struct {
	chunks  []domain.Chunk
	lowered []string
}

// Strategy returns the keyword strategy.
func (i *Index) Strategy() domain.RetrievalStrategy {
	return domain.StrategyKeyword
}

// Query scores every chunk by distinct query words contained.
func (i *Index) Query(_ context.Context, query string, k int) ([]domain.RetrievalResult, error) {
	words := distinctWords(query)
	if len(words) == 0 {
		return []domain.RetrievalResult{}, nil
	}

	var results []domain.RetrievalResult
	for row, text := range i.lowered {
		score := 0
		for _, w := range words {
			if strings.Contains(text, w) {
				score++
			}
		}
		if score > 0 {
			results = append(results, domain.RetrievalResult{Chunk: i.chunks[row], Score: float64(score)})
		}
	}
	return rank.TopK(results, k), nil
}

// Chunks returns the indexed chunks.
func (i *Index) Chunks() []domain.Chunk {
	return i.chunks
}

// State returns nil; the keyword index is rebuilt from its chunks.
func (i *Index) State() ([]byte, error) {
	return nil, nil
}

// Close is a no-op.
func (i *Index) Close() error {
	return nil
}

func distinctWords(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	seen := make(map[string]struct{}, len(fields))
	words := fields[:0]
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		words = append(words, f)
	}
	return words
}
