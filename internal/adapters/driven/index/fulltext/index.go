// Package fulltext implements full-text retrieval over an in-memory bleve index.
package fulltext

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/custodia-labs/zotero-rag/internal/adapters/driven/index/rank"
	"github.com/custodia-labs/zotero-rag/internal/core/domain"
	"github.com/custodia-labs/zotero-rag/internal/core/ports/driven"
	"github.com/custodia-labs/zotero-rag/internal/logger"
)

const textField = "text"

// Ensure Builder implements driven.IndexBuilder.
var _ driven.IndexBuilder = (*Builder)(nil)

// Ensure Index implements driven.Index.
var _ driven.Index = (*Index)(nil)

// Builder builds in-memory bleve indexes.
type Builder struct {
	batchSize int
}

// NewBuilder creates a bleve index builder.
func NewBuilder() *Builder {
	return &Builder{batchSize: 500}
}

// Strategy returns the bleve strategy.
func (b *Builder) Strategy() domain.RetrievalStrategy {
	return domain.StrategyBleve
}

// newMapping indexes chunk text with the standard analyzer
// (lower-case, stop words removed, no stemming).
func newMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	textFieldMapping.Store = false
	docMapping.AddFieldMappingsAt(textField, textFieldMapping)

	im.DefaultMapping = docMapping
	im.DefaultAnalyzer = standard.Name
	return im
}

// Build indexes every chunk. Document ids are row numbers.
func (b *Builder) Build(ctx context.Context, chunks []domain.Chunk) (driven.Index, error) {
	if len(chunks) == 0 {
		return nil, domain.ErrNoChunks
	}

	idx, err := bleve.NewMemOnly(newMapping())
	if err != nil {
		return nil, fmt.Errorf("bleve: create index: %w", err)
	}

	batch := idx.NewBatch()
	for i := range chunks {
		if err := batch.Index(strconv.Itoa(i), map[string]any{textField: chunks[i].Text}); err != nil {
			_ = idx.Close()
			return nil, fmt.Errorf("bleve: index chunk %d: %w", i, err)
		}
		if batch.Size() >= b.batchSize || i == len(chunks)-1 {
			if err := ctx.Err(); err != nil {
				_ = idx.Close()
				return nil, err
			}
			if err := idx.Batch(batch); err != nil {
				_ = idx.Close()
				return nil, fmt.Errorf("bleve: flush batch: %w", err)
			}
			batch.Reset()
		}
	}

	logger.Debug("bleve: indexed %d chunks", len(chunks))
	return &Index{index: idx, chunks: rank.CopyChunks(chunks)}, nil
}

// Restore re-indexes the snapshot's chunks. Indexing the same chunks in the
// same order reproduces the original scores.
func (b *Builder) Restore(ctx context.Context, snapshot *domain.IndexSnapshot) (driven.Index, error) {
	return b.Build(ctx, snapshot.Chunks)
}

// Index is an in-memory bleve index over chunk texts.
type Index struct {
	index  bleve.Index
	chunks []domain.Chunk
}

// Strategy returns the bleve strategy.
func (i *Index) Strategy() domain.RetrievalStrategy {
	return domain.StrategyBleve
}

// Query runs a match query over chunk text. Ties keep chunk order.
func (i *Index) Query(ctx context.Context, query string, k int) ([]domain.RetrievalResult, error) {
	if rank.IsBlank(query) || k <= 0 {
		return []domain.RetrievalResult{}, nil
	}

	q := bleve.NewMatchQuery(query)
	q.SetField(textField)
	req := bleve.NewSearchRequest(q)
	// Fetch every hit so ties at the cut-off resolve by chunk order.
	req.Size = len(i.chunks)

	res, err := i.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("bleve: search: %w", err)
	}

	type hit struct {
		row   int
		score float64
	}
	hits := make([]hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		row, err := strconv.Atoi(h.ID)
		if err != nil || row < 0 || row >= len(i.chunks) {
			continue
		}
		hits = append(hits, hit{row: row, score: h.Score})
	}
	sort.Slice(hits, func(a, b int) bool {
		if hits[a].score != hits[b].score {
			return hits[a].score > hits[b].score
		}
		return hits[a].row < hits[b].row
	})
	if len(hits) > k {
		hits = hits[:k]
	}

	results := make([]domain.RetrievalResult, len(hits))
	for n, h := range hits {
		results[n] = domain.RetrievalResult{Chunk: i.chunks[h.row], Score: h.score}
	}
	return results, nil
}

// Chunks returns the indexed chunks.
func (i *Index) Chunks() []domain.Chunk {
	return i.chunks
}

// State returns nil; the index is rebuilt from its chunks on restore.
func (i *Index) State() ([]byte, error) {
	return nil, nil
}

// Close closes the bleve index.
func (i *Index) Close() error {
	return i.index.Close()
}
