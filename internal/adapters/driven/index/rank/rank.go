// Package rank holds ranking helpers shared by the index backends.
package rank

import (
	"sort"
	"strings"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
)

// TopK sorts results by non-increasing score, keeping input order among
// equal scores, and returns at most k of them. k <= 0 yields no results.
func TopK(results []domain.RetrievalResult, k int) []domain.RetrievalResult {
	if k <= 0 || len(results) == 0 {
		return []domain.RetrievalResult{}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results
}

// IsBlank reports whether a query has no searchable content.
func IsBlank(query string) bool {
	return strings.TrimSpace(query) == ""
}

// CopyChunks returns a copy of chunks so an index owns its row list.
func CopyChunks(chunks []domain.Chunk) []domain.Chunk {
	out := make([]domain.Chunk, len(chunks))
	copy(out, chunks)
	return out
}
