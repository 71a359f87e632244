// Package index selects the retrieval backend for a configured strategy.
package index

import (
	"fmt"

	"github.com/custodia-labs/zotero-rag/internal/adapters/driven/index/dense"
	"github.com/custodia-labs/zotero-rag/internal/adapters/driven/index/fulltext"
	"github.com/custodia-labs/zotero-rag/internal/adapters/driven/index/keyword"
	"github.com/custodia-labs/zotero-rag/internal/adapters/driven/index/tfidf"
	"github.com/custodia-labs/zotero-rag/internal/core/domain"
	"github.com/custodia-labs/zotero-rag/internal/core/ports/driven"
)

// NewBuilder returns the index builder for settings.Retrieval.Strategy.
// embedder is only used by the dense strategy and may be nil otherwise.
func NewBuilder(settings *domain.AppSettings, embedder driven.EmbeddingService) (driven.IndexBuilder, error) {
	switch settings.Retrieval.Strategy {
	case domain.StrategyKeyword:
		return keyword.NewBuilder(), nil

	case domain.StrategyTFIDF, "":
		return tfidf.NewBuilder(tfidf.OptionsFromSettings(settings.TFIDF)), nil

	case domain.StrategyBleve:
		return fulltext.NewBuilder(), nil

	case domain.StrategyDense:
		if embedder == nil {
			return nil, fmt.Errorf("%w: dense retrieval needs an embedding provider", domain.ErrEmbeddingUnavailable)
		}
		return dense.NewBuilder(embedder, dense.WithQueryCacheSize(settings.Retrieval.CacheSize)), nil

	default:
		return nil, fmt.Errorf("%w: retrieval strategy %q", domain.ErrUnsupportedType, settings.Retrieval.Strategy)
	}
}
