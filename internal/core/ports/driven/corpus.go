package driven

import (
	"context"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
)

// DocumentLoader reads an ingestion batch from some location.
// Documents are returned in a stable order.
type DocumentLoader interface {
	Load(ctx context.Context, location string) ([]domain.Document, error)
}
