package driving

import (
	"context"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
)

// SettingsService reads and writes individual configuration keys.
type SettingsService interface {
	// Keys lists every settable key, sorted.
	Keys() []string

	// Value returns the stored value for key.
	Value(key string) (any, bool)

	// Set parses value for key and persists it.
	// Returns domain.ErrInvalidInput for unknown keys or unparseable values.
	Set(key, value string) error

	// SetAPIKey stores the API key used by provider.
	SetAPIKey(provider domain.AIProvider, key string) error

	// Validate checks settings for consistency and pings configured backends.
	Validate(ctx context.Context, settings domain.AppSettings) error
}
