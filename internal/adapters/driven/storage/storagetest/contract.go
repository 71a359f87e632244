// Package storagetest holds the behaviour every driven.SnapshotStore must share.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
	"github.com/custodia-labs/zotero-rag/internal/core/ports/driven"
)

// Sample returns a small snapshot with every field populated.
func Sample(generation string) *domain.IndexSnapshot {
	docs := []domain.Document{
		{ID: "ABCD1234", Title: "Attention Is All You Need", Text: "Transformers use attention.",
			Authors: []string{"Vaswani", "Shazeer"}, Year: "2017", Source: "zotero"},
		{ID: "EMPTY", Title: "", Text: ""},
	}
	chunk := domain.NewChunk(&docs[0], "Transformers use attention.", 0)

	return &domain.IndexSnapshot{
		Strategy:     domain.StrategyTFIDF,
		GenerationID: generation,
		CreatedAt:    time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC),
		Chunks:       []domain.Chunk{chunk},
		State:        []byte(`{"vocabulary":{"attention":0}}`),
		Metadata:     domain.NewSnapshotMetadata(docs),
	}
}

// Run exercises store against the SnapshotStore contract.
// newStore must return an empty store each time it is called.
func Run(t *testing.T, newStore func(t *testing.T) driven.SnapshotStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		store := newStore(t)

		exists, err := store.Exists(ctx)
		require.NoError(t, err)
		assert.False(t, exists)

		_, err = store.Load(ctx)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)

		assert.NoError(t, store.Clear(ctx))
	})

	t.Run("save and load", func(t *testing.T) {
		store := newStore(t)
		want := Sample("gen-1")

		require.NoError(t, store.Save(ctx, want))

		exists, err := store.Exists(ctx)
		require.NoError(t, err)
		assert.True(t, exists)

		got, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, want.Strategy, got.Strategy)
		assert.Equal(t, want.GenerationID, got.GenerationID)
		assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
		assert.Equal(t, want.Chunks, got.Chunks)
		assert.Equal(t, want.State, got.State)
		assert.Equal(t, want.Metadata, got.Metadata)
		assert.Equal(t, []string{"Attention Is All You Need", domain.UntitledDocument}, got.Metadata.Titles)
	})

	t.Run("save replaces previous", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Save(ctx, Sample("gen-1")))

		second := Sample("gen-2")
		second.Strategy = domain.StrategyKeyword
		second.State = nil
		require.NoError(t, store.Save(ctx, second))

		got, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "gen-2", got.GenerationID)
		assert.Equal(t, domain.StrategyKeyword, got.Strategy)
		assert.Empty(t, got.State)
	})

	t.Run("clear", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Save(ctx, Sample("gen-1")))
		require.NoError(t, store.Clear(ctx))

		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("nil snapshot", func(t *testing.T) {
		store := newStore(t)
		assert.ErrorIs(t, store.Save(ctx, nil), domain.ErrInvalidInput)
	})
}
