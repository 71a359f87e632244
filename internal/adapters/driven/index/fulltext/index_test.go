package fulltext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
)

func corpus() []domain.Chunk {
	texts := []string{
		"This report mentions Omnisyan and other findings.",
		"The Bayes app is also referenced in the appendix.",
		"Bayesian inference updates beliefs with evidence.",
		"Unrelated text about cooking pasta.",
	}
	out := make([]domain.Chunk, len(texts))
	for i, t := range texts {
		out[i] = domain.Chunk{Text: t, DocumentID: "doc", ChunkIndex: i}
	}
	return out
}

func build(t *testing.T) *Index {
	t.Helper()
	idx, err := NewBuilder().Build(context.Background(), corpus())
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx.(*Index)
}

func TestIndex_Query_FindsContent(t *testing.T) {
	idx := build(t)

	results, err := idx.Query(context.Background(), "Omnisyan", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0, results[0].Chunk.ChunkIndex)
	assert.Greater(t, results[0].Score, 0.0)
}

func TestIndex_Query_NoStemming(t *testing.T) {
	idx := build(t)

	results, err := idx.Query(context.Background(), "bayes", 10)
	require.NoError(t, err)
	require.Len(t, results, 1, "standard analyzer does not stem bayesian")
	assert.Equal(t, 1, results[0].Chunk.ChunkIndex)
}

func TestIndex_Query_AtMostKSorted(t *testing.T) {
	idx := build(t)

	results, err := idx.Query(context.Background(), "bayes bayesian report pasta", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)

	results, err = idx.Query(context.Background(), "  ", 2)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBuilder_Build_NoChunks(t *testing.T) {
	_, err := NewBuilder().Build(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrNoChunks)
}

func TestBuilder_Restore_RoundTrip(t *testing.T) {
	original := build(t)
	state, err := original.State()
	require.NoError(t, err)

	restored, err := NewBuilder().Restore(context.Background(), &domain.IndexSnapshot{
		Strategy: domain.StrategyBleve,
		Chunks:   original.Chunks(),
		State:    state,
	})
	require.NoError(t, err)
	defer restored.Close()

	for _, q := range []string{"bayes", "report findings", "inference evidence pasta"} {
		want, err := original.Query(context.Background(), q, 4)
		require.NoError(t, err)
		got, err := restored.Query(context.Background(), q, 4)
		require.NoError(t, err)
		assert.Equal(t, want, got, q)
	}
}
