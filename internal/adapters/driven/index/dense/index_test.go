package dense

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
)

func corpus() []domain.Chunk {
	texts := []string{
		"Neural network training.",
		"Boil pasta in water.",
		"Learning with a neural network and more neural layers.",
	}
	out := make([]domain.Chunk, len(texts))
	for i, t := range texts {
		out[i] = domain.Chunk{Text: t, ChunkIndex: i}
	}
	return out
}

func TestIndex_Query_Cosine(t *testing.T) {
	idx, err := NewBuilder(newMockEmbedder(), WithBatchSize(2)).Build(context.Background(), corpus())
	require.NoError(t, err)

	results, err := idx.Query(context.Background(), "neural network", 5)
	require.NoError(t, err)

	require.Len(t, results, 2, "the pasta chunk is orthogonal")
	assert.Equal(t, 0, results[0].Chunk.ChunkIndex)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestIndex_Query_CachesQueryEmbeddings(t *testing.T) {
	emb := newMockEmbedder()
	idx, err := NewBuilder(emb).Build(context.Background(), corpus())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := idx.Query(context.Background(), "Pasta water", 2)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, emb.calls)
}

func TestIndex_Query_EmbedderDown(t *testing.T) {
	emb := newMockEmbedder()
	idx, err := NewBuilder(emb).Build(context.Background(), corpus())
	require.NoError(t, err)

	emb.err = errEmbedDown
	results, err := idx.Query(context.Background(), "neural", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBuilder_Build_Failures(t *testing.T) {
	_, err := NewBuilder(nil).Build(context.Background(), corpus())
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	_, err = NewBuilder(newMockEmbedder()).Build(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrNoChunks)

	emb := newMockEmbedder()
	emb.err = errEmbedDown
	_, err = NewBuilder(emb).Build(context.Background(), corpus())
	assert.ErrorIs(t, err, errEmbedDown)
}

func TestBuilder_Restore_RoundTrip(t *testing.T) {
	b := NewBuilder(newMockEmbedder())
	original, err := b.Build(context.Background(), corpus())
	require.NoError(t, err)

	state, err := original.State()
	require.NoError(t, err)

	restored, err := b.Restore(context.Background(), &domain.IndexSnapshot{
		Strategy: domain.StrategyDense,
		Chunks:   original.Chunks(),
		State:    state,
	})
	require.NoError(t, err)

	for _, q := range []string{"neural", "pasta water", "learning network"} {
		want, err := original.Query(context.Background(), q, 3)
		require.NoError(t, err)
		got, err := restored.Query(context.Background(), q, 3)
		require.NoError(t, err)
		assert.Equal(t, want, got, q)
	}
}

func TestBuilder_Restore_ModelMismatch(t *testing.T) {
	original, err := NewBuilder(newMockEmbedder()).Build(context.Background(), corpus())
	require.NoError(t, err)
	state, err := original.State()
	require.NoError(t, err)

	other := newMockEmbedder()
	other.model = "other-model"
	_, err = NewBuilder(other).Restore(context.Background(), &domain.IndexSnapshot{Chunks: corpus(), State: state})
	assert.ErrorIs(t, err, domain.ErrSnapshotMismatch)
}

func TestBuilder_Restore_WithoutEmbedder(t *testing.T) {
	original, err := NewBuilder(newMockEmbedder()).Build(context.Background(), corpus())
	require.NoError(t, err)
	state, err := original.State()
	require.NoError(t, err)

	restored, err := NewBuilder(nil).Restore(context.Background(), &domain.IndexSnapshot{Chunks: corpus(), State: state})
	require.NoError(t, err)

	results, err := restored.Query(context.Background(), "neural", 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}
