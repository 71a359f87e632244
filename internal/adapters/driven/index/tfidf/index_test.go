package tfidf

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
)

func corpus() []domain.Chunk {
	texts := []string{
		"Machine learning is a subset of artificial intelligence.",
		"Deep learning uses neural networks with many layers.",
		"Pasta should be cooked in salted boiling water.",
		"Reinforcement learning agents maximise cumulative reward.",
		"Neural networks approximate functions from data.",
	}
	out := make([]domain.Chunk, len(texts))
	for i, t := range texts {
		out[i] = domain.Chunk{Text: t, DocumentID: "doc", DocumentTitle: "Doc", ChunkIndex: i}
	}
	return out
}

func defaultOpts() Options {
	return OptionsFromSettings(domain.DefaultAppSettings().TFIDF)
}

func TestIndex_Query_RanksBySimilarity(t *testing.T) {
	idx, err := NewBuilder(defaultOpts()).Build(context.Background(), corpus())
	require.NoError(t, err)

	results, err := idx.Query(context.Background(), "neural networks", 3)
	require.NoError(t, err)

	require.Len(t, results, 2)
	for _, r := range results {
		assert.Contains(t, strings.ToLower(r.Chunk.Text), "neural networks")
	}
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	assert.LessOrEqual(t, results[0].Score, 1.0+1e-9)
}

func TestIndex_Query_AtMostKSorted(t *testing.T) {
	idx, err := NewBuilder(defaultOpts()).Build(context.Background(), corpus())
	require.NoError(t, err)

	for _, k := range []int{1, 2, 10} {
		results, err := idx.Query(context.Background(), "learning neural data reward", k)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(results), k)
		for i := 1; i < len(results); i++ {
			assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
		}
	}
}

func TestIndex_Query_ExcludesZeroSimilarity(t *testing.T) {
	idx, err := NewBuilder(defaultOpts()).Build(context.Background(), corpus())
	require.NoError(t, err)

	results, err := idx.Query(context.Background(), "quantum chromodynamics", 5)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = idx.Query(context.Background(), "", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBuilder_Build_Failures(t *testing.T) {
	b := NewBuilder(defaultOpts())

	_, err := b.Build(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrNoChunks)

	_, err = b.Build(context.Background(), []domain.Chunk{{Text: "the and of"}})
	assert.ErrorIs(t, err, domain.ErrEmptyVocabulary)
}

func TestBuilder_Restore_RoundTrip(t *testing.T) {
	b := NewBuilder(defaultOpts())
	original, err := b.Build(context.Background(), corpus())
	require.NoError(t, err)

	state, err := original.State()
	require.NoError(t, err)

	// A builder with different options must still reproduce the saved model.
	restored, err := NewBuilder(Options{MinDF: 3}).Restore(context.Background(), &domain.IndexSnapshot{
		Strategy: domain.StrategyTFIDF,
		Chunks:   original.Chunks(),
		State:    state,
	})
	require.NoError(t, err)

	for _, q := range []string{"neural networks", "learning", "boiling water pasta", "reward agents"} {
		want, err := original.Query(context.Background(), q, 5)
		require.NoError(t, err)
		got, err := restored.Query(context.Background(), q, 5)
		require.NoError(t, err)
		assert.Equal(t, want, got, q)
	}
}

func TestBuilder_Restore_BadState(t *testing.T) {
	b := NewBuilder(defaultOpts())

	_, err := b.Restore(context.Background(), &domain.IndexSnapshot{Chunks: corpus()})
	assert.ErrorIs(t, err, domain.ErrSnapshotMismatch)

	_, err = b.Restore(context.Background(), &domain.IndexSnapshot{Chunks: corpus(), State: []byte("{")})
	assert.Error(t, err)

	original, err := b.Build(context.Background(), corpus())
	require.NoError(t, err)
	state, err := original.State()
	require.NoError(t, err)

	_, err = b.Restore(context.Background(), &domain.IndexSnapshot{Chunks: corpus()[:2], State: state})
	assert.ErrorIs(t, err, domain.ErrSnapshotMismatch)
}

func TestIndex_Query_WithoutVectorizer(t *testing.T) {
	idx := &Index{chunks: corpus()}

	for i := 0; i < 2; i++ {
		results, err := idx.Query(context.Background(), "neural", 5)
		require.NoError(t, err)
		assert.Empty(t, results)
	}

	_, err := idx.State()
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}
