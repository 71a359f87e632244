package tfidf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
)

func TestAnalyze(t *testing.T) {
	got := analyze("The Neural networks, of the brain!", 2)

	assert.Equal(t, []string{
		"neural", "networks", "brain",
		"neural networks", "networks brain",
	}, got)
}

func TestAnalyze_DropsSingleCharacters(t *testing.T) {
	assert.Equal(t, []string{"x2", "go"}, analyze("a x2 b go", 1))
}

func TestFit_SmoothedIDF(t *testing.T) {
	v, err := Fit([]string{"apple banana", "apple cherry"}, Options{NGramMax: 1})
	require.NoError(t, err)

	require.Equal(t, 3, v.Size())
	apple := v.Vocabulary["apple"]
	banana := v.Vocabulary["banana"]

	// apple appears in both docs: ln(3/3)+1 = 1; banana in one: ln(3/2)+1.
	assert.InDelta(t, 1.0, v.IDF[apple], 1e-12)
	assert.InDelta(t, math.Log(1.5)+1, v.IDF[banana], 1e-12)
}

func TestFit_VocabularyFilters(t *testing.T) {
	docs := []string{"common rare1", "common rare2", "common shared", "shared other"}

	t.Run("min_df", func(t *testing.T) {
		v, err := Fit(docs, Options{MinDF: 2, NGramMax: 1})
		require.NoError(t, err)
		assert.Len(t, v.Vocabulary, 2)
		assert.Contains(t, v.Vocabulary, "common")
		assert.Contains(t, v.Vocabulary, "shared")
	})

	t.Run("max_df", func(t *testing.T) {
		v, err := Fit(docs, Options{MaxDF: 0.5, NGramMax: 1})
		require.NoError(t, err)
		assert.NotContains(t, v.Vocabulary, "common")
		assert.Contains(t, v.Vocabulary, "shared")
	})

	t.Run("max_features keeps most frequent", func(t *testing.T) {
		v, err := Fit(docs, Options{MaxFeatures: 1, NGramMax: 1})
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"common": 0}, v.Vocabulary)
	})
}

func TestFit_Errors(t *testing.T) {
	_, err := Fit(nil, Options{})
	assert.ErrorIs(t, err, domain.ErrNoChunks)

	_, err = Fit([]string{"the of and", "a an"}, Options{})
	assert.ErrorIs(t, err, domain.ErrEmptyVocabulary)
}

func TestTransform_Normalized(t *testing.T) {
	v, err := Fit([]string{"graph neural network", "graph database"}, Options{NGramMax: 2})
	require.NoError(t, err)

	vec := v.Transform("graph neural network graph")

	var norm float64
	for _, x := range vec.Values {
		norm += x * x
	}
	assert.InDelta(t, 1.0, norm, 1e-9)
	assert.IsIncreasing(t, vec.Indices)

	assert.Empty(t, v.Transform("completely unknown words").Indices)
}

func TestSparseVector_Dot(t *testing.T) {
	a := SparseVector{Indices: []int{0, 2, 5}, Values: []float64{1, 2, 3}}
	b := SparseVector{Indices: []int{2, 3, 5}, Values: []float64{4, 1, 2}}

	assert.InDelta(t, 2*4+3*2, a.Dot(b), 1e-12)
	assert.Zero(t, a.Dot(SparseVector{}))
}
