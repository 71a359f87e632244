package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
)

func TestAskCmd_JoinsQuestion(t *testing.T) {
	ts := setupTestServices(t)
	ts.rag.answer = "Attention lets every token look at every other token."

	out, err := run(t, "ask", "what", "is", "attention?")

	require.NoError(t, err)
	assert.Equal(t, "what is attention?", ts.rag.lastQuery)
	assert.Equal(t, "Attention lets every token look at every other token.\n", out)
	assert.Empty(t, ts.rag.systemPrompt)
}

func TestAskCmd_SystemPrompt(t *testing.T) {
	ts := setupTestServices(t)
	ts.rag.answer = "Yes."

	_, err := run(t, "ask", "--system", "Answer in one word.", "is it good")

	require.NoError(t, err)
	assert.Equal(t, "Answer in one word.", ts.rag.systemPrompt)
}

func TestAskCmd_NotReadyMessagePassesThrough(t *testing.T) {
	ts := setupTestServices(t)
	ts.rag.answer = domain.MsgStillProcessing

	out, err := run(t, "ask", "anything")

	require.NoError(t, err)
	assert.Contains(t, out, domain.MsgStillProcessing)
}

func retrievedResults() []domain.RetrievalResult {
	return []domain.RetrievalResult{
		{Chunk: domain.Chunk{Text: "Machine learning is a field of study.", DocumentTitle: "ML Intro", DocumentID: "ml", ChunkIndex: 0}, Score: 2},
		{Chunk: domain.Chunk{Text: "Deep   learning\nuses networks.", DocumentTitle: "DL", DocumentID: "dl", ChunkIndex: 3}, Score: 1},
	}
}

func TestRetrieveCmd_Text(t *testing.T) {
	ts := setupTestServices(t)
	ts.rag.ready = true
	ts.rag.results = retrievedResults()

	out, err := run(t, "retrieve", "machine", "learning")

	require.NoError(t, err)
	assert.Equal(t, "machine learning", ts.rag.lastQuery)
	assert.Equal(t, 5, ts.rag.lastK, "defaults to retrieval.top_k")
	assert.Contains(t, out, "1. [2.000] ML Intro (chunk 0)")
	assert.Contains(t, out, "2. [1.000] DL (chunk 3)")
	assert.Contains(t, out, "   Deep learning uses networks.")
}

func TestRetrieveCmd_JSON(t *testing.T) {
	ts := setupTestServices(t)
	ts.rag.results = retrievedResults()

	out, err := run(t, "retrieve", "--json", "--k", "2", "learning")

	require.NoError(t, err)
	assert.Equal(t, 2, ts.rag.lastK)

	var got []retrievedChunk
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, retrievedChunk{Rank: 1, Score: 2, Title: "ML Intro", DocumentID: "ml", ChunkIndex: 0,
		Text: "Machine learning is a field of study."}, got[0])
}

func TestRetrieveCmd_JSONEmptyIsArray(t *testing.T) {
	setupTestServices(t)

	out, err := run(t, "retrieve", "--json", "nothing")

	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestRetrieveCmd_NoResults(t *testing.T) {
	t.Run("not ready", func(t *testing.T) {
		setupTestServices(t)

		out, err := run(t, "retrieve", "anything")

		require.NoError(t, err)
		assert.Contains(t, out, domain.MsgStillProcessing)
	})

	t.Run("ready", func(t *testing.T) {
		ts := setupTestServices(t)
		ts.rag.ready = true

		out, err := run(t, "retrieve", "anything")

		require.NoError(t, err)
		assert.Contains(t, out, "No matching chunks.")
	})
}

func TestRetrieveCmd_NegativeK(t *testing.T) {
	setupTestServices(t)

	_, err := run(t, "retrieve", "--k=-1", "q")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "a b c", preview("a\n b\t\tc", 10))
	assert.Equal(t, "héllo...", preview("héllo wörld", 5))
}
