package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
)

// syncBuffer guards a bytes.Buffer written by the command goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchCmd_ReindexesOnChange(t *testing.T) {
	ts := setupTestServices(t)
	ts.loader.docs = sampleDocs()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("first"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watchCmd.SetContext(ctx)

	out := &syncBuffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs([]string{"watch", "--debounce", "50ms", dir})

	errc := make(chan error, 1)
	go func() { errc <- rootCmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Watching ")
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, ts.rag.batchCount(), "initial index")
	assert.Contains(t, out.String(), "Indexed "+dir+" (2 chunks)")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("second"), 0o600))

	require.Eventually(t, func() bool {
		return ts.rag.batchCount() >= 2
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatchCmd_InitialIndexError(t *testing.T) {
	setupTestServices(t)

	_, err := run(t, "watch", t.TempDir())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no documents found")
}

func TestReindexer_SkipsWhenBuildRunning(t *testing.T) {
	ts := setupTestServices(t)
	ts.loader.docs = sampleDocs()
	ts.rag.processErr = domain.ErrProcessingInProgress

	r := &reindexer{rag: ts.rag, dir: "/corpus"}

	assert.NoError(t, r.reindex(context.Background()))
}
