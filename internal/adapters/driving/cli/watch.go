package cli

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/zotero-rag/internal/adapters/driven/corpus"
	"github.com/custodia-labs/zotero-rag/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/zotero-rag/internal/core/domain"
	"github.com/custodia-labs/zotero-rag/internal/core/ports/driving"
	"github.com/custodia-labs/zotero-rag/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Index a directory and rebuild when it changes",
	Long: `Index every supported file under dir, then watch the tree and rebuild
the index after changes settle. Questions keep being answered from the
previous index while a rebuild runs.

With --addr the HTTP API is served alongside the watcher.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

var (
	watchDebounce time.Duration
	watchAddr     string
)

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", corpus.DefaultDebounce, "Quiet period before a rebuild")
	watchCmd.Flags().StringVar(&watchAddr, "addr", "", "Also serve the HTTP API on this address")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dir := args[0]

	rag, err := ragService(ctx)
	if err != nil {
		return err
	}

	r := &reindexer{rag: rag, dir: dir}
	if err := r.reindex(ctx); err != nil {
		return err
	}
	cmd.Printf("Indexed %s (%d chunks)\n", dir, rag.Status().ChunkCount)

	watcher := corpus.NewWatcher(dir, func() {
		if err := r.reindex(ctx); err != nil {
			logger.Warn("reindex %s: %v", dir, err)
			return
		}
		logger.Info("reindexed %s (%d chunks)", dir, rag.Status().ChunkCount)
	}, corpus.WithDebounce(watchDebounce), corpus.WithLogger(logger.Zap()))
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	errc := make(chan error, 1)
	if watchAddr != "" {
		server := httpapi.NewServer(rag, httpapi.WithLogger(logger.Zap()))
		go func() { errc <- server.ListenAndServe(ctx, watchAddr) }()
		cmd.Printf("HTTP API listening on http://%s\n", watchAddr)
	}

	cmd.Printf("Watching %s for changes (Ctrl+C to stop)\n", dir)
	select {
	case <-ctx.Done():
		return nil
	case err := <-errc:
		return err
	case <-watcher.Done():
		return nil
	}
}

// reindexer serialises rebuilds of one directory.
type reindexer struct {
	mu  sync.Mutex
	rag driving.RAGService
	dir string
}

func (r *reindexer) reindex(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// A build started elsewhere (HTTP ingest) must finish first.
	if err := r.rag.Wait(ctx); err != nil {
		return err
	}

	docs, err := services.Loader.Load(ctx, r.dir)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return errors.New("no documents found in " + r.dir)
	}

	_, err = ingest(ctx, r.rag, docs)
	if errors.Is(err, domain.ErrProcessingInProgress) {
		logger.Debug("build already running; skipping reindex of %s", r.dir)
		return nil
	}
	return err
}
