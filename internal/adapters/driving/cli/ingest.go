package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
	"github.com/custodia-labs/zotero-rag/internal/core/ports/driving"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <corpus>",
	Short: "Index a corpus of documents",
	Long: `Load documents from a file or directory and build a new index.

Supported inputs:
  .json        an array of documents, {"documents": [...]} or one document
  .yaml, .yml  a list of documents or one document
  .txt, .md    one document per file, titled by the file name

Each document has id, title, text, authors, year and source fields.
The previous index keeps answering questions until the new one is ready.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rag, err := ragService(ctx)
	if err != nil {
		return err
	}

	docs, err := services.Loader.Load(ctx, args[0])
	if err != nil {
		return fmt.Errorf("load %s: %w", args[0], err)
	}
	if len(docs) == 0 {
		return fmt.Errorf("%w: no documents found in %s", domain.ErrInvalidInput, args[0])
	}

	cmd.Printf("Indexing %d documents...\n", len(docs))
	status, err := ingest(ctx, rag, docs)
	if err != nil {
		return err
	}
	cmd.Printf("Indexed %d chunks from %d documents (generation %s)\n",
		status.ChunkCount, len(docs), status.GenerationID)
	return nil
}

// ingest runs one build over docs and waits for it to finish.
func ingest(ctx context.Context, rag driving.RAGService, docs []domain.Document) (driving.Status, error) {
	result := make(chan bool, 1)
	if err := rag.ProcessDocuments(docs, func(ok bool) { result <- ok }); err != nil {
		return driving.Status{}, err
	}

	select {
	case ok := <-result:
		status := rag.Status()
		if !ok {
			msg := status.LastError
			if msg == "" {
				msg = "unknown error"
			}
			return status, errors.New("indexing failed: " + msg)
		}
		return status, nil
	case <-ctx.Done():
		return driving.Status{}, ctx.Err()
	}
}
