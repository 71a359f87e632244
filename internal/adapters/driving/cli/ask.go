package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
)

// previewLength is the number of characters of chunk text shown by retrieve.
const previewLength = 200

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question from the indexed documents",
	Long: `Retrieve the most relevant chunks for a question and generate an answer
with the configured model. Without a model the answer is built from the
best matching paragraphs.

Examples:
  zrag ask "What datasets were used?"
  zrag ask --system "Answer in one sentence." what is attention`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var retrieveCmd = &cobra.Command{
	Use:   "retrieve <query>",
	Short: "Show the chunks that best match a query",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRetrieve,
}

var (
	askSystemPrompt string
	retrieveK       int
	retrieveJSON    bool
)

func init() {
	askCmd.Flags().StringVar(&askSystemPrompt, "system", "", "Override the system prompt for this question")
	retrieveCmd.Flags().IntVar(&retrieveK, "k", 0, "Number of chunks to return (default retrieval.top_k)")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "Print results as JSON")
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(retrieveCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	rag, err := ragService(cmd.Context())
	if err != nil {
		return err
	}
	if askSystemPrompt != "" {
		rag.SetSystemPrompt(askSystemPrompt)
	}

	answer := rag.GenerateResponse(cmd.Context(), strings.Join(args, " "))
	cmd.Println(answer)
	return nil
}

// retrievedChunk is the JSON shape of one retrieve result.
type retrievedChunk struct {
	Rank       int     `json:"rank"`
	Score      float64 `json:"score"`
	Title      string  `json:"title"`
	DocumentID string  `json:"document_id"`
	ChunkIndex int     `json:"chunk_index"`
	Text       string  `json:"text"`
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	rag, err := ragService(cmd.Context())
	if err != nil {
		return err
	}

	k := retrieveK
	if k < 0 {
		return fmt.Errorf("%w: --k must be positive", domain.ErrInvalidInput)
	}
	if k == 0 {
		k = services.AppSettings.Retrieval.TopK
	}

	results := rag.RetrieveRelevantDocuments(cmd.Context(), strings.Join(args, " "), k)

	if retrieveJSON {
		out := make([]retrievedChunk, 0, len(results))
		for i, r := range results {
			out = append(out, retrievedChunk{
				Rank:       i + 1,
				Score:      r.Score,
				Title:      r.Chunk.DocumentTitle,
				DocumentID: r.Chunk.DocumentID,
				ChunkIndex: r.Chunk.ChunkIndex,
				Text:       r.Chunk.Text,
			})
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(results) == 0 {
		if !rag.IsReady() {
			cmd.Println(domain.MsgStillProcessing)
			return nil
		}
		cmd.Println("No matching chunks.")
		return nil
	}
	for i, r := range results {
		cmd.Printf("%d. [%.3f] %s (chunk %d)\n", i+1, r.Score, r.Chunk.DocumentTitle, r.Chunk.ChunkIndex)
		cmd.Printf("   %s\n", preview(r.Chunk.Text, previewLength))
	}
	return nil
}

// preview flattens whitespace and cuts text to at most n runes.
func preview(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
