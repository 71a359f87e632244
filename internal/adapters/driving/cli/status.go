package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the index and the generation backend",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var statusTitles bool

func init() {
	statusCmd.Flags().BoolVar(&statusTitles, "titles", false, "List the titles of the indexed documents")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	rag, err := ragService(cmd.Context())
	if err != nil {
		return err
	}
	status := rag.Status()

	cmd.Printf("State:      %s\n", status.State)
	cmd.Printf("Strategy:   %s\n", status.Strategy.Description())
	if status.Ready {
		cmd.Printf("Generation: %s\n", status.GenerationID)
		cmd.Printf("Built:      %s\n", status.BuiltAt.Local().Format(time.DateTime))
		cmd.Printf("Chunks:     %d\n", status.ChunkCount)
		cmd.Printf("Documents:  %d\n", len(status.Titles))
	} else {
		cmd.Println("Index:      none (run 'zrag ingest <corpus>')")
	}

	backend := status.Backend
	if backend == "" {
		backend = domain.AIProviderNone
	}
	cmd.Printf("Backend:    %s\n", backend.Description())
	if status.Model != "" {
		cmd.Printf("Model:      %s\n", status.Model)
	}
	if status.LastError != "" {
		cmd.Printf("Last error: %s\n", status.LastError)
	}
	if services.ConfigPath != "" {
		cmd.Printf("Config:     %s\n", services.ConfigPath)
	}

	if statusTitles && len(status.Titles) > 0 {
		cmd.Println()
		for i, title := range status.Titles {
			cmd.Printf("%3d. %s\n", i+1, title)
		}
	}
	return nil
}
