package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models installed in the local Ollama server",
	Args:  cobra.NoArgs,
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, _ []string) error {
	if services.Models == nil {
		return errors.New("model listing is not available")
	}

	models, err := services.Models.ListModels(cmd.Context())
	if err != nil {
		return err
	}
	if len(models) == 0 {
		cmd.Println("No models installed. Pull one with 'ollama pull llama3.2:3b'.")
		return nil
	}

	current := services.AppSettings.LLM.Model
	for _, name := range models {
		marker := "  "
		if name == current {
			marker = "* "
		}
		cmd.Println(marker + name)
	}
	return nil
}
