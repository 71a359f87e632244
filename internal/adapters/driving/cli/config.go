package cli

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
)

// contextLimitPrefix addresses the per-model context limit table.
const contextLimitPrefix = "budget.context_limits."

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and change configuration",
	Long: `Read and change the settings in ~/.zrag/config.toml.

Examples:
  zrag config get
  zrag config set retrieval.strategy bleve
  zrag config set llm.provider ollama
  zrag config set budget.context_limits.mistral 8000
  zrag config set-key anthropic`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := services.Settings.Set(args[0], args[1]); err != nil {
			return err
		}
		cmd.Printf("%s = %s\n", strings.ToLower(args[0]), args[1])
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show one or all configuration values",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			value, ok := services.Settings.Value(args[0])
			if !ok {
				cmd.Printf("%s is not set\n", args[0])
				return nil
			}
			cmd.Println(formatValue(args[0], value))
			return nil
		}

		for _, key := range services.Settings.Keys() {
			value, ok := services.Settings.Value(key)
			if !ok {
				continue
			}
			cmd.Printf("%s = %s\n", key, formatValue(key, value))
		}
		limits := services.AppSettings.Budget.ContextLimits
		for _, model := range slices.Sorted(maps.Keys(limits)) {
			key := contextLimitPrefix + model
			if _, ok := services.Settings.Value(key); ok {
				cmd.Printf("%s = %d\n", key, limits[model])
			}
		}
		return nil
	},
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key <provider>",
	Short: "Store an API key for anthropic or openai",
	Long: `Prompt for an API key and store it in the config file.
The key is read without echo when stdin is a terminal.

Keys can also come from ANTHROPIC_API_KEY and OPENAI_API_KEY, or a .env
file in the current or config directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider := domain.AIProvider(strings.ToLower(args[0]))
		if !provider.RequiresAPIKey() {
			return fmt.Errorf("%w: %s does not use an API key", domain.ErrInvalidInput, args[0])
		}

		cmd.Printf("Enter API key for %s: ", provider.Description())
		key := readPassword(cmd.InOrStdin())
		cmd.Println()

		if err := services.Settings.SetAPIKey(provider, key); err != nil {
			return err
		}
		cmd.Printf("Saved %s API key %s\n", provider, maskAPIKey(key))
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and ping the configured backends",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := services.Settings.Validate(cmd.Context(), services.AppSettings); err != nil {
			return err
		}
		cmd.Println("Configuration OK")
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Println(services.ConfigPath)
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetKeyCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func formatValue(key string, value any) string {
	s := fmt.Sprint(value)
	if strings.HasSuffix(key, "api_key") {
		return maskAPIKey(s)
	}
	return s
}

// readPassword reads one line from in, without echo when in is a terminal.
func readPassword(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	reader := bufio.NewReader(in)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
