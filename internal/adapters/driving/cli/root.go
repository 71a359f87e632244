// Package cli implements the zrag command line.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/zotero-rag/internal/core/domain"
	"github.com/custodia-labs/zotero-rag/internal/core/ports/driven"
	"github.com/custodia-labs/zotero-rag/internal/core/ports/driving"
	"github.com/custodia-labs/zotero-rag/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

// skipServices marks commands that run without bootstrapping.
const skipServices = "skip-services"

// Options carries the global flags into the bootstrap.
type Options struct {
	ConfigDir string
	DataDir   string
}

// Services holds the ports the commands drive.
type Services struct {
	Settings    driving.SettingsService
	AppSettings domain.AppSettings
	ConfigPath  string
	Loader      driven.DocumentLoader
	Models      driven.ModelLister

	// RAG is nil until OpenRAG has run, unless preset.
	RAG driving.RAGService

	// OpenRAG builds the index pipeline and restores the saved index.
	OpenRAG func(ctx context.Context) (driving.RAGService, error)

	// Close releases everything the bootstrap opened.
	Close func()
}

// BootstrapFunc builds the services for one invocation.
type BootstrapFunc func(ctx context.Context, opts Options) (*Services, error)

var (
	bootstrap BootstrapFunc
	services  *Services

	verbose   bool
	configDir string
	dataDir   string
)

var errNoBootstrap = errors.New("cli: no bootstrap configured")

// SetBootstrap installs the function that wires the adapters.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

var rootCmd = &cobra.Command{
	Use:   "zrag",
	Short: "Ask questions about a document library",
	Long: `zrag indexes a corpus of documents and answers questions about it,
using a local Ollama model, OpenAI, Anthropic or a keyword fallback.

Get started:
  zrag ingest ~/papers
  zrag ask "What does the survey conclude about transfer learning?"`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if cmd.Annotations[skipServices] == "true" {
			return nil
		}
		return ensureServices(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Configuration directory (default ~/.zrag)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Index data directory (default <config-dir>/data)")
}

// Execute runs the root command and releases services on return.
func Execute(ctx context.Context) error {
	defer closeServices()
	return rootCmd.ExecuteContext(ctx)
}

func ensureServices(ctx context.Context) error {
	if services != nil {
		return nil
	}
	if bootstrap == nil {
		return errNoBootstrap
	}
	svc, err := bootstrap(ctx, Options{ConfigDir: configDir, DataDir: dataDir})
	if err != nil {
		return err
	}
	services = svc
	return nil
}

func closeServices() {
	if services != nil && services.Close != nil {
		services.Close()
	}
	services = nil
}

// ragService returns the RAG service, opening it on first use.
func ragService(ctx context.Context) (driving.RAGService, error) {
	if services == nil {
		return nil, errNoBootstrap
	}
	if services.RAG != nil {
		return services.RAG, nil
	}
	if services.OpenRAG == nil {
		return nil, errors.New("cli: RAG service not available")
	}
	rag, err := services.OpenRAG(ctx)
	if err != nil {
		return nil, err
	}
	services.RAG = rag
	return rag, nil
}
