package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/zotero-rag/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/zotero-rag/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the index over HTTP",
	Long: `Start a JSON HTTP API over the index.

Endpoints:
  POST /v1/documents   ingest a batch of documents (202 Accepted)
  POST /v1/ask         {"question": "..."} -> {"answer": "...", "ready": true}
  GET  /v1/retrieve    ?q=<query>&k=<n>
  GET  /v1/status
  GET  /healthz`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", httpapi.DefaultAddr, "Listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	rag, err := ragService(cmd.Context())
	if err != nil {
		return err
	}

	server := httpapi.NewServer(rag, httpapi.WithLogger(logger.Zap()))
	cmd.Printf("HTTP API listening on http://%s\n", serveAddr)
	return server.ListenAndServe(cmd.Context(), serveAddr)
}
