package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/zotero-rag/internal/adapters/driving/mcp"
	"github.com/custodia-labs/zotero-rag/internal/core/domain"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the library to AI assistants over MCP",
	Long: `Serve the indexed library to MCP clients.

Without --port the server speaks JSON-RPC on stdin/stdout, which is what
desktop assistants launch. With --port it serves streamable HTTP instead,
bound to --host.

Tools:     ask, retrieve
Resources: zrag://status, zrag://documents/{index}

Assistant configuration:
  {
    "mcpServers": {
      "zotero": {
        "command": "/path/to/zrag",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

var (
	mcpPort int
	mcpHost string
)

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 serves on stdio)")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "127.0.0.1", "HTTP bind address")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if mcpPort < 0 || mcpPort > 65535 {
		return fmt.Errorf("%w: port %d", domain.ErrInvalidInput, mcpPort)
	}

	rag, err := ragService(cmd.Context())
	if err != nil {
		return err
	}
	server, err := mcp.NewServer(&mcp.Ports{RAG: rag}, mcp.WithVersion(version))
	if err != nil {
		return err
	}

	if mcpPort == 0 {
		return server.Run(cmd.Context())
	}
	addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
	// stdout stays free for clients that capture it.
	cmd.PrintErrf("MCP server listening on http://%s\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}
