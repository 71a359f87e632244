package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zotero-rag/internal/adapters/driving/httpapi"
)

func TestServeCmd_DefaultAddr(t *testing.T) {
	flag := serveCmd.Flags().Lookup("addr")
	require.NotNil(t, flag)
	assert.Equal(t, httpapi.DefaultAddr, flag.DefValue)
}

func TestMCPServeCmd_PortFlag(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "0", flag.DefValue)
	assert.Equal(t, "p", flag.Shorthand)
}

func TestMCPCmd_HasServe(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"mcp", "serve"})
	require.NoError(t, err)
	assert.Equal(t, mcpServeCmd, cmd)
}

func TestServeCmd_RAGUnavailable(t *testing.T) {
	setupTestServices(t)
	services.RAG = nil

	_, err := run(t, "serve", "--addr", "127.0.0.1:0")

	assert.Error(t, err)
}
