package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DefaultVersion is reported when no version is configured.
const DefaultVersion = "dev"

// shutdownGrace bounds how long in-flight HTTP sessions get on shutdown.
const shutdownGrace = 5 * time.Second

const instructions = `zrag answers questions about an indexed library of papers.
Call "retrieve" to see the ranked excerpts for a query, or "ask" for an
answer composed from them. Read zrag://status first: until it reports
ready, both tools return a still-processing notice.`

// Server exposes a driving.RAGService as MCP tools and resources.
type Server struct {
	ports  *Ports
	impl   *mcp.Implementation
	server *mcp.Server
}

// Option configures a Server.
type Option func(*mcp.Implementation)

// WithVersion sets the version reported to clients during initialisation.
func WithVersion(version string) Option {
	return func(impl *mcp.Implementation) {
		if version != "" {
			impl.Version = version
		}
	}
}

// NewServer creates an MCP server over ports.
func NewServer(ports *Ports, opts ...Option) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	impl := &mcp.Implementation{Name: "zrag", Version: DefaultVersion}
	for _, opt := range opts {
		opt(impl)
	}

	s := &Server{
		ports:  ports,
		impl:   impl,
		server: mcp.NewServer(impl, &mcp.ServerOptions{Instructions: instructions}),
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Run serves MCP over stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the streamable HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// RunHTTP serves MCP over HTTP on addr until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- httpServer.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("mcp shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
