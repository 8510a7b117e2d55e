// Package server provides the MCP server implementation for the Naver Maps integration.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/NERVsystems/navermcp/pkg/directions"
	"github.com/NERVsystems/navermcp/pkg/naver"
	"github.com/NERVsystems/navermcp/pkg/tools"
	"github.com/NERVsystems/navermcp/pkg/tools/prompts"
	"github.com/NERVsystems/navermcp/pkg/version"
)

const (
	// ServerName is the name of the MCP server
	ServerName = "naver-maps-mcp"

	// SSEEndpoint is the event stream path of the HTTP transport
	SSEEndpoint = "/mcp"

	// MessageEndpoint is the path clients post JSON-RPC messages to
	MessageEndpoint = "/mcp-messages"

	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

const instructions = `Naver Maps tools for Korean addresses and driving routes.
Use geocode/reverseGeocode to convert between addresses and coordinates,
getDirections* for routes between coordinates, and the *ByNaturalLanguage
variants to route directly between place names.`

// Server encapsulates the MCP server with Naver Maps tools.
type Server struct {
	srv        *server.MCPServer
	client     *naver.Client
	dispatcher *tools.Dispatcher
	logger     *slog.Logger
}

// NewServer creates a new Naver Maps MCP server with all tools and prompts
// registered.
func NewServer(cfg naver.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL != "" {
		if u, err := url.Parse(cfg.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid Naver API base URL %q", cfg.BaseURL)
		}
	}

	logger.Info("initializing Naver Maps MCP server",
		"name", ServerName,
		"version", version.BuildVersion)

	// Create MCP server with options
	srv := server.NewMCPServer(
		ServerName,
		version.BuildVersion,
		server.WithToolCapabilities(false),
		server.WithPromptCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	client := naver.NewClient(cfg, naver.WithLogger(logger.With("component", "naver")))
	orchestrator := directions.NewOrchestrator(client, logger.With("component", "directions"))
	dispatcher := tools.NewDispatcher(client, orchestrator, logger.With("component", "tools"))

	// Create tool registry and register all tools
	registry := tools.NewRegistry(dispatcher, logger)
	registry.RegisterTools(srv)
	prompts.RegisterPrompts(srv)

	return &Server{
		srv:        srv,
		client:     client,
		dispatcher: dispatcher,
		logger:     logger,
	}, nil
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *server.MCPServer {
	return s.srv
}

// Dispatcher returns the tool dispatcher shared by both transports.
func (s *Server) Dispatcher() *tools.Dispatcher {
	return s.dispatcher
}

// Reload swaps the provider configuration. Calls already in flight keep
// the configuration they started with.
func (s *Server) Reload(cfg naver.Config) {
	s.client.Reload(cfg)
	s.logger.Info("provider configuration reloaded")
}

// RunStdio serves MCP over in/out until in is closed or ctx is cancelled.
func (s *Server) RunStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.srv)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	s.logger.Info("serving MCP over stdio")
	err := stdio.Listen(ctx, in, out)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// RunHTTP serves MCP over SSE on addr until ctx is cancelled, then shuts
// down, closing open event streams.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	sse := s.newSSEServer(server.WithHTTPServer(httpServer))
	httpServer.Handler = s.router(sse)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("serving MCP over HTTP",
			"addr", addr,
			"sse_endpoint", SSEEndpoint,
			"message_endpoint", MessageEndpoint)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := sse.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// Handler returns the HTTP transport as a handler, for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.router(s.newSSEServer())
}

func (s *Server) newSSEServer(opts ...server.SSEOption) *server.SSEServer {
	opts = append([]server.SSEOption{
		server.WithSSEEndpoint(SSEEndpoint),
		server.WithMessageEndpoint(MessageEndpoint),
		server.WithUseFullURLForMessageEndpoint(false),
		server.WithKeepAlive(true),
	}, opts...)
	return server.NewSSEServer(s.srv, opts...)
}
