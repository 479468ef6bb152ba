// Package mcp exposes an engine to agents as Model Context Protocol tools.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/tandem/internal/logging"
	"github.com/aretw0/tandem/pkg/domain"
	"github.com/aretw0/tandem/pkg/vdom"
)

// Engine is the part of the engine the tools drive.
type Engine interface {
	EvaluatePart(ctx context.Context, uri, part string) (vdom.Node, error)
	UpdateVirtualFileContent(ctx context.Context, uri, content string) error
	DrainEvents() []domain.EngineEvent
	Dependencies(uri string) ([]string, error)
	Dependents(uri string) []string
}

// RenderArgs are the arguments of the render tool.
type RenderArgs struct {
	URI  string `json:"uri"`
	Part string `json:"part,omitempty"`
}

// RenderResult is the output of the render tool.
type RenderResult struct {
	URI  string `json:"uri" jsonschema_description:"The rendered document"`
	Part string `json:"part,omitempty" jsonschema_description:"The rendered part, if any"`
	HTML string `json:"html" jsonschema_description:"The evaluated tree serialized as HTML"`
}

// UpdateArgs are the arguments of the update tool.
type UpdateArgs struct {
	URI     string `json:"uri"`
	Content string `json:"content"`
}

// UpdateResult is the output of the update tool.
type UpdateResult struct {
	Evaluated []string `json:"evaluated" jsonschema_description:"Documents re-evaluated, in order"`
	Errors    []string `json:"errors,omitempty" jsonschema_description:"Dependents that failed to re-evaluate"`
}

// GraphArgs are the arguments of the dependents tool.
type GraphArgs struct {
	URI string `json:"uri"`
}

// GraphResult is the output of the dependents tool.
type GraphResult struct {
	URI          string   `json:"uri"`
	Dependencies []string `json:"dependencies"`
	Dependents   []string `json:"dependents"`
}

// Server wraps an engine as an MCP server. Tool calls are serialized.
type Server struct {
	engine    Engine
	mu        sync.Mutex
	resolve   func(string) (string, error)
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithURIResolver maps uris given by agents to engine uris.
func WithURIResolver(resolve func(string) (string, error)) Option {
	return func(s *Server) {
		s.resolve = resolve
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP server.
func NewServer(engine Engine, version string, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		resolve:   func(uri string) (string, error) { return uri, nil },
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("tandem-mcp", version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves on stdin and stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("render",
		mcp.WithDescription("Evaluate a document, or one of its parts, and return it as HTML."),
		mcp.WithString("uri", mcp.Required(), mcp.Description("Document uri or workspace path")),
		mcp.WithString("part", mcp.Description("Id of a <part> to render instead of the whole document")),
		mcp.WithOutputSchema[RenderResult](),
	), mcp.NewStructuredToolHandler(s.handleRender))

	s.mcpServer.AddTool(mcp.NewTool("update",
		mcp.WithDescription("Replace the content of a file and re-evaluate every loaded document that depends on it."),
		mcp.WithString("uri", mcp.Required(), mcp.Description("File uri or workspace path")),
		mcp.WithString("content", mcp.Required(), mcp.Description("New file content")),
		mcp.WithOutputSchema[UpdateResult](),
	), mcp.NewStructuredToolHandler(s.handleUpdate))

	s.mcpServer.AddTool(mcp.NewTool("dependents",
		mcp.WithDescription("List what a loaded file imports and which loaded documents import it."),
		mcp.WithString("uri", mcp.Required(), mcp.Description("File uri or workspace path")),
		mcp.WithOutputSchema[GraphResult](),
	), mcp.NewStructuredToolHandler(s.handleDependents))
}

func (s *Server) handleRender(ctx context.Context, request mcp.CallToolRequest, args RenderArgs) (RenderResult, error) {
	uri, err := s.uri(args.URI)
	if err != nil {
		return RenderResult{}, err
	}

	s.mu.Lock()
	node, err := s.engine.EvaluatePart(ctx, uri, args.Part)
	s.mu.Unlock()
	if err != nil {
		s.logger.Debug("MCP render failed", "uri", uri, "error", err)
		return RenderResult{}, fmt.Errorf("render failed: %w", err)
	}
	return RenderResult{URI: uri, Part: args.Part, HTML: vdom.HTML(node)}, nil
}

func (s *Server) handleUpdate(ctx context.Context, request mcp.CallToolRequest, args UpdateArgs) (UpdateResult, error) {
	uri, err := s.uri(args.URI)
	if err != nil {
		return UpdateResult{}, err
	}

	s.mu.Lock()
	updateErr := s.engine.UpdateVirtualFileContent(ctx, uri, args.Content)
	events := s.engine.DrainEvents()
	s.mu.Unlock()

	result := UpdateResult{Evaluated: make([]string, len(events))}
	for i, ev := range events {
		result.Evaluated[i] = ev.EventURI()
	}
	if updateErr != nil {
		if len(events) == 0 {
			return UpdateResult{}, fmt.Errorf("update failed: %w", updateErr)
		}
		result.Errors = []string{updateErr.Error()}
	}
	return result, nil
}

func (s *Server) handleDependents(ctx context.Context, request mcp.CallToolRequest, args GraphArgs) (GraphResult, error) {
	uri, err := s.uri(args.URI)
	if err != nil {
		return GraphResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	deps, err := s.engine.Dependencies(uri)
	if err != nil {
		return GraphResult{}, err
	}
	return GraphResult{URI: uri, Dependencies: deps, Dependents: s.engine.Dependents(uri)}, nil
}

func (s *Server) uri(raw string) (string, error) {
	if raw == "" {
		return "", errors.New("uri is required")
	}
	return s.resolve(raw)
}
