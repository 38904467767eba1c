// Package server embeds an OpenAPI MCP server in another program.
package server

import (
	"context"
	"net"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/FreePeak/openapi-mcp-server/internal/builder"
	"github.com/FreePeak/openapi-mcp-server/internal/config"
	"github.com/FreePeak/openapi-mcp-server/internal/domain"
	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/logging"
	"github.com/FreePeak/openapi-mcp-server/internal/interfaces/rest"
	"github.com/FreePeak/openapi-mcp-server/internal/usecases"
	"github.com/FreePeak/openapi-mcp-server/pkg/types"
)

// ToolHandler is a function that handles tool calls.
type ToolHandler func(ctx context.Context, request types.ToolCallRequest) (*types.ToolResult, error)

// Option configures an MCPServer.
type Option func(*builder.ServerBuilder) error

// WithName sets the server name reported to clients.
func WithName(name string) Option {
	return func(b *builder.ServerBuilder) error {
		b.WithName(name)
		return nil
	}
}

// WithVersion sets the server version reported to clients.
func WithVersion(version string) Option {
	return func(b *builder.ServerBuilder) error {
		b.WithVersion(version)
		return nil
	}
}

// WithAddress sets the listen address used by Start.
func WithAddress(addr string) Option {
	return func(b *builder.ServerBuilder) error {
		b.WithAddress(addr)
		return nil
	}
}

// WithPrefix sets the path the MCP endpoint is served at by Start.
func WithPrefix(prefix string) Option {
	return func(b *builder.ServerBuilder) error {
		b.WithPrefix(prefix)
		return nil
	}
}

// WithSpecData serves an in-memory OpenAPI document instead of a location.
func WithSpecData(data []byte) Option {
	return func(b *builder.ServerBuilder) error {
		b.WithSpecData(data)
		return nil
	}
}

// WithConfigFile loads settings from a YAML configuration file. Options
// given after it override the file, and a non-empty spec argument of
// NewMCPServer overrides spec_source.
func WithConfigFile(path string) Option {
	return func(b *builder.ServerBuilder) error {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		spec := b.Config().SpecSource
		b.WithConfig(cfg)
		if spec != "" {
			b.WithSpecSource(spec)
		}
		return nil
	}
}

// WithLogger routes server logs to a zap logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *builder.ServerBuilder) error {
		b.WithLogger(logging.NewFromZap(logger))
		return nil
	}
}

// WithToolFilter installs a predicate consulted before every tool call.
func WithToolFilter(allow func(toolName string, args map[string]interface{}) bool) Option {
	return func(b *builder.ServerBuilder) error {
		b.WithToolFilter(allow)
		return nil
	}
}

// MCPServer exposes an OpenAPI document to MCP clients.
type MCPServer struct {
	service *usecases.ServerService
	http    *rest.MCPServer
}

// NewMCPServer creates a server for the OpenAPI document at spec, a file
// path or an http(s) URL. spec may be empty when WithSpecData is given.
func NewMCPServer(spec string, opts ...Option) (*MCPServer, error) {
	b := builder.NewServerBuilder().WithLogger(logging.NewNop())
	if spec != "" {
		b.WithSpecSource(spec)
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}

	httpServer, err := b.BuildMCPServer()
	if err != nil {
		return nil, err
	}
	return &MCPServer{service: httpServer.Service(), http: httpServer}, nil
}

// AddTool registers a custom tool next to the built-in ones.
func (s *MCPServer) AddTool(ctx context.Context, tool *types.Tool, handler ToolHandler) error {
	if tool == nil {
		return errors.New("tool cannot be nil")
	}
	if handler == nil {
		return errors.New("handler cannot be nil")
	}
	return s.service.RegisterTool(ctx, &toolAdapter{tool: tool, handler: handler})
}

// Handler returns the MCP endpoint handler for mounting in another router.
func (s *MCPServer) Handler() http.Handler {
	return s.service.Handler()
}

// Mount serves the MCP endpoint on mux at prefix.
func (s *MCPServer) Mount(mux *http.ServeMux, prefix string) {
	mux.Handle(prefix, s.service.Handler())
}

// InvalidateCache drops the cached document so the next request reloads it.
func (s *MCPServer) InvalidateCache(ctx context.Context) {
	s.service.InvalidateCache(ctx)
}

// Address returns the listen address used by Start.
func (s *MCPServer) Address() string {
	return s.http.Addr()
}

// Start serves HTTP on the configured address until Shutdown.
func (s *MCPServer) Start() error {
	return s.http.Start()
}

// Serve serves HTTP on ln until Shutdown.
func (s *MCPServer) Serve(ln net.Listener) error {
	return s.http.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *MCPServer) Shutdown(ctx context.Context) error {
	return s.http.Stop(ctx)
}

// toolAdapter exposes a public tool and handler as a domain.Tool.
type toolAdapter struct {
	tool    *types.Tool
	handler ToolHandler
}

func (a *toolAdapter) Name() string                        { return a.tool.Name }
func (a *toolAdapter) Description() string                 { return a.tool.Description }
func (a *toolAdapter) InputSchema() map[string]interface{} { return a.tool.InputSchema() }

func (a *toolAdapter) Execute(ctx context.Context, args map[string]interface{}) (*domain.ToolResult, error) {
	result, err := a.handler(ctx, types.ToolCallRequest{Name: a.tool.Name, Arguments: args})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return domain.NewTextResult(""), nil
	}

	converted := &domain.ToolResult{IsError: result.IsError}
	for _, c := range result.Content {
		converted.Content = append(converted.Content, domain.NewTextContent(c.Text))
	}
	return converted, nil
}
