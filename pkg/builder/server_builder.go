// Package builder provides the Builder pattern for creating MCP servers.
package builder

import (
	"context"

	"go.uber.org/zap"

	"github.com/FreePeak/openapi-mcp-server/pkg/server"
	"github.com/FreePeak/openapi-mcp-server/pkg/types"
)

type pendingTool struct {
	tool    *types.Tool
	handler server.ToolHandler
}

// ServerBuilder implements the Builder pattern for creating MCP servers.
type ServerBuilder struct {
	spec  string
	opts  []server.Option
	tools []pendingTool
}

// NewServerBuilder creates a new server builder with default values.
func NewServerBuilder() *ServerBuilder {
	return &ServerBuilder{}
}

// WithSpec sets the OpenAPI document location, a file path or URL.
func (b *ServerBuilder) WithSpec(location string) *ServerBuilder {
	b.spec = location
	return b
}

// WithSpecData serves an in-memory OpenAPI document.
func (b *ServerBuilder) WithSpecData(data []byte) *ServerBuilder {
	b.opts = append(b.opts, server.WithSpecData(data))
	return b
}

// WithConfigFile loads settings from a YAML configuration file.
func (b *ServerBuilder) WithConfigFile(path string) *ServerBuilder {
	b.opts = append(b.opts, server.WithConfigFile(path))
	return b
}

// WithName sets the server name.
func (b *ServerBuilder) WithName(name string) *ServerBuilder {
	b.opts = append(b.opts, server.WithName(name))
	return b
}

// WithVersion sets the server version.
func (b *ServerBuilder) WithVersion(version string) *ServerBuilder {
	b.opts = append(b.opts, server.WithVersion(version))
	return b
}

// WithAddress sets the server address.
func (b *ServerBuilder) WithAddress(address string) *ServerBuilder {
	b.opts = append(b.opts, server.WithAddress(address))
	return b
}

// WithPrefix sets the endpoint path.
func (b *ServerBuilder) WithPrefix(prefix string) *ServerBuilder {
	b.opts = append(b.opts, server.WithPrefix(prefix))
	return b
}

// WithLogger sets the zap logger.
func (b *ServerBuilder) WithLogger(logger *zap.Logger) *ServerBuilder {
	b.opts = append(b.opts, server.WithLogger(logger))
	return b
}

// AddTool adds a custom tool and its handler.
func (b *ServerBuilder) AddTool(tool *types.Tool, handler server.ToolHandler) *ServerBuilder {
	b.tools = append(b.tools, pendingTool{tool: tool, handler: handler})
	return b
}

// Build creates the server and registers the queued tools.
func (b *ServerBuilder) Build(ctx context.Context) (*server.MCPServer, error) {
	s, err := server.NewMCPServer(b.spec, b.opts...)
	if err != nil {
		return nil, err
	}
	for _, t := range b.tools {
		if err := s.AddTool(ctx, t.tool, t.handler); err != nil {
			return nil, err
		}
	}
	return s, nil
}
