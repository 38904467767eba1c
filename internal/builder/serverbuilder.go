// Package builder assembles a ServerService and its HTTP server from
// configuration.
package builder

import (
	"context"

	"github.com/pkg/errors"

	"github.com/FreePeak/openapi-mcp-server/internal/config"
	"github.com/FreePeak/openapi-mcp-server/internal/domain"
	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/logging"
	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/openapi"
	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/security"
	"github.com/FreePeak/openapi-mcp-server/internal/interfaces/rest"
	"github.com/FreePeak/openapi-mcp-server/internal/usecases"
)

// ServerBuilder implements the Builder pattern for creating MCP servers
type ServerBuilder struct {
	config     *config.Config
	provider   domain.SpecProvider
	specData   []byte
	logger     *logging.Logger
	toolFilter security.FilterFunc
	tools      []domain.Tool
	resources  []domain.Resource
}

// NewServerBuilder creates a new server builder with default values
func NewServerBuilder() *ServerBuilder {
	return &ServerBuilder{config: config.Default()}
}

// WithConfig replaces the whole configuration. Setters called later still
// apply on top of it.
func (b *ServerBuilder) WithConfig(cfg *config.Config) *ServerBuilder {
	if cfg != nil {
		b.config = cfg
	}
	return b
}

// Config returns the configuration being built.
func (b *ServerBuilder) Config() *config.Config {
	return b.config
}

// WithName sets the server name
func (b *ServerBuilder) WithName(name string) *ServerBuilder {
	b.config.Name = name
	return b
}

// WithVersion sets the server version
func (b *ServerBuilder) WithVersion(version string) *ServerBuilder {
	b.config.Version = version
	return b
}

// WithAddress sets the server address
func (b *ServerBuilder) WithAddress(address string) *ServerBuilder {
	b.config.Address = address
	return b
}

// WithPrefix sets the path the MCP endpoint is mounted at
func (b *ServerBuilder) WithPrefix(prefix string) *ServerBuilder {
	b.config.Prefix = prefix
	return b
}

// WithSpecSource sets the OpenAPI document location, a file path or URL
func (b *ServerBuilder) WithSpecSource(source string) *ServerBuilder {
	b.config.SpecSource = source
	return b
}

// WithSpecData serves an in-memory OpenAPI document. It takes precedence
// over the spec source.
func (b *ServerBuilder) WithSpecData(data []byte) *ServerBuilder {
	b.specData = data
	return b
}

// WithProvider overrides the document provider entirely
func (b *ServerBuilder) WithProvider(provider domain.SpecProvider) *ServerBuilder {
	b.provider = provider
	return b
}

// WithLogger sets the logger
func (b *ServerBuilder) WithLogger(logger *logging.Logger) *ServerBuilder {
	b.logger = logger
	return b
}

// WithToolFilter adds a custom predicate to the tool filter and enables it
func (b *ServerBuilder) WithToolFilter(filter security.FilterFunc) *ServerBuilder {
	b.toolFilter = filter
	b.config.Security.ToolFilterEnabled = true
	return b
}

// AddTool queues a tool for registration after the built-in ones
func (b *ServerBuilder) AddTool(tool domain.Tool) *ServerBuilder {
	b.tools = append(b.tools, tool)
	return b
}

// AddResource queues a resource for registration after the built-in ones
func (b *ServerBuilder) AddResource(resource domain.Resource) *ServerBuilder {
	b.resources = append(b.resources, resource)
	return b
}

func (b *ServerBuilder) loggerOrDefault() *logging.Logger {
	if b.logger != nil {
		return b.logger
	}
	return logging.Default()
}

// BuildService builds and returns the server service
func (b *ServerBuilder) BuildService() (*usecases.ServerService, error) {
	logger := b.loggerOrDefault()

	provider := b.provider
	if provider == nil && b.specData != nil {
		ttl := b.config.Cache.TTL.Std()
		if !b.config.Cache.Enabled {
			ttl = 0
		}
		provider = openapi.NewProvider(openapi.FromData(b.specData),
			openapi.WithCacheTTL(ttl),
			openapi.WithProviderLogger(logger.Named("openapi")),
		)
	}

	service, err := usecases.NewServerService(usecases.ServerConfig{
		Config:     b.config,
		Provider:   provider,
		Logger:     logger,
		ToolFilter: b.toolFilter,
	})
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	for _, tool := range b.tools {
		if err := service.RegisterTool(ctx, tool); err != nil {
			return nil, errors.Wrapf(err, "failed to register tool %s", tool.Name())
		}
	}
	for _, resource := range b.resources {
		if err := service.RegisterResource(ctx, resource); err != nil {
			return nil, errors.Wrapf(err, "failed to register resource %s", resource.URITemplate())
		}
	}
	return service, nil
}

// BuildMCPServer builds and returns an MCP server
func (b *ServerBuilder) BuildMCPServer() (*rest.MCPServer, error) {
	service, err := b.BuildService()
	if err != nil {
		return nil, err
	}
	return rest.NewMCPServer(service, b.loggerOrDefault()), nil
}
