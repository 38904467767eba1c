package server

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/FreePeak/openapi-mcp-server/internal/domain"
	mcperrors "github.com/FreePeak/openapi-mcp-server/internal/domain/shared/errors"
)

// InMemoryToolRegistry keeps tools in registration order. Lookups scan
// linearly and the first exact, case-sensitive name match wins.
type InMemoryToolRegistry struct {
	mu    sync.RWMutex
	tools []domain.Tool
}

// NewInMemoryToolRegistry creates an empty tool registry.
func NewInMemoryToolRegistry() *InMemoryToolRegistry {
	return &InMemoryToolRegistry{}
}

// Register adds a tool. Duplicate names are rejected.
func (r *InMemoryToolRegistry) Register(tool domain.Tool) error {
	if tool == nil || tool.Name() == "" {
		return ErrEmptyToolName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.tools {
		if existing.Name() == tool.Name() {
			return errors.Wrap(ErrDuplicateTool, tool.Name())
		}
	}
	r.tools = append(r.tools, tool)
	return nil
}

// List returns the tools in registration order.
func (r *InMemoryToolRegistry) List() []domain.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]domain.Tool, len(r.tools))
	copy(tools, r.tools)
	return tools
}

// Find returns the first tool with the given name.
func (r *InMemoryToolRegistry) Find(name string) (domain.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, tool := range r.tools {
		if tool.Name() == name {
			return tool, true
		}
	}
	return nil, false
}

// InMemoryResourceRegistry keeps resources in registration order; the first
// resource whose template matches a URI serves it.
type InMemoryResourceRegistry struct {
	mu        sync.RWMutex
	resources []domain.Resource
}

// NewInMemoryResourceRegistry creates an empty resource registry.
func NewInMemoryResourceRegistry() *InMemoryResourceRegistry {
	return &InMemoryResourceRegistry{}
}

// Register adds a resource.
func (r *InMemoryResourceRegistry) Register(resource domain.Resource) error {
	if resource == nil || resource.URITemplate() == "" {
		return ErrEmptyResourceURI
	}

	r.mu.Lock()
	r.resources = append(r.resources, resource)
	r.mu.Unlock()
	return nil
}

// List returns the resource listing in registration order.
func (r *InMemoryResourceRegistry) List() []domain.ResourceInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]domain.ResourceInfo, 0, len(r.resources))
	for _, resource := range r.resources {
		infos = append(infos, domain.InfoOf(resource))
	}
	return infos
}

// Read returns the content of the first resource matching uri.
func (r *InMemoryResourceRegistry) Read(ctx context.Context, uri string) ([]domain.Content, error) {
	resource, ok := r.match(uri)
	if !ok {
		return nil, &mcperrors.ResourceNotFoundError{URI: uri}
	}

	text, err := resource.Read(ctx, uri)
	if err != nil {
		return nil, &mcperrors.ResourceReadError{URI: uri, Cause: err}
	}
	return []domain.Content{domain.NewTextContent(text)}, nil
}

// MIMEType returns the MIME type of the resource serving uri.
func (r *InMemoryResourceRegistry) MIMEType(uri string) string {
	if resource, ok := r.match(uri); ok {
		return resource.MIMEType()
	}
	return ""
}

func (r *InMemoryResourceRegistry) match(uri string) (domain.Resource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, resource := range r.resources {
		if resource.Matches(uri) {
			return resource, true
		}
	}
	return nil, false
}
