// Package domain defines the entities and contracts of the OpenAPI MCP server.
package domain

import "context"

// ContentTypeText is the only content type produced by tools and resources.
const ContentTypeText = "text"

// Content is a single content block returned by a tool or resource.
type Content struct {
	Type string
	Text string
}

// NewTextContent creates a text content block.
func NewTextContent(text string) Content {
	return Content{Type: ContentTypeText, Text: text}
}

// ToolResult represents the result of a tool execution.
type ToolResult struct {
	Content []Content
	IsError bool
}

// NewTextResult creates a successful result holding a single text block.
func NewTextResult(text string) *ToolResult {
	return &ToolResult{Content: []Content{NewTextContent(text)}}
}

// NewErrorResult creates a result flagged as an error. Tools use it for
// failures the caller can correct, such as bad arguments.
func NewErrorResult(text string) *ToolResult {
	return &ToolResult{Content: []Content{NewTextContent(text)}, IsError: true}
}

// Tool is a named, schema-described callable exposed through tools/call.
type Tool interface {
	Name() string
	Description() string
	// InputSchema returns the JSON schema of the arguments, or nil.
	InputSchema() map[string]interface{}
	Execute(ctx context.Context, args map[string]interface{}) (*ToolResult, error)
}

// ResourceInfo describes a resource in resources/list.
type ResourceInfo struct {
	URI         string
	Name        string
	Description string
	MIMEType    string
}

// Resource is a URI-addressed readable document. URITemplate may contain
// {variables}; Matches decides whether a concrete URI belongs to it.
type Resource interface {
	URITemplate() string
	Name() string
	Description() string
	MIMEType() string
	Matches(uri string) bool
	Read(ctx context.Context, uri string) (string, error)
}

// InfoOf returns the listing entry of a resource.
func InfoOf(r Resource) ResourceInfo {
	return ResourceInfo{
		URI:         r.URITemplate(),
		Name:        r.Name(),
		Description: r.Description(),
		MIMEType:    r.MIMEType(),
	}
}

// Notification represents a notification that can be sent to clients.
type Notification struct {
	Method string
	Params map[string]interface{}
}
