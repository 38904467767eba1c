// Package types provides the public types for embedding the MCP server.
package types

// Tool describes a custom tool exposed through tools/list and tools/call.
type Tool struct {
	Name        string
	Description string
	Parameters  []ToolParameter
}

// ToolParameter defines a parameter for a tool.
type ToolParameter struct {
	Name        string
	Description string
	// Type is a JSON schema type: string, number, integer, boolean, array
	// or object.
	Type     string
	Required bool
	Enum     []interface{}
	Default  interface{}
	// Items is the element type of an array parameter.
	Items string
}

// InputSchema returns the JSON schema advertised for the tool's arguments.
func (t *Tool) InputSchema() map[string]interface{} {
	properties := make(map[string]interface{}, len(t.Parameters))
	required := make([]interface{}, 0)
	for _, p := range t.Parameters {
		prop := map[string]interface{}{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		if p.Default != nil {
			prop["default"] = p.Default
		}
		if p.Type == "array" {
			items := p.Items
			if items == "" {
				items = "string"
			}
			prop["items"] = map[string]interface{}{"type": items}
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}

	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// ToolCallRequest is what a tool handler receives.
type ToolCallRequest struct {
	Name      string
	Arguments map[string]interface{}
}

// Content is one piece of tool output. Only text content is produced.
type Content struct {
	Type string
	Text string
}

// ToolResult is the outcome of a tool call. IsError marks failures the
// caller can correct; they are returned as results, not protocol errors.
type ToolResult struct {
	Content []Content
	IsError bool
}

// NewTextResult creates a successful single-text result.
func NewTextResult(text string) *ToolResult {
	return &ToolResult{Content: []Content{{Type: "text", Text: text}}}
}

// NewErrorResult creates a result flagged as an error.
func NewErrorResult(text string) *ToolResult {
	return &ToolResult{Content: []Content{{Type: "text", Text: text}}, IsError: true}
}
