// Package tools provides utility functions for creating MCP tools.
package tools

import (
	"github.com/FreePeak/openapi-mcp-server/pkg/types"
)

// ToolOption is a function that configures a tool.
type ToolOption func(*types.Tool)

// NewTool creates a new MCP tool with the given name and options.
func NewTool(name string, options ...ToolOption) *types.Tool {
	tool := &types.Tool{
		Name:       name,
		Parameters: []types.ToolParameter{},
	}
	for _, option := range options {
		option(tool)
	}
	return tool
}

// WithDescription sets the description of a tool.
func WithDescription(description string) ToolOption {
	return func(t *types.Tool) {
		t.Description = description
	}
}

// ParameterOption is a function that configures a parameter.
type ParameterOption func(*types.ToolParameter)

// Description sets the description of a parameter.
func Description(description string) ParameterOption {
	return func(p *types.ToolParameter) {
		p.Description = description
	}
}

// Required marks a parameter as required.
func Required() ParameterOption {
	return func(p *types.ToolParameter) {
		p.Required = true
	}
}

// Enum restricts a parameter to the given values.
func Enum(values ...interface{}) ParameterOption {
	return func(p *types.ToolParameter) {
		p.Enum = values
	}
}

// Default documents the value used when the parameter is omitted.
func Default(value interface{}) ParameterOption {
	return func(p *types.ToolParameter) {
		p.Default = value
	}
}

// Items sets the element type of an array parameter.
func Items(itemType string) ParameterOption {
	return func(p *types.ToolParameter) {
		p.Items = itemType
	}
}

func withParameter(name, paramType string, options []ParameterOption) ToolOption {
	return func(t *types.Tool) {
		param := types.ToolParameter{Name: name, Type: paramType}
		for _, option := range options {
			option(&param)
		}
		t.Parameters = append(t.Parameters, param)
	}
}

// WithString adds a string parameter to a tool.
func WithString(name string, options ...ParameterOption) ToolOption {
	return withParameter(name, "string", options)
}

// WithNumber adds a number parameter to a tool.
func WithNumber(name string, options ...ParameterOption) ToolOption {
	return withParameter(name, "number", options)
}

// WithInteger adds an integer parameter to a tool.
func WithInteger(name string, options ...ParameterOption) ToolOption {
	return withParameter(name, "integer", options)
}

// WithBoolean adds a boolean parameter to a tool.
func WithBoolean(name string, options ...ParameterOption) ToolOption {
	return withParameter(name, "boolean", options)
}

// WithArray adds an array parameter to a tool. Items defaults to string.
func WithArray(name string, options ...ParameterOption) ToolOption {
	return withParameter(name, "array", options)
}

// WithObject adds an object parameter to a tool.
func WithObject(name string, options ...ParameterOption) ToolOption {
	return withParameter(name, "object", options)
}
