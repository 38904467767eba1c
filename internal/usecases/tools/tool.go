// Package tools implements the built-in MCP tools that query the OpenAPI
// document.
package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"

	"github.com/FreePeak/openapi-mcp-server/internal/domain"
	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/formatters"
)

// All returns the built-in tools in registration order.
func All(provider domain.SpecProvider, formatter formatters.Formatter) []domain.Tool {
	return []domain.Tool{
		NewSearchEndpointsTool(provider, formatter),
		NewGenerateExamplesTool(provider, formatter),
	}
}

// schemaTool carries the metadata shared by the built-in tools and checks
// arguments against the input schema before execution.
type schemaTool struct {
	name        string
	description string
	inputSchema map[string]interface{}
	validator   *gojsonschema.Schema
}

func newSchemaTool(name, description string, inputSchema map[string]interface{}) schemaTool {
	validator, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(inputSchema))
	if err != nil {
		panic(errors.Wrapf(err, "invalid input schema for tool %s", name))
	}
	return schemaTool{
		name:        name,
		description: description,
		inputSchema: inputSchema,
		validator:   validator,
	}
}

func (t schemaTool) Name() string                        { return t.name }
func (t schemaTool) Description() string                 { return t.description }
func (t schemaTool) InputSchema() map[string]interface{} { return t.inputSchema }

// validateArguments returns an error result listing every schema violation,
// or nil when args are valid.
func (t schemaTool) validateArguments(args map[string]interface{}) *domain.ToolResult {
	if args == nil {
		args = map[string]interface{}{}
	}
	result, err := t.validator.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return errorResult("invalid arguments - %v", err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, "- "+desc.String())
	}
	return domain.NewErrorResult("Error: invalid arguments\n" + strings.Join(problems, "\n"))
}

func errorResult(format string, args ...interface{}) *domain.ToolResult {
	return domain.NewErrorResult("Error: " + fmt.Sprintf(format, args...))
}

// marshalIndent renders v as JSON without HTML escaping. indent may be empty
// for compact output.
func marshalIndent(v interface{}, indent string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return "null"
	}
	return strings.TrimRight(buf.String(), "\n")
}
