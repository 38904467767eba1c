package tools

import (
	"context"
	"strings"

	"github.com/spf13/cast"

	"github.com/FreePeak/openapi-mcp-server/internal/domain"
	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/formatters"
	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/openapi"
)

// GenerateExamplesName is the registered name of the example generator.
const GenerateExamplesName = "generate_examples"

// DefaultServerURL is used when neither the arguments nor the document name
// a server.
const DefaultServerURL = "https://api.example.com"

// Example strategies.
const (
	StrategyMinimal   = "minimal"
	StrategyComplete  = "complete"
	StrategyRealistic = "realistic"
)

// ExampleFormats lists the renderable example formats.
var ExampleFormats = []string{"json", "curl", "python", "javascript", "http", "postman"}

var defaultExampleFormats = []string{"json", "curl", "python"}

// GenerateExamplesTool renders request and response examples for one
// operation in several client formats.
type GenerateExamplesTool struct {
	schemaTool
	provider  domain.SpecProvider
	formatter formatters.Formatter
}

// NewGenerateExamplesTool creates the example generator.
func NewGenerateExamplesTool(provider domain.SpecProvider, formatter formatters.Formatter) *GenerateExamplesTool {
	return &GenerateExamplesTool{
		schemaTool: newSchemaTool(
			GenerateExamplesName,
			"Generate request and response examples for an API endpoint in several client formats",
			generateExamplesSchema(),
		),
		provider:  provider,
		formatter: formatter,
	}
}

func generateExamplesSchema() map[string]interface{} {
	methods := make([]interface{}, 0, len(openapi.Methods))
	for _, m := range openapi.Methods {
		methods = append(methods, strings.ToUpper(m))
	}
	formats := make([]interface{}, 0, len(ExampleFormats))
	for _, f := range ExampleFormats {
		formats = append(formats, f)
	}

	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Endpoint path, for example /api/v1/users",
			},
			"method": map[string]interface{}{
				"type":        "string",
				"description": "HTTP method",
				"enum":        methods,
			},
			"formats": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string", "enum": formats},
				"description": "Example formats to render; defaults to json, curl and python",
			},
			"include_auth": map[string]interface{}{
				"type":        "boolean",
				"description": "Include authentication headers",
				"default":     true,
			},
			"server_url": map[string]interface{}{
				"type":        "string",
				"description": "Base URL; defaults to the first server of the document",
			},
			"example_strategy": map[string]interface{}{
				"type":        "string",
				"enum":        []interface{}{StrategyMinimal, StrategyComplete, StrategyRealistic},
				"default":     StrategyRealistic,
				"description": "How much of each schema to fill in",
			},
		},
		"required": []interface{}{"path", "method"},
	}
}

// Execute generates the examples. Unknown endpoints are error results.
func (t *GenerateExamplesTool) Execute(ctx context.Context, args map[string]interface{}) (*domain.ToolResult, error) {
	if invalid := t.validateArguments(args); invalid != nil {
		return invalid, nil
	}

	path := cast.ToString(args["path"])
	method := strings.ToUpper(cast.ToString(args["method"]))

	spec, err := t.provider.Spec(ctx)
	if err != nil {
		return errorResult("example generation failed - %v", err), nil
	}

	op, ok := openapi.FindOperation(spec, path, method)
	if !ok {
		return errorResult("endpoint not found - %s %s", method, path), nil
	}

	includeAuth := true
	if raw, ok := args["include_auth"]; ok {
		includeAuth = cast.ToBool(raw)
	}
	strategy := cast.ToString(args["example_strategy"])
	if strategy == "" {
		strategy = StrategyRealistic
	}
	formats := cast.ToStringSlice(args["formats"])
	if len(formats) == 0 {
		formats = defaultExampleFormats
	}

	gen := &exampleGenerator{spec: spec, strategy: strategy}
	ex := gen.generate(op, serverURL(spec, cast.ToString(args["server_url"])), includeAuth)
	return domain.NewTextResult(t.formatter.Truncate(renderExamples(ex, formats))), nil
}

func serverURL(spec map[string]interface{}, requested string) string {
	if requested != "" {
		return requested
	}
	for _, raw := range cast.ToSlice(spec["servers"]) {
		if url := cast.ToString(cast.ToStringMap(raw)["url"]); url != "" {
			return url
		}
	}
	return DefaultServerURL
}
