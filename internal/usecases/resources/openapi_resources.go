package resources

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/FreePeak/openapi-mcp-server/internal/domain"
	mcperrors "github.com/FreePeak/openapi-mcp-server/internal/domain/shared/errors"
	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/openapi"
)

// Resource URIs and templates.
const (
	SpecURI              = Scheme + "spec"
	EndpointsURI         = Scheme + "endpoints"
	EndpointTemplate     = Scheme + "endpoints/{path}"
	ModelsURI            = Scheme + "models"
	ModelTemplate        = Scheme + "models/{name}"
	TagsURI              = Scheme + "tags"
	TagEndpointsTemplate = Scheme + "tags/{tag}/endpoints"
)

// All returns the built-in resources in registration order. The endpoints
// listing precedes the endpoint template so the literal URI wins.
func All(provider domain.SpecProvider) []domain.Resource {
	return []domain.Resource{
		NewSpecResource(provider),
		NewEndpointsResource(provider),
		NewEndpointResource(provider),
		NewModelsResource(provider),
		NewModelResource(provider),
		NewTagsResource(provider),
		NewTagEndpointsResource(provider),
	}
}

// NewSpecResource serves the whole document. A "format=yaml" query renders
// it as YAML.
func NewSpecResource(provider domain.SpecProvider) *Resource {
	return &Resource{
		template:    SpecURI,
		name:        "OpenAPI Specification",
		description: "The complete OpenAPI document",
		provider:    provider,
		match:       literalMatcher(SpecURI),
		read: func(spec map[string]interface{}, _ map[string]string, query string) (string, error) {
			values, _ := url.ParseQuery(query)
			if strings.EqualFold(values.Get("format"), "yaml") {
				out, err := yaml.Marshal(spec)
				if err != nil {
					return "", errors.Wrap(err, "failed to encode document as YAML")
				}
				return string(out), nil
			}
			return encodeJSON(spec)
		},
	}
}

// NewEndpointsResource lists every operation.
func NewEndpointsResource(provider domain.SpecProvider) *Resource {
	return &Resource{
		template:    EndpointsURI,
		name:        "API Endpoints List",
		description: "Summary of every API endpoint",
		provider:    provider,
		match:       literalMatcher(EndpointsURI),
		read: func(spec map[string]interface{}, _ map[string]string, _ string) (string, error) {
			ops := openapi.Operations(spec)
			endpoints := make([]map[string]interface{}, 0, len(ops))
			for _, op := range ops {
				endpoints = append(endpoints, map[string]interface{}{
					"path":        op.Path,
					"method":      op.Method,
					"operationId": op.Op["operationId"],
					"summary":     op.Summary(),
					"description": op.Description(),
					"tags":        orEmpty(op.Tags()),
				})
			}
			return encodeJSON(endpoints)
		},
	}
}

// NewEndpointResource describes every method of one path. The path is the
// unescaped rest of the URI and may contain slashes.
func NewEndpointResource(provider domain.SpecProvider) *Resource {
	return &Resource{
		template:    EndpointTemplate,
		name:        "API Endpoint Details",
		description: "Details of a single API endpoint",
		provider:    provider,
		match:       prefixMatcher(EndpointsURI+"/", "path"),
		read: func(spec map[string]interface{}, vars map[string]string, _ string) (string, error) {
			path, err := url.PathUnescape(vars["path"])
			if err != nil {
				return "", mcperrors.NewInvalidInputError("invalid endpoint path", err)
			}
			if !strings.HasPrefix(path, "/") {
				path = "/" + path
			}

			item, ok := openapi.Paths(spec)[path].(map[string]interface{})
			if !ok {
				return "", mcperrors.NewNotFoundError(fmt.Sprintf("Endpoint not found: %s", path), nil)
			}

			methods := make(map[string]interface{})
			for _, method := range openapi.Methods {
				op, ok := item[method].(map[string]interface{})
				if !ok {
					continue
				}
				methods[strings.ToUpper(method)] = map[string]interface{}{
					"operationId": op["operationId"],
					"summary":     cast.ToString(op["summary"]),
					"description": cast.ToString(op["description"]),
					"tags":        orEmpty(cast.ToStringSlice(op["tags"])),
					"parameters":  orEmptyList(op["parameters"]),
					"requestBody": op["requestBody"],
					"responses":   orEmptyMap(op["responses"]),
					"security":    op["security"],
				}
			}

			return encodeJSON(map[string]interface{}{
				"path":       path,
				"methods":    methods,
				"parameters": orEmptyList(item["parameters"]),
			})
		},
	}
}

// NewModelsResource lists the component schemas.
func NewModelsResource(provider domain.SpecProvider) *Resource {
	return &Resource{
		template:    ModelsURI,
		name:        "API Models List",
		description: "Summary of every data model",
		provider:    provider,
		match:       literalMatcher(ModelsURI),
		read: func(spec map[string]interface{}, _ map[string]string, _ string) (string, error) {
			schemas := openapi.Schemas(spec)
			names := sortedKeys(schemas)

			models := make([]map[string]interface{}, 0, len(names))
			for _, name := range names {
				schema := cast.ToStringMap(schemas[name])
				modelType := cast.ToString(schema["type"])
				if modelType == "" {
					modelType = "object"
				}
				models = append(models, map[string]interface{}{
					"name":        name,
					"type":        modelType,
					"description": cast.ToString(schema["description"]),
					"properties":  sortedKeys(cast.ToStringMap(schema["properties"])),
					"required":    orEmpty(cast.ToStringSlice(schema["required"])),
				})
			}
			return encodeJSON(models)
		},
	}
}

// NewModelResource serves one component schema.
func NewModelResource(provider domain.SpecProvider) *Resource {
	return &Resource{
		template:    ModelTemplate,
		name:        "API Model Details",
		description: "Full definition of a single data model",
		provider:    provider,
		match:       templateMatcher(ModelTemplate),
		read: func(spec map[string]interface{}, vars map[string]string, _ string) (string, error) {
			schema, ok := openapi.Schemas(spec)[vars["name"]]
			if !ok || schema == nil {
				return "", mcperrors.NewNotFoundError(fmt.Sprintf("Model not found: %s", vars["name"]), nil)
			}
			return encodeJSON(schema)
		},
	}
}

// NewTagsResource lists tags with their operation counts. Untagged
// operations count under the default tag.
func NewTagsResource(provider domain.SpecProvider) *Resource {
	return &Resource{
		template:    TagsURI,
		name:        "API Tags List",
		description: "Every tag with its endpoint count",
		provider:    provider,
		match:       literalMatcher(TagsURI),
		read: func(spec map[string]interface{}, _ map[string]string, _ string) (string, error) {
			counts := make(map[string]int)
			for _, op := range openapi.Operations(spec) {
				for _, tag := range op.TagsOrDefault() {
					counts[tag]++
				}
			}

			definitions := make(map[string]map[string]interface{})
			for _, raw := range cast.ToSlice(spec["tags"]) {
				def := cast.ToStringMap(raw)
				if name := cast.ToString(def["name"]); name != "" {
					definitions[name] = def
				}
			}

			names := make([]string, 0, len(counts))
			for name := range counts {
				names = append(names, name)
			}
			sort.Strings(names)

			tags := make([]map[string]interface{}, 0, len(names))
			for _, name := range names {
				tag := map[string]interface{}{
					"name":            name,
					"endpoints_count": counts[name],
				}
				if def, ok := definitions[name]; ok {
					tag["description"] = cast.ToString(def["description"])
				}
				tags = append(tags, tag)
			}
			return encodeJSON(tags)
		},
	}
}

// NewTagEndpointsResource lists the operations carrying one tag.
func NewTagEndpointsResource(provider domain.SpecProvider) *Resource {
	return &Resource{
		template:    TagEndpointsTemplate,
		name:        "Tag Endpoints List",
		description: "Every endpoint carrying a tag",
		provider:    provider,
		match:       templateMatcher(TagEndpointsTemplate),
		read: func(spec map[string]interface{}, vars map[string]string, _ string) (string, error) {
			tag := vars["tag"]
			endpoints := make([]map[string]interface{}, 0)
			for _, op := range openapi.Operations(spec) {
				if !containsString(op.TagsOrDefault(), tag) {
					continue
				}
				endpoints = append(endpoints, map[string]interface{}{
					"path":        op.Path,
					"method":      op.Method,
					"operationId": op.Op["operationId"],
					"summary":     op.Summary(),
					"description": op.Description(),
				})
			}
			return encodeJSON(endpoints)
		},
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orEmptyList(v interface{}) interface{} {
	if v == nil {
		return []interface{}{}
	}
	return v
}

func orEmptyMap(v interface{}) interface{} {
	if v == nil {
		return map[string]interface{}{}
	}
	return v
}
