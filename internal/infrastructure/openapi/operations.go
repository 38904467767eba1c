package openapi

import (
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// DefaultTag groups operations that declare no tags.
const DefaultTag = "default"

// Methods lists the path item keys that hold operations.
var Methods = []string{"get", "post", "put", "delete", "patch", "head", "options"}

// Operation is one (path, method) pair of a document in generic form.
type Operation struct {
	Path   string
	Method string // upper case
	Item   map[string]interface{}
	Op     map[string]interface{}
}

func (o Operation) OperationID() string { return cast.ToString(o.Op["operationId"]) }
func (o Operation) Summary() string     { return cast.ToString(o.Op["summary"]) }
func (o Operation) Description() string { return cast.ToString(o.Op["description"]) }
func (o Operation) Deprecated() bool    { return cast.ToBool(o.Op["deprecated"]) }

// Tags returns the declared tags.
func (o Operation) Tags() []string {
	return cast.ToStringSlice(o.Op["tags"])
}

// TagsOrDefault returns the declared tags or DefaultTag.
func (o Operation) TagsOrDefault() []string {
	if tags := o.Tags(); len(tags) > 0 {
		return tags
	}
	return []string{DefaultTag}
}

// Parameters returns the operation parameters followed by the path-level
// parameters it does not override.
func (o Operation) Parameters() []map[string]interface{} {
	var params []map[string]interface{}
	seen := map[string]bool{}
	for _, raw := range cast.ToSlice(o.Op["parameters"]) {
		p := cast.ToStringMap(raw)
		seen[cast.ToString(p["in"])+":"+cast.ToString(p["name"])] = true
		params = append(params, p)
	}
	for _, raw := range cast.ToSlice(o.Item["parameters"]) {
		p := cast.ToStringMap(raw)
		if !seen[cast.ToString(p["in"])+":"+cast.ToString(p["name"])] {
			params = append(params, p)
		}
	}
	return params
}

// Paths returns the document's paths object.
func Paths(spec map[string]interface{}) map[string]interface{} {
	return cast.ToStringMap(spec["paths"])
}

// Schemas returns components.schemas.
func Schemas(spec map[string]interface{}) map[string]interface{} {
	return cast.ToStringMap(cast.ToStringMap(spec["components"])["schemas"])
}

// SecuritySchemes returns components.securitySchemes.
func SecuritySchemes(spec map[string]interface{}) map[string]interface{} {
	return cast.ToStringMap(cast.ToStringMap(spec["components"])["securitySchemes"])
}

// Operations returns every operation of spec sorted by path, then method.
func Operations(spec map[string]interface{}) []Operation {
	var ops []Operation
	for path, rawItem := range Paths(spec) {
		item := cast.ToStringMap(rawItem)
		for _, method := range Methods {
			op, ok := item[method].(map[string]interface{})
			if !ok {
				continue
			}
			ops = append(ops, Operation{
				Path:   path,
				Method: strings.ToUpper(method),
				Item:   item,
				Op:     op,
			})
		}
	}
	SortOperations(ops)
	return ops
}

// FindOperation returns the operation at path and method (any case).
func FindOperation(spec map[string]interface{}, path, method string) (Operation, bool) {
	item, ok := Paths(spec)[path].(map[string]interface{})
	if !ok {
		return Operation{}, false
	}
	op, ok := item[strings.ToLower(method)].(map[string]interface{})
	if !ok {
		return Operation{}, false
	}
	return Operation{Path: path, Method: strings.ToUpper(method), Item: item, Op: op}, true
}

// SortOperations orders ops by path, then method.
func SortOperations(ops []Operation) {
	sort.Slice(ops, func(i, j int) bool {
		if ops[i].Path != ops[j].Path {
			return ops[i].Path < ops[j].Path
		}
		return ops[i].Method < ops[j].Method
	})
}

// RefName returns the last segment of a local $ref such as
// "#/components/schemas/Pet".
func RefName(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}
