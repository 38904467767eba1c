package tools

import (
	"context"
	"regexp"
	"strings"

	"github.com/spf13/cast"

	"github.com/FreePeak/openapi-mcp-server/internal/domain"
	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/formatters"
	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/openapi"
)

// SearchEndpointsName is the registered name of the search tool.
const SearchEndpointsName = "search_endpoints"

const (
	defaultSearchLimit = 50
	searchInAll        = "all"
)

var searchScopes = []string{"path", "summary", "description", "tags", searchInAll}

// SearchEndpointsTool finds operations by keyword or regular expression,
// optionally filtered by tag, method and deprecation.
type SearchEndpointsTool struct {
	schemaTool
	provider  domain.SpecProvider
	formatter formatters.Formatter
}

// NewSearchEndpointsTool creates the search tool.
func NewSearchEndpointsTool(provider domain.SpecProvider, formatter formatters.Formatter) *SearchEndpointsTool {
	return &SearchEndpointsTool{
		schemaTool: newSchemaTool(
			SearchEndpointsName,
			"Search API endpoints by keyword or regular expression, with tag, method and deprecation filters",
			searchEndpointsSchema(),
		),
		provider:  provider,
		formatter: formatter,
	}
}

func searchEndpointsSchema() map[string]interface{} {
	methods := make([]interface{}, 0, len(openapi.Methods))
	for _, m := range openapi.Methods {
		methods = append(methods, strings.ToUpper(m))
	}
	scopes := make([]interface{}, 0, len(searchScopes))
	for _, s := range searchScopes {
		scopes = append(scopes, s)
	}

	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"keyword": map[string]interface{}{
				"type":        "string",
				"description": "Case-insensitive substring to look for",
			},
			"regex": map[string]interface{}{
				"type":        "string",
				"description": "Case-insensitive regular expression; cannot be combined with keyword",
			},
			"search_in": map[string]interface{}{
				"type":        "string",
				"description": "Fields to search",
				"enum":        scopes,
				"default":     searchInAll,
			},
			"tags": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Only endpoints carrying at least one of these tags",
			},
			"methods": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string", "enum": methods},
				"description": "Only endpoints with one of these HTTP methods",
			},
			"include_deprecated": map[string]interface{}{
				"type":        "boolean",
				"description": "Include deprecated endpoints",
				"default":     false,
			},
			"limit": map[string]interface{}{
				"type":        "integer",
				"minimum":     1,
				"maximum":     100,
				"description": "Maximum number of results",
				"default":     defaultSearchLimit,
			},
		},
	}
}

type searchQuery struct {
	keyword           string
	pattern           *regexp.Regexp
	display           string
	searchIn          string
	tags              []string
	methods           []string
	includeDeprecated bool
	limit             int
}

// Execute runs the search. Argument problems are reported as error results.
func (t *SearchEndpointsTool) Execute(ctx context.Context, args map[string]interface{}) (*domain.ToolResult, error) {
	if invalid := t.validateArguments(args); invalid != nil {
		return invalid, nil
	}
	query, invalid := parseSearchQuery(args)
	if invalid != nil {
		return invalid, nil
	}

	spec, err := t.provider.Spec(ctx)
	if err != nil {
		return errorResult("search failed - %v", err), nil
	}

	results := searchOperations(openapi.Operations(spec), query)
	truncated := len(results) > query.limit
	if truncated {
		results = results[:query.limit]
	}

	return domain.NewTextResult(t.formatter.FormatSearchResults(formatters.SearchResults{
		Query:     query.display,
		SearchIn:  query.searchIn,
		Results:   results,
		Truncated: truncated,
	})), nil
}

func parseSearchQuery(args map[string]interface{}) (searchQuery, *domain.ToolResult) {
	keyword := strings.TrimSpace(cast.ToString(args["keyword"]))
	expr := strings.TrimSpace(cast.ToString(args["regex"]))

	switch {
	case keyword == "" && expr == "":
		return searchQuery{}, errorResult("a search keyword or regex is required")
	case keyword != "" && expr != "":
		return searchQuery{}, errorResult("keyword and regex cannot be used together")
	}

	q := searchQuery{
		keyword:           strings.ToLower(keyword),
		display:           keyword,
		searchIn:          searchInAll,
		tags:              cast.ToStringSlice(args["tags"]),
		includeDeprecated: cast.ToBool(args["include_deprecated"]),
		limit:             defaultSearchLimit,
	}
	if expr != "" {
		pattern, err := regexp.Compile("(?i)" + expr)
		if err != nil {
			return searchQuery{}, errorResult("invalid regular expression - %v", err)
		}
		q.pattern = pattern
		q.display = expr
	}
	if raw, ok := args["search_in"]; ok {
		q.searchIn = strings.ToLower(cast.ToString(raw))
	}
	if !containsString(searchScopes, q.searchIn) {
		return searchQuery{}, errorResult("invalid search scope %q, must be path, summary, description, tags or all", q.searchIn)
	}
	for _, m := range cast.ToStringSlice(args["methods"]) {
		q.methods = append(q.methods, strings.ToUpper(m))
	}
	if raw, ok := args["limit"]; ok {
		q.limit = cast.ToInt(raw)
	}
	return q, nil
}

// searchOperations returns the matches in the order of ops, which is path
// then method.
func searchOperations(ops []openapi.Operation, q searchQuery) []formatters.SearchResult {
	results := make([]formatters.SearchResult, 0)
	for _, op := range ops {
		if len(q.methods) > 0 && !containsString(q.methods, op.Method) {
			continue
		}
		if !q.includeDeprecated && op.Deprecated() {
			continue
		}
		tags := op.Tags()
		if len(q.tags) > 0 && !containsAny(tags, q.tags) {
			continue
		}

		matchedIn := q.match(op.Path, op.Summary(), op.Description(), tags)
		if matchedIn == "" {
			continue
		}
		results = append(results, formatters.SearchResult{
			Method:      op.Method,
			Path:        op.Path,
			Summary:     op.Summary(),
			Description: op.Description(),
			Tags:        tags,
			MatchedIn:   matchedIn,
			Deprecated:  op.Deprecated(),
		})
	}
	return results
}

// match returns the first searched field that matches, or "".
func (q searchQuery) match(path, summary, description string, tags []string) string {
	fields := []struct {
		name string
		text string
	}{
		{"path", path},
		{"summary", summary},
		{"description", description},
		{"tags", strings.Join(tags, " ")},
	}
	for _, f := range fields {
		if q.searchIn != searchInAll && q.searchIn != f.name {
			continue
		}
		if q.pattern != nil {
			if q.pattern.MatchString(f.text) {
				return f.name
			}
			continue
		}
		if strings.Contains(strings.ToLower(f.text), q.keyword) {
			return f.name
		}
	}
	return ""
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func containsAny(list, wanted []string) bool {
	for _, item := range list {
		if containsString(wanted, item) {
			return true
		}
	}
	return false
}
