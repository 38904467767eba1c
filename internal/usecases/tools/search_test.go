package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FreePeak/openapi-mcp-server/internal/domain"
	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/formatters"
	"github.com/FreePeak/openapi-mcp-server/internal/testutil"
)

type searchOutput struct {
	Query     string `json:"query"`
	Total     int    `json:"total"`
	Truncated bool   `json:"truncated"`
	Results   []struct {
		Method    string `json:"method"`
		Path      string `json:"path"`
		MatchedIn string `json:"matched_in"`
	} `json:"results"`
}

func newSearchTool(t *testing.T, provider domain.SpecProvider) *SearchEndpointsTool {
	t.Helper()
	formatter, err := formatters.New(formatters.JSON, 0)
	require.NoError(t, err)
	return NewSearchEndpointsTool(provider, formatter)
}

func runSearch(t *testing.T, args map[string]interface{}) searchOutput {
	t.Helper()
	result, err := newSearchTool(t, testutil.NewPetstoreProvider()).Execute(context.Background(), args)
	require.NoError(t, err)
	require.False(t, result.IsError, result.Content[0].Text)

	var out searchOutput
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &out))
	return out
}

func endpointsOf(out searchOutput) []string {
	var got []string
	for _, r := range out.Results {
		got = append(got, r.Method+" "+r.Path+" "+r.MatchedIn)
	}
	return got
}

func TestSearchEndpoints(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
		want []string
	}{
		{
			name: "keyword everywhere",
			args: map[string]interface{}{"keyword": "PET"},
			want: []string{
				"GET /pets path",
				"POST /pets path",
				"GET /pets/{petId} path",
				"GET /store/inventory summary",
			},
		},
		{
			name: "include deprecated",
			args: map[string]interface{}{"keyword": "pet", "include_deprecated": true, "search_in": "path"},
			want: []string{
				"GET /pets path",
				"POST /pets path",
				"DELETE /pets/{petId} path",
				"GET /pets/{petId} path",
			},
		},
		{
			name: "regex on path",
			args: map[string]interface{}{"regex": "^/STORE", "search_in": "path"},
			want: []string{"GET /store/inventory path"},
		},
		{
			name: "method filter",
			args: map[string]interface{}{"keyword": "pet", "methods": []interface{}{"POST"}},
			want: []string{"POST /pets path"},
		},
		{
			name: "tag filter",
			args: map[string]interface{}{"keyword": "pet", "tags": []interface{}{"store"}},
			want: []string{"GET /store/inventory summary"},
		},
		{
			name: "tags scope",
			args: map[string]interface{}{"keyword": "store", "search_in": "tags"},
			want: []string{"GET /store/inventory tags"},
		},
		{
			name: "description scope",
			args: map[string]interface{}{"keyword": "knows about", "search_in": "description"},
			want: []string{"GET /pets description"},
		},
		{
			name: "no match",
			args: map[string]interface{}{"keyword": "zebra"},
			want: nil,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, endpointsOf(runSearch(t, tc.args)))
		})
	}
}

func TestSearchEndpointsLimit(t *testing.T) {
	out := runSearch(t, map[string]interface{}{"keyword": "pet", "limit": 2})
	assert.Equal(t, 2, out.Total)
	assert.True(t, out.Truncated)
	assert.Equal(t, "pet", out.Query)

	out = runSearch(t, map[string]interface{}{"keyword": "pet", "limit": 4})
	assert.False(t, out.Truncated)
}

func TestSearchEndpointsInvalidArguments(t *testing.T) {
	tool := newSearchTool(t, testutil.NewPetstoreProvider())

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"nothing to search", map[string]interface{}{}, "keyword or regex is required"},
		{"blank keyword", map[string]interface{}{"keyword": "  "}, "keyword or regex is required"},
		{"both", map[string]interface{}{"keyword": "a", "regex": "b"}, "cannot be used together"},
		{"bad regex", map[string]interface{}{"regex": "("}, "invalid regular expression"},
		{"limit too large", map[string]interface{}{"keyword": "a", "limit": 500}, "limit"},
		{"unknown scope", map[string]interface{}{"keyword": "a", "search_in": "body"}, "search_in"},
		{"wrong type", map[string]interface{}{"keyword": 5}, "keyword"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := tool.Execute(context.Background(), tc.args)
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, result.Content[0].Text, tc.want)
		})
	}
}

func TestSearchEndpointsProviderError(t *testing.T) {
	tool := newSearchTool(t, &testutil.StaticSpecProvider{Err: errors.New("offline")})

	result, err := tool.Execute(context.Background(), map[string]interface{}{"keyword": "pet"})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "offline")
}

func TestSearchEndpointsMarkdown(t *testing.T) {
	formatter, err := formatters.New(formatters.Markdown, formatters.DefaultMaxLength)
	require.NoError(t, err)
	tool := NewSearchEndpointsTool(testutil.NewPetstoreProvider(), formatter)

	result, err := tool.Execute(context.Background(), map[string]interface{}{"keyword": "inventory"})
	require.NoError(t, err)
	assert.Contains(t, result.Content[0].Text, "- **GET** `/store/inventory` - Returns pet inventories by status")
}

func TestAllTools(t *testing.T) {
	formatter, err := formatters.New(formatters.Plain, 0)
	require.NoError(t, err)

	all := All(testutil.NewPetstoreProvider(), formatter)
	require.Len(t, all, 2)
	assert.Equal(t, SearchEndpointsName, all[0].Name())
	assert.Equal(t, GenerateExamplesName, all[1].Name())
	for _, tool := range all {
		assert.Equal(t, "object", tool.InputSchema()["type"])
		assert.NotEmpty(t, tool.Description())
	}
}
