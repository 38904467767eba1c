package formatters

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResults() SearchResults {
	return SearchResults{
		Query:    "pet",
		SearchIn: "all",
		Results: []SearchResult{
			{Method: "get", Path: "/pets", Summary: "List all pets", Description: "Returns every pet", Tags: []string{"pets"}, MatchedIn: "path"},
			{Method: "DELETE", Path: "/pets/{petId}", Summary: "Delete a pet", Tags: []string{"pets"}, MatchedIn: "path", Deprecated: true},
		},
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"", Markdown},
		{"markdown", Markdown},
		{"JSON", JSON},
		{" plain ", Plain},
		{"text", Plain},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseKind(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := ParseKind("xml")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestNew(t *testing.T) {
	for _, kind := range Kinds {
		f, err := New(kind, 0)
		require.NoError(t, err)
		assert.Equal(t, kind, f.Kind())
	}

	_, err := New(Kind("yaml"), 0)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestTruncate(t *testing.T) {
	short := truncator{maxLength: 200}
	assert.Equal(t, "hello", short.Truncate("hello"))

	unlimited := truncator{}
	long := strings.Repeat("a", 5000)
	assert.Equal(t, long, unlimited.Truncate(long))

	out := short.Truncate(strings.Repeat("é", 500))
	assert.True(t, strings.HasPrefix(out, strings.Repeat("é", 100)+"\n\n...\n\n"))
	assert.False(t, strings.HasPrefix(out, strings.Repeat("é", 101)))
	assert.Contains(t, out, "total length: 500 characters, limit: 200 characters")
}

func TestMarkdownSearchResults(t *testing.T) {
	f, err := New(Markdown, DefaultMaxLength)
	require.NoError(t, err)

	out := f.FormatSearchResults(sampleResults())
	assert.Contains(t, out, `**Search results: "pet"**`)
	assert.Contains(t, out, "**Matches**: 2 endpoints")
	assert.Contains(t, out, "- **GET** `/pets` - List all pets")
	assert.Contains(t, out, "- **DELETE** `/pets/{petId}` (deprecated) - Delete a pet")
	assert.Contains(t, out, "  - *Description*: Returns every pet")
	assert.NotContains(t, out, "Results truncated")

	empty := f.FormatSearchResults(SearchResults{Query: "zzz", SearchIn: "path"})
	assert.Contains(t, empty, "**Matches**: 0 endpoints")
	assert.Contains(t, empty, "**Searched in**: path")
	assert.Contains(t, empty, "Suggestions")

	truncated := sampleResults()
	truncated.Truncated = true
	assert.Contains(t, f.FormatSearchResults(truncated), "Results truncated")
}

func TestJSONSearchResults(t *testing.T) {
	f, err := New(JSON, 0)
	require.NoError(t, err)

	var decoded struct {
		Query   string                   `json:"query"`
		Total   int                      `json:"total"`
		Results []map[string]interface{} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(f.FormatSearchResults(sampleResults())), &decoded))
	assert.Equal(t, "pet", decoded.Query)
	assert.Equal(t, 2, decoded.Total)
	assert.Equal(t, "/pets/{petId}", decoded.Results[1]["path"])

	empty := f.FormatSearchResults(SearchResults{Query: "x"})
	assert.Contains(t, empty, `"results": []`)
}

func TestPlainSearchResults(t *testing.T) {
	f, err := New(Plain, 0)
	require.NoError(t, err)

	out := f.FormatSearchResults(sampleResults())
	assert.Equal(t, "Search Results (2 endpoints):\n\n  GET /pets - List all pets\n  DELETE /pets/{petId} - Delete a pet", out)
	assert.Equal(t, "No results found.", f.FormatSearchResults(SearchResults{Query: "x"}))
}
