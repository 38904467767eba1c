package formatters

import (
	"bytes"
	"encoding/json"
)

type jsonFormatter struct {
	truncator
}

type jsonSearchResults struct {
	Query     string         `json:"query"`
	SearchIn  string         `json:"search_in"`
	Results   []SearchResult `json:"results"`
	Total     int            `json:"total"`
	Truncated bool           `json:"truncated"`
}

func (f *jsonFormatter) Kind() Kind { return JSON }

func (f *jsonFormatter) FormatSearchResults(results SearchResults) string {
	items := results.Results
	if items == nil {
		items = []SearchResult{}
	}
	return f.Truncate(encodeIndented(jsonSearchResults{
		Query:     results.Query,
		SearchIn:  results.SearchIn,
		Results:   items,
		Total:     len(items),
		Truncated: results.Truncated,
	}))
}

// encodeIndented renders v as indented JSON without HTML escaping.
func encodeIndented(v interface{}) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "{}"
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}
