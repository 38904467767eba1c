package formatters

import (
	"fmt"
	"strings"
)

type plainFormatter struct {
	truncator
}

func (f *plainFormatter) Kind() Kind { return Plain }

func (f *plainFormatter) FormatSearchResults(results SearchResults) string {
	if len(results.Results) == 0 {
		return "No results found."
	}

	lines := []string{fmt.Sprintf("Search Results (%d endpoints):", len(results.Results)), ""}
	for _, r := range results.Results {
		summary := r.Summary
		if summary == "" {
			summary = "No description"
		}
		lines = append(lines, fmt.Sprintf("  %s %s - %s", strings.ToUpper(r.Method), r.Path, summary))
	}
	if results.Truncated {
		lines = append(lines, "", "Results truncated to the requested limit.")
	}
	return f.Truncate(strings.Join(lines, "\n"))
}
