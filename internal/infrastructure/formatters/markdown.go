package formatters

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const maxDescriptionPreview = 100

var searchScopes = map[string]string{
	"path":        "path",
	"summary":     "summary",
	"description": "description",
	"tags":        "tags",
	"all":         "all fields",
}

const noResultsHint = "**Suggestions**:\n- Try a more general keyword\n- Check the spelling\n- Search with a regular expression"

type markdownFormatter struct {
	truncator
}

func (f *markdownFormatter) Kind() Kind { return Markdown }

func (f *markdownFormatter) FormatSearchResults(results SearchResults) string {
	if results.Query == "" && len(results.Results) == 0 {
		return "**No matching endpoints found**\n\n" + noResultsHint
	}

	scope, ok := searchScopes[results.SearchIn]
	if !ok {
		scope = searchScopes["all"]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Search results: %q**\n\n", results.Query)
	fmt.Fprintf(&b, "**Searched in**: %s\n\n", scope)
	fmt.Fprintf(&b, "**Matches**: %d endpoints\n\n", len(results.Results))

	if len(results.Results) == 0 {
		b.WriteString("No matching endpoints found.\n\n" + noResultsHint)
		return f.Truncate(b.String())
	}
	if results.Truncated {
		b.WriteString("> **Results truncated** - only the first matches are shown\n\n")
	}

	for _, r := range results.Results {
		fmt.Fprintf(&b, "- **%s** `%s`", strings.ToUpper(r.Method), r.Path)
		if r.Deprecated {
			b.WriteString(" (deprecated)")
		}
		if r.Summary != "" {
			b.WriteString(" - " + r.Summary)
		}
		b.WriteString("\n")

		if r.MatchedIn != "" {
			fmt.Fprintf(&b, "  - *Matched in*: %s\n", r.MatchedIn)
		}
		if len(r.Tags) > 0 {
			fmt.Fprintf(&b, "  - *Tags*: %s\n", strings.Join(r.Tags, ", "))
		}
		if r.Description != "" && r.Description != r.Summary {
			fmt.Fprintf(&b, "  - *Description*: %s\n", preview(r.Description))
		}
		b.WriteString("\n")
	}
	return f.Truncate(strings.TrimRight(b.String(), "\n"))
}

func preview(s string) string {
	if utf8.RuneCountInString(s) <= maxDescriptionPreview {
		return s
	}
	return string([]rune(s)[:maxDescriptionPreview]) + "..."
}
