// Package formatters renders tool output as markdown, JSON or plain text.
package formatters

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// DefaultMaxLength is the output limit used when none is configured.
const DefaultMaxLength = 10000

// truncationReserve is the room kept for the truncation notice.
const truncationReserve = 100

// Kind selects a formatter.
type Kind string

const (
	Markdown Kind = "markdown"
	JSON     Kind = "json"
	Plain    Kind = "plain"
)

// Kinds lists the supported formatter kinds.
var Kinds = []Kind{Markdown, JSON, Plain}

// ErrUnknownKind is returned by ParseKind for unsupported names.
var ErrUnknownKind = errors.New("unknown output format")

// ParseKind resolves a formatter name. The empty string selects Markdown.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "markdown", "md":
		return Markdown, nil
	case "json":
		return JSON, nil
	case "plain", "text", "plaintext":
		return Plain, nil
	default:
		return "", errors.Wrapf(ErrUnknownKind, "%q (expected markdown, json or plain)", name)
	}
}

// SearchResult is one matched endpoint.
type SearchResult struct {
	Method      string   `json:"method"`
	Path        string   `json:"path"`
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	MatchedIn   string   `json:"matched_in"`
	Deprecated  bool     `json:"deprecated"`
}

// SearchResults is the outcome of an endpoint search.
type SearchResults struct {
	// Query is the keyword or regular expression searched for.
	Query    string
	SearchIn string
	Results  []SearchResult
	// Truncated is set when results were cut to the requested limit.
	Truncated bool
}

// Formatter renders tool output.
type Formatter interface {
	Kind() Kind
	FormatSearchResults(results SearchResults) string
	Truncate(text string) string
}

// New returns the formatter for kind. A maxLength of zero or less disables
// truncation.
func New(kind Kind, maxLength int) (Formatter, error) {
	base := truncator{maxLength: maxLength}
	switch kind {
	case Markdown:
		return &markdownFormatter{base}, nil
	case JSON:
		return &jsonFormatter{base}, nil
	case Plain:
		return &plainFormatter{base}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownKind, "%q", kind)
	}
}

type truncator struct {
	maxLength int
}

// Truncate cuts text to the configured length, leaving room for a notice
// that reports the original size. Cuts fall on rune boundaries.
func (t truncator) Truncate(text string) string {
	runes := []rune(text)
	if t.maxLength <= 0 || len(runes) <= t.maxLength {
		return text
	}

	keep := t.maxLength - truncationReserve
	if keep < 0 {
		keep = 0
	}
	return string(runes[:keep]) + "\n\n...\n\n" +
		fmt.Sprintf("Output truncated (total length: %d characters, limit: %d characters)", len(runes), t.maxLength)
}
