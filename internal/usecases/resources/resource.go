// Package resources exposes the OpenAPI document as MCP resources.
package resources

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/yosida95/uritemplate/v3"

	"github.com/FreePeak/openapi-mcp-server/internal/domain"
	mcperrors "github.com/FreePeak/openapi-mcp-server/internal/domain/shared/errors"
)

// MIMEType is the content type of every resource in this package.
const MIMEType = "application/json"

// Scheme prefixes every resource URI.
const Scheme = "openapi://"

type readFunc func(spec map[string]interface{}, vars map[string]string, query string) (string, error)

// Resource is a URI template bound to a reader over the OpenAPI document.
type Resource struct {
	template    string
	name        string
	description string
	provider    domain.SpecProvider
	match       func(uri string) (map[string]string, bool)
	read        readFunc
}

func (r *Resource) URITemplate() string { return r.template }
func (r *Resource) Name() string        { return r.name }
func (r *Resource) Description() string { return r.description }
func (r *Resource) MIMEType() string    { return MIMEType }

// Matches reports whether uri belongs to this resource. Query strings are
// ignored.
func (r *Resource) Matches(uri string) bool {
	_, ok := r.match(stripQuery(uri))
	return ok
}

// Read loads the document and renders the content for uri.
func (r *Resource) Read(ctx context.Context, uri string) (string, error) {
	base, query := splitQuery(uri)
	vars, ok := r.match(base)
	if !ok {
		return "", mcperrors.NewInvalidInputError("URI "+uri+" does not match template "+r.template, nil)
	}

	spec, err := r.provider.Spec(ctx)
	if err != nil {
		return "", errors.Wrap(err, "failed to load OpenAPI document")
	}
	return r.read(spec, vars, query)
}

// templateMatcher matches URIs against an RFC 6570 template and returns the
// expanded variables. Empty variables do not match.
func templateMatcher(template string) func(string) (map[string]string, bool) {
	tmpl := uritemplate.MustNew(template)
	names := tmpl.Varnames()
	return func(uri string) (map[string]string, bool) {
		values := tmpl.Match(uri)
		if values == nil {
			return nil, false
		}
		vars := make(map[string]string, len(names))
		for _, name := range names {
			v := values.Get(name).String()
			if v == "" {
				return nil, false
			}
			vars[name] = v
		}
		return vars, true
	}
}

func literalMatcher(want string) func(string) (map[string]string, bool) {
	return func(uri string) (map[string]string, bool) {
		return nil, uri == want
	}
}

// prefixMatcher captures everything after prefix as the named variable, so
// values may contain slashes.
func prefixMatcher(prefix, name string) func(string) (map[string]string, bool) {
	return func(uri string) (map[string]string, bool) {
		if !strings.HasPrefix(uri, prefix) {
			return nil, false
		}
		return map[string]string{name: strings.TrimPrefix(uri, prefix)}, true
	}
}

func splitQuery(uri string) (string, string) {
	if i := strings.IndexByte(uri, '?'); i >= 0 {
		return uri[:i], uri[i+1:]
	}
	return uri, ""
}

func stripQuery(uri string) string {
	base, _ := splitQuery(uri)
	return base
}

// encodeJSON renders v with two space indentation and without HTML escaping.
func encodeJSON(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", errors.Wrap(err, "failed to encode resource")
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
