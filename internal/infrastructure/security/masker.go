package security

import (
	"regexp"

	"github.com/pkg/errors"
)

// DefaultMaskPlaceholder replaces masked values.
const DefaultMaskPlaceholder = "***"

// DefaultSensitivePatterns are the key patterns masked out of the box.
var DefaultSensitivePatterns = []string{
	"password",
	"passwd",
	"pwd",
	"token",
	"access_token",
	"refresh_token",
	"api_key",
	"apikey",
	"secret",
	"auth",
	"authorization",
	"credential",
}

// assignedValue matches a quoted string (escapes allowed) or a bare token.
// Bare tokens stop at quotes and brackets so masking never breaks the
// enclosing string or structure.
const assignedValue = `"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'|[^\s,{}\[\]"']+`

// DataMasker hides values of sensitive keys in text, maps and slices.
// Patterns are case-insensitive regular expressions matched against key
// names.
type DataMasker struct {
	placeholder string
	keys        []*regexp.Regexp
	// assignments match "key: value", "key=value" and "\"key\": \"value\"".
	// Object and array values never match.
	assignments []*regexp.Regexp
}

// NewDataMasker creates a masker using the default patterns plus custom
// ones. An empty placeholder selects DefaultMaskPlaceholder.
func NewDataMasker(customPatterns []string, placeholder string) (*DataMasker, error) {
	if placeholder == "" {
		placeholder = DefaultMaskPlaceholder
	}

	patterns := append(append([]string(nil), DefaultSensitivePatterns...), customPatterns...)
	m := &DataMasker{placeholder: placeholder}
	for _, pattern := range patterns {
		key, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid sensitive pattern %q", pattern)
		}
		assignment, err := regexp.Compile(`(?i)(?P<prefix>(?:` + pattern + `)(?P<keyquote>["']?)\s*[:=]\s*)(?P<value>` + assignedValue + `)`)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid sensitive pattern %q", pattern)
		}
		m.keys = append(m.keys, key)
		m.assignments = append(m.assignments, assignment)
	}
	return m, nil
}

// MustDataMasker is NewDataMasker that panics on a bad pattern.
func MustDataMasker(customPatterns []string, placeholder string) *DataMasker {
	m, err := NewDataMasker(customPatterns, placeholder)
	if err != nil {
		panic(err)
	}
	return m
}

// Placeholder returns the replacement string.
func (m *DataMasker) Placeholder() string {
	return m.placeholder
}

// IsSensitiveKey reports whether name matches any pattern.
func (m *DataMasker) IsSensitiveKey(name string) bool {
	return matchAny(m.keys, name)
}

// MaskText implements domain.DataMasker. Quoted values keep their quotes.
func (m *DataMasker) MaskText(text string) string {
	for _, re := range m.assignments {
		text = re.ReplaceAllStringFunc(text, func(match string) string {
			groups := re.FindStringSubmatch(match)
			if groups == nil {
				return match
			}
			prefix := groups[re.SubexpIndex("prefix")]
			keyQuote := groups[re.SubexpIndex("keyquote")]
			value := groups[re.SubexpIndex("value")]
			quote := ""
			if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') {
				quote = value[:1]
			}
			// A quoted key with a bare value is JSON (number, bool, null);
			// replacing it with an unquoted placeholder would break the document.
			if keyQuote != "" && quote == "" {
				return match
			}
			return prefix + quote + m.placeholder + quote
		})
	}
	return text
}

// MaskMap returns a copy of data with sensitive keys masked, recursing into
// nested maps and slices.
func (m *DataMasker) MaskMap(data map[string]interface{}) map[string]interface{} {
	if data == nil {
		return nil
	}
	out := make(map[string]interface{}, len(data))
	for key, value := range data {
		if m.IsSensitiveKey(key) {
			out[key] = m.placeholder
			continue
		}
		out[key] = m.maskNested(value)
	}
	return out
}

// MaskSlice returns a copy of data with nested maps masked.
func (m *DataMasker) MaskSlice(data []interface{}) []interface{} {
	out := make([]interface{}, len(data))
	for i, value := range data {
		out[i] = m.maskNested(value)
	}
	return out
}

func (m *DataMasker) maskNested(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		return m.MaskMap(v)
	case []interface{}:
		return m.MaskSlice(v)
	default:
		return v
	}
}
