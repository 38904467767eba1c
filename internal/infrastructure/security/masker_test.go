package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataMaskerMaskText(t *testing.T) {
	masker := MustDataMasker(nil, "")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"key equals", "password=hunter2 user=bob", "password=*** user=bob"},
		{"key colon", "token: abc123, other: 1", "token: ***, other: 1"},
		{"quoted value", `secret = "s3 cr3t"`, `secret = "***"`},
		{"single quoted", `api_key='xyz'`, `api_key='***'`},
		{"json document", `{"username": "bob", "password": "hunter2"}`, `{"username": "bob", "password": "***"}`},
		{"case insensitive", "Authorization: Bearer", "Authorization: ***"},
		{"nothing sensitive", "name=bob", "name=bob"},
		{"stops at brace", `{access_token=abc}`, `{access_token=***}`},
		{"json object value untouched", `{"bearerAuth": {"type": "http"}}`, `{"bearerAuth": {"type": "http"}}`},
		{"json array value untouched", `{"api_key": [], "x": 1}`, `{"api_key": [], "x": 1}`},
		{"json bare value untouched", `{"password": 42, "token": null}`, `{"password": 42, "token": null}`},
		{"escaped quotes", `{"secret": "a \"b\" c", "n": 1}`, `{"secret": "***", "n": 1}`},
		{"inside json string", `{"summary": "send token:abc"}`, `{"summary": "send token:***"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, masker.MaskText(tc.in))
		})
	}
}

func TestDataMaskerCustomPatternAndPlaceholder(t *testing.T) {
	masker, err := NewDataMasker([]string{"ssn|credit_card"}, "[hidden]")
	require.NoError(t, err)
	assert.Equal(t, "[hidden]", masker.Placeholder())

	assert.Equal(t, "ssn=[hidden] name=bob", masker.MaskText("ssn=123-45-6789 name=bob"))
	assert.Equal(t, "credit_card: [hidden]", masker.MaskText("credit_card: 4111"))
}

func TestDataMaskerInvalidPattern(t *testing.T) {
	_, err := NewDataMasker([]string{"("}, "")
	assert.Error(t, err)

	assert.Panics(t, func() { MustDataMasker([]string{"("}, "") })
}

func TestDataMaskerMaskMap(t *testing.T) {
	masker := MustDataMasker(nil, "")
	in := map[string]interface{}{
		"username": "bob",
		"Password": "hunter2",
		"nested": map[string]interface{}{
			"api_key": "k",
			"count":   3,
		},
		"items": []interface{}{
			map[string]interface{}{"secret_value": 1},
			"plain",
		},
	}

	out := masker.MaskMap(in)
	assert.Equal(t, map[string]interface{}{
		"username": "bob",
		"Password": "***",
		"nested": map[string]interface{}{
			"api_key": "***",
			"count":   3,
		},
		"items": []interface{}{
			map[string]interface{}{"secret_value": "***"},
			"plain",
		},
	}, out)
	assert.Equal(t, "hunter2", in["Password"], "input is not modified")
	assert.Nil(t, masker.MaskMap(nil))
}
