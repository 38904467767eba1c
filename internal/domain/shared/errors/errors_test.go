package errors

import (
	"fmt"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorTypes(t *testing.T) {
	assert.Equal(t, ErrorType("not_found"), ErrorTypeNotFound)
	assert.Equal(t, ErrorType("invalid_input"), ErrorTypeInvalidInput)
	assert.Equal(t, ErrorType("access_denied"), ErrorTypeAccessDenied)
	assert.Equal(t, ErrorType("internal"), ErrorTypeInternal)
}

func TestNewNotFoundError(t *testing.T) {
	cause := fmt.Errorf("original error")
	err := NewNotFoundError("model Pet not found", cause)

	assert.Equal(t, ErrorTypeNotFound, err.Type)
	assert.Equal(t, "model Pet not found: original error", err.Error())
	assert.Same(t, cause, err.Unwrap())
	assert.True(t, IsNotFound(err))
	assert.False(t, IsInvalidInput(err))
	assert.False(t, IsInternal(err))
}

func TestNewInvalidInputError(t *testing.T) {
	err := NewInvalidInputError("keyword and regex are mutually exclusive", nil)

	assert.Equal(t, "keyword and regex are mutually exclusive", err.Error())
	assert.True(t, IsInvalidInput(err))
	assert.False(t, IsNotFound(err))
}

func TestNewAccessDeniedError(t *testing.T) {
	err := NewAccessDeniedError("blocked by policy", nil)

	assert.True(t, IsAccessDenied(err))
	assert.False(t, IsInternal(err))
}

func TestWithData(t *testing.T) {
	err := NewInvalidInputError("bad", nil).WithData(map[string]string{"field": "limit"})
	assert.Equal(t, map[string]string{"field": "limit"}, err.Data)
}

func TestWrap(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, "context"))
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		err := Wrap(fmt.Errorf("boom"), "loading spec")
		assert.True(t, IsInternal(err))
		assert.Equal(t, "loading spec: boom", err.Error())
	})

	t.Run("keeps type of wrapped MCPError", func(t *testing.T) {
		err := Wrap(NewNotFoundError("endpoint /pets missing", nil), "reading endpoint")
		assert.True(t, IsNotFound(err))
		assert.Contains(t, err.Error(), "endpoint /pets missing")
	})
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"resource not found", &ResourceNotFoundError{URI: "openapi://x"}, ErrorTypeNotFound},
		{"tool not found", &ToolNotFoundError{Name: "x"}, ErrorTypeNotFound},
		{"access denied", &ResourceAccessDeniedError{URI: "openapi://x"}, ErrorTypeAccessDenied},
		{"wrapped with pkg/errors", pkgerrors.Wrap(NewInvalidInputError("bad", nil), "ctx"), ErrorTypeInvalidInput},
		{"plain", fmt.Errorf("plain"), ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeOf(tt.err))
		})
	}
}

func TestSpecificErrors(t *testing.T) {
	cause := fmt.Errorf("spec unavailable")

	readErr := &ResourceReadError{URI: "openapi://models", Cause: cause}
	assert.Equal(t, "failed to read resource openapi://models: spec unavailable", readErr.Error())
	assert.ErrorIs(t, readErr, cause)

	execErr := &ToolExecutionError{Name: "search_endpoints", Cause: cause}
	assert.Equal(t, "tool execution failed: search_endpoints: spec unavailable", execErr.Error())
	assert.ErrorIs(t, execErr, cause)

	assert.Equal(t, "tool execution failed: x", (&ToolExecutionError{Name: "x"}).Error())
	assert.Equal(t, "resource access denied: openapi://spec", (&ResourceAccessDeniedError{URI: "openapi://spec"}).Error())
}
