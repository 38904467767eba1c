package domain

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	err := NewError("test error", http.StatusTeapot)

	assert.Equal(t, "test error", err.Error())
	assert.Equal(t, http.StatusTeapot, err.Code)
}

func TestTransportErrors(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		code int
	}{
		{"unsupported version", ErrUnsupportedProtocolVersion, http.StatusBadRequest},
		{"origin", ErrOriginNotAllowed, http.StatusForbidden},
		{"session id required", ErrSessionIDRequired, http.StatusBadRequest},
		{"not acceptable", ErrNotAcceptable, http.StatusNotAcceptable},
		{"method not allowed", ErrMethodNotAllowed, http.StatusMethodNotAllowed},
		{"invalid body", ErrInvalidBody, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, StatusCode(tt.err))
		})
	}
}

func TestSessionNotFoundError(t *testing.T) {
	err := NewSessionNotFoundError("abc")

	assert.Equal(t, "abc", err.ID)
	assert.Equal(t, "session abc not found", err.Error())
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
}

func TestProtocolVersionError(t *testing.T) {
	err := NewProtocolVersionError("2024-11-05", "2025-06-18")

	assert.Equal(t, "2024-11-05", err.Requested)
	assert.Contains(t, err.Error(), "2024-11-05")
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
}

func TestStatusCodeUnknownError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusCode(errors.New("boom")))
}
