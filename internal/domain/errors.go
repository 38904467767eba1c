package domain

import (
	"fmt"
	"net/http"
)

// Transport-level rejections. They are answered with the HTTP status in Code
// and never produce a JSON-RPC envelope.
var (
	ErrUnsupportedProtocolVersion = NewError("unsupported protocol version", http.StatusBadRequest)
	ErrOriginNotAllowed           = NewError("origin not allowed", http.StatusForbidden)
	ErrSessionIDRequired          = NewError("Mcp-Session-Id header is required", http.StatusBadRequest)
	ErrNotAcceptable              = NewError("Accept header must be text/event-stream", http.StatusNotAcceptable)
	ErrMethodNotAllowed           = NewError("method not allowed", http.StatusMethodNotAllowed)
	ErrInvalidBody                = NewError("invalid JSON-RPC request", http.StatusBadRequest)
)

// Error represents a domain error with an associated HTTP status code.
type Error struct {
	Message string
	Code    int
}

// Error returns the error message.
func (e *Error) Error() string {
	return e.Message
}

// NewError creates a new domain error with the given message and code.
func NewError(message string, code int) *Error {
	return &Error{
		Message: message,
		Code:    code,
	}
}

// StatusCode returns the HTTP status for err, 500 when err is not an *Error.
func StatusCode(err error) int {
	switch e := err.(type) {
	case *Error:
		return e.Code
	case *SessionNotFoundError:
		return e.Err.Code
	case *ProtocolVersionError:
		return e.Err.Code
	default:
		return http.StatusInternalServerError
	}
}

// SessionNotFoundError indicates that a requested session was not found or expired.
type SessionNotFoundError struct {
	ID  string
	Err *Error
}

// Error returns the error message.
func (e *SessionNotFoundError) Error() string {
	return e.Err.Error()
}

// NewSessionNotFoundError creates a new SessionNotFoundError.
func NewSessionNotFoundError(id string) *SessionNotFoundError {
	return &SessionNotFoundError{
		ID: id,
		Err: NewError(
			fmt.Sprintf("session %s not found", id),
			http.StatusNotFound,
		),
	}
}

// ProtocolVersionError indicates a client asked for a protocol revision the
// server does not speak.
type ProtocolVersionError struct {
	Requested string
	Err       *Error
}

// Error returns the error message.
func (e *ProtocolVersionError) Error() string {
	return e.Err.Error()
}

// NewProtocolVersionError creates a new ProtocolVersionError.
func NewProtocolVersionError(requested, supported string) *ProtocolVersionError {
	return &ProtocolVersionError{
		Requested: requested,
		Err: NewError(
			fmt.Sprintf("unsupported protocol version %q, expected %q", requested, supported),
			ErrUnsupportedProtocolVersion.Code,
		),
	}
}
