package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorType defines the type of error
type ErrorType string

const (
	// ErrorTypeNotFound indicates a resource, tool, endpoint or model that does not exist
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeInvalidInput indicates invalid input parameters
	ErrorTypeInvalidInput ErrorType = "invalid_input"
	// ErrorTypeAccessDenied indicates a request rejected by a security policy
	ErrorTypeAccessDenied ErrorType = "access_denied"
	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "internal"
)

// MCPError is an error raised by a tool or resource handler. The transport
// turns its Type into a JSON-RPC error code.
type MCPError struct {
	Type    ErrorType
	Message string
	Data    interface{}
	Cause   error
}

// Error returns the error message
func (e *MCPError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *MCPError) Unwrap() error {
	return e.Cause
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, cause error) *MCPError {
	return &MCPError{Type: ErrorTypeNotFound, Message: message, Cause: cause}
}

// NewInvalidInputError creates a new invalid input error
func NewInvalidInputError(message string, cause error) *MCPError {
	return &MCPError{Type: ErrorTypeInvalidInput, Message: message, Cause: cause}
}

// NewAccessDeniedError creates a new access denied error
func NewAccessDeniedError(message string, cause error) *MCPError {
	return &MCPError{Type: ErrorTypeAccessDenied, Message: message, Cause: cause}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *MCPError {
	return &MCPError{Type: ErrorTypeInternal, Message: message, Cause: cause}
}

// WithData attaches structured data to the error and returns it.
func (e *MCPError) WithData(data interface{}) *MCPError {
	e.Data = data
	return e
}

// Wrap wraps an error with additional context, keeping the error type of a
// wrapped MCPError. Plain errors become internal errors.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	var mcpErr *MCPError
	if !errors.As(err, &mcpErr) {
		return &MCPError{
			Type:    ErrorTypeInternal,
			Message: message,
			Cause:   err,
		}
	}

	return &MCPError{
		Type:    mcpErr.Type,
		Message: message,
		Data:    mcpErr.Data,
		Cause:   err,
	}
}

// TypeOf returns the ErrorType carried by err, or ErrorTypeInternal when err
// carries none.
func TypeOf(err error) ErrorType {
	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return mcpErr.Type
	}

	var notFound *ResourceNotFoundError
	if errors.As(err, &notFound) {
		return ErrorTypeNotFound
	}
	var toolNotFound *ToolNotFoundError
	if errors.As(err, &toolNotFound) {
		return ErrorTypeNotFound
	}
	var denied *ResourceAccessDeniedError
	if errors.As(err, &denied) {
		return ErrorTypeAccessDenied
	}
	return ErrorTypeInternal
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeNotFound
}

// IsInvalidInput checks if an error is an invalid input error
func IsInvalidInput(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeInvalidInput
}

// IsAccessDenied checks if an error is an access denied error
func IsAccessDenied(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeAccessDenied
}

// IsInternal checks if an error is an internal error
func IsInternal(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeInternal
}
