package errors

import "fmt"

// ResourceNotFoundError indicates no registered resource matches a URI
type ResourceNotFoundError struct {
	URI string
}

// Error returns the error message
func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.URI)
}

// ResourceAccessDeniedError indicates access to a resource was denied
type ResourceAccessDeniedError struct {
	URI string
}

// Error returns the error message
func (e *ResourceAccessDeniedError) Error() string {
	return fmt.Sprintf("resource access denied: %s", e.URI)
}

// ResourceReadError indicates a matching resource failed while reading
type ResourceReadError struct {
	URI   string
	Cause error
}

// Error returns the error message
func (e *ResourceReadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to read resource %s: %v", e.URI, e.Cause)
	}
	return fmt.Sprintf("failed to read resource %s", e.URI)
}

// Unwrap returns the underlying cause
func (e *ResourceReadError) Unwrap() error {
	return e.Cause
}

// ToolNotFoundError indicates a tool was not found
type ToolNotFoundError struct {
	Name string
}

// Error returns the error message
func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool not found: %s", e.Name)
}

// ToolExecutionError indicates a tool execution failed
type ToolExecutionError struct {
	Name  string
	Cause error
}

// Error returns the error message
func (e *ToolExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("tool execution failed: %s: %v", e.Name, e.Cause)
	}
	return fmt.Sprintf("tool execution failed: %s", e.Name)
}

// Unwrap returns the underlying cause
func (e *ToolExecutionError) Unwrap() error {
	return e.Cause
}
