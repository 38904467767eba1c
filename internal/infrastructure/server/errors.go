package server

import "errors"

// Common errors in the server package
var (
	// ErrResponseWriterNotFlusher is returned when the ResponseWriter doesn't support Flusher interface
	ErrResponseWriterNotFlusher = errors.New("response writer does not implement http.Flusher")

	// ErrEmptyToolName is returned when registering a tool without a name
	ErrEmptyToolName = errors.New("tool name cannot be empty")

	// ErrDuplicateTool is returned when a tool name is registered twice
	ErrDuplicateTool = errors.New("tool already registered")

	// ErrEmptyResourceURI is returned when registering a resource without a URI template
	ErrEmptyResourceURI = errors.New("resource URI template cannot be empty")
)
