package domain

import (
	"context"
	"time"
)

// ToolRegistry is the ordered collection of tools served by the transport.
type ToolRegistry interface {
	// Register adds a tool. Names must be unique.
	Register(tool Tool) error

	// List returns the tools in registration order.
	List() []Tool

	// Find returns the first tool with exactly the given name.
	Find(name string) (Tool, bool)
}

// ResourceRegistry is the ordered collection of resources served by the transport.
type ResourceRegistry interface {
	// Register adds a resource.
	Register(resource Resource) error

	// List returns the resource listing in registration order.
	List() []ResourceInfo

	// Read returns the content of the first resource matching uri. A URI that
	// matches nothing yields a not found error.
	Read(ctx context.Context, uri string) ([]Content, error)

	// MIMEType returns the MIME type of the resource serving uri, or "".
	MIMEType(uri string) string
}

// SpecProvider gives tools and resources access to the OpenAPI document.
type SpecProvider interface {
	// Spec returns the document as generic JSON values.
	Spec(ctx context.Context) (map[string]interface{}, error)

	// Invalidate drops any cached copy so the next Spec call reloads it.
	Invalidate()
}

// NotificationSender defines the interface for sending notifications to clients.
type NotificationSender interface {
	// SendNotification queues a notification for a specific session.
	SendNotification(ctx context.Context, sessionID string, notification *Notification) error

	// BroadcastNotification queues a notification for every live session.
	BroadcastNotification(ctx context.Context, notification *Notification) error
}

// ToolFilter decides whether a tool call may run.
type ToolFilter interface {
	Allow(toolName string, args map[string]interface{}) bool
}

// DataMasker hides sensitive values in outgoing text.
type DataMasker interface {
	MaskText(text string) string
}

// ResourceAccessPolicy decides whether a resource URI may be read.
type ResourceAccessPolicy interface {
	CanAccess(uri string) bool
}

// AccessLogger records tool and resource access.
type AccessLogger interface {
	LogToolCall(toolName string, args map[string]interface{}, err error)
	LogAccessDenied(toolName string, args map[string]interface{}, reason string)
	LogResourceAccess(uri, sessionID string, duration time.Duration, err error)
	LogResourceAccessDenied(uri, reason, sessionID string)
}

// PerformanceRecorder records the duration and outcome of an operation.
type PerformanceRecorder interface {
	Record(operation string, duration time.Duration, err error)
}
