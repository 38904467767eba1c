package shared

import "encoding/json"

// MCP method names
const (
	// Core methods
	MethodInitialize = "initialize"

	// Resource methods
	MethodListResources = "resources/list"
	MethodReadResource  = "resources/read"

	// Tool methods
	MethodListTools = "tools/list"
	MethodCallTool  = "tools/call"

	// Notifications
	NotificationInitialized          = "notifications/initialized"
	NotificationResourcesListChanged = "notifications/resources/list_changed"
	NotificationToolsListChanged     = "notifications/tools/list_changed"
)

// InitializeParams represents parameters for the initialize method
type InitializeParams struct {
	ProtocolVersion string          `json:"protocolVersion,omitempty"`
	Capabilities    json.RawMessage `json:"capabilities,omitempty"`
	ClientInfo      *ServerInfo     `json:"clientInfo,omitempty"`
}

// InitializeResult represents the result of the initialize method
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      ServerInfo         `json:"serverInfo"`
}

// ListResourcesResult represents the result of the resources/list method
type ListResourcesResult struct {
	Resources []Resource `json:"resources"`
}

// ReadResourceParams represents parameters for the resources/read method
type ReadResourceParams struct {
	URI string `json:"uri"`
}

// ReadResourceResult represents the result of the resources/read method
type ReadResourceResult struct {
	Contents []ResourceContent `json:"contents"`
}

// ListToolsResult represents the result of the tools/list method
type ListToolsResult struct {
	Tools []Tool `json:"tools"`
}

// CallToolParams represents parameters for the tools/call method
type CallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// CallToolResult represents the result of the tools/call method
type CallToolResult struct {
	Content []TextContent `json:"content"`
	IsError bool          `json:"isError"`
}
