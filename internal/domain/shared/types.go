package shared

// ServerInfo contains information about the server
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ServerCapabilities represents the capability flags returned by initialize
type ServerCapabilities struct {
	Tools     FeatureSupport `json:"tools"`
	Resources FeatureSupport `json:"resources"`
	Streaming FeatureSupport `json:"streaming"`
}

// FeatureSupport flags a single server feature
type FeatureSupport struct {
	Supported bool `json:"supported"`
}

// DefaultCapabilities returns the capabilities advertised by the server.
func DefaultCapabilities() ServerCapabilities {
	return ServerCapabilities{
		Tools:     FeatureSupport{Supported: true},
		Resources: FeatureSupport{Supported: true},
		Streaming: FeatureSupport{Supported: true},
	}
}

// Resource represents a resource exposed by the server
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MimeType    string `json:"mimeType"`
}

// Tool represents a tool exposed by the server
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema interface{} `json:"inputSchema"`
}

// TextContent represents text content
type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ResourceContent is one entry of a resources/read result
type ResourceContent struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Type     string `json:"type"`
	Text     string `json:"text"`
}

// EmptyObjectSchema is the input schema used for tools that declare none.
func EmptyObjectSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
		"required":   []interface{}{},
	}
}
