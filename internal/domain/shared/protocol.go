package shared

// ProtocolVersion is the only MCP protocol revision the transport accepts.
const ProtocolVersion = "2025-06-18"

// HTTP headers of the streamable HTTP transport.
const (
	HeaderProtocolVersion = "Mcp-Protocol-Version"
	HeaderSessionID       = "Mcp-Session-Id"
	HeaderLastEventID     = "Last-Event-Id"
)

// DefaultSessionID is the reserved session used by clients that never send
// a session header.
const DefaultSessionID = "default-session"
