package server

import (
	"strings"

	"github.com/FreePeak/openapi-mcp-server/internal/domain/shared"
)

// ClientType identifies the kind of client that initialized a session.
type ClientType string

const (
	ClientTypeCursor  ClientType = "cursor"
	ClientTypeClaude  ClientType = "claude"
	ClientTypeGeneric ClientType = "generic"
)

// DetectClientType guesses the client kind from the clientInfo sent with
// initialize. It is only used for logging.
func DetectClientType(clientInfo *shared.ServerInfo) ClientType {
	if clientInfo == nil {
		return ClientTypeGeneric
	}
	name := strings.ToLower(clientInfo.Name)
	switch {
	case strings.Contains(name, "cursor"):
		return ClientTypeCursor
	case strings.Contains(name, "claude"):
		return ClientTypeClaude
	default:
		return ClientTypeGeneric
	}
}
