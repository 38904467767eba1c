package shared

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeResultMarshal(t *testing.T) {
	result := InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    DefaultCapabilities(),
		ServerInfo:      ServerInfo{Name: "openapi-mcp-server", Version: "0.1.0"},
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"protocolVersion": "2025-06-18",
		"capabilities": {
			"tools": {"supported": true},
			"resources": {"supported": true},
			"streaming": {"supported": true}
		},
		"serverInfo": {"name": "openapi-mcp-server", "version": "0.1.0"}
	}`, string(data))
}

func TestCallToolResultAlwaysCarriesIsError(t *testing.T) {
	data, err := json.Marshal(CallToolResult{Content: []TextContent{{Type: "text", Text: "ok"}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":[{"type":"text","text":"ok"}],"isError":false}`, string(data))
}

func TestEmptyObjectSchema(t *testing.T) {
	data, err := json.Marshal(EmptyObjectSchema())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"object","properties":{},"required":[]}`, string(data))
}

func TestMethodConstants(t *testing.T) {
	assert.Equal(t, "initialize", MethodInitialize)
	assert.Equal(t, "tools/list", MethodListTools)
	assert.Equal(t, "tools/call", MethodCallTool)
	assert.Equal(t, "resources/list", MethodListResources)
	assert.Equal(t, "resources/read", MethodReadResource)
	assert.Equal(t, "notifications/initialized", NotificationInitialized)
}
