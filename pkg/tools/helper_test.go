package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTool(t *testing.T) {
	tool := NewTool("lookup",
		WithDescription("Look up a pet"),
		WithString("name", Description("Pet name"), Required()),
		WithInteger("limit", Default(10)),
		WithString("status", Enum("available", "sold")),
		WithArray("tags"),
		WithArray("ids", Items("integer")),
		WithBoolean("verbose"),
	)

	assert.Equal(t, "lookup", tool.Name)
	assert.Equal(t, "Look up a pet", tool.Description)
	require.Len(t, tool.Parameters, 6)
	assert.True(t, tool.Parameters[0].Required)
	assert.Equal(t, "integer", tool.Parameters[1].Type)

	schema := tool.InputSchema()
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []interface{}{"name"}, schema["required"])

	props := schema["properties"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"type": "string", "description": "Pet name"}, props["name"])
	assert.Equal(t, map[string]interface{}{"type": "integer", "default": 10}, props["limit"])
	assert.Equal(t, []interface{}{"available", "sold"}, props["status"].(map[string]interface{})["enum"])
	assert.Equal(t, map[string]interface{}{"type": "string"}, props["tags"].(map[string]interface{})["items"])
	assert.Equal(t, map[string]interface{}{"type": "integer"}, props["ids"].(map[string]interface{})["items"])
}

func TestNewToolWithoutParameters(t *testing.T) {
	schema := NewTool("ping").InputSchema()
	assert.NotContains(t, schema, "required")
	assert.Empty(t, schema["properties"])
}
