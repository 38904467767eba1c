package builder

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FreePeak/openapi-mcp-server/internal/testutil"
	"github.com/FreePeak/openapi-mcp-server/pkg/tools"
	"github.com/FreePeak/openapi-mcp-server/pkg/types"
)

func echo(ctx context.Context, req types.ToolCallRequest) (*types.ToolResult, error) {
	return types.NewTextResult("ok"), nil
}

func TestServerBuilderBuild(t *testing.T) {
	data, err := os.ReadFile(testutil.PetstorePath())
	require.NoError(t, err)

	s, err := NewServerBuilder().
		WithSpecData(data).
		WithName("petstore").
		WithVersion("1.2.3").
		WithAddress("127.0.0.1:0").
		WithPrefix("/mcp").
		AddTool(tools.NewTool("echo"), echo).
		Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:0", s.Address())
}

func TestServerBuilderBuildErrors(t *testing.T) {
	_, err := NewServerBuilder().
		WithSpec(testutil.PetstorePath()).
		AddTool(tools.NewTool("search_endpoints"), echo).
		Build(context.Background())
	assert.Error(t, err)

	_, err = NewServerBuilder().
		WithPrefix("bad").
		Build(context.Background())
	assert.Error(t, err)

	_, err = NewServerBuilder().
		WithConfigFile("does-not-exist.yaml").
		Build(context.Background())
	assert.Error(t, err)
}
