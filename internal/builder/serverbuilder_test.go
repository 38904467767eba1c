package builder

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FreePeak/openapi-mcp-server/internal/config"
	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/logging"
	"github.com/FreePeak/openapi-mcp-server/internal/testutil"
)

func TestServerBuilderDefaults(t *testing.T) {
	b := NewServerBuilder()
	assert.Equal(t, config.Default(), b.Config())
}

func TestServerBuilderSetters(t *testing.T) {
	b := NewServerBuilder().
		WithName("petstore").
		WithVersion("2.0.0").
		WithAddress(":9090").
		WithPrefix("/mcp").
		WithSpecSource("petstore.yaml").
		WithToolFilter(func(string, map[string]interface{}) bool { return true })

	cfg := b.Config()
	assert.Equal(t, "petstore", cfg.Name)
	assert.Equal(t, "2.0.0", cfg.Version)
	assert.Equal(t, ":9090", cfg.Address)
	assert.Equal(t, "/mcp", cfg.Prefix)
	assert.Equal(t, "petstore.yaml", cfg.SpecSource)
	assert.True(t, cfg.Security.ToolFilterEnabled)
}

func TestServerBuilderBuildService(t *testing.T) {
	service, err := NewServerBuilder().
		WithLogger(logging.NewNop()).
		WithSpecSource(testutil.PetstorePath()).
		AddTool(testutil.NewMockTool("custom")).
		AddResource(testutil.NewMockResource("custom://doc")).
		BuildService()
	require.NoError(t, err)

	var names []string
	for _, tool := range service.Tools() {
		names = append(names, tool.Name())
	}
	assert.Equal(t, []string{"search_endpoints", "generate_examples", "custom"}, names)
	assert.Len(t, service.Resources(), 8)
}

func TestServerBuilderSpecData(t *testing.T) {
	data, err := os.ReadFile(testutil.PetstorePath())
	require.NoError(t, err)

	service, err := NewServerBuilder().
		WithLogger(logging.NewNop()).
		WithSpecData(data).
		BuildService()
	require.NoError(t, err)

	spec, err := service.Provider().Spec(context.Background())
	require.NoError(t, err)
	assert.Contains(t, spec, "paths")
}

func TestServerBuilderProviderOverride(t *testing.T) {
	provider := &testutil.StaticSpecProvider{Document: map[string]interface{}{"openapi": "3.0.0"}}
	service, err := NewServerBuilder().
		WithLogger(logging.NewNop()).
		WithProvider(provider).
		BuildService()
	require.NoError(t, err)
	assert.Same(t, provider, service.Provider())
}

func TestServerBuilderErrors(t *testing.T) {
	t.Run("duplicate tool", func(t *testing.T) {
		_, err := NewServerBuilder().
			WithLogger(logging.NewNop()).
			AddTool(testutil.NewMockTool("search_endpoints")).
			BuildService()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "search_endpoints")
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := NewServerBuilder().
			WithLogger(logging.NewNop()).
			WithPrefix("no-slash").
			BuildMCPServer()
		require.Error(t, err)
	})
}

func TestServerBuilderBuildMCPServer(t *testing.T) {
	server, err := NewServerBuilder().
		WithLogger(logging.NewNop()).
		WithAddress("127.0.0.1:0").
		WithPrefix("/mcp").
		BuildMCPServer()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:0", server.Addr())
	assert.Equal(t, "/mcp", server.Prefix())
}
