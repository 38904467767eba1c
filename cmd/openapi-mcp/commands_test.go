package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FreePeak/openapi-mcp-server/internal/testutil"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "openapi-mcp dev\n", out)
}

func TestValidateCommand(t *testing.T) {
	out, err := run(t, "validate", "--spec", testutil.PetstorePath())
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")
	assert.Contains(t, out, "operations:")
	assert.Contains(t, out, "allows every origin")
}

func TestValidateCommandErrors(t *testing.T) {
	t.Setenv("OPENAPI_MCP_SPEC", "")

	_, err := run(t, "validate")
	require.Error(t, err)

	_, err = run(t, "validate", "--spec", testutil.PetstorePath(), "--prefix", "nope")
	require.Error(t, err)

	_, err = run(t, "validate", "--config", "missing.yaml")
	require.Error(t, err)
}

func TestLoadConfigOverrides(t *testing.T) {
	opts := &globalOptions{
		configPath: "../../internal/config/testdata/full.yaml",
		spec:       "api.yaml",
		addr:       ":7000",
		prefix:     "/x",
		logLevel:   "debug",
	}
	cfg, err := opts.loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "api.yaml", cfg.SpecSource)
	assert.Equal(t, ":7000", cfg.Address)
	assert.Equal(t, "/x", cfg.Prefix)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "petstore-mcp", cfg.Name)
}
