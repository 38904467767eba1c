package testutil

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/openapi"
)

// PetstorePath returns the absolute path of the petstore test document.
func PetstorePath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "infrastructure", "openapi", "testdata", "petstore.yaml")
}

// NewPetstoreProvider returns a provider over the petstore document.
func NewPetstoreProvider() *openapi.Provider {
	return openapi.NewProvider(openapi.FromFile(PetstorePath()))
}

// PetstoreSpec loads the petstore document in generic form.
func PetstoreSpec(t testing.TB) map[string]interface{} {
	t.Helper()
	spec, err := NewPetstoreProvider().Spec(context.Background())
	require.NoError(t, err)
	return spec
}
