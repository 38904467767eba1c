package openapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const petstorePath = "testdata/petstore.yaml"

func TestParseSource(t *testing.T) {
	assert.Equal(t, sourceURL, ParseSource("https://example.com/openapi.json").kind)
	assert.Equal(t, sourceURL, ParseSource("http://localhost/openapi.yaml").kind)
	assert.Equal(t, sourceFile, ParseSource("./openapi.yaml").kind)
	assert.Equal(t, "./openapi.yaml", ParseSource("./openapi.yaml").String())
}

func TestProviderFromFile(t *testing.T) {
	p := NewProvider(FromFile(petstorePath))

	spec, err := p.Spec(context.Background())
	require.NoError(t, err)

	info, ok := spec["info"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Swagger Petstore", info["title"])
	assert.Contains(t, Paths(spec), "/pets")
	assert.Contains(t, Schemas(spec), "Pet")
	assert.Contains(t, SecuritySchemes(spec), "bearerAuth")
}

func TestProviderCachesAndInvalidates(t *testing.T) {
	p := NewProvider(FromFile(petstorePath))
	ctx := context.Background()

	_, err := p.Spec(ctx)
	require.NoError(t, err)
	_, err = p.Spec(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, p.Cache().Stats().Hits)
	assert.Equal(t, 1, p.Cache().Len())

	p.Invalidate()
	assert.Equal(t, 0, p.Cache().Len())

	_, err = p.Spec(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Cache().Len())
}

func TestProviderWithoutCache(t *testing.T) {
	p := NewProvider(FromFile(petstorePath), WithCacheTTL(0))
	assert.False(t, p.CacheEnabled())

	_, err := p.Spec(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, p.Cache().Len())
}

func TestProviderFromURL(t *testing.T) {
	data, err := os.ReadFile(petstorePath)
	require.NoError(t, err)

	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	p := NewProvider(FromURL(srv.URL+"/openapi.yaml"), WithHTTPClient(srv.Client()))
	for i := 0; i < 3; i++ {
		spec, err := p.Spec(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "3.0.3", spec["openapi"])
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
}

func TestProviderURLErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	p := NewProvider(FromURL(srv.URL), WithHTTPClient(srv.Client()))
	_, err := p.Spec(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestProviderErrors(t *testing.T) {
	_, err := NewProvider(Source{}).Spec(context.Background())
	assert.ErrorIs(t, err, ErrNoSource)

	_, err = NewProvider(FromFile("testdata/missing.yaml")).Spec(context.Background())
	assert.Error(t, err)

	_, err = NewProvider(FromData([]byte("openapi: [not, a, document"))).Spec(context.Background())
	assert.Error(t, err)
}

func TestProviderFromData(t *testing.T) {
	doc := `{"openapi":"3.0.0","info":{"title":"Tiny","version":"1"},"paths":{"/ping":{"get":{"responses":{"200":{"description":"pong"}}}}}}`

	spec, err := NewProvider(FromData([]byte(doc))).Spec(context.Background())
	require.NoError(t, err)

	ops := Operations(spec)
	require.Len(t, ops, 1)
	assert.Equal(t, "/ping", ops[0].Path)
	assert.Equal(t, "GET", ops[0].Method)
	assert.Equal(t, []string{DefaultTag}, ops[0].TagsOrDefault())
}
