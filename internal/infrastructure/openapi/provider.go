// Package openapi loads OpenAPI documents and serves them, cached, to tools
// and resources.
package openapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/logging"
)

// SpecCacheKey is the cache key of the converted document.
const SpecCacheKey = "openapi_spec"

// DefaultCacheTTL is how long a loaded document is served from cache.
const DefaultCacheTTL = 5 * time.Minute

// ErrNoSource is returned when a provider has nothing to load.
var ErrNoSource = errors.New("no OpenAPI source configured")

type sourceKind int

const (
	sourceNone sourceKind = iota
	sourceFile
	sourceURL
	sourceData
)

// Source says where an OpenAPI document comes from.
type Source struct {
	kind     sourceKind
	location string
	data     []byte
}

// FromFile reads the document from a local JSON or YAML file.
func FromFile(path string) Source {
	return Source{kind: sourceFile, location: path}
}

// FromURL fetches the document over HTTP(S).
func FromURL(rawURL string) Source {
	return Source{kind: sourceURL, location: rawURL}
}

// FromData parses the document from memory.
func FromData(data []byte) Source {
	return Source{kind: sourceData, location: "inline", data: data}
}

// ParseSource treats http:// and https:// locations as URLs and anything
// else as a file path.
func ParseSource(location string) Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return FromURL(location)
	}
	return FromFile(location)
}

// String returns the location for logs.
func (s Source) String() string {
	return s.location
}

// Provider loads, validates and caches an OpenAPI document. It implements
// domain.SpecProvider.
type Provider struct {
	source     Source
	cache      *Cache
	ttl        time.Duration
	group      singleflight.Group
	httpClient *http.Client
	logger     *logging.Logger
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithCacheTTL sets the cache lifetime. A zero TTL disables caching.
func WithCacheTTL(ttl time.Duration) ProviderOption {
	return func(p *Provider) {
		p.ttl = ttl
	}
}

// WithCache shares a cache between providers.
func WithCache(cache *Cache) ProviderOption {
	return func(p *Provider) {
		if cache != nil {
			p.cache = cache
		}
	}
}

// WithHTTPClient sets the client used for URL sources.
func WithHTTPClient(client *http.Client) ProviderOption {
	return func(p *Provider) {
		if client != nil {
			p.httpClient = client
		}
	}
}

// WithProviderLogger sets the logger.
func WithProviderLogger(logger *logging.Logger) ProviderOption {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProvider creates a provider for source.
func NewProvider(source Source, opts ...ProviderOption) *Provider {
	p := &Provider{
		source:     source,
		ttl:        DefaultCacheTTL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.cache == nil {
		p.cache = NewCache(0, p.ttl)
	}
	return p
}

// Source returns the configured source.
func (p *Provider) Source() Source {
	return p.source
}

// CacheEnabled reports whether loaded documents are cached.
func (p *Provider) CacheEnabled() bool {
	return p.ttl > 0
}

// Cache returns the underlying cache.
func (p *Provider) Cache() *Cache {
	return p.cache
}

// Spec returns the document as generic JSON values. Concurrent cache misses
// share a single load.
func (p *Provider) Spec(ctx context.Context) (map[string]interface{}, error) {
	if p.CacheEnabled() {
		if cached, ok := p.cache.Get(SpecCacheKey); ok {
			return cached.(map[string]interface{}), nil
		}
	}

	v, err, shared := p.group.Do(SpecCacheKey, func() (interface{}, error) {
		doc, err := p.Load(ctx)
		if err != nil {
			return nil, err
		}
		spec, err := ToMap(doc)
		if err != nil {
			return nil, err
		}
		if p.CacheEnabled() {
			p.cache.Set(SpecCacheKey, spec)
		}
		return spec, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		p.logger.Debug("OpenAPI load shared between callers")
	}
	return v.(map[string]interface{}), nil
}

// Invalidate drops the cached document.
func (p *Provider) Invalidate() {
	if p.cache.Invalidate(SpecCacheKey) {
		p.logger.Info("OpenAPI cache invalidated", logging.Fields{"source": p.source.String()})
	}
}

// Load parses and validates the document, bypassing the cache. Validation
// problems are logged, not returned.
func (p *Provider) Load(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true
	loader.Context = ctx

	var (
		doc *openapi3.T
		err error
	)
	switch p.source.kind {
	case sourceFile:
		doc, err = loader.LoadFromFile(p.source.location)
	case sourceURL:
		doc, err = p.loadURL(ctx, loader)
	case sourceData:
		doc, err = loader.LoadFromData(p.source.data)
	default:
		return nil, ErrNoSource
	}
	if err != nil {
		return nil, errors.Wrapf(err, "loading OpenAPI document from %s", p.source)
	}

	if err := doc.Validate(ctx); err != nil {
		p.logger.Warn("OpenAPI document failed validation", logging.Fields{
			"source": p.source.String(),
			"error":  err,
		})
	}

	p.logger.Debug("OpenAPI document loaded", logging.Fields{
		"source": p.source.String(),
		"paths":  doc.Paths.Len(),
	})
	return doc, nil
}

func (p *Provider) loadURL(ctx context.Context, loader *openapi3.Loader) (*openapi3.T, error) {
	location, err := url.Parse(p.source.location)
	if err != nil {
		return nil, errors.Wrap(err, "parsing URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.5")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetching document")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching document: unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading document")
	}
	return loader.LoadFromDataWithPath(data, location)
}

// ToMap converts a parsed document to generic JSON values.
func ToMap(doc *openapi3.T) (map[string]interface{}, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "encoding OpenAPI document")
	}
	spec := map[string]interface{}{}
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, errors.Wrap(err, "decoding OpenAPI document")
	}
	return spec, nil
}
