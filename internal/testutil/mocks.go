// Package testutil holds testify mocks of the domain contracts.
package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/FreePeak/openapi-mcp-server/internal/domain"
)

// MockTool implements domain.Tool.
type MockTool struct {
	mock.Mock
	ToolName   string
	ToolDesc   string
	ToolSchema map[string]interface{}
}

// NewMockTool creates a mock tool with the given name.
func NewMockTool(name string) *MockTool {
	return &MockTool{ToolName: name, ToolDesc: name + " tool"}
}

func (m *MockTool) Name() string                        { return m.ToolName }
func (m *MockTool) Description() string                 { return m.ToolDesc }
func (m *MockTool) InputSchema() map[string]interface{} { return m.ToolSchema }

// Execute records the call and returns the configured result.
func (m *MockTool) Execute(ctx context.Context, args map[string]interface{}) (*domain.ToolResult, error) {
	ret := m.Called(ctx, args)
	result, _ := ret.Get(0).(*domain.ToolResult)
	return result, ret.Error(1)
}

// MockResource implements domain.Resource. Matches is exact-URI unless
// MatchFunc is set.
type MockResource struct {
	mock.Mock
	URI       string
	ResName   string
	ResDesc   string
	MIME      string
	MatchFunc func(uri string) bool
}

// NewMockResource creates a mock resource serving exactly uri.
func NewMockResource(uri string) *MockResource {
	return &MockResource{URI: uri, ResName: uri, MIME: "application/json"}
}

func (m *MockResource) URITemplate() string { return m.URI }
func (m *MockResource) Name() string        { return m.ResName }
func (m *MockResource) Description() string { return m.ResDesc }
func (m *MockResource) MIMEType() string    { return m.MIME }

// Matches reports whether uri is served by this resource.
func (m *MockResource) Matches(uri string) bool {
	if m.MatchFunc != nil {
		return m.MatchFunc(uri)
	}
	return uri == m.URI
}

// Read records the call and returns the configured text.
func (m *MockResource) Read(ctx context.Context, uri string) (string, error) {
	ret := m.Called(ctx, uri)
	return ret.String(0), ret.Error(1)
}

// MockToolFilter implements domain.ToolFilter.
type MockToolFilter struct {
	mock.Mock
}

func (m *MockToolFilter) Allow(toolName string, args map[string]interface{}) bool {
	return m.Called(toolName, args).Bool(0)
}

// MockDataMasker implements domain.DataMasker.
type MockDataMasker struct {
	mock.Mock
}

func (m *MockDataMasker) MaskText(text string) string {
	return m.Called(text).String(0)
}

// MockResourceAccessPolicy implements domain.ResourceAccessPolicy.
type MockResourceAccessPolicy struct {
	mock.Mock
}

func (m *MockResourceAccessPolicy) CanAccess(uri string) bool {
	return m.Called(uri).Bool(0)
}

// MockAccessLogger implements domain.AccessLogger.
type MockAccessLogger struct {
	mock.Mock
}

func (m *MockAccessLogger) LogToolCall(toolName string, args map[string]interface{}, err error) {
	m.Called(toolName, args, err)
}

func (m *MockAccessLogger) LogAccessDenied(toolName string, args map[string]interface{}, reason string) {
	m.Called(toolName, args, reason)
}

func (m *MockAccessLogger) LogResourceAccess(uri, sessionID string, duration time.Duration, err error) {
	m.Called(uri, sessionID, duration, err)
}

func (m *MockAccessLogger) LogResourceAccessDenied(uri, reason, sessionID string) {
	m.Called(uri, reason, sessionID)
}

// MockPerformanceRecorder implements domain.PerformanceRecorder.
type MockPerformanceRecorder struct {
	mock.Mock
}

func (m *MockPerformanceRecorder) Record(operation string, duration time.Duration, err error) {
	m.Called(operation, duration, err)
}

// MockSpecProvider implements domain.SpecProvider.
type MockSpecProvider struct {
	mock.Mock
}

func (m *MockSpecProvider) Spec(ctx context.Context) (map[string]interface{}, error) {
	ret := m.Called(ctx)
	spec, _ := ret.Get(0).(map[string]interface{})
	return spec, ret.Error(1)
}

func (m *MockSpecProvider) Invalidate() {
	m.Called()
}

// StaticSpecProvider serves a fixed document and counts invalidations.
type StaticSpecProvider struct {
	Document      map[string]interface{}
	Err           error
	Invalidations int
}

func (p *StaticSpecProvider) Spec(ctx context.Context) (map[string]interface{}, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	return p.Document, nil
}

func (p *StaticSpecProvider) Invalidate() {
	p.Invalidations++
}
