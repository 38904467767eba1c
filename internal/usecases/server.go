// Package usecases wires the OpenAPI document, the built-in tools and
// resources, and the security collaborators into an MCP server.
package usecases

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/FreePeak/openapi-mcp-server/internal/config"
	"github.com/FreePeak/openapi-mcp-server/internal/domain"
	"github.com/FreePeak/openapi-mcp-server/internal/domain/shared"
	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/formatters"
	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/logging"
	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/metrics"
	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/openapi"
	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/security"
	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/server"
	"github.com/FreePeak/openapi-mcp-server/internal/usecases/resources"
	"github.com/FreePeak/openapi-mcp-server/internal/usecases/tools"
)

// ServerConfig contains configuration for the ServerService.
type ServerConfig struct {
	// Config is the loaded configuration; nil selects config.Default().
	Config *config.Config
	// Provider overrides the document provider built from Config.SpecSource.
	Provider domain.SpecProvider
	Logger   *logging.Logger
	// ToolFilter is an extra predicate consulted when the tool filter is on.
	ToolFilter security.FilterFunc
}

// ServerService owns the registries, sessions and transport of one server.
type ServerService struct {
	config    *config.Config
	logger    *logging.Logger
	provider  domain.SpecProvider
	formatter formatters.Formatter
	tools     *server.InMemoryToolRegistry
	resources *server.InMemoryResourceRegistry
	sessions  *server.SessionManager
	notifier  domain.NotificationSender
	handler   *server.TransportHandler
	monitor   *metrics.Monitor
}

// NewServerService builds a server from configuration and registers the
// built-in tools, and the built-in resources when enabled.
func NewServerService(sc ServerConfig) (*ServerService, error) {
	cfg := sc.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	logger := sc.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	formatter, err := formatters.New(cfg.OutputKind(), cfg.MaxOutputLength)
	if err != nil {
		return nil, err
	}

	provider := sc.Provider
	if provider == nil {
		provider = newProvider(cfg, logger)
	}

	s := &ServerService{
		config:    cfg,
		logger:    logger,
		provider:  provider,
		formatter: formatter,
		tools:     server.NewInMemoryToolRegistry(),
		resources: server.NewInMemoryResourceRegistry(),
		sessions: server.NewSessionManager(
			server.WithSessionTimeout(cfg.Session.Timeout.Std()),
			server.WithMaxQueuedMessages(cfg.Session.MaxQueuedMessages),
			server.WithSessionLogger(logger),
		),
	}
	s.notifier = server.NewNotificationSender(s.sessions, logger)
	if cfg.Monitoring.Enabled {
		s.monitor = metrics.NewMonitor(
			metrics.WithMaxOperations(cfg.Monitoring.MaxOperations),
			metrics.WithThresholds(cfg.Monitoring.SlowThreshold.Std(), cfg.Monitoring.ErrorRateThreshold),
			metrics.WithLogger(logger.Named("metrics")),
		)
	}

	opts, err := s.transportOptions(sc.ToolFilter)
	if err != nil {
		return nil, err
	}
	s.handler = server.NewTransportHandler(s.tools, s.resources, opts...)

	for _, tool := range tools.All(provider, formatter) {
		if err := s.tools.Register(tool); err != nil {
			return nil, errors.Wrapf(err, "failed to register tool %s", tool.Name())
		}
	}
	if cfg.Resources.Enabled {
		for _, resource := range resources.All(provider) {
			if err := s.resources.Register(resource); err != nil {
				return nil, errors.Wrapf(err, "failed to register resource %s", resource.URITemplate())
			}
		}
	}

	logger.Info("MCP server configured", logging.Fields{
		"name":      cfg.Name,
		"version":   cfg.Version,
		"tools":     len(s.tools.List()),
		"resources": len(s.resources.List()),
		"format":    string(formatter.Kind()),
	})
	return s, nil
}

func newProvider(cfg *config.Config, logger *logging.Logger) *openapi.Provider {
	source := openapi.Source{}
	if cfg.SpecSource != "" {
		source = openapi.ParseSource(cfg.SpecSource)
	}

	ttl := cfg.Cache.TTL.Std()
	if !cfg.Cache.Enabled {
		ttl = 0
	}
	return openapi.NewProvider(source,
		openapi.WithCacheTTL(ttl),
		openapi.WithCache(openapi.NewCache(cfg.Cache.MaxSize, ttl)),
		openapi.WithProviderLogger(logger.Named("openapi")),
	)
}

// transportOptions builds the transport options. Security collaborators
// are only installed when their feature is enabled.
func (s *ServerService) transportOptions(custom security.FilterFunc) ([]server.TransportOption, error) {
	cfg := s.config
	opts := []server.TransportOption{
		server.WithSessionManager(s.sessions),
		server.WithLogger(s.logger),
		server.WithServerInfo(cfg.Name, cfg.Version),
		server.WithAllowedOrigins(cfg.Security.AllowedOrigins),
		server.WithHeartbeatInterval(cfg.Session.HeartbeatInterval.Std()),
		server.WithIssueSessionOnInitialize(cfg.Session.IssueOnInitialize),
		server.WithMaxBodyBytes(cfg.MaxBodyBytes),
	}

	var masker *security.DataMasker
	if cfg.Security.MaskSensitiveData {
		m, err := security.NewDataMasker(cfg.Security.CustomSensitivePatterns, cfg.Security.MaskPlaceholder)
		if err != nil {
			return nil, errors.Wrap(err, "security.custom_sensitive_patterns")
		}
		masker = m
		opts = append(opts, server.WithDataMasker(masker))
	}

	if cfg.Security.ToolFilterEnabled {
		opts = append(opts, server.WithToolFilter(security.NewToolFilter(security.ToolFilterConfig{
			PathPatterns: cfg.Security.PathPatterns,
			AllowedTags:  cfg.Security.AllowedTags,
			BlockedTags:  cfg.Security.BlockedTags,
			Custom:       custom,
		}, s.logger)))
	}

	if cfg.Resources.AccessControlEnabled {
		opts = append(opts, server.WithResourceAccessPolicy(security.NewResourceAccessControl(security.ResourceAccessConfig{
			AllowedPatterns: cfg.Resources.AllowedPatterns,
			BlockedPatterns: cfg.Resources.BlockedPatterns,
			DefaultAllow:    cfg.Resources.DefaultAllow,
		}, s.logger)))
	}

	if cfg.Security.EnableAccessLogging {
		opts = append(opts, server.WithAccessLogger(security.NewAccessLogger(s.logger, masker)))
	}

	if s.monitor != nil {
		opts = append(opts, server.WithPerformanceRecorder(s.monitor))
	}
	return opts, nil
}

// ServerInfo returns the name and version reported to clients.
func (s *ServerService) ServerInfo() (string, string) {
	return s.config.Name, s.config.Version
}

// Config returns the configuration the server was built from.
func (s *ServerService) Config() *config.Config {
	return s.config
}

// Handler returns the MCP endpoint handler.
func (s *ServerService) Handler() http.Handler {
	return s.handler
}

// Monitor returns the performance monitor, nil when monitoring is disabled.
func (s *ServerService) Monitor() *metrics.Monitor {
	return s.monitor
}

// Provider returns the OpenAPI document provider.
func (s *ServerService) Provider() domain.SpecProvider {
	return s.provider
}

// Formatter returns the configured output formatter.
func (s *ServerService) Formatter() formatters.Formatter {
	return s.formatter
}

// Sessions returns the session manager.
func (s *ServerService) Sessions() *server.SessionManager {
	return s.sessions
}

// Tools returns the registered tools in order.
func (s *ServerService) Tools() []domain.Tool {
	return s.tools.List()
}

// Resources returns the registered resources in order.
func (s *ServerService) Resources() []domain.ResourceInfo {
	return s.resources.List()
}

// RegisterTool adds a tool and tells live sessions the tool list changed.
func (s *ServerService) RegisterTool(ctx context.Context, tool domain.Tool) error {
	if err := s.tools.Register(tool); err != nil {
		return err
	}
	s.notify(ctx, shared.NotificationToolsListChanged)
	return nil
}

// RegisterResource adds a resource and tells live sessions the resource
// list changed.
func (s *ServerService) RegisterResource(ctx context.Context, resource domain.Resource) error {
	if err := s.resources.Register(resource); err != nil {
		return err
	}
	s.notify(ctx, shared.NotificationResourcesListChanged)
	return nil
}

// InvalidateCache drops the cached document and tells live sessions that
// resource content may have changed.
func (s *ServerService) InvalidateCache(ctx context.Context) {
	s.provider.Invalidate()
	s.logger.Info("OpenAPI document cache invalidated")
	s.notify(ctx, shared.NotificationResourcesListChanged)
}

// CleanupExpiredSessions removes sessions idle past the timeout.
func (s *ServerService) CleanupExpiredSessions() int {
	return s.sessions.CleanupExpired()
}

// SendNotification queues a notification for one session.
func (s *ServerService) SendNotification(ctx context.Context, sessionID string, notification *domain.Notification) error {
	return s.notifier.SendNotification(ctx, sessionID, notification)
}

// BroadcastNotification queues a notification for every live session.
func (s *ServerService) BroadcastNotification(ctx context.Context, notification *domain.Notification) error {
	return s.notifier.BroadcastNotification(ctx, notification)
}

func (s *ServerService) notify(ctx context.Context, method string) {
	err := s.BroadcastNotification(ctx, &domain.Notification{
		Method: method,
		Params: map[string]interface{}{},
	})
	if err != nil {
		s.logger.Warn("Failed to broadcast notification", logging.Fields{"method": method, "error": err})
	}
}
