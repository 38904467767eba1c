// Package rest provides the HTTP interface for the MCP server.
package rest

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/FreePeak/openapi-mcp-server/internal/domain/shared"
	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/logging"
	"github.com/FreePeak/openapi-mcp-server/internal/usecases"
)

const (
	// DefaultPrefix is used when the configuration leaves the prefix empty.
	DefaultPrefix = "/mcp"

	readHeaderTimeout = 10 * time.Second
)

// MCPServer represents the HTTP server for the MCP protocol.
type MCPServer struct {
	service    *usecases.ServerService
	httpServer *http.Server
	logger     *logging.Logger
	prefix     string

	// baseCtx is the parent of every request context; cancelling it ends
	// open SSE streams so Shutdown does not wait on them.
	baseCtx    context.Context
	cancelBase context.CancelFunc
	stopOnce   sync.Once
	done       chan struct{}
}

// NewMCPServer creates a new MCP server for service. The endpoint is mounted
// at the configured prefix and /status is served when enabled.
func NewMCPServer(service *usecases.ServerService, logger *logging.Logger) *MCPServer {
	if logger == nil {
		logger = logging.NewNop()
	}
	cfg := service.Config()
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	s := &MCPServer{
		service:    service,
		logger:     logger.Named("http"),
		prefix:     prefix,
		baseCtx:    baseCtx,
		cancelBase: cancel,
		done:       make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.Handle(prefix, service.Handler())
	if cfg.IncludeStatusEndpoint {
		mux.HandleFunc("/status", s.handleStatus)
		if monitor := service.Monitor(); monitor != nil {
			mux.Handle("/metrics", monitor.Handler())
		}
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Address,
		Handler:           logging.Middleware(s.logger)(mux),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return s.baseCtx },
	}
	return s
}

// Addr returns the configured listen address.
func (s *MCPServer) Addr() string {
	return s.httpServer.Addr
}

// Service returns the server service behind the endpoint.
func (s *MCPServer) Service() *usecases.ServerService {
	return s.service
}

// Prefix returns the path the MCP endpoint is mounted at.
func (s *MCPServer) Prefix() string {
	return s.prefix
}

// Handler returns the root HTTP handler.
func (s *MCPServer) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens on the configured address and serves until Stop is called.
func (s *MCPServer) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", s.httpServer.Addr)
	}
	return s.Serve(ln)
}

// Serve serves on ln until Stop is called. A graceful stop returns nil.
func (s *MCPServer) Serve(ln net.Listener) error {
	go s.cleanupLoop()

	name, version := s.service.ServerInfo()
	logging.ServerStartupLogger(s.logger, name, version, ln.Addr().String(), s.prefix)
	err := s.httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop ends open streams and shuts the HTTP server down, waiting for
// in-flight requests until ctx is done.
func (s *MCPServer) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		close(s.done)
		s.cancelBase()
	})
	s.logger.Info("Stopping MCP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *MCPServer) cleanupLoop() {
	interval := s.service.Config().Session.CleanupInterval.Std()
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.service.CleanupExpiredSessions(); n > 0 {
				s.logger.Debug("Expired sessions removed", logging.Fields{"count": n})
			}
		case <-s.done:
			return
		}
	}
}

func (s *MCPServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	name, version := s.service.ServerInfo()
	status := map[string]interface{}{
		"status":    "ok",
		"name":      name,
		"version":   version,
		"protocol":  shared.ProtocolVersion,
		"endpoint":  s.prefix,
		"sessions":  s.service.Sessions().Count(),
		"tools":     len(s.service.Tools()),
		"resources": len(s.service.Resources()),
	}
	if monitor := s.service.Monitor(); monitor != nil {
		status["performance"] = monitor.Summary()
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(status)
}
