package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/FreePeak/openapi-mcp-server/internal/domain"
	"github.com/FreePeak/openapi-mcp-server/internal/domain/shared"
	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/logging"
)

// DefaultMaxBodyBytes caps the size of a POSTed JSON-RPC message.
const DefaultMaxBodyBytes int64 = 4 << 20

// DefaultAllowedOrigins is used when no allow-list is configured.
var DefaultAllowedOrigins = []string{"http://localhost", "http://127.0.0.1"}

// TransportHandler serves the MCP streamable HTTP transport on a single
// endpoint: POST for JSON-RPC messages, GET for the server-to-client SSE
// stream and DELETE to end a session.
type TransportHandler struct {
	tools     domain.ToolRegistry
	resources domain.ResourceRegistry
	sessions  *SessionManager
	logger    *logging.Logger

	serverInfo        shared.ServerInfo
	allowedOrigins    []string
	heartbeatInterval time.Duration
	issueOnInitialize bool
	maxBodyBytes      int64

	toolFilter   domain.ToolFilter
	masker       domain.DataMasker
	accessPolicy domain.ResourceAccessPolicy
	accessLogger domain.AccessLogger
	recorder     domain.PerformanceRecorder

	methods map[string]methodHandler
}

// TransportOption configures a TransportHandler.
type TransportOption func(*TransportHandler)

// WithSessionManager shares an existing session manager.
func WithSessionManager(sessions *SessionManager) TransportOption {
	return func(h *TransportHandler) {
		if sessions != nil {
			h.sessions = sessions
		}
	}
}

// WithAllowedOrigins sets the Origin allow-list. Entries match as string
// prefixes and "*" allows everything. An empty list keeps the defaults.
func WithAllowedOrigins(origins []string) TransportOption {
	return func(h *TransportHandler) {
		if len(origins) > 0 {
			h.allowedOrigins = append([]string(nil), origins...)
		}
	}
}

// WithServerInfo sets the name and version reported by initialize.
func WithServerInfo(name, version string) TransportOption {
	return func(h *TransportHandler) {
		h.serverInfo = shared.ServerInfo{Name: name, Version: version}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) TransportOption {
	return func(h *TransportHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithHeartbeatInterval sets how long a GET stream idles before a heartbeat.
func WithHeartbeatInterval(interval time.Duration) TransportOption {
	return func(h *TransportHandler) {
		if interval > 0 {
			h.heartbeatInterval = interval
		}
	}
}

// WithIssueSessionOnInitialize makes a header-less initialize create a new
// session instead of using the default session.
func WithIssueSessionOnInitialize(enabled bool) TransportOption {
	return func(h *TransportHandler) {
		h.issueOnInitialize = enabled
	}
}

// WithMaxBodyBytes caps the POST body size.
func WithMaxBodyBytes(n int64) TransportOption {
	return func(h *TransportHandler) {
		if n > 0 {
			h.maxBodyBytes = n
		}
	}
}

// WithToolFilter installs a filter consulted before every tool call.
func WithToolFilter(filter domain.ToolFilter) TransportOption {
	return func(h *TransportHandler) {
		h.toolFilter = filter
	}
}

// WithDataMasker installs a masker applied to tool and resource text.
func WithDataMasker(masker domain.DataMasker) TransportOption {
	return func(h *TransportHandler) {
		h.masker = masker
	}
}

// WithResourceAccessPolicy installs a policy consulted before every resource read.
func WithResourceAccessPolicy(policy domain.ResourceAccessPolicy) TransportOption {
	return func(h *TransportHandler) {
		h.accessPolicy = policy
	}
}

// WithAccessLogger installs the tool and resource access logger.
func WithAccessLogger(accessLogger domain.AccessLogger) TransportOption {
	return func(h *TransportHandler) {
		h.accessLogger = accessLogger
	}
}

// WithPerformanceRecorder installs the recorder fed with tool call and
// resource read durations.
func WithPerformanceRecorder(recorder domain.PerformanceRecorder) TransportOption {
	return func(h *TransportHandler) {
		h.recorder = recorder
	}
}

// NewTransportHandler creates a transport serving the given registries.
func NewTransportHandler(tools domain.ToolRegistry, resources domain.ResourceRegistry, opts ...TransportOption) *TransportHandler {
	h := &TransportHandler{
		tools:             tools,
		resources:         resources,
		logger:            logging.NewNop(),
		serverInfo:        shared.ServerInfo{Name: "openapi-mcp-server", Version: "1.0.0"},
		allowedOrigins:    DefaultAllowedOrigins,
		heartbeatInterval: DefaultHeartbeatInterval,
		maxBodyBytes:      DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.sessions == nil {
		h.sessions = NewSessionManager(WithSessionLogger(h.logger))
	}
	h.methods = map[string]methodHandler{
		shared.MethodInitialize:    h.handleInitialize,
		shared.MethodListTools:     h.handleListTools,
		shared.MethodCallTool:      h.handleCallTool,
		shared.MethodListResources: h.handleListResources,
		shared.MethodReadResource:  h.handleReadResource,
	}
	return h
}

// Sessions returns the session manager.
func (h *TransportHandler) Sessions() *SessionManager {
	return h.sessions
}

// ServeHTTP implements http.Handler.
func (h *TransportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r = r.WithContext(logging.WithLogger(r.Context(), logging.FromContextOr(r.Context(), h.logger)))

	switch r.Method {
	case http.MethodPost:
		h.handlePost(w, r)
	case http.MethodGet:
		h.handleGet(w, r)
	case http.MethodDelete:
		h.handleDelete(w, r)
	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		h.writeHTTPError(w, r, domain.ErrMethodNotAllowed)
	}
}

// verifyRequest runs the checks shared by every verb: protocol version
// first, then origin.
func (h *TransportHandler) verifyRequest(r *http.Request) error {
	if err := h.verifyProtocolVersion(r); err != nil {
		return err
	}
	return h.verifyOrigin(r)
}

func (h *TransportHandler) verifyProtocolVersion(r *http.Request) error {
	version := r.Header.Get(shared.HeaderProtocolVersion)
	if version == "" {
		return nil
	}
	if version != shared.ProtocolVersion {
		return domain.NewProtocolVersionError(version, shared.ProtocolVersion)
	}
	return nil
}

func (h *TransportHandler) verifyOrigin(r *http.Request) error {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return nil
	}
	for _, allowed := range h.allowedOrigins {
		if allowed == "*" || strings.HasPrefix(origin, allowed) {
			return nil
		}
	}
	return domain.ErrOriginNotAllowed
}

func (h *TransportHandler) writeHTTPError(w http.ResponseWriter, r *http.Request, err error) {
	status := domain.StatusCode(err)
	logging.FromContext(r.Context()).Debug("Request rejected", logging.Fields{
		"status": status,
		"error":  err,
	})
	http.Error(w, err.Error(), status)
}

func (h *TransportHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	if err := h.verifyRequest(r); err != nil {
		h.writeHTTPError(w, r, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		h.writeHTTPError(w, r, domain.ErrInvalidBody)
		return
	}

	sessionID := r.Header.Get(shared.HeaderSessionID)
	var session *Session
	if sessionID != "" {
		if session, err = h.sessions.Get(sessionID); err != nil {
			h.writeHTTPError(w, r, err)
			return
		}
	}

	req, err := shared.ParseRequest(body)
	if err != nil {
		logging.FromContext(r.Context()).Debug("Malformed JSON-RPC body", logging.Fields{"error": err})
		h.writeHTTPError(w, r, domain.ErrInvalidBody)
		return
	}

	if session == nil {
		if h.issueOnInitialize && req.Method == shared.MethodInitialize {
			session = h.sessions.Create()
		} else {
			session = h.sessions.GetOrCreateDefault()
		}
	}

	ctx := logging.WithLogger(r.Context(), logging.FromContext(r.Context()).With(logging.Fields{
		"session_id": session.ID(),
	}))
	logging.LogJSONRPCRequest(ctx, req)

	if req.IsNotification() {
		h.handleNotification(ctx, session, req)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := h.processRequest(ctx, session, req)
	logging.LogJSONRPCResponse(ctx, req.Method, resp)

	if acceptsEventStream(r.Header.Get("Accept")) {
		h.writeSSEResponse(ctx, w, session.ID(), resp)
		return
	}
	h.writeJSONResponse(ctx, w, session.ID(), req.Method, resp)
}

func acceptsEventStream(accept string) bool {
	return accept == contentTypeEventStream
}

func cacheControlFor(method string) string {
	if strings.HasPrefix(method, "resources/") {
		return "max-age=300, private"
	}
	return "no-cache"
}

func (h *TransportHandler) encodeResponse(ctx context.Context, resp *shared.JSONRPCResponse) []byte {
	data, err := json.Marshal(resp)
	if err == nil {
		return data
	}
	logging.FromContext(ctx).Error("Failed to encode response", logging.Fields{"error": err})
	data, _ = json.Marshal(shared.NewErrorResponse(resp.ID, shared.InternalError, "Internal error: failed to encode response", nil))
	return data
}

func (h *TransportHandler) writeJSONResponse(ctx context.Context, w http.ResponseWriter, sessionID, method string, resp *shared.JSONRPCResponse) {
	data := h.encodeResponse(ctx, resp)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", cacheControlFor(method))
	w.Header().Set(shared.HeaderSessionID, sessionID)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logging.FromContext(ctx).Debug("Failed to write response", logging.Fields{"error": err})
	}
}

func (h *TransportHandler) writeSSEResponse(ctx context.Context, w http.ResponseWriter, sessionID string, resp *shared.JSONRPCResponse) {
	data := h.encodeResponse(ctx, resp)

	setSSEHeaders(w)
	w.Header().Set(shared.HeaderSessionID, sessionID)
	w.WriteHeader(http.StatusOK)
	if err := writeSSEData(w, data); err != nil {
		logging.FromContext(ctx).Debug("Failed to write SSE response", logging.Fields{"error": err})
		return
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (h *TransportHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	if err := h.verifyRequest(r); err != nil {
		h.writeHTTPError(w, r, err)
		return
	}
	if r.Header.Get("Accept") != contentTypeEventStream {
		h.writeHTTPError(w, r, domain.ErrNotAcceptable)
		return
	}

	sessionID := r.Header.Get(shared.HeaderSessionID)
	if sessionID == "" {
		h.writeHTTPError(w, r, domain.ErrSessionIDRequired)
		return
	}
	session, err := h.sessions.Get(sessionID)
	if err != nil {
		h.writeHTTPError(w, r, err)
		return
	}

	logger := logging.FromContext(r.Context()).With(logging.Fields{"session_id": session.ID()})
	if lastEventID := r.Header.Get(shared.HeaderLastEventID); lastEventID != "" {
		logger.Debug("Last-Event-Id received; replay is not supported", logging.Fields{
			"last_event_id": lastEventID,
		})
	}

	stream, err := newEventStream(w, session, h.heartbeatInterval, logger)
	if err != nil {
		logger.Error("Cannot stream events", logging.Fields{"error": err})
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	logger.Debug("SSE stream opened")
	if err := stream.run(r.Context()); err != nil {
		logger.Warn("SSE stream ended", logging.Fields{"error": err})
		return
	}
	logger.Debug("SSE stream closed")
}

func (h *TransportHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.verifyRequest(r); err != nil {
		h.writeHTTPError(w, r, err)
		return
	}

	sessionID := r.Header.Get(shared.HeaderSessionID)
	if sessionID == "" {
		h.writeHTTPError(w, r, domain.ErrSessionIDRequired)
		return
	}
	if !h.sessions.Delete(sessionID) {
		h.writeHTTPError(w, r, domain.NewSessionNotFoundError(sessionID))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
