package logging

import (
	"context"
	"net/http"
	"time"

	"github.com/FreePeak/openapi-mcp-server/internal/domain/shared"
)

type contextKey string

const loggerKey contextKey = "logger"

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from the context, falling back to the
// default logger.
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(loggerKey).(*Logger)
	if !ok || logger == nil {
		return Default()
	}
	return logger
}

// FromContextOr retrieves the logger from the context, falling back to fallback.
func FromContextOr(ctx context.Context, fallback *Logger) *Logger {
	if logger, ok := ctx.Value(loggerKey).(*Logger); ok && logger != nil {
		return logger
	}
	return fallback
}

// statusRecorder keeps the status code written by the wrapped handler and
// still exposes http.Flusher for SSE responses.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Middleware creates an HTTP middleware that puts a request-scoped logger in
// the context and logs each completed request at debug level.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestLogger := logger.With(Fields{
				"method": r.Method,
				"path":   r.URL.Path,
				"remote": r.RemoteAddr,
			})
			if sessionID := r.Header.Get(shared.HeaderSessionID); sessionID != "" {
				requestLogger = requestLogger.With(Fields{"session_id": sessionID})
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r.WithContext(WithLogger(r.Context(), requestLogger)))

			requestLogger.Debug("HTTP request completed", Fields{
				"status":      rec.status,
				"duration_ms": time.Since(start).Milliseconds(),
			})
		})
	}
}

// LogJSONRPCRequest logs JSON-RPC request details
func LogJSONRPCRequest(ctx context.Context, request *shared.JSONRPCRequest) {
	FromContext(ctx).Debug("JSON-RPC request", Fields{
		"id":           request.ID,
		"method":       request.Method,
		"notification": request.IsNotification(),
	})
}

// LogJSONRPCResponse logs JSON-RPC response details
func LogJSONRPCResponse(ctx context.Context, method string, response *shared.JSONRPCResponse) {
	logger := FromContext(ctx)

	fields := Fields{
		"id":     response.ID,
		"method": method,
	}

	if response.Error != nil {
		fields["error_code"] = response.Error.Code
		fields["error_message"] = response.Error.Message
		logger.Warn("JSON-RPC response error", fields)
		return
	}
	logger.Debug("JSON-RPC response", fields)
}

// ServerStartupLogger logs server startup information
func ServerStartupLogger(logger *Logger, serverName, version, address, prefix string) {
	logger.Info("Server starting", Fields{
		"name":     serverName,
		"version":  version,
		"address":  address,
		"endpoint": prefix,
		"protocol": shared.ProtocolVersion,
	})
}
