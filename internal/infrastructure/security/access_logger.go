package security

import (
	"time"

	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/logging"
)

// AccessLogger writes tool and resource access records to a child logger
// named "access". Arguments are masked when a masker is set.
type AccessLogger struct {
	logger *logging.Logger
	masker *DataMasker
}

// NewAccessLogger creates an access logger. A nil masker logs arguments as is.
func NewAccessLogger(logger *logging.Logger, masker *DataMasker) *AccessLogger {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &AccessLogger{
		logger: logger.Named("access"),
		masker: masker,
	}
}

func (a *AccessLogger) arguments(args map[string]interface{}) map[string]interface{} {
	if a.masker == nil {
		return args
	}
	return a.masker.MaskMap(args)
}

// LogToolCall implements domain.AccessLogger.
func (a *AccessLogger) LogToolCall(toolName string, args map[string]interface{}, err error) {
	fields := logging.Fields{
		"tool":      toolName,
		"arguments": a.arguments(args),
	}
	if err != nil {
		fields["error"] = err
		a.logger.Error("Tool call failed", fields)
		return
	}
	fields["result"] = "success"
	a.logger.Info("Tool call", fields)
}

// LogAccessDenied implements domain.AccessLogger.
func (a *AccessLogger) LogAccessDenied(toolName string, args map[string]interface{}, reason string) {
	a.logger.Warn("Access denied", logging.Fields{
		"tool":      toolName,
		"arguments": a.arguments(args),
		"status":    "denied",
		"reason":    reason,
	})
}

// LogResourceAccess implements domain.AccessLogger.
func (a *AccessLogger) LogResourceAccess(uri, sessionID string, duration time.Duration, err error) {
	fields := logging.Fields{
		"resource":    uri,
		"duration_ms": float64(duration.Microseconds()) / 1000,
	}
	if sessionID != "" {
		fields["session_id"] = sessionID
	}
	if err != nil {
		fields["status"] = "failed"
		fields["error"] = err
		a.logger.Error("Resource access failed", fields)
		return
	}
	fields["status"] = "success"
	a.logger.Info("Resource access", fields)
}

// LogResourceAccessDenied implements domain.AccessLogger.
func (a *AccessLogger) LogResourceAccessDenied(uri, reason, sessionID string) {
	fields := logging.Fields{
		"resource": uri,
		"status":   "denied",
		"reason":   reason,
	}
	if sessionID != "" {
		fields["session_id"] = sessionID
	}
	a.logger.Warn("Resource access denied", fields)
}
