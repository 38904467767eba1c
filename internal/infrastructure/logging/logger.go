// Package logging provides a wrapper around zap for structured logging
package logging

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a wrapper around zap.Logger providing a simplified API
type Logger struct {
	logger *zap.Logger
	sugar  *zap.SugaredLogger
}

// Fields is a type alias for key-value pairs
type Fields map[string]interface{}

// LogLevel represents the log severity level
type LogLevel string

// Available log levels
const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

// ParseLevel converts a level name into a LogLevel. Unknown names map to info.
func ParseLevel(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case DebugLevel:
		return zapcore.DebugLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Config represents the logging configuration
type Config struct {
	Level         LogLevel
	Development   bool
	OutputPaths   []string
	InitialFields Fields
}

// DefaultConfig returns a default configuration for the logger
func DefaultConfig() Config {
	return Config{
		Level:       InfoLevel,
		Development: false,
		OutputPaths: []string{"stderr"},
	}
}

// DevelopmentConfig returns a development configuration for the logger
func DevelopmentConfig() Config {
	return Config{
		Level:       DebugLevel,
		Development: true,
		OutputPaths: []string{"stderr"},
	}
}

// New creates a new logger with the given configuration
func New(config Config) (*Logger, error) {
	encoding := "json"
	if config.Development {
		encoding = "console"
	}
	if len(config.OutputPaths) == 0 {
		config.OutputPaths = []string{"stderr"}
	}

	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(config.Level.zapLevel()),
		Development:       config.Development,
		DisableCaller:     !config.Development,
		DisableStacktrace: !config.Development,
		Encoding:          encoding,
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      config.OutputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}

	if config.InitialFields != nil {
		zapConfig.InitialFields = make(map[string]interface{}, len(config.InitialFields))
		for k, v := range config.InitialFields {
			zapConfig.InitialFields[k] = v
		}
	}

	zapLogger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	return NewFromZap(zapLogger), nil
}

// NewDevelopment creates a new development logger
func NewDevelopment() (*Logger, error) {
	return New(DevelopmentConfig())
}

// NewFromZap wraps an existing zap logger.
func NewFromZap(zapLogger *zap.Logger) *Logger {
	return &Logger{
		logger: zapLogger,
		sugar:  zapLogger.Sugar(),
	}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return NewFromZap(zap.NewNop())
}

// Zap exposes the underlying zap logger.
func (l *Logger) Zap() *zap.Logger {
	return l.logger
}

// Named returns a child logger with the given name segment.
func (l *Logger) Named(name string) *Logger {
	return NewFromZap(l.logger.Named(name))
}

// With returns a logger with the given fields
func (l *Logger) With(fields Fields) *Logger {
	if len(fields) == 0 {
		return l
	}
	return NewFromZap(l.logger.With(toZapFields(fields)...))
}

func toZapFields(fields Fields) []zap.Field {
	zapFields := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		if err, ok := v.(error); ok {
			zapFields = append(zapFields, zap.NamedError(k, err))
			continue
		}
		zapFields = append(zapFields, zap.Any(k, v))
	}
	return zapFields
}

func merge(fields []Fields) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	if len(fields) == 1 {
		return toZapFields(fields[0])
	}
	merged := Fields{}
	for _, f := range fields {
		for k, v := range f {
			merged[k] = v
		}
	}
	return toZapFields(merged)
}

// Debug logs a message at debug level with optional fields
func (l *Logger) Debug(msg string, fields ...Fields) {
	l.logger.Debug(msg, merge(fields)...)
}

// Info logs a message at info level with optional fields
func (l *Logger) Info(msg string, fields ...Fields) {
	l.logger.Info(msg, merge(fields)...)
}

// Warn logs a message at warn level with optional fields
func (l *Logger) Warn(msg string, fields ...Fields) {
	l.logger.Warn(msg, merge(fields)...)
}

// Error logs a message at error level with optional fields
func (l *Logger) Error(msg string, fields ...Fields) {
	l.logger.Error(msg, merge(fields)...)
}

// Debugf logs a formatted message at debug level
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Infof logs a formatted message at info level
func (l *Logger) Infof(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Warnf logs a formatted message at warn level
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Errorf logs a formatted message at error level
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	return l.logger.Sync()
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = mustDefault()
)

func mustDefault() *Logger {
	logger, err := New(DefaultConfig())
	if err != nil {
		return NewNop()
	}
	return logger
}

// Default returns the default logger
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault sets the default logger
func SetDefault(logger *Logger) {
	if logger == nil {
		return
	}
	defaultMu.Lock()
	defaultLogger = logger
	defaultMu.Unlock()
}
