package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newTestLogger(t *testing.T) (*Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}

	encoderConfig := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		NameKey:        "logger",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(buf),
		zap.NewAtomicLevelAt(zapcore.DebugLevel),
	)

	return NewFromZap(zap.New(core)), buf
}

func TestLoggerLevels(t *testing.T) {
	testLogger, buf := newTestLogger(t)
	defer testLogger.Sync()

	testLogger.Debug("debug message")
	testLogger.Info("info message")
	testLogger.Warn("warning message")
	testLogger.Error("error message")

	output := buf.String()
	for _, want := range []string{
		"debug message", "info message", "warning message", "error message",
		`"level":"debug"`, `"level":"info"`, `"level":"warn"`, `"level":"error"`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in logs, got %s", want, output)
		}
	}
}

func TestLoggerWithFields(t *testing.T) {
	testLogger, buf := newTestLogger(t)

	testLogger.Info("tool call", Fields{
		"tool":   "search_endpoints",
		"status": "success",
	})

	output := buf.String()
	assert.Contains(t, output, `"tool":"search_endpoints"`)
	assert.Contains(t, output, `"status":"success"`)
}

func TestLoggerMergesMultipleFieldSets(t *testing.T) {
	testLogger, buf := newTestLogger(t)

	testLogger.Warn("access denied", Fields{"tool": "generate_examples"}, Fields{"reason": "filter"})

	output := buf.String()
	assert.Contains(t, output, `"tool":"generate_examples"`)
	assert.Contains(t, output, `"reason":"filter"`)
}

func TestLoggerErrorField(t *testing.T) {
	testLogger, buf := newTestLogger(t)

	testLogger.Error("resource read failed", Fields{"error": errors.New("spec unavailable")})

	assert.Contains(t, buf.String(), `"error":"spec unavailable"`)
}

func TestLoggerFormattedMessages(t *testing.T) {
	testLogger, buf := newTestLogger(t)

	testLogger.Infof("loaded %d paths from %s", 12, "petstore.yaml")
	testLogger.Debugf("cache %s", "miss")
	testLogger.Warnf("slow load: %dms", 800)
	testLogger.Errorf("failed: %v", "boom")

	output := buf.String()
	assert.Contains(t, output, "loaded 12 paths from petstore.yaml")
	assert.Contains(t, output, "cache miss")
	assert.Contains(t, output, "slow load: 800ms")
	assert.Contains(t, output, "failed: boom")
}

func TestWithEmptyFields(t *testing.T) {
	testLogger, _ := newTestLogger(t)

	assert.Same(t, testLogger, testLogger.With(Fields{}))
}

func TestWithAndNamed(t *testing.T) {
	testLogger, buf := newTestLogger(t)

	testLogger.Named("access").With(Fields{"session_id": "abc"}).Info("resource access")

	output := buf.String()
	assert.Contains(t, output, `"logger":"access"`)
	assert.Contains(t, output, `"session_id":"abc"`)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", DebugLevel},
		{"DEBUG", DebugLevel},
		{"info", InfoLevel},
		{"warning", WarnLevel},
		{"warn", WarnLevel},
		{" error ", ErrorLevel},
		{"verbose", InfoLevel},
		{"", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "default config", config: DefaultConfig()},
		{name: "development config", config: DevelopmentConfig()},
		{name: "no output paths", config: Config{Level: WarnLevel}},
		{
			name: "with initial fields",
			config: Config{
				Level:         InfoLevel,
				OutputPaths:   []string{"stdout"},
				InitialFields: Fields{"service": "openapi-mcp-server"},
			},
		},
		{
			name:    "invalid output path",
			config:  Config{Level: InfoLevel, OutputPaths: []string{"/invalid/path/that/doesnt/exist/log.json"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestNewDevelopment(t *testing.T) {
	logger, err := NewDevelopment()
	require.NoError(t, err)
	assert.NotNil(t, logger.Zap())
}

func TestDefaultAndSetDefault(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	custom, _ := newTestLogger(t)
	SetDefault(custom)
	assert.Same(t, custom, Default())

	SetDefault(nil)
	assert.Same(t, custom, Default())
}

func TestNewNop(t *testing.T) {
	logger := NewNop()
	logger.Info("discarded")
	assert.NoError(t, logger.Sync())
}
