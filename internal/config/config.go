// Package config loads the server configuration from YAML files and the
// environment.
package config

import (
	"bytes"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/formatters"
	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/logging"
)

// Environment variables that override file values.
const (
	EnvAddress  = "OPENAPI_MCP_ADDRESS"
	EnvSpec     = "OPENAPI_MCP_SPEC"
	EnvLogLevel = "OPENAPI_MCP_LOG_LEVEL"
)

// Duration is a time.Duration that reads "30s" style strings or a number of
// seconds from YAML.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw interface{}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := parseDuration(raw)
	if err != nil {
		return errors.Wrapf(err, "line %d", node.Line)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func parseDuration(raw interface{}) (time.Duration, error) {
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case string:
		v = strings.TrimSpace(v)
		if seconds, err := cast.ToFloat64E(v); err == nil {
			return time.Duration(seconds * float64(time.Second)), nil
		}
		return cast.ToDurationE(v)
	default:
		seconds, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, errors.Errorf("invalid duration %v", raw)
		}
		return time.Duration(seconds * float64(time.Second)), nil
	}
}

// SessionConfig configures the session manager and event streams.
type SessionConfig struct {
	Timeout           Duration `yaml:"timeout"`
	HeartbeatInterval Duration `yaml:"heartbeat_interval"`
	MaxQueuedMessages int      `yaml:"max_queued_messages"`
	// CleanupInterval enables a periodic sweep of expired sessions.
	CleanupInterval   Duration `yaml:"cleanup_interval"`
	IssueOnInitialize bool     `yaml:"issue_on_initialize"`
}

// CacheConfig configures the OpenAPI document cache.
type CacheConfig struct {
	Enabled bool     `yaml:"enabled"`
	TTL     Duration `yaml:"ttl"`
	MaxSize int      `yaml:"max_size"`
}

// ResourcesConfig configures the built-in resources and their access policy.
type ResourcesConfig struct {
	Enabled              bool     `yaml:"enabled"`
	AccessControlEnabled bool     `yaml:"access_control_enabled"`
	AllowedPatterns      []string `yaml:"allowed_patterns"`
	BlockedPatterns      []string `yaml:"blocked_patterns"`
	DefaultAllow         bool     `yaml:"default_allow"`
}

// MonitoringConfig configures per-operation performance metrics.
type MonitoringConfig struct {
	Enabled            bool     `yaml:"enabled"`
	MaxOperations      int      `yaml:"max_operations"`
	SlowThreshold      Duration `yaml:"slow_threshold"`
	ErrorRateThreshold float64  `yaml:"error_rate_threshold"`
}

// SecurityConfig configures origin checks, masking, access logging and the
// tool filter.
type SecurityConfig struct {
	AllowedOrigins          []string `yaml:"allowed_origins"`
	EnableAccessLogging     bool     `yaml:"enable_access_logging"`
	MaskSensitiveData       bool     `yaml:"mask_sensitive_data"`
	CustomSensitivePatterns []string `yaml:"custom_sensitive_patterns"`
	MaskPlaceholder         string   `yaml:"mask_placeholder"`
	ToolFilterEnabled       bool     `yaml:"tool_filter_enabled"`
	PathPatterns            []string `yaml:"path_patterns"`
	AllowedTags             []string `yaml:"allowed_tags"`
	BlockedTags             []string `yaml:"blocked_tags"`
}

// Config is the complete server configuration.
type Config struct {
	Name                  string `yaml:"name"`
	Version               string `yaml:"version"`
	Address               string `yaml:"address"`
	Prefix                string `yaml:"prefix"`
	SpecSource            string `yaml:"spec_source"`
	LogLevel              string `yaml:"log_level"`
	Debug                 bool   `yaml:"debug"`
	OutputFormat          string `yaml:"output_format"`
	MaxOutputLength       int    `yaml:"max_output_length"`
	MaxBodyBytes          int64  `yaml:"max_body_bytes"`
	IncludeStatusEndpoint bool   `yaml:"include_status_endpoint"`

	Session    SessionConfig    `yaml:"session"`
	Cache      CacheConfig      `yaml:"cache"`
	Resources  ResourcesConfig  `yaml:"resources"`
	Security   SecurityConfig   `yaml:"security"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Name:                  "openapi-mcp-server",
		Version:               "1.0.0",
		Address:               ":8080",
		Prefix:                "/openapi-mcp",
		LogLevel:              string(logging.InfoLevel),
		OutputFormat:          string(formatters.Markdown),
		MaxOutputLength:       formatters.DefaultMaxLength,
		MaxBodyBytes:          4 << 20,
		IncludeStatusEndpoint: true,
		Session: SessionConfig{
			Timeout:           Duration(time.Hour),
			HeartbeatInterval: Duration(30 * time.Second),
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     Duration(5 * time.Minute),
			MaxSize: 1000,
		},
		Resources: ResourcesConfig{
			Enabled:      true,
			DefaultAllow: true,
		},
		Security: SecurityConfig{
			AllowedOrigins:    []string{"*"},
			MaskSensitiveData: true,
		},
		Monitoring: MonitoringConfig{
			Enabled:            true,
			MaxOperations:      100,
			SlowThreshold:      Duration(time.Second),
			ErrorRateThreshold: 0.1,
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
		if cfg, err = Parse(data); err != nil {
			return nil, errors.Wrapf(err, "failed to parse config file %s", path)
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAddress); ok && v != "" {
		c.Address = v
	}
	if v, ok := lookup(EnvSpec); ok && v != "" {
		c.SpecSource = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
}

// OutputKind returns the configured formatter kind.
func (c *Config) OutputKind() formatters.Kind {
	kind, err := formatters.ParseKind(c.OutputFormat)
	if err != nil {
		return formatters.Markdown
	}
	return kind
}

// Validate reports configuration errors that prevent startup.
func (c *Config) Validate() error {
	if _, err := formatters.ParseKind(c.OutputFormat); err != nil {
		return errors.Wrap(err, "output_format")
	}
	if c.MaxOutputLength < 0 {
		return errors.New("max_output_length must not be negative")
	}
	if c.MaxBodyBytes < 0 {
		return errors.New("max_body_bytes must not be negative")
	}
	if c.Prefix != "" && !strings.HasPrefix(c.Prefix, "/") {
		return errors.Errorf("prefix %q must start with /", c.Prefix)
	}
	if c.Session.Timeout < 0 || c.Session.HeartbeatInterval < 0 || c.Session.CleanupInterval < 0 {
		return errors.New("session durations must not be negative")
	}
	if c.Session.MaxQueuedMessages < 0 {
		return errors.New("session.max_queued_messages must not be negative")
	}
	if c.Cache.TTL < 0 {
		return errors.New("cache.ttl must not be negative")
	}
	if c.Cache.MaxSize < 0 {
		return errors.New("cache.max_size must not be negative")
	}
	if c.Monitoring.MaxOperations < 0 || c.Monitoring.SlowThreshold < 0 {
		return errors.New("monitoring limits must not be negative")
	}
	if c.Monitoring.ErrorRateThreshold < 0 || c.Monitoring.ErrorRateThreshold > 1 {
		return errors.New("monitoring.error_rate_threshold must be between 0 and 1")
	}
	for _, origin := range c.Security.AllowedOrigins {
		if origin == "*" {
			continue
		}
		u, err := url.Parse(origin)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errors.Errorf("invalid origin format: %s", origin)
		}
	}
	return nil
}

// Warnings returns settings that are legal but probably unintended.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.SpecSource == "" {
		warnings = append(warnings, "spec_source is empty; every tool and resource will fail until one is set")
	}
	if c.Cache.Enabled && c.Cache.TTL == 0 {
		warnings = append(warnings, "cache enabled but cache.ttl is 0; the document is reloaded on every request")
	}
	if c.Cache.MaxSize > 10000 {
		warnings = append(warnings, "large cache.max_size may consume significant memory")
	}
	for _, origin := range c.Security.AllowedOrigins {
		if origin == "*" {
			warnings = append(warnings, "security.allowed_origins allows every origin")
			break
		}
	}
	if c.Resources.AccessControlEnabled && !c.Resources.DefaultAllow && len(c.Resources.AllowedPatterns) == 0 {
		warnings = append(warnings, "resource access control denies every resource")
	}
	if c.Security.ToolFilterEnabled && len(c.Security.PathPatterns) == 0 && len(c.Security.AllowedTags) == 0 && len(c.Security.BlockedTags) == 0 {
		warnings = append(warnings, "tool filter enabled without patterns or tags")
	}
	if c.Debug && c.Security.EnableAccessLogging && !c.Security.MaskSensitiveData {
		warnings = append(warnings, "access logging without masking may write secrets to the log")
	}
	return warnings
}

// LoggingConfig derives the logger configuration.
func (c *Config) LoggingConfig() logging.Config {
	lc := logging.DefaultConfig()
	if c.Debug {
		lc = logging.DevelopmentConfig()
	}
	lc.Level = logging.ParseLevel(c.LogLevel)
	if c.Debug {
		lc.Level = logging.DebugLevel
	}
	return lc
}
