package security

import (
	"regexp"

	"github.com/spf13/cast"

	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/logging"
)

// FilterFunc is a custom tool filter. It returns false to reject a call.
type FilterFunc func(toolName string, args map[string]interface{}) bool

// ToolFilterConfig configures a ToolFilter. Empty lists impose no restriction.
type ToolFilterConfig struct {
	// PathPatterns restricts the "path" argument; * is a wildcard.
	PathPatterns []string
	// AllowedTags restricts the "tag" argument to these values.
	AllowedTags []string
	// BlockedTags rejects these "tag" argument values.
	BlockedTags []string
	Custom      FilterFunc
}

// ToolFilter decides whether a tool call may run, based on its path and tag
// arguments and an optional custom predicate.
type ToolFilter struct {
	paths       []*regexp.Regexp
	allowedTags []string
	blockedTags []string
	custom      FilterFunc
	logger      *logging.Logger
}

// NewToolFilter creates a filter. A nil logger discards decisions.
func NewToolFilter(config ToolFilterConfig, logger *logging.Logger) *ToolFilter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ToolFilter{
		paths:       compileWildcards(config.PathPatterns),
		allowedTags: config.AllowedTags,
		blockedTags: config.BlockedTags,
		custom:      config.Custom,
		logger:      logger,
	}
}

// Allow implements domain.ToolFilter.
func (f *ToolFilter) Allow(toolName string, args map[string]interface{}) bool {
	if raw, ok := args["path"]; ok {
		path := cast.ToString(raw)
		if !f.pathAllowed(path) {
			f.logger.Info("Tool blocked by path filter", logging.Fields{"tool": toolName, "path": path})
			return false
		}
	}

	if raw, ok := args["tag"]; ok {
		tag := cast.ToString(raw)
		if !f.tagAllowed(tag) {
			f.logger.Info("Tool blocked by tag filter", logging.Fields{"tool": toolName, "tag": tag})
			return false
		}
	}

	if f.custom != nil && !f.custom(toolName, args) {
		f.logger.Info("Tool blocked by custom filter", logging.Fields{"tool": toolName})
		return false
	}
	return true
}

func (f *ToolFilter) pathAllowed(path string) bool {
	return len(f.paths) == 0 || matchAny(f.paths, path)
}

func (f *ToolFilter) tagAllowed(tag string) bool {
	if contains(f.blockedTags, tag) {
		return false
	}
	return len(f.allowedTags) == 0 || contains(f.allowedTags, tag)
}
