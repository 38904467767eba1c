package security

import (
	"regexp"

	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/logging"
)

// ResourceAccessConfig configures a ResourceAccessControl. Patterns use * as
// a wildcard and match whole URIs.
type ResourceAccessConfig struct {
	AllowedPatterns []string
	BlockedPatterns []string
	// DefaultAllow applies when no allowed patterns are configured.
	DefaultAllow bool
}

// ResourceAccessControl decides which resource URIs may be read. Blocked
// patterns win; with allowed patterns set, anything unmatched is denied.
type ResourceAccessControl struct {
	allowed      []*regexp.Regexp
	blocked      []*regexp.Regexp
	defaultAllow bool
	logger       *logging.Logger
}

// NewResourceAccessControl creates an access policy.
func NewResourceAccessControl(config ResourceAccessConfig, logger *logging.Logger) *ResourceAccessControl {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ResourceAccessControl{
		allowed:      compileWildcards(config.AllowedPatterns),
		blocked:      compileWildcards(config.BlockedPatterns),
		defaultAllow: config.DefaultAllow,
		logger:       logger,
	}
}

// CanAccess implements domain.ResourceAccessPolicy.
func (c *ResourceAccessControl) CanAccess(uri string) bool {
	if matchAny(c.blocked, uri) {
		c.logger.Info("Resource access blocked by pattern", logging.Fields{"uri": uri})
		return false
	}
	if len(c.allowed) > 0 {
		if matchAny(c.allowed, uri) {
			return true
		}
		c.logger.Info("Resource not in allowed patterns", logging.Fields{"uri": uri})
		return false
	}
	return c.defaultAllow
}
