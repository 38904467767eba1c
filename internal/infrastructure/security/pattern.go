// Package security holds the tool filter, data masker, resource access policy
// and access logger used by the transport.
package security

import (
	"regexp"
	"strings"
)

// wildcardRegexp compiles a pattern where * matches any run of characters.
// The match is anchored at both ends.
func wildcardRegexp(pattern string) *regexp.Regexp {
	parts := strings.Split(pattern, "*")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	return regexp.MustCompile("^" + strings.Join(parts, ".*") + "$")
}

func compileWildcards(patterns []string) []*regexp.Regexp {
	regexps := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		regexps = append(regexps, wildcardRegexp(pattern))
	}
	return regexps
}

func matchAny(regexps []*regexp.Regexp, s string) bool {
	for _, re := range regexps {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
