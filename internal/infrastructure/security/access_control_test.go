package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResourceAccessControl(t *testing.T) {
	tests := []struct {
		name   string
		config ResourceAccessConfig
		uri    string
		allow  bool
	}{
		{"default allow", ResourceAccessConfig{DefaultAllow: true}, "openapi://spec", true},
		{"default deny", ResourceAccessConfig{DefaultAllow: false}, "openapi://spec", false},
		{"blocked", ResourceAccessConfig{DefaultAllow: true, BlockedPatterns: []string{"openapi://models/*"}}, "openapi://models/Pet", false},
		{"blocked is anchored", ResourceAccessConfig{DefaultAllow: true, BlockedPatterns: []string{"openapi://models/*"}}, "openapi://models", true},
		{"allowed list", ResourceAccessConfig{AllowedPatterns: []string{"openapi://endpoints*"}}, "openapi://endpoints/pets", true},
		{"outside allowed list", ResourceAccessConfig{DefaultAllow: true, AllowedPatterns: []string{"openapi://endpoints*"}}, "openapi://spec", false},
		{"blocked beats allowed", ResourceAccessConfig{
			AllowedPatterns: []string{"openapi://*"},
			BlockedPatterns: []string{"openapi://spec"},
		}, "openapi://spec", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allow, NewResourceAccessControl(tc.config, nil).CanAccess(tc.uri))
		})
	}
}
