package domain

import "github.com/FreePeak/openapi-mcp-server/internal/domain/shared"

// ToJSONRPC converts a domain Notification to its wire form.
func (n *Notification) ToJSONRPC() *shared.JSONRPCNotification {
	var params interface{}
	if len(n.Params) > 0 {
		params = n.Params
	}
	return shared.NewNotification(n.Method, params)
}
