package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// registerBillingTools registers get_subscription_status and
// get_usage_stats. §1 names payment/subscription billing an explicit
// Non-goal, so these answer with a static, honest "no billing system"
// response rather than faking an entitlements or metering check.
func (s *Server) registerBillingTools() {
	s.mcp.AddTool(mcp.NewTool("get_subscription_status",
		mcp.WithDescription("Report subscription/plan status. No billing system is implemented; always unmetered."),
	), s.handleGetSubscriptionStatus)

	s.mcp.AddTool(mcp.NewTool("get_usage_stats",
		mcp.WithDescription("Report usage statistics. No metering system is implemented."),
	), s.handleGetUsageStats)
}

func (s *Server) handleGetSubscriptionStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return resultFor(map[string]any{
		"plan":      "unmetered",
		"active":    true,
		"expiresAt": nil,
	}, nil)
}

func (s *Server) handleGetUsageStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return resultFor(map[string]any{
		"metered": false,
	}, nil)
}
