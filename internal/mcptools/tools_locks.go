package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerLockTools() {
	s.mcp.AddTool(mcp.NewTool("propose_file_access",
		mcp.WithDescription("Request an advisory lock on a file path before editing it."),
		mcp.WithString("projectName", mcp.Required()),
		mcp.WithString("agentId", mcp.Required()),
		mcp.WithString("filePath", mcp.Required()),
		mcp.WithString("intent", mcp.Description("what the agent intends to do with the file")),
		mcp.WithString("userPrompt", mcp.Description("the user request motivating this edit, for audit context")),
	), s.handleProposeFileAccess)

	s.mcp.AddTool(mcp.NewTool("force_unlock",
		mcp.WithDescription("Release a lock unconditionally, e.g. one held by a crashed agent."),
		mcp.WithString("projectName", mcp.Required()),
		mcp.WithString("agentId", mcp.Required()),
		mcp.WithString("filePath", mcp.Required()),
		mcp.WithString("reason"),
	), s.handleForceUnlock)
}

func (s *Server) handleProposeFileAccess(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectName, err := req.RequireString("projectName")
	if err != nil {
		return resultFor(nil, badRequestErr(err.Error()))
	}
	agentID, err := req.RequireString("agentId")
	if err != nil {
		return resultFor(nil, badRequestErr(err.Error()))
	}
	filePath, err := req.RequireString("filePath")
	if err != nil {
		return resultFor(nil, badRequestErr(err.Error()))
	}

	projectID, cerr := s.resolveProject(ctx, projectName, agentID)
	if cerr != nil {
		return resultFor(nil, cerr)
	}

	intent := req.GetString("intent", "")
	userPrompt := req.GetString("userPrompt", "")

	result := s.facade.ProposeFileAccess(ctx, projectID, agentID, filePath, intent, userPrompt)
	return resultFor(result.Value, result.Err)
}

func (s *Server) handleForceUnlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectName, err := req.RequireString("projectName")
	if err != nil {
		return resultFor(nil, badRequestErr(err.Error()))
	}
	agentID, err := req.RequireString("agentId")
	if err != nil {
		return resultFor(nil, badRequestErr(err.Error()))
	}
	filePath, err := req.RequireString("filePath")
	if err != nil {
		return resultFor(nil, badRequestErr(err.Error()))
	}

	projectID, cerr := s.resolveProject(ctx, projectName, agentID)
	if cerr != nil {
		return resultFor(nil, cerr)
	}

	reason := req.GetString("reason", "")
	result := s.facade.ForceUnlock(ctx, projectID, filePath, reason)
	return resultFor(result.Value, result.Err)
}
