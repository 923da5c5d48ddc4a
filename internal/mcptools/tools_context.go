package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerContextTools() {
	updateContextTool := func(name, description string) mcp.Tool {
		return mcp.NewTool(name,
			mcp.WithDescription(description),
			mcp.WithString("projectName", mcp.Required()),
			mcp.WithString("agentId", mcp.Required()),
			mcp.WithString("text", mcp.Required()),
			mcp.WithString("requestId", mcp.Description("optional idempotency key: a retry with the same requestId replays the original result instead of appending the line twice")),
		)
	}
	// update_shared_context and update_context are the same operation under
	// two tool names: §6 lists both, and neither spec.md nor SPEC_FULL.md
	// distinguishes their semantics — update_context is the tool surface's
	// shorthand alias for §4.1's update_shared_context.
	s.mcp.AddTool(updateContextTool("update_shared_context", "Append a line to the project's shared notepad."), s.handleUpdateSharedContext)
	s.mcp.AddTool(updateContextTool("update_context", "Alias of update_shared_context."), s.handleUpdateSharedContext)

	s.mcp.AddTool(mcp.NewTool("read_context",
		mcp.WithDescription("Read the rendered live context document: open jobs, live locks, and the notepad."),
		mcp.WithString("projectName", mcp.Required()),
		mcp.WithString("agentId", mcp.Required()),
	), s.handleReadContext)

	s.mcp.AddTool(mcp.NewTool("finalize_session",
		mcp.WithDescription("Archive the session notepad, reset it, and clear locks and terminal jobs."),
		mcp.WithString("projectName", mcp.Required()),
		mcp.WithString("agentId", mcp.Required()),
		mcp.WithString("title"),
	), s.handleFinalizeSession)

	s.mcp.AddTool(mcp.NewTool("get_project_soul",
		mcp.WithDescription("Read the project's persistent instructions: context.md and conventions.md."),
	), s.handleGetProjectSoul)
}

func (s *Server) handleUpdateSharedContext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectName, err := req.RequireString("projectName")
	if err != nil {
		return resultFor(nil, badRequestErr(err.Error()))
	}
	agentID, err := req.RequireString("agentId")
	if err != nil {
		return resultFor(nil, badRequestErr(err.Error()))
	}
	text, err := req.RequireString("text")
	if err != nil {
		return resultFor(nil, badRequestErr(err.Error()))
	}

	projectID, cerr := s.resolveProject(ctx, projectName, agentID)
	if cerr != nil {
		return resultFor(nil, cerr)
	}

	requestID := req.GetString("requestId", "")
	result := s.facade.UpdateSharedContext(ctx, projectID, agentID, text, requestID)
	return resultFor(map[string]any{"ok": true}, result.Err)
}

func (s *Server) handleReadContext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectName, err := req.RequireString("projectName")
	if err != nil {
		return resultFor(nil, badRequestErr(err.Error()))
	}
	agentID, err := req.RequireString("agentId")
	if err != nil {
		return resultFor(nil, badRequestErr(err.Error()))
	}

	projectID, cerr := s.resolveProject(ctx, projectName, agentID)
	if cerr != nil {
		return resultFor(nil, cerr)
	}

	result := s.facade.GetCoreContext(ctx, projectID)
	return resultFor(result.Value, result.Err)
}

func (s *Server) handleFinalizeSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectName, err := req.RequireString("projectName")
	if err != nil {
		return resultFor(nil, badRequestErr(err.Error()))
	}
	agentID, err := req.RequireString("agentId")
	if err != nil {
		return resultFor(nil, badRequestErr(err.Error()))
	}

	projectID, cerr := s.resolveProject(ctx, projectName, agentID)
	if cerr != nil {
		return resultFor(nil, cerr)
	}

	title := req.GetString("title", projectName)
	result := s.facade.FinalizeSession(ctx, projectID, title)
	return resultFor(result.Value, result.Err)
}

func (s *Server) handleGetProjectSoul(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result := s.facade.GetProjectSoul(ctx)
	return resultFor(result.Value, result.Err)
}
