package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nervecenter/nerve-center/internal/models"
)

func (s *Server) registerJobTools() {
	s.mcp.AddTool(mcp.NewTool("post_job",
		mcp.WithDescription("Post a new job to the project's job board."),
		mcp.WithString("projectName", mcp.Required()),
		mcp.WithString("agentId", mcp.Required(), mcp.Description("posting agent's id, used as the project owner on first reference")),
		mcp.WithString("title", mcp.Required()),
		mcp.WithString("description"),
		mcp.WithString("priority", mcp.Description("critical|high|medium|low, defaults to medium")),
		mcp.WithArray("dependencies", mcp.Description("job ids this job depends on")),
		mcp.WithString("requestId", mcp.Description("optional idempotency key: a retry with the same requestId replays the original result instead of posting a second job")),
	), s.handlePostJob)

	s.mcp.AddTool(mcp.NewTool("claim_next_job",
		mcp.WithDescription("Atomically claim the highest-priority eligible job."),
		mcp.WithString("projectName", mcp.Required()),
		mcp.WithString("agentId", mcp.Required()),
	), s.handleClaimNextJob)

	s.mcp.AddTool(mcp.NewTool("complete_job",
		mcp.WithDescription("Mark a job done. Authorised by assignee identity or completion key. Does not release the agent's file locks."),
		mcp.WithString("projectName", mcp.Required()),
		mcp.WithString("agentId", mcp.Required()),
		mcp.WithString("jobId", mcp.Required()),
		mcp.WithString("outcome"),
		mcp.WithString("completionKey"),
		mcp.WithString("requestId", mcp.Description("optional idempotency key: a retry with the same requestId replays the original result instead of completing twice")),
	), s.handleCompleteJob)

	s.mcp.AddTool(mcp.NewTool("cancel_job",
		mcp.WithDescription("Cancel a job. Any project member may cancel."),
		mcp.WithString("projectName", mcp.Required()),
		mcp.WithString("agentId", mcp.Required()),
		mcp.WithString("jobId", mcp.Required()),
		mcp.WithString("reason"),
		mcp.WithString("requestId", mcp.Description("optional idempotency key: a retry with the same requestId replays the original result instead of cancelling twice")),
	), s.handleCancelJob)
}

func (s *Server) handlePostJob(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectName, err := req.RequireString("projectName")
	if err != nil {
		return resultFor(nil, badRequestErr(err.Error()))
	}
	agentID, err := req.RequireString("agentId")
	if err != nil {
		return resultFor(nil, badRequestErr(err.Error()))
	}
	title, err := req.RequireString("title")
	if err != nil {
		return resultFor(nil, badRequestErr(err.Error()))
	}

	projectID, cerr := s.resolveProject(ctx, projectName, agentID)
	if cerr != nil {
		return resultFor(nil, cerr)
	}

	description := req.GetString("description", "")
	priority := models.JobPriority(req.GetString("priority", ""))
	dependencies := req.GetStringSlice("dependencies", nil)
	requestID := req.GetString("requestId", "")

	result := s.facade.PostJob(ctx, projectID, agentID, title, description, priority, dependencies, requestID)
	return resultFor(result.Value, result.Err)
}

func (s *Server) handleClaimNextJob(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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

	result := s.facade.ClaimNextJob(ctx, projectID, agentID)
	return resultFor(result.Value, result.Err)
}

func (s *Server) handleCompleteJob(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectName, err := req.RequireString("projectName")
	if err != nil {
		return resultFor(nil, badRequestErr(err.Error()))
	}
	agentID, err := req.RequireString("agentId")
	if err != nil {
		return resultFor(nil, badRequestErr(err.Error()))
	}
	jobID, err := req.RequireString("jobId")
	if err != nil {
		return resultFor(nil, badRequestErr(err.Error()))
	}

	projectID, cerr := s.resolveProject(ctx, projectName, agentID)
	if cerr != nil {
		return resultFor(nil, cerr)
	}

	outcome := req.GetString("outcome", "")
	completionKey := req.GetString("completionKey", "")
	requestID := req.GetString("requestId", "")

	result := s.facade.CompleteJob(ctx, projectID, agentID, jobID, outcome, completionKey, requestID)
	return resultFor(result.Value, result.Err)
}

func (s *Server) handleCancelJob(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectName, err := req.RequireString("projectName")
	if err != nil {
		return resultFor(nil, badRequestErr(err.Error()))
	}
	agentID, err := req.RequireString("agentId")
	if err != nil {
		return resultFor(nil, badRequestErr(err.Error()))
	}
	jobID, err := req.RequireString("jobId")
	if err != nil {
		return resultFor(nil, badRequestErr(err.Error()))
	}

	projectID, cerr := s.resolveProject(ctx, projectName, agentID)
	if cerr != nil {
		return resultFor(nil, cerr)
	}

	reason := req.GetString("reason", "")
	requestID := req.GetString("requestId", "")
	result := s.facade.CancelJob(ctx, projectID, agentID, jobID, reason, requestID)
	return resultFor(result.Value, result.Err)
}
