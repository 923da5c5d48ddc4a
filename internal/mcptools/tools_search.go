package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nervecenter/nerve-center/internal/coordination"
	"github.com/nervecenter/nerve-center/internal/models"
)

// searchFunc matches the shape shared by Facade.SearchCodebase and
// Facade.SearchDocs, so handleSearch can dispatch to either without
// duplicating argument parsing.
type searchFunc func(ctx context.Context, projectID, query string, topK int) coordination.Result[[]models.SearchResult]

func (s *Server) registerSearchTools() {
	s.mcp.AddTool(mcp.NewTool("index_file",
		mcp.WithDescription("Embed a file's content into the project's RAG corpus."),
		mcp.WithString("projectName", mcp.Required()),
		mcp.WithString("agentId", mcp.Required()),
		mcp.WithString("path", mcp.Required()),
		mcp.WithString("content", mcp.Required()),
		mcp.WithString("kind", mcp.Description("code|docs, defaults to code")),
	), s.handleIndexFile)

	s.mcp.AddTool(mcp.NewTool("search_codebase",
		mcp.WithDescription("Semantic search over indexed code."),
		mcp.WithString("projectName", mcp.Required()),
		mcp.WithString("agentId", mcp.Required()),
		mcp.WithString("query", mcp.Required()),
	), s.handleSearchCodebase)

	s.mcp.AddTool(mcp.NewTool("search_docs",
		mcp.WithDescription("Semantic search over indexed documentation."),
		mcp.WithString("projectName", mcp.Required()),
		mcp.WithString("agentId", mcp.Required()),
		mcp.WithString("query", mcp.Required()),
	), s.handleSearchDocs)
}

func (s *Server) handleIndexFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectName, err := req.RequireString("projectName")
	if err != nil {
		return resultFor(nil, badRequestErr(err.Error()))
	}
	agentID, err := req.RequireString("agentId")
	if err != nil {
		return resultFor(nil, badRequestErr(err.Error()))
	}
	path, err := req.RequireString("path")
	if err != nil {
		return resultFor(nil, badRequestErr(err.Error()))
	}
	content, err := req.RequireString("content")
	if err != nil {
		return resultFor(nil, badRequestErr(err.Error()))
	}

	projectID, cerr := s.resolveProject(ctx, projectName, agentID)
	if cerr != nil {
		return resultFor(nil, cerr)
	}

	kind := req.GetString("kind", "code")
	result := s.facade.IndexFile(ctx, projectID, path, content, kind)
	return resultFor(map[string]any{"indexed": true}, result.Err)
}

func (s *Server) handleSearchCodebase(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.handleSearch(ctx, req, s.facade.SearchCodebase)
}

func (s *Server) handleSearchDocs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.handleSearch(ctx, req, s.facade.SearchDocs)
}

func (s *Server) handleSearch(ctx context.Context, req mcp.CallToolRequest, search searchFunc) (*mcp.CallToolResult, error) {
	projectName, err := req.RequireString("projectName")
	if err != nil {
		return resultFor(nil, badRequestErr(err.Error()))
	}
	agentID, err := req.RequireString("agentId")
	if err != nil {
		return resultFor(nil, badRequestErr(err.Error()))
	}
	query, err := req.RequireString("query")
	if err != nil {
		return resultFor(nil, badRequestErr(err.Error()))
	}

	projectID, cerr := s.resolveProject(ctx, projectName, agentID)
	if cerr != nil {
		return resultFor(nil, cerr)
	}

	result := search(ctx, projectID, query, 0)
	return resultFor(result.Value, result.Err)
}
