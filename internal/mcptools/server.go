// Package mcptools registers the §6 Tool Surface on an mcp-go server served
// over stdio: the same coordination semantics as the HTTP API, spoken as a
// JSON request/response protocol over standard streams instead of HTTP.
package mcptools

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nervecenter/nerve-center/internal/coordination"
)

const (
	serverName    = "nerve-center"
	serverVersion = "v1"
)

// Server wraps an mcp-go MCPServer wired to a coordination.Facade.
type Server struct {
	facade *coordination.Facade
	logger *slog.Logger
	mcp    *server.MCPServer

	// defaultProjectID backs the mcp://context/current resource, which (per
	// the MCP resource model) takes no arguments — it answers for the
	// process's configured default project (PROJECT_NAME), empty until
	// ResolveDefaultProject is called.
	defaultProjectID string
}

// New constructs the Tool Surface. ProjectName resolution happens per-call
// for tools (each tool takes a projectName argument and an owner derived
// from the calling agent), mirroring the HTTP API's resolveProjectID.
func New(facade *coordination.Facade, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		facade: facade,
		logger: logger,
		mcp:    server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(true), server.WithResourceCapabilities(true, true)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ResolveDefaultProject resolves (projectName, ownerID) once at startup so
// mcp://context/current has a project to render. Safe to skip in
// deployments with no fixed PROJECT_NAME; the resource then degrades to a
// placeholder.
func (s *Server) ResolveDefaultProject(ctx context.Context, projectName, ownerID string) error {
	projectID, err := s.resolveProject(ctx, projectName, ownerID)
	if err != nil {
		return err
	}
	s.defaultProjectID = projectID
	return nil
}

func (s *Server) registerTools() {
	s.registerJobTools()
	s.registerLockTools()
	s.registerContextTools()
	s.registerSearchTools()
	s.registerBillingTools()
}

// ServeStdio runs the MCP server over stdin/stdout until the client
// disconnects or ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	return server.ServeStdio(s.mcp, server.WithStdioContextFunc(func(c context.Context) context.Context { return ctx }))
}

// resultFor renders any value (or error) as a single text-content frame
// using the same JSON envelope the HTTP API and CLI use, so the schema an
// agent sees is identical across every surface.
func resultFor(value any, err *coordination.CoordError) (*mcp.CallToolResult, error) {
	var payload any
	if err != nil {
		payload = map[string]any{
			"success":          false,
			"error":            err.Error(),
			"error_code":       err.ErrorCode(),
			"error_context":    err.Context(),
			"suggested_action": err.SuggestedAction(),
		}
	} else {
		payload = map[string]any{"success": true, "data": value}
	}
	body, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		return mcp.NewToolResultError(marshalErr.Error()), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}

// badRequestErr wraps a missing/invalid-argument error from mcp-go's
// RequireString (and friends) into the uniform CoordError shape every tool
// handler returns through resultFor.
func badRequestErr(message string) *coordination.CoordError {
	return &coordination.CoordError{Kind: coordination.KindBadRequest, Message: message}
}

// resolveProject resolves a (projectName, ownerID) pair, falling back to
// ownerID as the project owner when the caller doesn't separately name one
// — the MCP tool vocabulary has no distinct "owner" concept, only agentId.
func (s *Server) resolveProject(ctx context.Context, projectName, ownerID string) (string, *coordination.CoordError) {
	result := s.facade.ResolveProject(ctx, projectName, ownerID)
	if !result.IsOk() {
		return "", result.Err
	}
	return result.Value.ID, nil
}
