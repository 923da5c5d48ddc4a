package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

const currentContextURI = "mcp://context/current"

// registerResources declares mcp://context/current, backed by
// get_core_context against the server's configured default project.
func (s *Server) registerResources() {
	resource := mcp.NewResource(currentContextURI, "Current Context",
		mcp.WithResourceDescription("Open jobs, live locks, and the notepad for the default project."),
		mcp.WithMIMEType("text/markdown"),
	)
	s.mcp.AddResource(resource, s.handleCurrentContext)
}

func (s *Server) handleCurrentContext(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	if s.defaultProjectID == "" {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: currentContextURI, MIMEType: "text/markdown", Text: "_no default project configured_\n"},
		}, nil
	}

	result := s.facade.GetCoreContext(ctx, s.defaultProjectID)
	if !result.IsOk() {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: currentContextURI, MIMEType: "text/markdown", Text: "_" + result.Err.Error() + "_\n"},
		}, nil
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: currentContextURI, MIMEType: "text/markdown", Text: result.Value},
	}, nil
}
