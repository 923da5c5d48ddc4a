package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nervecenter/nerve-center/internal/app"
	"github.com/nervecenter/nerve-center/internal/mcptools"
)

// NewMCPCmd runs the MCP tool surface over stdio, for an agent harness to
// spawn this binary directly rather than talking HTTP.
func NewMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP tool surface over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			f, closeFacade, err := openFacade(ctx, cmd)
			if err != nil {
				return cmdErr(err)
			}
			defer closeFacade()

			srv := mcptools.New(f, slog.Default())

			env := app.LoadEnvConfig()
			if env.ProjectName != "" {
				agent := resolveAgentName(cmd)
				if agent == "" {
					agent = env.ProjectName
				}
				if err := srv.ResolveDefaultProject(ctx, env.ProjectName, agent); err != nil {
					slog.Warn("failed to resolve default project for mcp://context/current", "error", err)
				}
			}

			return cmdErr(srv.ServeStdio(ctx))
		},
	}
}
