package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/nervecenter/nerve-center/internal/coordination"
	"github.com/nervecenter/nerve-center/internal/output"
)

// NewContextCmd groups the notepad and session subcommands.
func NewContextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Append to, read, and finalize the project's shared notepad",
	}
	cmd.AddCommand(newContextUpdateCmd())
	cmd.AddCommand(newContextReadCmd())
	cmd.AddCommand(newContextFinalizeCmd())
	cmd.AddCommand(newContextSoulCmd())
	return cmd
}

func newContextUpdateCmd() *cobra.Command {
	var text, requestID string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Append a line to the shared notepad",
		RunE: func(cmd *cobra.Command, args []string) error {
			if text == "" {
				return cmdErr(errors.New("--text is required"))
			}
			agent, err := requireAgentName(cmd)
			if err != nil {
				return cmdErr(err)
			}
			return withFacade(cmd, func(ctx context.Context, f *coordination.Facade) error {
				projectID, err := resolveProjectID(ctx, f, cmd)
				if err != nil {
					return err
				}
				result := f.UpdateSharedContext(ctx, projectID, agent, text, requestID)
				if !result.IsOk() {
					return result.Err
				}
				return output.PrintSuccess(map[string]any{"ok": true})
			})
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "Line to append")
	cmd.Flags().StringVar(&requestID, "request-id", "", "Optional idempotency key: a retry with the same id replays the original result")
	return cmd
}

func newContextReadCmd() *cobra.Command {
	var core bool

	cmd := &cobra.Command{
		Use:   "read",
		Short: "Read the shared notepad, or the rendered core context with --core",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFacade(cmd, func(ctx context.Context, f *coordination.Facade) error {
				projectID, err := resolveProjectID(ctx, f, cmd)
				if err != nil {
					return err
				}
				if core {
					result := f.GetCoreContext(ctx, projectID)
					if !result.IsOk() {
						return result.Err
					}
					return output.PrintSuccess(map[string]any{"context": result.Value})
				}
				result := f.ReadContext(ctx, projectID)
				if !result.IsOk() {
					return result.Err
				}
				return output.PrintSuccess(map[string]any{"notepad": result.Value})
			})
		},
	}
	cmd.Flags().BoolVar(&core, "core", false, "Render the full core context (jobs, locks, notepad) instead of just the notepad")
	return cmd
}

func newContextFinalizeCmd() *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "finalize",
		Short: "Archive the session notepad, then reset locks and terminal jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFacade(cmd, func(ctx context.Context, f *coordination.Facade) error {
				project, err := requireProjectName(cmd)
				if err != nil {
					return err
				}
				projectID, err := resolveProjectID(ctx, f, cmd)
				if err != nil {
					return err
				}
				if title == "" {
					title = project
				}
				result := f.FinalizeSession(ctx, projectID, title)
				if !result.IsOk() {
					return result.Err
				}
				return output.PrintSuccess(result.Value)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Session title (default: project name)")
	return cmd
}

func newContextSoulCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "soul",
		Short: "Read the project's persistent instructions (context.md, conventions.md)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFacade(cmd, func(ctx context.Context, f *coordination.Facade) error {
				result := f.GetProjectSoul(ctx)
				if !result.IsOk() {
					return result.Err
				}
				return output.PrintSuccess(map[string]any{"soul": result.Value})
			})
		},
	}
}
