package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/nervecenter/nerve-center/internal/coordination"
	"github.com/nervecenter/nerve-center/internal/output"
)

// NewLockCmd groups the file-path lock registry subcommands.
func NewLockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Propose file access, force-unlock, and list live locks",
	}
	cmd.AddCommand(newLockProposeCmd())
	cmd.AddCommand(newLockForceUnlockCmd())
	cmd.AddCommand(newLockListCmd())
	return cmd
}

func newLockProposeCmd() *cobra.Command {
	var filePath, intent, userPrompt string

	cmd := &cobra.Command{
		Use:   "propose",
		Short: "Propose access to a file path, acquiring the lock if it's free",
		RunE: func(cmd *cobra.Command, args []string) error {
			if filePath == "" {
				return cmdErr(errors.New("--file is required"))
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
				result := f.ProposeFileAccess(ctx, projectID, agent, filePath, intent, userPrompt)
				if !result.IsOk() {
					return result.Err
				}
				return output.PrintSuccess(result.Value)
			})
		},
	}
	cmd.Flags().StringVar(&filePath, "file", "", "File path to lock")
	cmd.Flags().StringVar(&intent, "intent", "", "What the agent intends to do with the file")
	cmd.Flags().StringVar(&userPrompt, "prompt", "", "The user prompt driving this request, for override review")
	return cmd
}

func newLockForceUnlockCmd() *cobra.Command {
	var filePath, reason string

	cmd := &cobra.Command{
		Use:   "force-unlock",
		Short: "Unconditionally release a file path's lock",
		RunE: func(cmd *cobra.Command, args []string) error {
			if filePath == "" {
				return cmdErr(errors.New("--file is required"))
			}
			return withFacade(cmd, func(ctx context.Context, f *coordination.Facade) error {
				projectID, err := resolveProjectID(ctx, f, cmd)
				if err != nil {
					return err
				}
				result := f.ForceUnlock(ctx, projectID, filePath, reason)
				if !result.IsOk() {
					return result.Err
				}
				return output.PrintSuccess(result.Value)
			})
		},
	}
	cmd.Flags().StringVar(&filePath, "file", "", "File path to unlock")
	cmd.Flags().StringVar(&reason, "reason", "", "Why this lock is being forced free")
	return cmd
}

func newLockListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the project's live locks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFacade(cmd, func(ctx context.Context, f *coordination.Facade) error {
				projectID, err := resolveProjectID(ctx, f, cmd)
				if err != nil {
					return err
				}
				result := f.ListLocks(ctx, projectID)
				if !result.IsOk() {
					return result.Err
				}
				return output.PrintSuccess(map[string]any{"locks": result.Value})
			})
		},
	}
}
