package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/nervecenter/nerve-center/internal/coordination"
	"github.com/nervecenter/nerve-center/internal/models"
	"github.com/nervecenter/nerve-center/internal/output"
)

// NewJobCmd groups the job-board subcommands: post, claim, complete,
// cancel, list — the CLI's direct path to the same operations the HTTP API
// and MCP tool surface expose, for local-mode scripting.
func NewJobCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Post, claim, complete, cancel, and list jobs",
	}
	cmd.AddCommand(newJobPostCmd())
	cmd.AddCommand(newJobClaimCmd())
	cmd.AddCommand(newJobCompleteCmd())
	cmd.AddCommand(newJobCancelCmd())
	cmd.AddCommand(newJobListCmd())
	return cmd
}

func newJobPostCmd() *cobra.Command {
	var title, description, priority, requestID string
	var dependencies []string

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post a new job to the board",
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" {
				return cmdErr(errors.New("--title is required"))
			}
			agent := resolveAgentName(cmd)
			return withFacade(cmd, func(ctx context.Context, f *coordination.Facade) error {
				projectID, err := resolveProjectID(ctx, f, cmd)
				if err != nil {
					return err
				}
				result := f.PostJob(ctx, projectID, agent, title, description, models.JobPriority(priority), dependencies, requestID)
				if !result.IsOk() {
					return result.Err
				}
				return output.PrintSuccess(result.Value)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Job title")
	cmd.Flags().StringVar(&description, "description", "", "Job description")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority: low|medium|high|critical (default: medium)")
	cmd.Flags().StringSliceVar(&dependencies, "depends-on", nil, "Job ids this job depends on")
	cmd.Flags().StringVar(&requestID, "request-id", "", "Optional idempotency key: a retry with the same id replays the original result")
	return cmd
}

func newJobClaimCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "claim",
		Short: "Claim the highest-priority unblocked job",
		RunE: func(cmd *cobra.Command, args []string) error {
			agent, err := requireAgentName(cmd)
			if err != nil {
				return cmdErr(err)
			}
			return withFacade(cmd, func(ctx context.Context, f *coordination.Facade) error {
				projectID, err := resolveProjectID(ctx, f, cmd)
				if err != nil {
					return err
				}
				result := f.ClaimNextJob(ctx, projectID, agent)
				if !result.IsOk() {
					return result.Err
				}
				return output.PrintSuccess(result.Value)
			})
		},
	}
}

func newJobCompleteCmd() *cobra.Command {
	var jobID, outcome, completionKey, requestID string

	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Complete a job as its assignee, or via its completion key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if jobID == "" {
				return cmdErr(errors.New("--id is required"))
			}
			agent := resolveAgentName(cmd)
			if agent == "" && completionKey == "" {
				return cmdErr(errors.New("either --agent or --completion-key is required"))
			}
			return withFacade(cmd, func(ctx context.Context, f *coordination.Facade) error {
				projectID, err := resolveProjectID(ctx, f, cmd)
				if err != nil {
					return err
				}
				result := f.CompleteJob(ctx, projectID, agent, jobID, outcome, completionKey, requestID)
				if !result.IsOk() {
					return result.Err
				}
				return output.PrintSuccess(result.Value)
			})
		},
	}
	cmd.Flags().StringVar(&jobID, "id", "", "Job id")
	cmd.Flags().StringVar(&outcome, "outcome", "", "Free-form outcome note, appended to the notepad")
	cmd.Flags().StringVar(&completionKey, "completion-key", "", "Completion key returned by job post (alternative to --agent)")
	cmd.Flags().StringVar(&requestID, "request-id", "", "Optional idempotency key: a retry with the same id replays the original result")
	return cmd
}

func newJobCancelCmd() *cobra.Command {
	var jobID, reason, requestID string

	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel a job",
		RunE: func(cmd *cobra.Command, args []string) error {
			if jobID == "" {
				return cmdErr(errors.New("--id is required"))
			}
			agent := resolveAgentName(cmd)
			return withFacade(cmd, func(ctx context.Context, f *coordination.Facade) error {
				projectID, err := resolveProjectID(ctx, f, cmd)
				if err != nil {
					return err
				}
				result := f.CancelJob(ctx, projectID, agent, jobID, reason, requestID)
				if !result.IsOk() {
					return result.Err
				}
				return output.PrintSuccess(result.Value)
			})
		},
	}
	cmd.Flags().StringVar(&jobID, "id", "", "Job id")
	cmd.Flags().StringVar(&reason, "reason", "", "Cancellation reason")
	cmd.Flags().StringVar(&requestID, "request-id", "", "Optional idempotency key: a retry with the same id replays the original result")
	return cmd
}

func newJobListCmd() *cobra.Command {
	var includeTerminal bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the project's jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFacade(cmd, func(ctx context.Context, f *coordination.Facade) error {
				projectID, err := resolveProjectID(ctx, f, cmd)
				if err != nil {
					return err
				}
				result := f.ListJobs(ctx, projectID, includeTerminal)
				if !result.IsOk() {
					return result.Err
				}
				return output.PrintSuccess(map[string]any{"jobs": result.Value})
			})
		},
	}
	cmd.Flags().BoolVar(&includeTerminal, "all", false, "Include completed/cancelled jobs")
	return cmd
}
