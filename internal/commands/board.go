package commands

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nervecenter/nerve-center/internal/coordination"
	"github.com/nervecenter/nerve-center/internal/tui"
)

// NewBoardCmd launches the read-only bubbletea dashboard over a project's
// jobs, locks, and notepad.
func NewBoardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Launch the terminal dashboard for a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := requireProjectName(cmd)
			if err != nil {
				return cmdErr(err)
			}
			return withFacade(cmd, func(ctx context.Context, f *coordination.Facade) error {
				projectID, err := resolveProjectID(ctx, f, cmd)
				if err != nil {
					return err
				}
				board := tui.NewBoard(f, projectID, project)
				_, err = tea.NewProgram(board).Run()
				return err
			})
		},
	}
}
