package commands

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nervecenter/nerve-center/internal/app"
	"github.com/nervecenter/nerve-center/internal/output"
)

// Execute runs the CLI application.
func Execute(version string) error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	root := &cobra.Command{
		Use:           "nerve",
		Short:         "Nerve Center: a job board, lock registry, and notepad for coordinating AI coding agents",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			showVersion, _ := cmd.Flags().GetBool("version")
			if showVersion {
				type resp struct {
					Version string `json:"version"`
				}
				return output.PrintSuccess(resp{Version: version})
			}
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := app.EnsureConfigDir(); err != nil {
				return err
			}
			if dbPath, err := cmd.Flags().GetString("db-path"); err == nil && dbPath != "" {
				app.SetDBPathOverride(dbPath)
			}
			return nil
		},
	}

	root.PersistentFlags().String("db-path", "", "Override the Shared Store's SQLite path (hosted mode only)")
	root.PersistentFlags().String("mode", "hosted", "Store mode: hosted (shared SQLite) or local (single-process JSON file)")
	root.PersistentFlags().StringP("agent", "a", "", "Calling agent id (default: $NERVE_AGENT)")
	root.PersistentFlags().StringP("project", "p", "", "Project name (default: $PROJECT_NAME)")
	root.Flags().BoolP("version", "v", false, "version for nerve")

	root.AddCommand(NewJobCmd())
	root.AddCommand(NewLockCmd())
	root.AddCommand(NewContextCmd())
	root.AddCommand(NewSearchCmd())
	root.AddCommand(NewServeCmd())
	root.AddCommand(NewMCPCmd())
	root.AddCommand(NewBoardCmd())

	err := root.Execute()
	if err != nil {
		var pe printedError
		if !errors.As(err, &pe) {
			slog.Default().Error("command failed", "error", err.Error())
		}
	}
	return err
}
