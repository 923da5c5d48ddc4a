package commands

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/nervecenter/nerve-center/internal/coordination"
	"github.com/nervecenter/nerve-center/internal/output"
)

// NewSearchCmd groups the thin RAG facility's subcommands: index a file's
// content, then search it back by code or docs kind.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Index and semantically search project files",
	}
	cmd.AddCommand(newSearchIndexCmd())
	cmd.AddCommand(newSearchQueryCmd("code", "Semantic search over indexed code", true))
	cmd.AddCommand(newSearchQueryCmd("docs", "Semantic search over indexed documentation", false))
	return cmd
}

func newSearchIndexCmd() *cobra.Command {
	var path, kind string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Embed a file's content into the project's RAG corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				return cmdErr(errors.New("--path is required"))
			}
			content, err := os.ReadFile(path)
			if err != nil {
				return cmdErr(err)
			}
			return withFacade(cmd, func(ctx context.Context, f *coordination.Facade) error {
				projectID, err := resolveProjectID(ctx, f, cmd)
				if err != nil {
					return err
				}
				result := f.IndexFile(ctx, projectID, path, string(content), kind)
				if !result.IsOk() {
					return result.Err
				}
				return output.PrintSuccess(map[string]any{"indexed": true})
			})
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "File path to read and index")
	cmd.Flags().StringVar(&kind, "kind", "code", "code|docs")
	return cmd
}

// newSearchQueryCmd builds the "code"/"docs" search subcommand, dispatching
// to Facade.SearchCodebase or Facade.SearchDocs per isCode.
func newSearchQueryCmd(use, short string, isCode bool) *cobra.Command {
	var query string
	var topK int

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if query == "" {
				return cmdErr(errors.New("--query is required"))
			}
			return withFacade(cmd, func(ctx context.Context, f *coordination.Facade) error {
				projectID, err := resolveProjectID(ctx, f, cmd)
				if err != nil {
					return err
				}
				if isCode {
					result := f.SearchCodebase(ctx, projectID, query, topK)
					if !result.IsOk() {
						return result.Err
					}
					return output.PrintSuccess(map[string]any{"results": result.Value})
				}
				result := f.SearchDocs(ctx, projectID, query, topK)
				if !result.IsOk() {
					return result.Err
				}
				return output.PrintSuccess(map[string]any{"results": result.Value})
			})
		},
	}
	cmd.Flags().StringVar(&query, "query", "", "Search query text")
	cmd.Flags().IntVar(&topK, "top", 0, "Max results (default facility default)")
	return cmd
}
