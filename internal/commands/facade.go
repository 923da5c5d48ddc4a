package commands

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nervecenter/nerve-center/internal/app"
	"github.com/nervecenter/nerve-center/internal/coordination"
	"github.com/nervecenter/nerve-center/internal/embeddings"
)

type printedError struct {
	err error
}

func (e printedError) Error() string {
	// Intentionally hide the original error: the JSON error response on
	// stdout (or the structured slog line on stderr) is the real output.
	return "error already printed"
}

func cmdErr(err error) error {
	if err == nil {
		return nil
	}
	attrs := []any{"error", err.Error()}
	type slogAttrError interface {
		SlogAttrs() []any
	}
	var detailed slogAttrError
	if errors.As(err, &detailed) {
		attrs = append(attrs, detailed.SlogAttrs()...)
	}
	slog.Error("command error", attrs...)
	return printedError{err: err}
}

// instructionsDir is where get_project_soul reads context.md/conventions.md
// from in both modes, per SPEC_FULL.md §6's persisted-state layout.
const instructionsDir = "./.axis/instructions"

// resolveMode reads the --mode persistent flag (hosted|local), defaulting to
// hosted when it is empty or unrecognised. Neither spec.md nor SPEC_FULL.md
// prescribes how a CLI invocation picks a mode — this is this build's own
// Open Question decision, recorded in DESIGN.md.
func resolveMode(cmd *cobra.Command) app.Mode {
	raw, _ := cmd.Flags().GetString("mode")
	if raw == "" {
		raw = "hosted"
	}
	switch raw {
	case string(app.ModeLocal):
		return app.ModeLocal
	default:
		return app.ModeHosted
	}
}

// openFacade constructs a coordination.Facade over whichever Store the
// active mode resolves to, wiring the embeddings client when
// OPENAI_API_KEY is present. Callers must call the returned close func.
func openFacade(ctx context.Context, cmd *cobra.Command) (*coordination.Facade, func(), error) {
	mode := resolveMode(cmd)
	dbPathOverride, _ := cmd.Flags().GetString("db-path")

	st, err := app.OpenStore(ctx, mode, dbPathOverride)
	if err != nil {
		return nil, nil, err
	}

	f := coordination.New(st, slog.Default(), instructionsDir, afero.NewOsFs())

	env := app.LoadEnvConfig()
	if env.OpenAIAPIKey != "" {
		f.SetEmbedder(embeddings.New(env.OpenAIAPIKey))
	}

	return f, func() { _ = f.Close() }, nil
}

// withFacade opens a Facade for the command's configured mode, runs fn, and
// always closes it, one Facade per command invocation.
func withFacade(cmd *cobra.Command, fn func(ctx context.Context, f *coordination.Facade) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	f, closeFacade, err := openFacade(ctx, cmd)
	if err != nil {
		return cmdErr(err)
	}
	defer closeFacade()

	if err := fn(ctx, f); err != nil {
		return cmdErr(err)
	}
	return nil
}

// resolveProjectID resolves the command's --project/PROJECT_NAME name and
// agent to a stable project id, creating the project on first reference.
func resolveProjectID(ctx context.Context, f *coordination.Facade, cmd *cobra.Command) (string, error) {
	project, err := requireProjectName(cmd)
	if err != nil {
		return "", err
	}
	agent := resolveAgentName(cmd)
	if agent == "" {
		agent = project
	}
	result := f.ResolveProject(ctx, project, agent)
	if !result.IsOk() {
		return "", result.Err
	}
	return result.Value.ID, nil
}
