package commands

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// resolveAgentName resolves the calling agent's id for operations that
// require one (post/claim/complete/cancel, propose_file_access,
// update_shared_context). Precedence:
//  1. --agent flag
//  2. NERVE_AGENT environment variable
func resolveAgentName(cmd *cobra.Command) string {
	raw := ""
	if v, err := cmd.Flags().GetString("agent"); err == nil && v != "" {
		raw = v
	}
	if raw == "" {
		raw = os.Getenv("NERVE_AGENT")
	}
	return strings.TrimSpace(raw)
}

func requireAgentName(cmd *cobra.Command) (string, error) {
	agent := resolveAgentName(cmd)
	if agent == "" {
		return "", errors.New("agent is required (set --agent or NERVE_AGENT)")
	}
	return agent, nil
}

// resolveProjectName resolves the project a command operates against.
// Precedence: --project flag, then PROJECT_NAME.
func resolveProjectName(cmd *cobra.Command) string {
	raw := ""
	if v, err := cmd.Flags().GetString("project"); err == nil && v != "" {
		raw = v
	}
	if raw == "" {
		raw = os.Getenv("PROJECT_NAME")
	}
	return strings.TrimSpace(raw)
}

func requireProjectName(cmd *cobra.Command) (string, error) {
	project := resolveProjectName(cmd)
	if project == "" {
		return "", errors.New("project is required (set --project or PROJECT_NAME)")
	}
	return project, nil
}
