package commands

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("agent", "", "")
	cmd.Flags().String("project", "", "")
	return cmd
}

func TestResolveAgentNamePrefersFlagOverEnv(t *testing.T) {
	t.Setenv("NERVE_AGENT", "env-agent")
	cmd := newTestCmd()
	require.NoError(t, cmd.Flags().Set("agent", "flag-agent"))

	assert.Equal(t, "flag-agent", resolveAgentName(cmd))
}

func TestResolveAgentNameFallsBackToEnv(t *testing.T) {
	t.Setenv("NERVE_AGENT", "env-agent")
	cmd := newTestCmd()

	assert.Equal(t, "env-agent", resolveAgentName(cmd))
}

func TestRequireAgentNameErrorsWhenUnset(t *testing.T) {
	t.Setenv("NERVE_AGENT", "")
	cmd := newTestCmd()

	_, err := requireAgentName(cmd)
	assert.ErrorContains(t, err, "agent is required")
}

func TestResolveProjectNamePrefersFlagOverEnv(t *testing.T) {
	t.Setenv("PROJECT_NAME", "env-project")
	cmd := newTestCmd()
	require.NoError(t, cmd.Flags().Set("project", "flag-project"))

	assert.Equal(t, "flag-project", resolveProjectName(cmd))
}

func TestRequireProjectNameErrorsWhenUnset(t *testing.T) {
	t.Setenv("PROJECT_NAME", "")
	cmd := newTestCmd()

	_, err := requireProjectName(cmd)
	assert.ErrorContains(t, err, "project is required")
}

func TestResolveModeDefaultsToHosted(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("mode", "", "")

	assert.Equal(t, "hosted", string(resolveMode(cmd)))
}

func TestResolveModeLocal(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("mode", "", "")
	require.NoError(t, cmd.Flags().Set("mode", "local"))

	assert.Equal(t, "local", string(resolveMode(cmd)))
}
