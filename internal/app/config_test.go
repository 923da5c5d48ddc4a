package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// DBPath's precedence chain beyond the CLI override and env var touches
// LoadSettings, a sync.Once singleton reading the real environment's
// config.yaml search path — not safe to exercise in isolation here. These
// tests cover only the three precedence levels that don't depend on it: the
// CLI override, the process-wide override, and NERVE_DB_PATH.

func TestDBPathPrefersCLIOverride(t *testing.T) {
	t.Setenv("NERVE_DB_PATH", filepath.Join(t.TempDir(), "env.db"))
	SetDBPathOverride("")

	want := filepath.Join(t.TempDir(), "cli.db")
	got, err := DBPath(want)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = os.Stat(filepath.Dir(want))
	assert.NoError(t, err, "DBPath must create the parent directory")
}

func TestDBPathUsesProcessWideOverrideWhenCLIOverrideEmpty(t *testing.T) {
	t.Setenv("NERVE_DB_PATH", filepath.Join(t.TempDir(), "env.db"))

	want := filepath.Join(t.TempDir(), "override.db")
	SetDBPathOverride(want)
	t.Cleanup(func() { SetDBPathOverride("") })

	got, err := DBPath("")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDBPathFallsBackToEnvVar(t *testing.T) {
	SetDBPathOverride("")
	want := filepath.Join(t.TempDir(), "env.db")
	t.Setenv("NERVE_DB_PATH", want)

	got, err := DBPath("")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStatePathPrefersEnvOverride(t *testing.T) {
	want := filepath.Join(t.TempDir(), "state.json")
	got := StatePath(EnvConfig{StateFile: want})
	assert.Equal(t, want, got)
}

func TestLoadEnvConfigReadsDocumentedVariables(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("PROJECT_NAME", "demo")

	env := LoadEnvConfig()
	assert.Equal(t, "sk-test", env.OpenAIAPIKey)
	assert.Equal(t, "demo", env.ProjectName)
}
