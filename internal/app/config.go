// Package app resolves runtime configuration: the active Store mode, the
// database/state-file path, and the external service credentials read from
// the environment.
package app

import (
	"os"
	"path/filepath"
)

// ConfigDir returns ~/.config/nerve/ on all platforms.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "nerve"), nil
}

// EnsureConfigDir creates the config directory and default config.yaml if missing.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return os.WriteFile(configFile, []byte(defaultConfig), 0o600)
	}
	return nil
}

const defaultConfig = `# nerve configuration
# Run: nerve --help

# Optional: override the Shared Store SQLite database location.
# Can also be set via NERVE_DB_PATH or --db-path.
# db_path: ~/.config/nerve/nerve.db

# Optional: override the Local Store state file.
# Can also be set via NERVE_CENTER_STATE_FILE.
# state_path: ./history/nerve-center-state.json

# Default project name used when a caller doesn't name one.
# project_name: default
`

// Mode is the active Store implementation a Facade is backed by.
type Mode string

// The two execution modes. Both present identical externally observable
// facade semantics; only cross-process visibility differs.
const (
	ModeHosted Mode = "hosted"
	ModeLocal  Mode = "local"
)

// EnvConfig is the subset of configuration read directly from the
// environment, named after the external collaborators this system talks
// to rather than after this system's own concerns.
type EnvConfig struct {
	SupabaseURL          string // NEXT_PUBLIC_SUPABASE_URL
	SupabaseServiceKey    string // SUPABASE_SERVICE_ROLE_KEY
	OpenAIAPIKey          string // OPENAI_API_KEY
	SharedContextAPIURL   string // SHARED_CONTEXT_API_URL
	SharedContextAPISecret string // SHARED_CONTEXT_API_SECRET
	AppSessionSecret      string // APP_SESSION_SECRET
	ProjectName           string // PROJECT_NAME
	StateFile             string // NERVE_CENTER_STATE_FILE
}

// LoadEnvConfig reads the documented environment variables. Every field is
// optional at this layer; callers that require one (e.g. the HTTP API
// requiring APP_SESSION_SECRET to verify bearer tokens) check for emptiness
// themselves and surface NotConfigured.
func LoadEnvConfig() EnvConfig {
	return EnvConfig{
		SupabaseURL:            os.Getenv("NEXT_PUBLIC_SUPABASE_URL"),
		SupabaseServiceKey:     os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		OpenAIAPIKey:           os.Getenv("OPENAI_API_KEY"),
		SharedContextAPIURL:    os.Getenv("SHARED_CONTEXT_API_URL"),
		SharedContextAPISecret: os.Getenv("SHARED_CONTEXT_API_SECRET"),
		AppSessionSecret:       os.Getenv("APP_SESSION_SECRET"),
		ProjectName:            os.Getenv("PROJECT_NAME"),
		StateFile:              os.Getenv("NERVE_CENTER_STATE_FILE"),
	}
}

// DefaultStateFile is used when NERVE_CENTER_STATE_FILE is unset.
const DefaultStateFile = "./history/nerve-center-state.json"

// StatePath resolves the Local Store's state file path: env override, then
// config.yaml's state_path, then the default.
func StatePath(env EnvConfig) string {
	if env.StateFile != "" {
		return env.StateFile
	}
	if s, err := LoadSettings(); err == nil && s.StatePath != "" {
		return s.StatePath
	}
	return DefaultStateFile
}

// DBPath resolves the Shared Store's SQLite file path and ensures its
// parent directory exists. Order of precedence: CLI override (--db-path),
// NERVE_DB_PATH, config.yaml's db_path, then ~/.config/nerve/nerve.db.
func DBPath(cliOverride string) (string, error) {
	if cliOverride != "" {
		return ensureDBDir(cliOverride)
	}
	if override := getDBPathOverride(); override != "" {
		return ensureDBDir(override)
	}
	if envPath := os.Getenv("NERVE_DB_PATH"); envPath != "" {
		return ensureDBDir(envPath)
	}
	if s, err := LoadSettings(); err == nil && s.DBPath != "" {
		expanded, err := expandHome(s.DBPath)
		if err != nil {
			return "", err
		}
		return ensureDBDir(expanded)
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return ensureDBDir(filepath.Join(dir, "nerve.db"))
}

func ensureDBDir(dbPath string) (string, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dbPath, nil
}

func expandHome(path string) (string, error) {
	if len(path) < 2 || path[:2] != "~/" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[2:]), nil
}
