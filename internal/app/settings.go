package app

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Settings represents configuration loaded from config.yaml. Field names
// match snake_case YAML keys.
type Settings struct {
	DBPath         string `yaml:"db_path"`
	StatePath      string `yaml:"state_path"`
	ProjectName    string `yaml:"project_name"`
	LockTTLMinutes int    `yaml:"lock_ttl_minutes"`
}

// DefaultLockTTLMinutes is used when config.yaml omits lock_ttl_minutes.
const DefaultLockTTLMinutes = 30

// EffectiveLockTTL returns the configured lock TTL in minutes, defaulting
// and clamping to a sane range.
func EffectiveLockTTL() int {
	s, err := LoadSettings()
	if err != nil || s.LockTTLMinutes <= 0 {
		return DefaultLockTTLMinutes
	}
	if s.LockTTLMinutes > 24*60 {
		return 24 * 60
	}
	return s.LockTTLMinutes
}

// settingsOnce, settings, settingsErr implement the sync.Once lazy-load
// singleton for config. dbPathOverrideMu and dbPathOverride implement a
// mutex-protected process-wide override for CLI --db-path. These globals
// are required by the sync.Once and RWMutex patterns; they cannot be
// avoided.
//
//nolint:gochecknoglobals // sync.Once singleton + RWMutex override are intentional process-wide state
var (
	settingsOnce sync.Once
	settings     Settings
	settingsErr  error

	dbPathOverrideMu sync.RWMutex
	dbPathOverride   string
)

// SetDBPathOverride sets a process-wide database path override. Intended
// for CLI flag support (e.g. --db-path).
func SetDBPathOverride(path string) {
	dbPathOverrideMu.Lock()
	dbPathOverride = path
	dbPathOverrideMu.Unlock()
}

func getDBPathOverride() string {
	dbPathOverrideMu.RLock()
	v := dbPathOverride
	dbPathOverrideMu.RUnlock()
	return v
}

// LoadSettings loads configuration once using the documented lookup order.
// Lookup order (first found wins):
//  1. ~/.config/nerve/config.yaml
//  2. /etc/nerve/config.yaml
//  3. ./config.yaml (lowest priority; allows repo-local overrides)
//
// Environment variables are handled separately (see EnvConfig).
func LoadSettings() (Settings, error) {
	settingsOnce.Do(func() {
		settings = Settings{}

		dir, err := ConfigDir()
		if err != nil {
			settingsErr = err
			return
		}
		if s, err := loadSettingsFile(filepath.Join(dir, "config.yaml")); err == nil {
			settings = s
			return
		} else if !errors.Is(err, os.ErrNotExist) {
			settingsErr = err
			return
		}

		if s, err := loadSettingsFile(filepath.Join(string(os.PathSeparator), "etc", "nerve", "config.yaml")); err == nil {
			settings = s
			return
		} else if !errors.Is(err, os.ErrNotExist) {
			settingsErr = err
			return
		}

		if s, err := loadSettingsFile("config.yaml"); err == nil {
			settings = s
			return
		} else if !errors.Is(err, os.ErrNotExist) {
			settingsErr = err
			return
		}
	})

	return settings, settingsErr
}

func loadSettingsFile(path string) (Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}

	var s Settings
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}
