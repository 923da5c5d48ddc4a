package localstore

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/nervecenter/nerve-center/internal/models"
)

// Open loads path from fs (an empty/absent file yields a fresh fileState)
// and returns a ready Store. fs is normally afero.NewOsFs() in production
// and afero.NewMemMapFs() in tests, per SPEC_FULL.md §4.4/§8.
func Open(fs afero.Fs, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	state, err := loadState(fs, path)
	if err != nil {
		return nil, err
	}

	return &Store{fs: fs, path: path, state: state}, nil
}

func loadState(fs afero.Fs, path string) (*fileState, error) {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat state file: %w", err)
	}
	if !exists {
		return newFileState(), nil
	}

	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	if len(raw) == 0 {
		return newFileState(), nil
	}

	var state fileState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", path, err)
	}
	if state.Projects == nil {
		state.Projects = make(map[string]*models.Project)
	}
	if state.Notepads == nil {
		state.Notepads = make(map[string]string)
	}
	if state.Jobs == nil {
		state.Jobs = make(map[string]*jobRecord)
	}
	if state.Locks == nil {
		state.Locks = make(map[string]*models.Lock)
	}
	if state.Idempotency == nil {
		state.Idempotency = make(map[string]idempotencyEntry)
	}
	if state.AgentCursors == nil {
		state.AgentCursors = make(map[string]*models.AgentCursor)
	}
	return &state, nil
}

// save rewrites the entire state file. Called at the end of every mutating
// Store method while mu is held. The new state is written to a temporary
// file beside path and then renamed over it, so a crash mid-write leaves at
// worst the previous fully-written version.
func (s *Store) save() error {
	raw, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

// Close implements store.Store. The Local Store holds no handles beyond the
// in-memory map and the afero.Fs, so there is nothing to release.
func (s *Store) Close() error {
	return nil
}
