package localstore

import (
	"context"
	"fmt"

	"github.com/nervecenter/nerve-center/internal/store"
)

// ReadNotepad implements store.Store.
func (s *Store) ReadNotepad(_ context.Context, projectID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notepad, ok := s.state.Notepads[projectID]
	if !ok {
		return "", fmt.Errorf("%w: project %s", store.ErrNotFound, projectID)
	}
	return notepad, nil
}

// AppendNotepad implements store.Store.
func (s *Store) AppendNotepad(_ context.Context, projectID, line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	notepad, ok := s.state.Notepads[projectID]
	if !ok {
		return fmt.Errorf("%w: project %s", store.ErrNotFound, projectID)
	}
	s.state.Notepads[projectID] = notepad + line
	return s.save()
}

// ResetNotepad implements store.Store.
func (s *Store) ResetNotepad(_ context.Context, projectID, marker string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, ok := s.state.Notepads[projectID]
	if !ok {
		return "", fmt.Errorf("%w: project %s", store.ErrNotFound, projectID)
	}
	s.state.Notepads[projectID] = marker
	if err := s.save(); err != nil {
		return "", err
	}
	return previous, nil
}
