package localstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/nervecenter/nerve-center/internal/models"
	"github.com/nervecenter/nerve-center/internal/store"
)

// ResolveProject implements store.Store.
func (s *Store) ResolveProject(_ context.Context, name, owner string) (*models.Project, error) {
	if name == "" {
		return nil, errors.New("project name is required")
	}
	if owner == "" {
		return nil, errors.New("project owner is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.state.Projects {
		if p.Name == name && p.OwnerID == owner {
			clone := *p
			return &clone, nil
		}
	}

	project := &models.Project{
		ID:      store.GenerateProjectID(),
		Name:    name,
		OwnerID: owner,
	}
	s.state.Projects[project.ID] = project
	s.state.Notepads[project.ID] = ""
	if err := s.save(); err != nil {
		return nil, err
	}
	clone := *project
	return &clone, nil
}

// GetProject implements store.Store.
func (s *Store) GetProject(_ context.Context, projectID string) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.state.Projects[projectID]
	if !ok {
		return nil, fmt.Errorf("%w: project %s", store.ErrNotFound, projectID)
	}
	clone := *p
	return &clone, nil
}
