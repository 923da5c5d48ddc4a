package localstore

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/nervecenter/nerve-center/internal/models"
)

// TouchAgentCursor implements store.Store.
func (s *Store) TouchAgentCursor(_ context.Context, projectID, agentID, focusJobID string) error {
	if agentID == "" {
		return errors.New("agent id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := agentCursorKey(projectID, agentID)
	s.state.AgentCursors[key] = &models.AgentCursor{
		AgentID:        agentID,
		FocusJobID:     focusJobID,
		FocusProjectID: projectID,
		LastActiveAt:   time.Now(),
	}
	return s.save()
}

// SelectAgentCursors implements store.Store.
func (s *Store) SelectAgentCursors(_ context.Context, projectID string) ([]*models.AgentCursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cursors []*models.AgentCursor
	for _, c := range s.state.AgentCursors {
		if c.FocusProjectID != projectID {
			continue
		}
		clone := *c
		cursors = append(cursors, &clone)
	}
	sort.Slice(cursors, func(i, j int) bool {
		return cursors[i].LastActiveAt.After(cursors[j].LastActiveAt)
	})
	return cursors, nil
}
