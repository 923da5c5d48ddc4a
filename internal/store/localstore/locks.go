package localstore

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/nervecenter/nerve-center/internal/models"
	"github.com/nervecenter/nerve-center/internal/store"
)

// UpsertLock implements store.Store, the same 4-step protocol as sqlstore's
// UpsertLock: reclaim-if-stale, read, grant-or-refuse, write.
func (s *Store) UpsertLock(_ context.Context, projectID, filePath, agentID, intent, prompt string, ttl time.Duration) (store.LockResult, error) {
	if agentID == "" {
		return store.LockResult{}, errors.New("agent id is required")
	}
	if filePath == "" {
		return store.LockResult{}, errors.New("file path is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := lockKey(projectID, filePath)
	now := time.Now()
	createdAt := now

	if current, ok := s.state.Locks[key]; ok {
		if !current.Live(now, ttl) {
			delete(s.state.Locks, key)
		} else if current.AgentID != agentID {
			clone := *current
			return store.LockResult{Granted: false, CurrentLock: &clone}, nil
		} else {
			createdAt = current.CreatedAt
		}
	}

	s.state.Locks[key] = &models.Lock{
		ProjectID:  projectID,
		FilePath:   filePath,
		AgentID:    agentID,
		Intent:     intent,
		UserPrompt: prompt,
		CreatedAt:  createdAt,
		UpdatedAt:  now,
	}
	if err := s.save(); err != nil {
		return store.LockResult{}, err
	}
	return store.LockResult{Granted: true}, nil
}

// SelectProjectLocks implements store.Store.
func (s *Store) SelectProjectLocks(_ context.Context, projectID string, ttl time.Duration) ([]*models.Lock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var locks []*models.Lock
	for _, l := range s.state.Locks {
		if l.ProjectID != projectID {
			continue
		}
		if l.Live(now, ttl) {
			clone := *l
			locks = append(locks, &clone)
		}
	}
	sort.Slice(locks, func(i, j int) bool { return locks[i].FilePath < locks[j].FilePath })
	return locks, nil
}

// DeleteLock implements store.Store.
func (s *Store) DeleteLock(_ context.Context, projectID, filePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := lockKey(projectID, filePath)
	if _, ok := s.state.Locks[key]; !ok {
		return nil
	}
	delete(s.state.Locks, key)
	return s.save()
}

// DeleteAllLocks implements store.Store.
func (s *Store) DeleteAllLocks(_ context.Context, projectID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for key, l := range s.state.Locks {
		if l.ProjectID == projectID {
			delete(s.state.Locks, key)
			count++
		}
	}
	if count > 0 {
		if err := s.save(); err != nil {
			return 0, err
		}
	}
	return count, nil
}

// ReclaimStaleLocks implements store.Store.
func (s *Store) ReclaimStaleLocks(_ context.Context, projectID string, ttl time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	count := 0
	for key, l := range s.state.Locks {
		if l.ProjectID == projectID && !l.Live(now, ttl) {
			delete(s.state.Locks, key)
			count++
		}
	}
	if count > 0 {
		if err := s.save(); err != nil {
			return 0, err
		}
	}
	return count, nil
}
