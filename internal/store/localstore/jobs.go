package localstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/nervecenter/nerve-center/internal/models"
	"github.com/nervecenter/nerve-center/internal/store"
)

// InsertJob implements store.Store.
func (s *Store) InsertJob(_ context.Context, job *models.Job) (*models.Job, error) {
	if job.Title == "" {
		return nil, errors.New("job title is required")
	}
	if !job.Priority.Valid() {
		return nil, fmt.Errorf("invalid job priority: %q", job.Priority)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	rec := &jobRecord{
		ID:            store.GeneratePrefixedID("job"),
		ProjectID:     job.ProjectID,
		Title:         job.Title,
		Description:   job.Description,
		Priority:      job.Priority,
		Status:        models.JobStatusTodo,
		Dependencies:  append([]string(nil), job.Dependencies...),
		CompletionKey: store.GenerateCompletionKey(),
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.state.Jobs[rec.ID] = rec
	if err := s.save(); err != nil {
		return nil, err
	}
	return rec.toModel(), nil
}

// ClaimNextJob implements store.Store.
func (s *Store) ClaimNextJob(_ context.Context, projectID, agentID string) (store.ClaimResult, error) {
	if agentID == "" {
		return store.ClaimResult{}, errors.New("agent id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var candidates []*jobRecord
	for _, j := range s.state.Jobs {
		if j.ProjectID != projectID || j.Status != models.JobStatusTodo {
			continue
		}
		if s.hasUnresolvedDependenciesLocked(j) {
			continue
		}
		candidates = append(candidates, j)
	}
	if len(candidates) == 0 {
		return store.ClaimResult{Found: false}, nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		ri, rj := candidates[i].Priority.Rank(), candidates[j].Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})

	claimed := candidates[0]
	claimed.Status = models.JobStatusInProgress
	claimed.Assignee = agentID
	claimed.Version++
	claimed.UpdatedAt = time.Now()

	if err := s.save(); err != nil {
		return store.ClaimResult{}, err
	}
	return store.ClaimResult{Job: claimed.toModel(), Found: true}, nil
}

func (s *Store) hasUnresolvedDependenciesLocked(job *jobRecord) bool {
	for _, depID := range job.Dependencies {
		dep, ok := s.state.Jobs[depID]
		if !ok || dep.Status != models.JobStatusDone {
			return true
		}
	}
	return false
}

// UpdateJob implements store.Store.
func (s *Store) UpdateJob(_ context.Context, jobID string, update store.JobUpdate, precondition *int) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.state.Jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: job %s", store.ErrNotFound, jobID)
	}
	if precondition != nil && *precondition != rec.Version {
		return nil, &store.VersionConflictError{Entity: "job", ID: jobID, Version: *precondition}
	}

	if update.SetStatus != nil {
		rec.Status = *update.SetStatus
	}
	if update.SetAssignee != nil {
		rec.Assignee = *update.SetAssignee
	}
	if update.SetPriority != nil {
		rec.Priority = *update.SetPriority
	}
	if update.SetCancelReason != nil {
		rec.CancelReason = *update.SetCancelReason
	}
	rec.Version++
	rec.UpdatedAt = time.Now()

	if err := s.save(); err != nil {
		return nil, err
	}
	return rec.toModel(), nil
}

// GetJob implements store.Store.
func (s *Store) GetJob(_ context.Context, jobID string) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.state.Jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: job %s", store.ErrNotFound, jobID)
	}
	return rec.toModel(), nil
}

// SelectProjectJobs implements store.Store.
func (s *Store) SelectProjectJobs(_ context.Context, projectID string, includeTerminal bool) ([]*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var jobs []*jobRecord
	for _, j := range s.state.Jobs {
		if j.ProjectID != projectID {
			continue
		}
		if !includeTerminal && j.Status.IsTerminal() {
			continue
		}
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(i, j int) bool {
		ri, rj := jobs[i].Priority.Rank(), jobs[j].Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
	})

	out := make([]*models.Job, len(jobs))
	for i, j := range jobs {
		out[i] = j.toModel()
	}
	return out, nil
}

// DeleteTerminalJobs implements store.Store.
func (s *Store) DeleteTerminalJobs(_ context.Context, projectID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for id, j := range s.state.Jobs {
		if j.ProjectID == projectID && j.Status.IsTerminal() {
			delete(s.state.Jobs, id)
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
