package sqlstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nervecenter/nerve-center/internal/models"
	"github.com/nervecenter/nerve-center/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustProject(t *testing.T, s *Store) *models.Project {
	t.Helper()
	p, err := s.ResolveProject(context.Background(), "demo", "agent-owner")
	require.NoError(t, err)
	return p
}

func TestResolveProjectIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.ResolveProject(ctx, "demo", "owner")
	require.NoError(t, err)
	second, err := s.ResolveProject(ctx, "demo", "owner")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestInsertJobRequiresTitleAndValidPriority(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	project := mustProject(t, s)

	_, err := s.InsertJob(ctx, &models.Job{ProjectID: project.ID, Priority: models.PriorityMedium})
	assert.ErrorContains(t, err, "title is required")

	_, err = s.InsertJob(ctx, &models.Job{ProjectID: project.ID, Title: "x", Priority: "urgent"})
	assert.ErrorContains(t, err, "invalid job priority")
}

func TestClaimNextJobHonoursPriorityAndDependencies(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	project := mustProject(t, s)

	low, err := s.InsertJob(ctx, &models.Job{ProjectID: project.ID, Title: "low", Priority: models.PriorityLow})
	require.NoError(t, err)
	high, err := s.InsertJob(ctx, &models.Job{ProjectID: project.ID, Title: "high", Priority: models.PriorityHigh})
	require.NoError(t, err)
	gated, err := s.InsertJob(ctx, &models.Job{
		ProjectID: project.ID, Title: "gated", Priority: models.PriorityCritical,
		Dependencies: []string{high.ID},
	})
	require.NoError(t, err)

	claim, err := s.ClaimNextJob(ctx, project.ID, "agent-a")
	require.NoError(t, err)
	require.True(t, claim.Found)
	assert.Equal(t, high.ID, claim.Job.ID)

	claim, err = s.ClaimNextJob(ctx, project.ID, "agent-b")
	require.NoError(t, err)
	require.True(t, claim.Found)
	assert.Equal(t, low.ID, claim.Job.ID)

	claim, err = s.ClaimNextJob(ctx, project.ID, "agent-c")
	require.NoError(t, err)
	assert.False(t, claim.Found)

	_, err = s.UpdateJob(ctx, high.ID, store.CompleteUpdate(), nil)
	require.NoError(t, err)

	claim, err = s.ClaimNextJob(ctx, project.ID, "agent-c")
	require.NoError(t, err)
	require.True(t, claim.Found)
	assert.Equal(t, gated.ID, claim.Job.ID)
}

func TestClaimNextJobConcurrentClaimsNeverDoubleAssign(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	project := mustProject(t, s)

	for i := 0; i < 5; i++ {
		_, err := s.InsertJob(ctx, &models.Job{ProjectID: project.ID, Title: "job", Priority: models.PriorityMedium})
		require.NoError(t, err)
	}

	type outcome struct {
		found bool
		jobID string
	}
	results := make(chan outcome, 8)
	for i := 0; i < 8; i++ {
		agent := i
		go func() {
			claim, err := s.ClaimNextJob(ctx, project.ID, fmt.Sprintf("agent-%d", agent))
			if err != nil {
				results <- outcome{}
				return
			}
			if claim.Found {
				results <- outcome{found: true, jobID: claim.Job.ID}
			} else {
				results <- outcome{}
			}
		}()
	}

	seen := map[string]int{}
	for i := 0; i < 8; i++ {
		o := <-results
		if o.found {
			seen[o.jobID]++
		}
	}
	assert.Len(t, seen, 5, "exactly the 5 posted jobs should be claimed")
	for jobID, count := range seen {
		assert.Equal(t, 1, count, "job %s must be claimed exactly once", jobID)
	}
}

func TestUpdateJobVersionConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	project := mustProject(t, s)

	job, err := s.InsertJob(ctx, &models.Job{ProjectID: project.ID, Title: "t", Priority: models.PriorityMedium})
	require.NoError(t, err)

	stale := job.Version
	_, err = s.UpdateJob(ctx, job.ID, store.SetStatusUpdate(models.JobStatusInProgress), &stale)
	require.NoError(t, err)

	_, err = s.UpdateJob(ctx, job.ID, store.SetStatusUpdate(models.JobStatusDone), &stale)
	var vce *store.VersionConflictError
	assert.ErrorAs(t, err, &vce)
}

func TestUpsertLockGrantsAndRefuses(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	project := mustProject(t, s)

	res, err := s.UpsertLock(ctx, project.ID, "main.go", "agent-a", "edit", "refactor", time.Hour)
	require.NoError(t, err)
	assert.True(t, res.Granted)

	res, err = s.UpsertLock(ctx, project.ID, "main.go", "agent-a", "edit more", "refactor", time.Hour)
	require.NoError(t, err)
	assert.True(t, res.Granted)

	res, err = s.UpsertLock(ctx, project.ID, "main.go", "agent-b", "edit", "refactor", time.Hour)
	require.NoError(t, err)
	require.False(t, res.Granted)
	require.NotNil(t, res.CurrentLock)
	assert.Equal(t, "agent-a", res.CurrentLock.AgentID)
}

func TestUpsertLockReclaimsStaleLockAcrossOwners(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	project := mustProject(t, s)

	ttl := time.Second
	res, err := s.UpsertLock(ctx, project.ID, "main.go", "agent-a", "edit", "", ttl)
	require.NoError(t, err)
	require.True(t, res.Granted)

	time.Sleep(2 * time.Second)

	res, err = s.UpsertLock(ctx, project.ID, "main.go", "agent-b", "edit", "", ttl)
	require.NoError(t, err)
	assert.True(t, res.Granted, "a lock past its TTL must be reclaimable by another agent")
}

func TestNotepadAppendAndReset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	project := mustProject(t, s)

	require.NoError(t, s.AppendNotepad(ctx, project.ID, "line one"))
	require.NoError(t, s.AppendNotepad(ctx, project.ID, "line two"))

	text, err := s.ReadNotepad(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "line oneline two", text)

	previous, err := s.ResetNotepad(ctx, project.ID, "fresh start")
	require.NoError(t, err)
	assert.Equal(t, "line oneline two", previous)

	text, err = s.ReadNotepad(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "fresh start", text)
}

func TestDeleteTerminalJobs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	project := mustProject(t, s)

	done, err := s.InsertJob(ctx, &models.Job{ProjectID: project.ID, Title: "done", Priority: models.PriorityMedium})
	require.NoError(t, err)
	_, err = s.UpdateJob(ctx, done.ID, store.CompleteUpdate(), nil)
	require.NoError(t, err)

	_, err = s.InsertJob(ctx, &models.Job{ProjectID: project.ID, Title: "open", Priority: models.PriorityMedium})
	require.NoError(t, err)

	n, err := s.DeleteTerminalJobs(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	jobs, err := s.SelectProjectJobs(ctx, project.ID, true)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestTouchAgentCursorUpsertsAndScopesByProject(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	project := mustProject(t, s)
	other, err := s.ResolveProject(ctx, "other", "owner")
	require.NoError(t, err)

	require.NoError(t, s.TouchAgentCursor(ctx, project.ID, "agent-a", "job-1"))
	require.NoError(t, s.TouchAgentCursor(ctx, other.ID, "agent-b", "job-2"))

	cursors, err := s.SelectAgentCursors(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, cursors, 1)
	assert.Equal(t, "agent-a", cursors[0].AgentID)
	assert.Equal(t, "job-1", cursors[0].FocusJobID)

	require.NoError(t, s.TouchAgentCursor(ctx, project.ID, "agent-a", ""))
	cursors, err = s.SelectAgentCursors(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, cursors, 1)
	assert.Equal(t, "", cursors[0].FocusJobID)
}
