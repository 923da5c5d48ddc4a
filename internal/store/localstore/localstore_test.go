package localstore

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nervecenter/nerve-center/internal/models"
	"github.com/nervecenter/nerve-center/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(afero.NewMemMapFs(), "/state/nerve.json")
	require.NoError(t, err)
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

	// "gated" outranks "high" on priority but is blocked by its dependency,
	// so the first claim must return "high".
	claim, err := s.ClaimNextJob(ctx, project.ID, "agent-a")
	require.NoError(t, err)
	require.True(t, claim.Found)
	assert.Equal(t, high.ID, claim.Job.ID)

	// "low" still outranks "gated" on priority.
	claim, err = s.ClaimNextJob(ctx, project.ID, "agent-b")
	require.NoError(t, err)
	require.True(t, claim.Found)
	assert.Equal(t, low.ID, claim.Job.ID)

	// "gated" is still blocked: its dependency is in_progress, not done.
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

func TestClaimNextJobRequiresAgentID(t *testing.T) {
	s := newTestStore(t)
	_, err := s.ClaimNextJob(context.Background(), "p1", "")
	assert.ErrorContains(t, err, "agent id is required")
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
	assert.Equal(t, "open", jobs[0].Title)
}

func TestUpsertLockGrantsAndRefuses(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	project := mustProject(t, s)

	res, err := s.UpsertLock(ctx, project.ID, "main.go", "agent-a", "edit", "refactor", time.Hour)
	require.NoError(t, err)
	assert.True(t, res.Granted)

	// Same agent refreshing its own lock is granted again.
	res, err = s.UpsertLock(ctx, project.ID, "main.go", "agent-a", "edit more", "refactor", time.Hour)
	require.NoError(t, err)
	assert.True(t, res.Granted)

	// A different agent is refused and told who holds it.
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

	ttl := 10 * time.Millisecond
	res, err := s.UpsertLock(ctx, project.ID, "main.go", "agent-a", "edit", "", ttl)
	require.NoError(t, err)
	require.True(t, res.Granted)

	time.Sleep(2 * ttl)

	res, err = s.UpsertLock(ctx, project.ID, "main.go", "agent-b", "edit", "", ttl)
	require.NoError(t, err)
	assert.True(t, res.Granted, "a lock past its TTL must be reclaimable by another agent")
}

func TestReclaimStaleLocksAndSelectProjectLocks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	project := mustProject(t, s)

	ttl := 10 * time.Millisecond
	_, err := s.UpsertLock(ctx, project.ID, "a.go", "agent-a", "edit", "", time.Hour)
	require.NoError(t, err)

	// Locks carry no ttl of their own; age is judged against the ttl passed
	// in. Let both locks age past ttl, then refresh a.go so only b.go is stale.
	_, err = s.UpsertLock(ctx, project.ID, "b.go", "agent-a", "edit", "", ttl)
	require.NoError(t, err)
	time.Sleep(2 * ttl)
	_, err = s.UpsertLock(ctx, project.ID, "a.go", "agent-a", "edit", "", time.Hour)
	require.NoError(t, err)

	locks, err := s.SelectProjectLocks(ctx, project.ID, time.Hour)
	require.NoError(t, err)
	// b.go is older than ttl but SelectProjectLocks is called with a
	// generous ttl here, so both remain visible.
	assert.Len(t, locks, 2)

	n, err := s.ReclaimStaleLocks(ctx, project.ID, ttl)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
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

func TestNotepadNotFoundForUnknownProject(t *testing.T) {
	s := newTestStore(t)
	_, err := s.ReadNotepad(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStatePersistsAcrossReopen(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/state/nerve.json"

	s1, err := Open(fs, path)
	require.NoError(t, err)
	project, err := s1.ResolveProject(context.Background(), "demo", "owner")
	require.NoError(t, err)
	_, err = s1.InsertJob(context.Background(), &models.Job{ProjectID: project.ID, Title: "t", Priority: models.PriorityMedium})
	require.NoError(t, err)

	s2, err := Open(fs, path)
	require.NoError(t, err)
	jobs, err := s2.SelectProjectJobs(context.Background(), project.ID, true)
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
