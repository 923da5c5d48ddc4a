package coordination

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nervecenter/nerve-center/internal/models"
	"github.com/nervecenter/nerve-center/internal/store/localstore"
)

// newTestFacade backs a Facade with the Local Store, since the coordination
// layer's own invariants don't depend on which Store implementation is
// wired in underneath it (see internal/store's package doc: the facade
// never branches on that).
func newTestFacade(t *testing.T) (*Facade, string) {
	t.Helper()
	st, err := localstore.Open(afero.NewMemMapFs(), "/state/nerve.json")
	require.NoError(t, err)
	f := New(st, slog.New(slog.DiscardHandler), "", afero.NewMemMapFs())
	project, err := st.ResolveProject(context.Background(), "demo", "owner")
	require.NoError(t, err)
	return f, project.ID
}

// newTestFacadeWithInstructions backs a Facade whose instructionsDir is
// served from fs, so get_project_soul can be exercised without touching
// the real filesystem.
func newTestFacadeWithInstructions(t *testing.T, fs afero.Fs, instructionsDir string) (*Facade, string) {
	t.Helper()
	st, err := localstore.Open(afero.NewMemMapFs(), "/state/nerve.json")
	require.NoError(t, err)
	f := New(st, slog.New(slog.DiscardHandler), instructionsDir, fs)
	project, err := st.ResolveProject(context.Background(), "demo", "owner")
	require.NoError(t, err)
	return f, project.ID
}

func TestPostJobRejectsBlankTitle(t *testing.T) {
	f, projectID := newTestFacade(t)
	result := f.PostJob(context.Background(), projectID, "agent-a", "", "", "", nil, "")
	require.False(t, result.IsOk())
	assert.Equal(t, KindBadRequest, result.Err.Kind)
}

func TestPostJobDefaultsPriorityToMedium(t *testing.T) {
	f, projectID := newTestFacade(t)
	result := f.PostJob(context.Background(), projectID, "agent-a", "write docs", "", "", nil, "")
	require.True(t, result.IsOk())
	assert.NotEmpty(t, result.Value.JobID)
	assert.Equal(t, StatusPosted, result.Value.Status)

	jobs := f.ListJobs(context.Background(), projectID, false)
	require.True(t, jobs.IsOk())
	require.Len(t, jobs.Value, 1)
	assert.Equal(t, models.PriorityMedium, jobs.Value[0].Priority)
}

func TestClaimNextJobReturnsNoJobsAvailable(t *testing.T) {
	f, projectID := newTestFacade(t)
	result := f.ClaimNextJob(context.Background(), projectID, "agent-a")
	require.True(t, result.IsOk())
	assert.Equal(t, StatusNoJobsAvailable, result.Value.Status)
}

func TestCompleteJobDualAuthorisation(t *testing.T) {
	f, projectID := newTestFacade(t)
	ctx := context.Background()

	posted := f.PostJob(ctx, projectID, "agent-a", "task", "", models.PriorityMedium, nil, "")
	require.True(t, posted.IsOk())

	claimed := f.ClaimNextJob(ctx, projectID, "agent-a")
	require.True(t, claimed.IsOk())
	require.Equal(t, StatusClaimed, claimed.Value.Status)

	// Neither the assignee nor the completion key: unauthorised.
	bad := f.CompleteJob(ctx, projectID, "agent-b", claimed.Value.Job.ID, "done", "wrong-key", "")
	require.False(t, bad.IsOk())
	assert.Equal(t, KindUnauthorized, bad.Err.Kind)

	// A second agent presenting the right completion key may still complete
	// a job the first agent claimed — the crash-handoff case.
	good := f.CompleteJob(ctx, projectID, "agent-b", claimed.Value.Job.ID, "done", posted.Value.CompletionKey, "")
	require.True(t, good.IsOk())
	assert.Equal(t, StatusCompleted, good.Value.Status)
}

func TestCompleteJobUnknownJobIsNotFound(t *testing.T) {
	f, projectID := newTestFacade(t)
	result := f.CompleteJob(context.Background(), projectID, "agent-a", "job_missing", "done", "", "")
	require.False(t, result.IsOk())
	assert.Equal(t, KindNotFound, result.Err.Kind)
}

func TestProposeFileAccessGrantsThenRefuses(t *testing.T) {
	f, projectID := newTestFacade(t)
	ctx := context.Background()

	granted := f.ProposeFileAccess(ctx, projectID, "agent-a", "main.go", "edit", "refactor")
	require.True(t, granted.IsOk())
	assert.Equal(t, StatusGranted, granted.Value.Status)

	refused := f.ProposeFileAccess(ctx, projectID, "agent-b", "main.go", "edit", "refactor")
	require.True(t, refused.IsOk())
	assert.Equal(t, StatusRequiresOrchestration, refused.Value.Status)
	require.NotNil(t, refused.Value.CurrentLock)
	assert.Equal(t, "agent-a", refused.Value.CurrentLock.AgentID)
}

func TestForceUnlockAllowsReacquisition(t *testing.T) {
	f, projectID := newTestFacade(t)
	ctx := context.Background()

	require.True(t, f.ProposeFileAccess(ctx, projectID, "agent-a", "main.go", "edit", "").IsOk())

	unlocked := f.ForceUnlock(ctx, projectID, "main.go", "agent-a vanished")
	require.True(t, unlocked.IsOk())
	assert.Equal(t, StatusUnlocked, unlocked.Value.Status)

	reacquired := f.ProposeFileAccess(ctx, projectID, "agent-b", "main.go", "edit", "")
	require.True(t, reacquired.IsOk())
	assert.Equal(t, StatusGranted, reacquired.Value.Status)
}

func TestFinalizeSessionArchivesResetsAndClears(t *testing.T) {
	f, projectID := newTestFacade(t)
	ctx := context.Background()
	f.SetLockTTL(time.Hour)

	require.True(t, f.UpdateSharedContext(ctx, projectID, "agent-a", "made progress", "").IsOk())
	require.True(t, f.ProposeFileAccess(ctx, projectID, "agent-a", "main.go", "edit", "").IsOk())

	posted := f.PostJob(ctx, projectID, "agent-a", "task", "", models.PriorityMedium, nil, "")
	require.True(t, posted.IsOk())
	claimed := f.ClaimNextJob(ctx, projectID, "agent-a")
	require.True(t, claimed.IsOk())
	completed := f.CompleteJob(ctx, projectID, "agent-a", claimed.Value.Job.ID, "done", "", "")
	require.True(t, completed.IsOk())

	result := f.FinalizeSession(ctx, projectID, "session one")
	require.True(t, result.IsOk())
	assert.Equal(t, StatusSessionFinalized, result.Value.Status)

	locks := f.ListLocks(ctx, projectID)
	require.True(t, locks.IsOk())
	assert.Empty(t, locks.Value)

	jobs := f.ListJobs(ctx, projectID, true)
	require.True(t, jobs.IsOk())
	assert.Empty(t, jobs.Value)

	notepad := f.ReadContext(ctx, projectID)
	require.True(t, notepad.IsOk())
	assert.Contains(t, notepad.Value, "Session Start:")
	assert.NotContains(t, notepad.Value, "made progress")
}

func TestReadContextUsesCacheUntilInvalidated(t *testing.T) {
	f, projectID := newTestFacade(t)
	ctx := context.Background()

	require.True(t, f.UpdateSharedContext(ctx, projectID, "agent-a", "first", "").IsOk())

	first := f.ReadContext(ctx, projectID)
	require.True(t, first.IsOk())
	assert.Contains(t, first.Value, "first")

	require.True(t, f.UpdateSharedContext(ctx, projectID, "agent-a", "second", "").IsOk())

	second := f.ReadContext(ctx, projectID)
	require.True(t, second.IsOk())
	assert.Contains(t, second.Value, "second", "cache must be invalidated on append")
}

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (e *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = e.vector
	}
	return out, nil
}

func TestIndexFileNotConfiguredWithoutEmbedder(t *testing.T) {
	f, projectID := newTestFacade(t)
	result := f.IndexFile(context.Background(), projectID, "main.go", "package main", "code")
	require.False(t, result.IsOk())
	assert.Equal(t, KindNotConfigured, result.Err.Kind)
}

func TestIndexFileAndSearchRoundTrip(t *testing.T) {
	f, projectID := newTestFacade(t)
	f.SetEmbedder(&fakeEmbedder{vector: []float32{1, 0, 0}})
	ctx := context.Background()

	require.True(t, f.IndexFile(ctx, projectID, "main.go", "package main", "code").IsOk())
	require.True(t, f.IndexFile(ctx, projectID, "README.md", "# demo", "docs").IsOk())

	code := f.SearchCodebase(ctx, projectID, "package main", 5)
	require.True(t, code.IsOk())
	require.Len(t, code.Value, 1)
	assert.Equal(t, "package main", code.Value[0].Content)

	docs := f.SearchDocs(ctx, projectID, "demo", 5)
	require.True(t, docs.IsOk())
	require.Len(t, docs.Value, 1)
	assert.Equal(t, "# demo", docs.Value[0].Content)
}

func TestIndexFileRejectsInvalidKind(t *testing.T) {
	f, projectID := newTestFacade(t)
	f.SetEmbedder(&fakeEmbedder{vector: []float32{1, 0, 0}})
	result := f.IndexFile(context.Background(), projectID, "main.go", "x", "notes")
	require.False(t, result.IsOk())
	assert.Equal(t, KindBadRequest, result.Err.Kind)
}

func TestPostJobWithRequestIDReplaysOnRetry(t *testing.T) {
	f, projectID := newTestFacade(t)
	ctx := context.Background()

	first := f.PostJob(ctx, projectID, "agent-a", "write docs", "", "", nil, "req-1")
	require.True(t, first.IsOk())

	retry := f.PostJob(ctx, projectID, "agent-a", "write docs (retried)", "", "", nil, "req-1")
	require.True(t, retry.IsOk())
	assert.Equal(t, first.Value, retry.Value, "a replayed request_id must return the original result, not re-post")

	jobs := f.ListJobs(ctx, projectID, false)
	require.True(t, jobs.IsOk())
	assert.Len(t, jobs.Value, 1, "the retried post_job must not create a second job")
}

func TestPostJobWithDifferentRequestIDsPostsTwice(t *testing.T) {
	f, projectID := newTestFacade(t)
	ctx := context.Background()

	require.True(t, f.PostJob(ctx, projectID, "agent-a", "task one", "", "", nil, "req-a").IsOk())
	require.True(t, f.PostJob(ctx, projectID, "agent-a", "task two", "", "", nil, "req-b").IsOk())

	jobs := f.ListJobs(ctx, projectID, false)
	require.True(t, jobs.IsOk())
	assert.Len(t, jobs.Value, 2)
}

func TestUpdateSharedContextWithRequestIDReplaysOnRetry(t *testing.T) {
	f, projectID := newTestFacade(t)
	ctx := context.Background()

	require.True(t, f.UpdateSharedContext(ctx, projectID, "agent-a", "made progress", "req-note-1").IsOk())
	require.True(t, f.UpdateSharedContext(ctx, projectID, "agent-a", "made progress", "req-note-1").IsOk())

	notepad := f.ReadContext(ctx, projectID)
	require.True(t, notepad.IsOk())
	count := strings.Count(notepad.Value, "made progress")
	assert.Equal(t, 1, count, "a replayed update_shared_context must not append the line twice")
}

func TestCompleteJobWithRequestIDReplaysFailureToo(t *testing.T) {
	f, projectID := newTestFacade(t)
	ctx := context.Background()

	posted := f.PostJob(ctx, projectID, "agent-a", "task", "", models.PriorityMedium, nil, "")
	require.True(t, posted.IsOk())
	claimed := f.ClaimNextJob(ctx, projectID, "agent-a")
	require.True(t, claimed.IsOk())

	first := f.CompleteJob(ctx, projectID, "agent-b", claimed.Value.Job.ID, "done", "wrong-key", "req-complete-1")
	require.False(t, first.IsOk())

	retry := f.CompleteJob(ctx, projectID, "agent-b", claimed.Value.Job.ID, "done", "wrong-key", "req-complete-1")
	require.False(t, retry.IsOk())
	assert.Equal(t, first.Err.Kind, retry.Err.Kind)
	assert.Equal(t, first.Err.Message, retry.Err.Message)
}

func TestGetProjectSoulReadsFromAferoFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/instructions/context.md", []byte("project context here"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/instructions/conventions.md", []byte("house style here"), 0o644))

	f, _ := newTestFacadeWithInstructions(t, fs, "/instructions")

	soul := f.GetProjectSoul(context.Background())
	require.True(t, soul.IsOk())
	assert.Contains(t, soul.Value, "project context here")
	assert.Contains(t, soul.Value, "house style here")
}

func TestGetProjectSoulDegradesOnMissingFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/instructions/context.md", []byte("project context here"), 0o644))

	f, _ := newTestFacadeWithInstructions(t, fs, "/instructions")

	soul := f.GetProjectSoul(context.Background())
	require.True(t, soul.IsOk())
	assert.Contains(t, soul.Value, "project context here")
	assert.Contains(t, soul.Value, "conventions.md not found")
}

func TestGetCoreContextListsAgentCursors(t *testing.T) {
	f, projectID := newTestFacade(t)
	ctx := context.Background()

	require.True(t, f.PostJob(ctx, projectID, "agent-a", "task", "", "", nil, "").IsOk())
	require.True(t, f.ClaimNextJob(ctx, projectID, "agent-a").IsOk())

	core := f.GetCoreContext(ctx, projectID)
	require.True(t, core.IsOk())
	assert.Contains(t, core.Value, "## Agents")
	assert.Contains(t, core.Value, "agent-a")
}
