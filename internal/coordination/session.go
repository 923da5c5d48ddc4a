package coordination

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/nervecenter/nerve-center/internal/models"
)

// FinalizeSession implements finalize_session's sequence: archive the
// current notepad, reset it to a fresh start marker, clear all locks, and
// purge terminal jobs. Step 1 (reading the notepad) is the only read;
// steps 2-5 run in that order and an archive failure aborts before any
// live state is mutated.
func (f *Facade) FinalizeSession(ctx context.Context, projectID, title string) Result[FinalizeSessionResult] {
	f.mu.Lock()
	defer f.mu.Unlock()

	notepad, err := f.store.ReadNotepad(ctx, projectID)
	if err != nil {
		return Err[FinalizeSessionResult](storeErr(err))
	}

	archive := &models.SessionArchive{
		ProjectID: projectID,
		Title:     title,
		Summary:   models.Summarize(notepad),
		Content:   notepad,
	}
	if err := f.store.ArchiveSession(ctx, archive); err != nil {
		// Abort before mutating live state, per SPEC_FULL.md §4.6.
		return Err[FinalizeSessionResult](storeErr(err))
	}

	marker := fmt.Sprintf("Session Start: %s\n", time.Now().UTC().Format(time.RFC3339))
	if _, err := f.store.ResetNotepad(ctx, projectID, marker); err != nil {
		return Err[FinalizeSessionResult](storeErr(err))
	}
	f.invalidateNotepadCache(projectID)

	if _, err := f.store.DeleteAllLocks(ctx, projectID); err != nil {
		return Err[FinalizeSessionResult](storeErr(err))
	}

	if _, err := f.store.DeleteTerminalJobs(ctx, projectID); err != nil {
		return Err[FinalizeSessionResult](storeErr(err))
	}

	return Ok(FinalizeSessionResult{
		Status:      StatusSessionFinalized,
		ArchivePath: archive.Path,
	})
}

// GetCoreContext implements get_core_context: a Markdown document with
// four sections — agent cursors, open jobs, live locks, and the notepad.
func (f *Facade) GetCoreContext(ctx context.Context, projectID string) Result[string] {
	f.mu.Lock()
	defer f.mu.Unlock()

	jobs, err := f.store.SelectProjectJobs(ctx, projectID, false)
	if err != nil {
		return Err[string](storeErr(err))
	}
	if _, err := f.store.ReclaimStaleLocks(ctx, projectID, f.lockTTL); err != nil {
		return Err[string](storeErr(err))
	}
	locks, err := f.store.SelectProjectLocks(ctx, projectID, f.lockTTL)
	if err != nil {
		return Err[string](storeErr(err))
	}
	notepad, err := f.store.ReadNotepad(ctx, projectID)
	if err != nil {
		return Err[string](storeErr(err))
	}
	cursors, err := f.store.SelectAgentCursors(ctx, projectID)
	if err != nil {
		return Err[string](storeErr(err))
	}

	var b strings.Builder
	b.WriteString("## Agents\n\n")
	if len(cursors) == 0 {
		b.WriteString("_no agent activity recorded_\n")
	}
	for _, c := range cursors {
		focus := c.FocusJobID
		if focus == "" {
			focus = "idle"
		}
		fmt.Fprintf(&b, "- %s last active %s, focus: %s\n", c.AgentID, c.LastActiveAt.UTC().Format(time.RFC3339), focus)
	}

	b.WriteString("\n## Jobs\n\n")
	if len(jobs) == 0 {
		b.WriteString("_no open jobs_\n")
	}
	for _, j := range jobs {
		assignee := j.Assignee
		if assignee == "" {
			assignee = "unassigned"
		}
		fmt.Fprintf(&b, "- [%s/%s] %s (%s)\n", j.Priority, j.Status, j.Title, assignee)
	}

	b.WriteString("\n## Locks\n\n")
	if len(locks) == 0 {
		b.WriteString("_no live locks_\n")
	}
	for _, l := range locks {
		fmt.Fprintf(&b, "- %s held by %s (%s)\n", l.FilePath, l.AgentID, l.Intent)
	}

	b.WriteString("\n## Notepad\n\n")
	b.WriteString(notepad)
	b.WriteString("\n")

	return Ok(b.String())
}

// GetProjectSoul implements get_project_soul: the concatenation of
// context.md and conventions.md from the instructions directory. A missing
// file degrades to a placeholder line rather than an error.
func (f *Facade) GetProjectSoul(_ context.Context) Result[string] {
	if f.instructionsDir == "" {
		return Ok("_no instructions directory configured_\n")
	}

	var b strings.Builder
	for _, name := range []string{"context.md", "conventions.md"} {
		path := filepath.Join(f.instructionsDir, name)
		data, err := afero.ReadFile(f.fs, path)
		if err != nil {
			fmt.Fprintf(&b, "_%s not found_\n\n", name)
			continue
		}
		b.Write(data)
		b.WriteString("\n\n")
	}
	return Ok(b.String())
}
