package coordination

import (
	"context"
	"errors"
	"fmt"

	"github.com/nervecenter/nerve-center/internal/models"
	"github.com/nervecenter/nerve-center/internal/store"
)

// PostJob implements post_job: inserts a new todo job and appends a
// notepad line. priority defaults to medium when empty. requestID, when
// non-empty, makes the call idempotent: a retry with the same
// (agentID, requestID) replays the original result instead of posting a
// second job.
func (f *Facade) PostJob(ctx context.Context, projectID, agentID, title, description string, priority models.JobPriority, dependencies []string, requestID string) Result[PostJobResult] {
	f.mu.Lock()
	defer f.mu.Unlock()

	if title == "" {
		return Err[PostJobResult](badRequestErr("job title is required"))
	}
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return Err[PostJobResult](badRequestErr(fmt.Sprintf("invalid priority: %q", priority)))
	}

	return withIdempotency(ctx, f, agentID, requestID, "post_job", func() Result[PostJobResult] {
		job := &models.Job{
			ProjectID:    projectID,
			Title:        title,
			Description:  description,
			Priority:     priority,
			Dependencies: dependencies,
		}
		created, err := f.store.InsertJob(ctx, job)
		if err != nil {
			return Err[PostJobResult](storeErr(err))
		}

		line := fmt.Sprintf("\n[JOB POSTED] %s (priority=%s)", created.Title, created.Priority)
		if err := f.appendNotepadLocked(ctx, projectID, line); err != nil {
			f.logger.Warn("failed to append notepad after post_job", "error", err, "job_id", created.ID)
		}

		return Ok(PostJobResult{
			JobID:         created.ID,
			Status:        StatusPosted,
			CompletionKey: created.CompletionKey,
		})
	})
}

// ClaimNextJob implements claim_next_job.
func (f *Facade) ClaimNextJob(ctx context.Context, projectID, agentID string) Result[ClaimNextJobResult] {
	f.mu.Lock()
	defer f.mu.Unlock()

	if agentID == "" {
		return Err[ClaimNextJobResult](badRequestErr("agent id is required"))
	}

	claimed, err := f.store.ClaimNextJob(ctx, projectID, agentID)
	if err != nil {
		return Err[ClaimNextJobResult](storeErr(err))
	}
	if !claimed.Found {
		return Ok(ClaimNextJobResult{Status: StatusNoJobsAvailable})
	}

	line := fmt.Sprintf("\n[JOB CLAIMED] %s by %s", claimed.Job.Title, agentID)
	if err := f.appendNotepadLocked(ctx, projectID, line); err != nil {
		f.logger.Warn("failed to append notepad after claim_next_job", "error", err, "job_id", claimed.Job.ID)
	}
	if err := f.store.TouchAgentCursor(ctx, projectID, agentID, claimed.Job.ID); err != nil {
		f.logger.Warn("failed to touch agent cursor after claim_next_job", "error", err, "agent_id", agentID)
	}

	return Ok(ClaimNextJobResult{Status: StatusClaimed, Job: claimed.Job})
}

// CompleteJob implements complete_job. Authorisation succeeds if either
// agentID is the job's assignee, or completionKey matches the job's stored
// key — the dual-auth rule letting a second agent close out work a
// crashed first agent started, provided the post-time key was handed off.
// Completing a job does not release that agent's locks; unlock is
// explicit, and finalize is the only operation that clears them. requestID,
// when non-empty, makes the call idempotent.
func (f *Facade) CompleteJob(ctx context.Context, projectID, agentID, jobID, outcome, completionKey, requestID string) Result[CompleteJobResult] {
	f.mu.Lock()
	defer f.mu.Unlock()

	return withIdempotency(ctx, f, agentID, requestID, "complete_job", func() Result[CompleteJobResult] {
		job, err := f.store.GetJob(ctx, jobID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return Err[CompleteJobResult](notFoundErr("job", jobID))
			}
			return Err[CompleteJobResult](storeErr(err))
		}
		if job.ProjectID != projectID {
			return Err[CompleteJobResult](notFoundErr("job", jobID))
		}

		authorised := (job.Assignee != "" && job.Assignee == agentID) ||
			(completionKey != "" && completionKey == job.CompletionKey)
		if !authorised {
			return Err[CompleteJobResult](&CoordError{
				Kind:    KindUnauthorized,
				Message: "neither assignee identity nor completion key matched",
				Ctx:     map[string]string{"job_id": jobID},
				Action:  "confirm the assignee agent id or the completion key returned at post time",
			})
		}

		version := job.Version
		updated, err := f.store.UpdateJob(ctx, jobID, store.CompleteUpdate(), &version)
		if err != nil {
			var vce *store.VersionConflictError
			if errors.As(err, &vce) {
				return Err[CompleteJobResult](&CoordError{
					Kind:    KindConflict,
					Message: "job was modified concurrently",
					Ctx:     map[string]string{"job_id": jobID},
					Action:  "reload the job and retry",
				})
			}
			return Err[CompleteJobResult](storeErr(err))
		}

		line := fmt.Sprintf("\n[JOB DONE] %s by %s: %s", updated.Title, agentID, outcome)
		if err := f.appendNotepadLocked(ctx, projectID, line); err != nil {
			f.logger.Warn("failed to append notepad after complete_job", "error", err, "job_id", jobID)
		}
		if err := f.store.TouchAgentCursor(ctx, projectID, agentID, ""); err != nil {
			f.logger.Warn("failed to clear agent cursor after complete_job", "error", err, "agent_id", agentID)
		}

		return Ok(CompleteJobResult{Status: StatusCompleted})
	})
}

// CancelJob implements cancel_job. No authorisation check beyond project
// membership is performed — any project member may cancel (see
// SPEC_FULL.md §9). agentID identifies the caller only for idempotency
// bookkeeping (cancel_job's own signature carries no identity); requestID,
// when non-empty, makes the call idempotent.
func (f *Facade) CancelJob(ctx context.Context, projectID, agentID, jobID, reason, requestID string) Result[CancelJobResult] {
	f.mu.Lock()
	defer f.mu.Unlock()

	return withIdempotency(ctx, f, agentID, requestID, "cancel_job", func() Result[CancelJobResult] {
		job, err := f.store.GetJob(ctx, jobID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return Err[CancelJobResult](notFoundErr("job", jobID))
			}
			return Err[CancelJobResult](storeErr(err))
		}
		if job.ProjectID != projectID {
			return Err[CancelJobResult](notFoundErr("job", jobID))
		}

		if _, err := f.store.UpdateJob(ctx, jobID, store.CancelUpdate(reason), nil); err != nil {
			return Err[CancelJobResult](storeErr(err))
		}

		line := fmt.Sprintf("\n[JOB CANCELLED] %s: %s", job.Title, reason)
		if err := f.appendNotepadLocked(ctx, projectID, line); err != nil {
			f.logger.Warn("failed to append notepad after cancel_job", "error", err, "job_id", jobID)
		}

		return Ok(CancelJobResult{Status: StatusCancelled})
	})
}

// ListJobs returns the project's jobs, optionally including terminal ones.
func (f *Facade) ListJobs(ctx context.Context, projectID string, includeTerminal bool) Result[[]*models.Job] {
	f.mu.Lock()
	defer f.mu.Unlock()

	jobs, err := f.store.SelectProjectJobs(ctx, projectID, includeTerminal)
	if err != nil {
		return Err[[]*models.Job](storeErr(err))
	}
	return Ok(jobs)
}

// UpdateJob applies a generic field update to a job. Unlike PostJob/
// ClaimNextJob/CompleteJob/CancelJob, this has no corresponding MCP tool —
// it exists only for the HTTP API's `POST /v1/jobs {action:"update"}` route,
// modeled as a free-form field patch rather than a named coordination verb.
func (f *Facade) UpdateJob(ctx context.Context, projectID, jobID string, update store.JobUpdate) Result[*models.Job] {
	f.mu.Lock()
	defer f.mu.Unlock()

	job, err := f.store.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Err[*models.Job](notFoundErr("job", jobID))
		}
		return Err[*models.Job](storeErr(err))
	}
	if job.ProjectID != projectID {
		return Err[*models.Job](notFoundErr("job", jobID))
	}

	updated, err := f.store.UpdateJob(ctx, jobID, update, nil)
	if err != nil {
		return Err[*models.Job](storeErr(err))
	}
	return Ok(updated)
}
