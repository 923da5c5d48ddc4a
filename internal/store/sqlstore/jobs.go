package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nervecenter/nerve-center/internal/models"
	"github.com/nervecenter/nerve-center/internal/store"
)

// priorityRankCase is the SQL CASE expression mirroring models.JobPriority.Rank,
// so selection order is computed in the query rather than in Go after the fact.
const priorityRankCase = `CASE priority
	WHEN 'critical' THEN 0
	WHEN 'high' THEN 1
	WHEN 'medium' THEN 2
	WHEN 'low' THEN 3
	ELSE 4
END`

// InsertJob implements store.Store.
func (s *Store) InsertJob(ctx context.Context, job *models.Job) (*models.Job, error) {
	if job.Title == "" {
		return nil, errors.New("job title is required")
	}
	if !job.Priority.Valid() {
		return nil, fmt.Errorf("invalid job priority: %q", job.Priority)
	}

	id := store.GeneratePrefixedID("job")
	key := store.GenerateCompletionKey()

	var created *models.Job
	err := Transact(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO jobs (id, project_id, title, description, priority, status, completion_key, version)
			VALUES (?, ?, ?, ?, ?, 'todo', ?, 1)
		`, id, job.ProjectID, job.Title, job.Description, string(job.Priority), key); err != nil {
			return fmt.Errorf("failed to insert job: %w", err)
		}

		for _, dep := range job.Dependencies {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO job_dependencies (job_id, depends_on_job_id) VALUES (?, ?)
			`, id, dep); err != nil {
				return fmt.Errorf("failed to insert job dependency %q: %w", dep, err)
			}
		}

		row, err := scanJobTx(ctx, tx, id)
		if err != nil {
			return err
		}
		created = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ClaimNextJob implements store.Store: select the first eligible row, then a
// conditional update inside the same transaction, all-or-nothing.
func (s *Store) ClaimNextJob(ctx context.Context, projectID, agentID string) (store.ClaimResult, error) {
	if agentID == "" {
		return store.ClaimResult{}, errors.New("agent id is required")
	}

	var result store.ClaimResult
	err := Transact(ctx, s.db, func(tx *sql.Tx) error {
		query := `
			SELECT id, version FROM jobs
			WHERE project_id = ? AND status = 'todo'
			  AND NOT EXISTS (
				SELECT 1 FROM job_dependencies jd
				JOIN jobs dep ON dep.id = jd.depends_on_job_id
				WHERE jd.job_id = jobs.id AND dep.status != 'done'
			  )
			ORDER BY ` + priorityRankCase + `, created_at ASC
			LIMIT 1`

		var jobID string
		var version int
		err := tx.QueryRowContext(ctx, query, projectID).Scan(&jobID, &version)
		if errors.Is(err, sql.ErrNoRows) {
			result = store.ClaimResult{Found: false}
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to select next job: %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE jobs
			SET status = 'in_progress', assignee = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND version = ?
		`, agentID, jobID, version)
		if err != nil {
			return fmt.Errorf("failed to claim job: %w", err)
		}
		ra, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check rows affected: %w", err)
		}
		if ra == 0 {
			// Lost the race between select and claim; reported below as no
			// job available, and later candidates are not tried.
			return &store.VersionConflictError{Entity: "job", ID: jobID, Version: version}
		}

		row, err := scanJobTx(ctx, tx, jobID)
		if err != nil {
			return err
		}
		result = store.ClaimResult{Job: row, Found: true}
		return nil
	})
	if err != nil {
		var vce *store.VersionConflictError
		if errors.As(err, &vce) {
			// A concurrent claimant won; report "nothing available right now"
			// rather than surfacing the internal race to the caller, who has
			// no precondition of their own to retry with.
			return store.ClaimResult{Found: false}, nil
		}
		return store.ClaimResult{}, err
	}
	return result, nil
}

// UpdateJob implements store.Store.
func (s *Store) UpdateJob(ctx context.Context, jobID string, update store.JobUpdate, precondition *int) (*models.Job, error) {
	var updated *models.Job
	err := Transact(ctx, s.db, func(tx *sql.Tx) error {
		var version int
		if err := tx.QueryRowContext(ctx, `SELECT version FROM jobs WHERE id = ?`, jobID).Scan(&version); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: job %s", store.ErrNotFound, jobID)
			}
			return fmt.Errorf("failed to load job version: %w", err)
		}
		if precondition != nil && *precondition != version {
			return &store.VersionConflictError{Entity: "job", ID: jobID, Version: *precondition}
		}

		set := []string{"version = version + 1", "updated_at = CURRENT_TIMESTAMP"}
		var args []any
		if update.SetStatus != nil {
			set = append(set, "status = ?")
			args = append(args, string(*update.SetStatus))
		}
		if update.SetAssignee != nil {
			set = append(set, "assignee = ?")
			if *update.SetAssignee == "" {
				args = append(args, nil)
			} else {
				args = append(args, *update.SetAssignee)
			}
		}
		if update.SetPriority != nil {
			set = append(set, "priority = ?")
			args = append(args, string(*update.SetPriority))
		}
		if update.SetCancelReason != nil {
			set = append(set, "cancel_reason = ?")
			args = append(args, *update.SetCancelReason)
		}

		stmt := "UPDATE jobs SET " + joinSet(set) + " WHERE id = ? AND version = ?"
		args = append(args, jobID, version)
		res, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			return fmt.Errorf("failed to update job: %w", err)
		}
		ra, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check rows affected: %w", err)
		}
		if ra == 0 {
			return &store.VersionConflictError{Entity: "job", ID: jobID, Version: version}
		}

		row, err := scanJobTx(ctx, tx, jobID)
		if err != nil {
			return err
		}
		updated = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func joinSet(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += ", " + p
	}
	return out
}

// GetJob implements store.Store.
func (s *Store) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	var job *models.Job
	err := RetryWithBackoff(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
		if err != nil {
			return fmt.Errorf("failed to begin read transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()
		row, err := scanJobTx(ctx, tx, jobID)
		if err != nil {
			return err
		}
		job = row
		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// SelectProjectJobs implements store.Store.
func (s *Store) SelectProjectJobs(ctx context.Context, projectID string, includeTerminal bool) ([]*models.Job, error) {
	query := `SELECT id FROM jobs WHERE project_id = ?`
	if !includeTerminal {
		query += ` AND status NOT IN ('done', 'cancelled')`
	}
	query += ` ORDER BY ` + priorityRankCase + `, created_at ASC`

	var jobs []*models.Job
	err := RetryWithBackoff(ctx, func() error {
		jobs = nil
		tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
		if err != nil {
			return fmt.Errorf("failed to begin read transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		rows, err := tx.QueryContext(ctx, query, projectID)
		if err != nil {
			return fmt.Errorf("failed to query jobs: %w", err)
		}
		var ids []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				_ = rows.Close()
				return fmt.Errorf("failed to scan job id: %w", err)
			}
			ids = append(ids, id)
		}
		if err := rows.Err(); err != nil {
			_ = rows.Close()
			return err
		}
		_ = rows.Close()

		for _, id := range ids {
			job, err := scanJobTx(ctx, tx, id)
			if err != nil {
				return err
			}
			jobs = append(jobs, job)
		}
		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// DeleteTerminalJobs implements store.Store.
func (s *Store) DeleteTerminalJobs(ctx context.Context, projectID string) (int, error) {
	var count int
	err := Transact(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			DELETE FROM jobs WHERE project_id = ? AND status IN ('done', 'cancelled')
		`, projectID)
		if err != nil {
			return fmt.Errorf("failed to delete terminal jobs: %w", err)
		}
		ra, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check rows affected: %w", err)
		}
		count = int(ra)
		return nil
	})
	return count, err
}

// scanJobTx loads a job row plus its dependency ids within tx.
func scanJobTx(ctx context.Context, tx *sql.Tx, jobID string) (*models.Job, error) {
	var job models.Job
	var assignee, cancelReason sql.NullString
	var priority, status string
	err := tx.QueryRowContext(ctx, `
		SELECT id, project_id, title, description, priority, status, assignee,
		       completion_key, cancel_reason, version, created_at, updated_at
		FROM jobs WHERE id = ?
	`, jobID).Scan(
		&job.ID, &job.ProjectID, &job.Title, &job.Description, &priority, &status,
		&assignee, &job.CompletionKey, &cancelReason, &job.Version,
		&job.CreatedAt, &job.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: job %s", store.ErrNotFound, jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan job: %w", err)
	}
	job.Priority = models.JobPriority(priority)
	job.Status = models.JobStatus(status)
	if assignee.Valid {
		job.Assignee = assignee.String
	}
	if cancelReason.Valid {
		job.CancelReason = cancelReason.String
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT depends_on_job_id FROM job_dependencies WHERE job_id = ? ORDER BY depends_on_job_id
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to query job dependencies: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var dep string
		if err := rows.Scan(&dep); err != nil {
			return nil, fmt.Errorf("failed to scan dependency: %w", err)
		}
		job.Dependencies = append(job.Dependencies, dep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &job, nil
}
