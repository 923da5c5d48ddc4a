package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nervecenter/nerve-center/internal/models"
	"github.com/nervecenter/nerve-center/internal/store"
)

// UpsertLock implements store.Store, grounded on the same select-then-
// conditional-update shape as ClaimNextJob: opportunistic TTL reclamation
// (step 1), read the current lock (steps 2-3), grant-or-refuse (step 4),
// all inside one transaction.
func (s *Store) UpsertLock(ctx context.Context, projectID, filePath, agentID, intent, prompt string, ttl time.Duration) (store.LockResult, error) {
	if agentID == "" {
		return store.LockResult{}, errors.New("agent id is required")
	}
	if filePath == "" {
		return store.LockResult{}, errors.New("file path is required")
	}

	var result store.LockResult
	err := Transact(ctx, s.db, func(tx *sql.Tx) error {
		ttlSeconds := int64(ttl.Seconds())
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM locks
			WHERE project_id = ? AND file_path = ?
			  AND (strftime('%s','now') - strftime('%s', updated_at)) > ?
		`, projectID, filePath, ttlSeconds); err != nil {
			return fmt.Errorf("failed to reclaim stale lock: %w", err)
		}

		var currentOwner, currentIntent string
		err := tx.QueryRowContext(ctx, `
			SELECT agent_id, intent FROM locks WHERE project_id = ? AND file_path = ?
		`, projectID, filePath).Scan(&currentOwner, &currentIntent)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			// No live lock: grant.
		case err != nil:
			return fmt.Errorf("failed to read current lock: %w", err)
		case currentOwner == agentID:
			// Same agent refreshing its own lock: grant.
		default:
			result = store.LockResult{
				Granted: false,
				CurrentLock: &models.Lock{
					ProjectID: projectID,
					FilePath:  filePath,
					AgentID:   currentOwner,
					Intent:    currentIntent,
				},
			}
			return nil
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO locks (project_id, file_path, agent_id, intent, user_prompt, updated_at)
			VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (project_id, file_path) DO UPDATE SET
				agent_id = excluded.agent_id,
				intent = excluded.intent,
				user_prompt = excluded.user_prompt,
				updated_at = CURRENT_TIMESTAMP
		`, projectID, filePath, agentID, intent, prompt); err != nil {
			return fmt.Errorf("failed to upsert lock: %w", err)
		}

		result = store.LockResult{Granted: true}
		return nil
	})
	if err != nil {
		return store.LockResult{}, err
	}
	return result, nil
}

// SelectProjectLocks implements store.Store. Locks past ttl are treated as
// absent without being deleted — callers that want reclamation to actually
// happen use ReclaimStaleLocks first.
func (s *Store) SelectProjectLocks(ctx context.Context, projectID string, ttl time.Duration) ([]*models.Lock, error) {
	var locks []*models.Lock
	err := RetryWithBackoff(ctx, func() error {
		locks = nil
		rows, err := s.db.QueryContext(ctx, `
			SELECT project_id, file_path, agent_id, intent, user_prompt, created_at, updated_at
			FROM locks WHERE project_id = ?
			ORDER BY file_path ASC
		`, projectID)
		if err != nil {
			return fmt.Errorf("failed to query locks: %w", err)
		}
		defer func() { _ = rows.Close() }()

		now := time.Now()
		for rows.Next() {
			var l models.Lock
			if err := rows.Scan(&l.ProjectID, &l.FilePath, &l.AgentID, &l.Intent, &l.UserPrompt, &l.CreatedAt, &l.UpdatedAt); err != nil {
				return fmt.Errorf("failed to scan lock: %w", err)
			}
			if l.Live(now, ttl) {
				locks = append(locks, &l)
			}
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return locks, nil
}

// DeleteLock implements store.Store.
func (s *Store) DeleteLock(ctx context.Context, projectID, filePath string) error {
	return Transact(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			DELETE FROM locks WHERE project_id = ? AND file_path = ?
		`, projectID, filePath)
		if err != nil {
			return fmt.Errorf("failed to delete lock: %w", err)
		}
		return nil
	})
}

// DeleteAllLocks implements store.Store.
func (s *Store) DeleteAllLocks(ctx context.Context, projectID string) (int, error) {
	var count int
	err := Transact(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM locks WHERE project_id = ?`, projectID)
		if err != nil {
			return fmt.Errorf("failed to delete locks: %w", err)
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

// ReclaimStaleLocks implements store.Store.
func (s *Store) ReclaimStaleLocks(ctx context.Context, projectID string, ttl time.Duration) (int, error) {
	var count int
	err := Transact(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			DELETE FROM locks
			WHERE project_id = ?
			  AND (strftime('%s','now') - strftime('%s', updated_at)) > ?
		`, projectID, int64(ttl.Seconds()))
		if err != nil {
			return fmt.Errorf("failed to reclaim stale locks: %w", err)
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
