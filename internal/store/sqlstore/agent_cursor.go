package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nervecenter/nerve-center/internal/models"
)

// TouchAgentCursor implements store.Store.
func (s *Store) TouchAgentCursor(ctx context.Context, projectID, agentID, focusJobID string) error {
	if agentID == "" {
		return errors.New("agent id is required")
	}

	return Transact(ctx, s.db, func(tx *sql.Tx) error {
		var focus sql.NullString
		if focusJobID != "" {
			focus = sql.NullString{String: focusJobID, Valid: true}
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO agent_cursors (project_id, agent_id, focus_job_id, last_active_at)
			VALUES (?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (project_id, agent_id) DO UPDATE SET
				focus_job_id = excluded.focus_job_id,
				last_active_at = CURRENT_TIMESTAMP
		`, projectID, agentID, focus)
		if err != nil {
			return fmt.Errorf("failed to upsert agent cursor: %w", err)
		}
		return nil
	})
}

// SelectAgentCursors implements store.Store.
func (s *Store) SelectAgentCursors(ctx context.Context, projectID string) ([]*models.AgentCursor, error) {
	var cursors []*models.AgentCursor
	err := RetryWithBackoff(ctx, func() error {
		cursors = nil
		rows, err := s.db.QueryContext(ctx, `
			SELECT agent_id, focus_job_id, last_active_at
			FROM agent_cursors WHERE project_id = ?
			ORDER BY last_active_at DESC
		`, projectID)
		if err != nil {
			return fmt.Errorf("failed to query agent cursors: %w", err)
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			var c models.AgentCursor
			var focus sql.NullString
			if err := rows.Scan(&c.AgentID, &focus, &c.LastActiveAt); err != nil {
				return fmt.Errorf("failed to scan agent cursor: %w", err)
			}
			c.FocusJobID = focus.String
			c.FocusProjectID = projectID
			cursors = append(cursors, &c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return cursors, nil
}
