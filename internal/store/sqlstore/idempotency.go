package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/nervecenter/nerve-center/internal/store"
)

// BeginIdempotent implements store.Store: INSERT, and on a unique-
// constraint collision read back the prior row instead of failing.
func (s *Store) BeginIdempotent(ctx context.Context, agentID, requestID, command string) (string, bool, error) {
	if agentID == "" || requestID == "" || command == "" {
		return "", false, errors.New("agent id, request id, and command are all required")
	}

	var resultJSON string
	var alreadyDone bool
	err := Transact(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO idempotency (agent_id, request_id, command, result_json)
			VALUES (?, ?, ?, '')
		`, agentID, requestID, command)
		if err == nil {
			resultJSON, alreadyDone = "", false
			return nil
		}
		if !IsUniqueConstraintErr(err) {
			return fmt.Errorf("failed to insert idempotency row: %w", err)
		}

		var existingCommand, existingResult string
		if err := tx.QueryRowContext(ctx, `
			SELECT command, result_json FROM idempotency WHERE agent_id = ? AND request_id = ?
		`, agentID, requestID).Scan(&existingCommand, &existingResult); err != nil {
			return fmt.Errorf("failed to load idempotency row: %w", err)
		}
		if existingCommand != command {
			return fmt.Errorf("idempotency key collision: request %q already used for command %q (new: %q)", requestID, existingCommand, command)
		}
		if strings.TrimSpace(existingResult) == "" {
			return store.ErrIdempotencyInProgress
		}
		resultJSON, alreadyDone = existingResult, true
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return resultJSON, alreadyDone, nil
}

// CompleteIdempotent implements store.Store.
func (s *Store) CompleteIdempotent(ctx context.Context, agentID, requestID, resultJSON string) error {
	if resultJSON == "" {
		return errors.New("idempotency result json must be non-empty")
	}
	return Transact(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE idempotency SET result_json = ? WHERE agent_id = ? AND request_id = ?
		`, resultJSON, agentID, requestID)
		if err != nil {
			return fmt.Errorf("failed to update idempotency row: %w", err)
		}
		ra, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check rows affected: %w", err)
		}
		if ra != 1 {
			return fmt.Errorf("idempotency row not found for agent=%q request=%q", agentID, requestID)
		}
		return nil
	})
}
