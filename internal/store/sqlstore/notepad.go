package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nervecenter/nerve-center/internal/store"
)

// ReadNotepad implements store.Store.
func (s *Store) ReadNotepad(ctx context.Context, projectID string) (string, error) {
	var notepad string
	err := RetryWithBackoff(ctx, func() error {
		err := s.db.QueryRowContext(ctx, `SELECT notepad FROM projects WHERE id = ?`, projectID).Scan(&notepad)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: project %s", store.ErrNotFound, projectID)
		}
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to read notepad: %w", err)
	}
	return notepad, nil
}

// AppendNotepad implements store.Store. Append-only: line is concatenated
// onto the existing notepad text inside one conditional update.
func (s *Store) AppendNotepad(ctx context.Context, projectID, line string) error {
	return Transact(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE projects SET notepad = notepad || ? WHERE id = ?
		`, line, projectID)
		if err != nil {
			return fmt.Errorf("failed to append notepad: %w", err)
		}
		ra, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check rows affected: %w", err)
		}
		if ra == 0 {
			return fmt.Errorf("%w: project %s", store.ErrNotFound, projectID)
		}
		return nil
	})
}

// ResetNotepad implements store.Store.
func (s *Store) ResetNotepad(ctx context.Context, projectID, marker string) (string, error) {
	var previous string
	err := Transact(ctx, s.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `SELECT notepad FROM projects WHERE id = ?`, projectID).Scan(&previous)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: project %s", store.ErrNotFound, projectID)
		}
		if err != nil {
			return fmt.Errorf("failed to read notepad before reset: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE projects SET notepad = ? WHERE id = ?
		`, marker, projectID); err != nil {
			return fmt.Errorf("failed to reset notepad: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return previous, nil
}
