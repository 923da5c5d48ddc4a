package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nervecenter/nerve-center/internal/models"
	"github.com/nervecenter/nerve-center/internal/store"
)

// ResolveProject implements store.Store. Projects are looked up by
// (name, owner); the first caller to use a given pair creates it.
func (s *Store) ResolveProject(ctx context.Context, name, owner string) (*models.Project, error) {
	if name == "" {
		return nil, errors.New("project name is required")
	}
	if owner == "" {
		return nil, errors.New("project owner is required")
	}

	var project models.Project
	err := Transact(ctx, s.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			SELECT id, name, owner_id FROM projects WHERE name = ? AND owner_id = ?
		`, name, owner).Scan(&project.ID, &project.Name, &project.OwnerID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to query project: %w", err)
		}

		project.ID = store.GenerateProjectID()
		project.Name = name
		project.OwnerID = owner
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO projects (id, name, owner_id) VALUES (?, ?, ?)
		`, project.ID, project.Name, project.OwnerID); err != nil {
			if IsUniqueConstraintErr(err) {
				// Lost a create race to another process; re-read the winner.
				return tx.QueryRowContext(ctx, `
					SELECT id, name, owner_id FROM projects WHERE name = ? AND owner_id = ?
				`, name, owner).Scan(&project.ID, &project.Name, &project.OwnerID)
			}
			return fmt.Errorf("failed to insert project: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// GetProject implements store.Store.
func (s *Store) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	var project models.Project
	err := RetryWithBackoff(ctx, func() error {
		return s.db.QueryRowContext(ctx, `
			SELECT id, name, owner_id FROM projects WHERE id = ?
		`, projectID).Scan(&project.ID, &project.Name, &project.OwnerID)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: project %s", store.ErrNotFound, projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query project: %w", err)
	}
	return &project, nil
}
