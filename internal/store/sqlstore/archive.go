package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nervecenter/nerve-center/internal/models"
	"github.com/nervecenter/nerve-center/internal/store"
)

// ArchiveSession implements store.Store. Write-once: callers construct the
// archive (title, summary, content) before calling, this only persists it.
func (s *Store) ArchiveSession(ctx context.Context, archive *models.SessionArchive) error {
	return Transact(ctx, s.db, func(tx *sql.Tx) error {
		id := store.GeneratePrefixedID("session")
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sessions (id, project_id, title, summary, content)
			VALUES (?, ?, ?, ?, ?)
		`, id, archive.ProjectID, archive.Title, archive.Summary, archive.Content); err != nil {
			return fmt.Errorf("failed to archive session: %w", err)
		}
		return nil
	})
}
