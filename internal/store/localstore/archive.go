package localstore

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/nervecenter/nerve-center/internal/models"
)

// ArchiveSession implements store.Store. Besides the in-memory/JSON record,
// the Local Store also writes a human-readable Markdown copy alongside the
// state file as session-<ISO>.md (./history/session-<ISO>.md with the
// default state file path).
func (s *Store) ArchiveSession(_ context.Context, archive *models.SessionArchive) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	stamp := now.UTC().Format("2006-01-02T150405Z")
	historyDir := filepath.Dir(s.path)
	mdPath := filepath.Join(historyDir, fmt.Sprintf("session-%s.md", stamp))

	if err := s.fs.MkdirAll(historyDir, 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	content := fmt.Sprintf("# %s\n\n%s\n", archive.Title, archive.Content)
	if err := afero.WriteFile(s.fs, mdPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write session archive markdown: %w", err)
	}

	archive.Path = mdPath
	archive.CreatedAt = now
	record := *archive
	s.state.Sessions = append(s.state.Sessions, &record)

	return s.save()
}
