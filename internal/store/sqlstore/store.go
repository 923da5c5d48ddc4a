package sqlstore

import (
	"context"
	"database/sql"
)

// Store is the Shared Store: a handle on a WAL-mode SQLite database shared
// by every process on the host. It implements store.Store.
type Store struct {
	db     *sql.DB
	dbPath string
}

// New wraps an already-open, already-migrated *sql.DB. Most callers should
// use Open, which also handles connection setup and migration.
func New(db *sql.DB, dbPath string) *Store {
	return &Store{db: db, dbPath: dbPath}
}

// OpenStore opens dbPath, configures it for shared multi-process access, runs
// migrations, and returns a ready Store.
func OpenStore(ctx context.Context, dbPath string) (*Store, error) {
	db, err := Open(ctx, dbPath)
	if err != nil {
		return nil, err
	}
	return New(db, dbPath), nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	return Close(s.db)
}
