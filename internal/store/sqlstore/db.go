// Package sqlstore implements the Shared Store: a WAL-mode SQLite database
// that every process on the host opens directly. WAL journal mode is a
// genuine multi-process, multi-reader/single-writer format, which is what
// "hosted" means for this system — there is no separate network server in
// front of it, only the shared file and SQLite's own locking.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/nervecenter/nerve-center/internal/store"
)

// defaultBusyTimeoutMS is the SQLite busy_timeout in milliseconds.
// Override with NERVE_BUSY_TIMEOUT_MS for environments with high contention.
const defaultBusyTimeoutMS = 5000

// Open opens a Shared Store database connection, configures pragmas for
// concurrent multi-process access, and runs pending migrations.
func Open(ctx context.Context, dbPath string) (*sql.DB, error) {
	db, err := openWithPragmas(ctx, dbPath)
	if err != nil {
		return nil, err
	}
	if err := MigrateDB(db, dbPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

func openWithPragmas(ctx context.Context, dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", normalizeSQLiteDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Shared Store scale: one writer serialised by SQLite itself, so a
	// single pooled connection avoids internal contention on top of
	// SQLite's own file locking.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	busyTimeout := defaultBusyTimeoutMS
	if v := os.Getenv("NERVE_BUSY_TIMEOUT_MS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			busyTimeout = parsed
		}
	}

	// Trade-offs, same as any multi-process SQLite deployment:
	//   busy_timeout       — blocks writers up to N ms instead of failing
	//                        immediately when another process holds the lock.
	//   synchronous=NORMAL — skips fsync on every commit (WAL still
	//                        provides crash safety for committed txns).
	//   journal_mode=WAL   — concurrent readers + one writer; required for
	//                        multi-agent access to the same DB file.
	//   foreign_keys=ON    — jobs.project_id / locks.project_id / task
	//                        dependencies are enforced by the schema, not
	//                        by application code.
	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeout),
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA journal_mode=WAL",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if err := RetryWithBackoff(ctx, func() error {
			_, err := db.ExecContext(ctx, pragma)
			return err
		}); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	return db, nil
}

func normalizeSQLiteDSN(dbPath string) string {
	// modernc.org/sqlite is strict about DSNs. _txlock=immediate makes every
	// BeginTx use BEGIN IMMEDIATE, which avoids writer starvation under
	// concurrent access from multiple processes.
	if strings.HasPrefix(dbPath, "file:") {
		if strings.Contains(dbPath, ":memory:") {
			return dbPath
		}
		if strings.Contains(dbPath, "_txlock=") {
			return dbPath
		}
		if strings.Contains(dbPath, "?") {
			return dbPath + "&_txlock=immediate"
		}
		return dbPath + "?_txlock=immediate"
	}

	if dbPath == ":memory:" {
		return "file::memory:?cache=shared"
	}

	return "file:" + dbPath + "?mode=rwc&_txlock=immediate"
}

// Close runs PRAGMA optimize before closing, per SQLite's recommended
// lifecycle for long-lived connections.
func Close(db *sql.DB) error {
	_, _ = db.ExecContext(context.Background(), "PRAGMA optimize")
	return db.Close()
}

var _ store.Store = (*Store)(nil)
