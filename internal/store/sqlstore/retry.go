package sqlstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/nervecenter/nerve-center/internal/store"
)

// RetryWithBackoff wraps an operation with exponential backoff retry logic,
// matching the bounded-timeout requirement of SPEC_FULL.md §5 (every Store
// call has a default 15s budget). Retries only on transient SQLite errors
// (SQLITE_BUSY/SQLITE_LOCKED or idempotency-in-progress contention); version
// conflicts and constraint violations are not retried — they are real
// conflicts the caller must handle.
func RetryWithBackoff(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 15 * time.Second
	b.RandomizationFactor = 0.1

	return backoff.Retry(func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}

		err := operation()
		if err == nil {
			return nil
		}

		if isRetryableError(err) {
			return err
		}

		return backoff.Permanent(err)
	}, backoff.WithContext(b, ctx))
}

func isRetryableError(err error) bool {
	if errors.Is(err, store.ErrIdempotencyInProgress) {
		return true
	}

	var vce *store.VersionConflictError
	if errors.As(err, &vce) {
		return false
	}
	var lce *store.LockConflictError
	if errors.As(err, &lce) {
		return false
	}

	// Typed sqlite error code matching (immune to string format changes).
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		primaryCode := sqliteErr.Code() & 0xFF
		switch primaryCode {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return false
		}
	}

	// Fallback string matching for wrapped errors that lose the concrete
	// type. Baseline: modernc.org/sqlite v1.45+.
	errStr := err.Error()
	if strings.Contains(errStr, "database is locked") || strings.Contains(errStr, "SQLITE_BUSY") {
		return true
	}
	if strings.Contains(errStr, "UNIQUE constraint") || strings.Contains(errStr, "FOREIGN KEY constraint") {
		return false
	}

	return false
}

// IsUniqueConstraintErr reports whether err is a SQLite duplicate-key
// violation (UNIQUE or PRIMARY KEY).
func IsUniqueConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		// SQLITE_CONSTRAINT_UNIQUE = 2067, SQLITE_CONSTRAINT_PRIMARYKEY = 1555
		return code == 2067 || code == 1555
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "PRIMARY KEY constraint failed")
}
