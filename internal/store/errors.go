package store

import (
	"errors"
	"fmt"
)

// ErrVersionConflict is returned when optimistic concurrency fails: the
// caller's precondition version no longer matches the stored row.
var ErrVersionConflict = errors.New("version conflict: record was modified by another process")

// ErrNotFound is returned when a project, job, or lock does not exist.
var ErrNotFound = errors.New("not found")

// ErrIdempotencyInProgress is returned when a request is still being
// processed under the same (agent, request id) pair by another caller.
var ErrIdempotencyInProgress = errors.New("idempotency in progress")

// VersionConflictError replaces the bare ErrVersionConflict sentinel with
// structured context for callers that want to report which entity lost the
// race.
type VersionConflictError struct {
	Entity  string
	ID      string
	Version int
}

func (e *VersionConflictError) Error() string {
	return "version conflict: record was modified by another process"
}

// ErrorCode implements models.RecoverableError.
func (e *VersionConflictError) ErrorCode() string { return "VERSION_CONFLICT" }

// Context implements models.RecoverableError.
func (e *VersionConflictError) Context() map[string]string {
	return map[string]string{
		"entity":  e.Entity,
		"id":      e.ID,
		"version": fmt.Sprintf("%d", e.Version),
	}
}

// SuggestedAction implements models.RecoverableError.
func (e *VersionConflictError) SuggestedAction() string {
	return "reload the record and retry with its current version"
}

// Is lets errors.Is(err, ErrVersionConflict) match VersionConflictError too.
func (e *VersionConflictError) Is(target error) bool { return target == ErrVersionConflict }

// LockConflictError carries the incumbent lock's metadata, for the HTTP/MCP
// Conflict response body §7 requires.
type LockConflictError struct {
	FilePath     string
	CurrentOwner string
	CurrentIntent string
}

func (e *LockConflictError) Error() string {
	return fmt.Sprintf("file %q is locked by %q", e.FilePath, e.CurrentOwner)
}

// ErrorCode implements models.RecoverableError.
func (e *LockConflictError) ErrorCode() string { return "REQUIRES_ORCHESTRATION" }

// Context implements models.RecoverableError.
func (e *LockConflictError) Context() map[string]string {
	return map[string]string{
		"file_path":     e.FilePath,
		"current_owner": e.CurrentOwner,
		"current_intent": e.CurrentIntent,
	}
}

// SuggestedAction implements models.RecoverableError.
func (e *LockConflictError) SuggestedAction() string {
	return "work on something else and retry later, or ask the incumbent agent to release the file"
}
