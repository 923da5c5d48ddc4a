// Package store defines the persistence boundary the coordination facade
// talks to, and the two concrete implementations: sqlstore (Shared Store,
// a WAL-mode SQLite database reachable by every process on the host) and
// localstore (Local Store, a single process's in-memory state flushed to a
// JSON file after every write).
//
// The facade never branches on which implementation is active — it is
// chosen once at construction (see internal/coordination.New) and used
// through this interface from then on.
package store

import (
	"context"
	"time"

	"github.com/nervecenter/nerve-center/internal/models"
)

// ClaimResult is returned by ClaimNextJob.
type ClaimResult struct {
	Job   *models.Job
	Found bool
}

// LockResult is returned by UpsertLock.
type LockResult struct {
	Granted     bool
	CurrentLock *models.Lock // set when Granted is false
}

// Store is the abstract persistence surface. Every method is expected to be
// safe for concurrent use by multiple goroutines within one process; cross-
// process safety is the implementation's responsibility (see §4.4 of
// SPEC_FULL.md — sqlstore provides it via conditional SQL statements,
// localstore via being the only process that ever opens the file).
type Store interface {
	// ResolveProject returns the id of the (name, owner) project, creating
	// it if absent.
	ResolveProject(ctx context.Context, name, owner string) (*models.Project, error)
	GetProject(ctx context.Context, projectID string) (*models.Project, error)

	// InsertJob inserts a new job in status=todo and returns it with its
	// generated id and completion key populated.
	InsertJob(ctx context.Context, job *models.Job) (*models.Job, error)
	// ClaimNextJob atomically selects and claims the highest-priority
	// eligible todo job for agentID. Found is false when no job qualifies.
	ClaimNextJob(ctx context.Context, projectID, agentID string) (ClaimResult, error)
	// UpdateJob applies a tagged update to a job. precondition, when
	// non-nil, is an optimistic-concurrency version that must match.
	UpdateJob(ctx context.Context, jobID string, update JobUpdate, precondition *int) (*models.Job, error)
	GetJob(ctx context.Context, jobID string) (*models.Job, error)
	// SelectProjectJobs returns all non-terminal jobs for a project, unless
	// includeTerminal is true.
	SelectProjectJobs(ctx context.Context, projectID string, includeTerminal bool) ([]*models.Job, error)
	// DeleteTerminalJobs removes jobs in done/cancelled for a project and
	// returns how many were removed.
	DeleteTerminalJobs(ctx context.Context, projectID string) (int, error)

	// UpsertLock grants or refreshes a lock. Implementations must perform
	// the opportunistic-TTL-reclaim + compare-and-set described in
	// SPEC_FULL.md §4.2 atomically with respect to other writers.
	UpsertLock(ctx context.Context, projectID, filePath, agentID, intent, prompt string, ttl time.Duration) (LockResult, error)
	SelectProjectLocks(ctx context.Context, projectID string, ttl time.Duration) ([]*models.Lock, error)
	DeleteLock(ctx context.Context, projectID, filePath string) error
	DeleteAllLocks(ctx context.Context, projectID string) (int, error)
	// ReclaimStaleLocks deletes locks older than ttl for a project and
	// returns how many were removed. Exposed separately so callers (e.g.
	// list-locks) can force reclamation before reading.
	ReclaimStaleLocks(ctx context.Context, projectID string, ttl time.Duration) (int, error)

	ReadNotepad(ctx context.Context, projectID string) (string, error)
	AppendNotepad(ctx context.Context, projectID, line string) error
	// ResetNotepad replaces the notepad with marker, returning the prior
	// content (for archiving).
	ResetNotepad(ctx context.Context, projectID, marker string) (previous string, err error)

	ArchiveSession(ctx context.Context, archive *models.SessionArchive) error

	// TouchAgentCursor upserts agentID's current job focus and last-active
	// timestamp for projectID, so a reconnecting agent can resume context
	// without re-reading the whole notepad.
	TouchAgentCursor(ctx context.Context, projectID, agentID, focusJobID string) error
	// SelectAgentCursors returns projectID's agent cursors, most recently
	// active first.
	SelectAgentCursors(ctx context.Context, projectID string) ([]*models.AgentCursor, error)

	// Idempotency support: Begin claims (agentID, requestID, command);
	// alreadyDone is true and resultJSON is the prior result when this
	// (agent, request) pair was already completed for the same command.
	// Complete stores the result for a pending claim.
	BeginIdempotent(ctx context.Context, agentID, requestID, command string) (resultJSON string, alreadyDone bool, err error)
	CompleteIdempotent(ctx context.Context, agentID, requestID, resultJSON string) error

	// Embeddings backs the thin RAG facility.
	InsertEmbedding(ctx context.Context, e *models.Embedding) (int64, error)
	SearchEmbeddings(ctx context.Context, projectID string, query []float32, topK int) ([]models.SearchResult, error)

	// Close releases any resources (DB handle, file locks) held by the
	// store.
	Close() error
}
