package coordination

import (
	"context"
	"fmt"

	"github.com/nervecenter/nerve-center/internal/models"
)

// ProposeFileAccess implements propose_file_access. The 4-step protocol
// (TTL reclaim, read, grant-or-refuse, upsert) is delegated to the Store in
// one atomic call; the facade only decides what to log.
func (f *Facade) ProposeFileAccess(ctx context.Context, projectID, agentID, filePath, intent, userPrompt string) Result[ProposeFileAccessResult] {
	f.mu.Lock()
	defer f.mu.Unlock()

	if agentID == "" {
		return Err[ProposeFileAccessResult](badRequestErr("agent id is required"))
	}
	if filePath == "" {
		return Err[ProposeFileAccessResult](badRequestErr("file path is required"))
	}

	result, err := f.store.UpsertLock(ctx, projectID, filePath, agentID, intent, userPrompt, f.lockTTL)
	if err != nil {
		return Err[ProposeFileAccessResult](storeErr(err))
	}
	if !result.Granted {
		return Ok(ProposeFileAccessResult{
			Status:      StatusRequiresOrchestration,
			CurrentLock: result.CurrentLock,
		})
	}

	line := fmt.Sprintf("\n[LOCK] %s acquired %s (%s)", agentID, filePath, intent)
	if err := f.appendNotepadLocked(ctx, projectID, line); err != nil {
		f.logger.Warn("failed to append notepad after propose_file_access", "error", err, "file_path", filePath)
	}

	return Ok(ProposeFileAccessResult{Status: StatusGranted})
}

// ForceUnlock implements force_unlock: deletes any current lock
// unconditionally. Agents are expected to only invoke this on stale locks
// as a convention, not an enforced check.
func (f *Facade) ForceUnlock(ctx context.Context, projectID, filePath, reason string) Result[ForceUnlockResult] {
	f.mu.Lock()
	defer f.mu.Unlock()

	if filePath == "" {
		return Err[ForceUnlockResult](badRequestErr("file path is required"))
	}

	if err := f.store.DeleteLock(ctx, projectID, filePath); err != nil {
		return Err[ForceUnlockResult](storeErr(err))
	}

	line := fmt.Sprintf("\n[LOCK] force-unlocked %s: %s", filePath, reason)
	if err := f.appendNotepadLocked(ctx, projectID, line); err != nil {
		f.logger.Warn("failed to append notepad after force_unlock", "error", err, "file_path", filePath)
	}

	return Ok(ForceUnlockResult{Status: StatusUnlocked})
}

// ReleaseLock is the explicit-release path (not exposed in the spec's tool
// vocabulary by name). It takes no agent id and does not check ownership:
// like ForceUnlock, it deletes whatever lock is held on filePath.
func (f *Facade) ReleaseLock(ctx context.Context, projectID, filePath string) Result[ForceUnlockResult] {
	return f.ForceUnlock(ctx, projectID, filePath, "released by owner")
}

// ListLocks returns the project's currently live locks, running
// opportunistic TTL reclamation first.
func (f *Facade) ListLocks(ctx context.Context, projectID string) Result[[]*models.Lock] {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.store.ReclaimStaleLocks(ctx, projectID, f.lockTTL); err != nil {
		return Err[[]*models.Lock](storeErr(err))
	}
	locks, err := f.store.SelectProjectLocks(ctx, projectID, f.lockTTL)
	if err != nil {
		return Err[[]*models.Lock](storeErr(err))
	}
	return Ok(locks)
}
