package coordination

import (
	"context"
	"fmt"
)

// UpdateSharedContext implements update_shared_context: appends
// "\n- [{agent_id}] {text}" to the project notepad. requestID, when
// non-empty, makes the call idempotent: a retry with the same
// (agentID, requestID) replays the original result instead of appending
// the line a second time.
func (f *Facade) UpdateSharedContext(ctx context.Context, projectID, agentID, text, requestID string) Result[struct{}] {
	f.mu.Lock()
	defer f.mu.Unlock()

	if agentID == "" {
		return Err[struct{}](badRequestErr("agent id is required"))
	}

	return withIdempotency(ctx, f, agentID, requestID, "update_shared_context", func() Result[struct{}] {
		line := fmt.Sprintf("\n- [%s] %s", agentID, text)
		if err := f.appendNotepadLocked(ctx, projectID, line); err != nil {
			return Err[struct{}](storeErr(err))
		}
		return Ok(struct{}{})
	})
}

// ReadContext implements read_context: returns the project's current
// notepad text, using the local read-through cache when warm.
func (f *Facade) ReadContext(ctx context.Context, projectID string) Result[string] {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.notepadCacheMu.Lock()
	cached, ok := f.notepadCache[projectID]
	f.notepadCacheMu.Unlock()
	if ok {
		return Ok(cached)
	}

	text, err := f.store.ReadNotepad(ctx, projectID)
	if err != nil {
		return Err[string](storeErr(err))
	}
	f.notepadCacheMu.Lock()
	f.notepadCache[projectID] = text
	f.notepadCacheMu.Unlock()
	return Ok(text)
}
