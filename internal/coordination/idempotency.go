package coordination

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/nervecenter/nerve-center/internal/store"
)

// idempotentEnvelope is the JSON shape persisted as an idempotency row's
// result_json: it replays the original outcome verbatim, success or
// failure, so a retried call never re-derives a different answer from
// state that has since moved on.
type idempotentEnvelope struct {
	Ok    bool            `json:"ok"`
	Value json.RawMessage `json:"value,omitempty"`
	Err   *idempotentErr  `json:"err,omitempty"`
}

type idempotentErr struct {
	Kind    ErrorKind         `json:"kind"`
	Message string            `json:"message"`
	Ctx     map[string]string `json:"ctx,omitempty"`
	Action  string            `json:"action,omitempty"`
}

// withIdempotency runs fn under the (agentID, requestID) idempotency key
// for command, grounded on the teacher's begin/work/complete idempotency
// rows: post_job, complete_job, cancel_job, and update_shared_context all
// accept an optional request_id so a retried tool call replays the
// original result instead of double-posting a job or double-appending a
// notepad line. requestID is optional — an empty string runs fn directly
// with no idempotency bookkeeping. Must be called with f.mu already held.
func withIdempotency[T any](ctx context.Context, f *Facade, agentID, requestID, command string, fn func() Result[T]) Result[T] {
	if requestID == "" {
		return fn()
	}

	prior, alreadyDone, err := f.store.BeginIdempotent(ctx, agentID, requestID, command)
	if err != nil {
		if errors.Is(err, store.ErrIdempotencyInProgress) {
			return Err[T](&CoordError{
				Kind:    KindConflict,
				Message: "a request with this request_id is already being processed",
				Ctx:     map[string]string{"request_id": requestID},
				Action:  "wait for the in-flight call to finish and retry",
			})
		}
		return Err[T](storeErr(err))
	}
	if alreadyDone {
		var env idempotentEnvelope
		if jsonErr := json.Unmarshal([]byte(prior), &env); jsonErr != nil {
			return Err[T](storeErr(jsonErr))
		}
		if !env.Ok {
			return Err[T](&CoordError{Kind: env.Err.Kind, Message: env.Err.Message, Ctx: env.Err.Ctx, Action: env.Err.Action})
		}
		var replay T
		if len(env.Value) > 0 {
			if jsonErr := json.Unmarshal(env.Value, &replay); jsonErr != nil {
				return Err[T](storeErr(jsonErr))
			}
		}
		return Ok(replay)
	}

	result := fn()

	env := idempotentEnvelope{Ok: result.IsOk()}
	if result.IsOk() {
		body, jsonErr := json.Marshal(result.Value)
		if jsonErr != nil {
			f.logger.Warn("failed to marshal idempotent result", "error", jsonErr, "request_id", requestID)
			return result
		}
		env.Value = body
	} else {
		env.Err = &idempotentErr{Kind: result.Err.Kind, Message: result.Err.Message, Ctx: result.Err.Ctx, Action: result.Err.Action}
	}

	body, jsonErr := json.Marshal(env)
	if jsonErr != nil {
		f.logger.Warn("failed to marshal idempotency envelope", "error", jsonErr, "request_id", requestID)
		return result
	}
	if err := f.store.CompleteIdempotent(ctx, agentID, requestID, string(body)); err != nil {
		f.logger.Warn("failed to persist idempotent result", "error", err, "request_id", requestID)
	}
	return result
}
