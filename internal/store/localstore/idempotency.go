package localstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nervecenter/nerve-center/internal/store"
)

// BeginIdempotent implements store.Store.
func (s *Store) BeginIdempotent(_ context.Context, agentID, requestID, command string) (string, bool, error) {
	if agentID == "" || requestID == "" || command == "" {
		return "", false, errors.New("agent id, request id, and command are all required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := idempotencyKey(agentID, requestID)
	if existing, ok := s.state.Idempotency[key]; ok {
		if existing.Command != command {
			return "", false, fmt.Errorf("idempotency key collision: request %q already used for command %q (new: %q)", requestID, existing.Command, command)
		}
		if strings.TrimSpace(existing.ResultJSON) == "" {
			return "", false, store.ErrIdempotencyInProgress
		}
		return existing.ResultJSON, true, nil
	}

	s.state.Idempotency[key] = idempotencyEntry{Command: command}
	if err := s.save(); err != nil {
		return "", false, err
	}
	return "", false, nil
}

// CompleteIdempotent implements store.Store.
func (s *Store) CompleteIdempotent(_ context.Context, agentID, requestID, resultJSON string) error {
	if resultJSON == "" {
		return errors.New("idempotency result json must be non-empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := idempotencyKey(agentID, requestID)
	entry, ok := s.state.Idempotency[key]
	if !ok {
		return fmt.Errorf("idempotency row not found for agent=%q request=%q", agentID, requestID)
	}
	entry.ResultJSON = resultJSON
	s.state.Idempotency[key] = entry
	return s.save()
}
