package store

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GeneratePrefixedID creates a globally unique id in the format
// {prefix}_{unix_nano}_{12_hex_chars}. The 12 hex characters are derived
// from 6 cryptographically random bytes, giving 48 bits of randomness to
// avoid collisions at the same nanosecond. Used for jobs and session
// archives, which are created at CLI/agent scale and benefit from a
// sortable-by-creation-order id.
func GeneratePrefixedID(prefix string) string {
	timestamp := time.Now().UnixNano()

	var b [6]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%s_%d", prefix, timestamp)
	}

	return fmt.Sprintf("%s_%d_%s", prefix, timestamp, hex.EncodeToString(b[:]))
}

// GenerateProjectID returns a new opaque project id. Projects are created
// rarely (once per name+owner pair) so a plain UUID is preferable to the
// prefixed-timestamp scheme used for higher-churn entities.
func GenerateProjectID() string {
	return uuid.NewString()
}

const completionKeyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const completionKeyLength = 8

// GenerateCompletionKey returns an 8-character, uppercase-alphanumeric,
// cryptographically random token. The alphabet is an implementation
// choice, not a guaranteed downstream-validated contract (see SPEC_FULL.md
// §9) — callers should only rely on length and authorised-by-equality, not
// on the specific character set.
func GenerateCompletionKey() string {
	b := make([]byte, completionKeyLength)
	out := make([]byte, completionKeyLength)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing is effectively unrecoverable on any real
		// platform; fall back to a degenerate fixed key (the first eight
		// alphabet symbols, the same on every call) rather than panicking
		// mid-request.
		for i := range out {
			out[i] = completionKeyAlphabet[i%len(completionKeyAlphabet)]
		}
		return string(out)
	}
	for i, v := range b {
		out[i] = completionKeyAlphabet[int(v)%len(completionKeyAlphabet)]
	}
	return string(out)
}
