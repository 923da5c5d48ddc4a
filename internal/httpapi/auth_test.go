package httpapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signJWT(t *testing.T, secret string, c claims) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload, err := json.Marshal(c)
	require.NoError(t, err)
	body := header + "." + base64.RawURLEncoding.EncodeToString(payload)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return body + "." + sig
}

func TestAuthenticateAPIKey(t *testing.T) {
	auth := NewAuthenticator("")
	identity, err := auth.Authenticate("Bearer sk_sc_abc123")
	require.NoError(t, err)
	assert.Equal(t, "sk_sc_abc123", identity.AgentID)
}

func TestAuthenticateRejectsMissingOrMalformedHeader(t *testing.T) {
	auth := NewAuthenticator("secret")
	_, err := auth.Authenticate("")
	assert.ErrorIs(t, err, errBadToken)

	_, err = auth.Authenticate("sk_sc_abc123") // no "Bearer " prefix
	assert.ErrorIs(t, err, errBadToken)
}

func TestAuthenticateValidJWT(t *testing.T) {
	auth := NewAuthenticator("top-secret")
	token := signJWT(t, "top-secret", claims{
		Subject: "agent-a",
		Owner:   "owner-a",
		Exp:     time.Now().Add(time.Hour).Unix(),
	})

	identity, err := auth.Authenticate("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "agent-a", identity.AgentID)
	assert.Equal(t, "owner-a", identity.OwnerID)
}

func TestAuthenticateRejectsExpiredJWT(t *testing.T) {
	auth := NewAuthenticator("top-secret")
	token := signJWT(t, "top-secret", claims{
		Subject: "agent-a",
		Exp:     time.Now().Add(-time.Hour).Unix(),
	})

	_, err := auth.Authenticate("Bearer " + token)
	assert.ErrorIs(t, err, errBadToken)
}

func TestAuthenticateRejectsWrongSignature(t *testing.T) {
	auth := NewAuthenticator("top-secret")
	token := signJWT(t, "wrong-secret", claims{Subject: "agent-a"})

	_, err := auth.Authenticate("Bearer " + token)
	assert.ErrorIs(t, err, errBadToken)
}

func TestAuthenticateRejectsJWTWhenNoSecretConfigured(t *testing.T) {
	auth := NewAuthenticator("")
	token := signJWT(t, "anything", claims{Subject: "agent-a"})

	_, err := auth.Authenticate("Bearer " + token)
	assert.ErrorIs(t, err, errBadToken)
}
