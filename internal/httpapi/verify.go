package httpapi

import "net/http"

// verify implements GET /v1/verify. Subscription/plan validation is an
// explicit Non-goal (no payment/billing system is implemented); this
// answers honestly that every authenticated caller is on an unmetered
// plan with no expiry, rather than faking a real entitlements check.
func (s *Server) verify(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, map[string]any{
		"valid":      true,
		"plan":       "unmetered",
		"validUntil": nil,
	})
}
