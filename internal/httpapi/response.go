package httpapi

import (
	"net/http"

	"github.com/nervecenter/nerve-center/internal/coordination"
	"github.com/nervecenter/nerve-center/internal/output"
)

// statusFor maps a coordination.ErrorKind to the HTTP status table in
// SPEC_FULL.md §6/§7.
func statusFor(kind coordination.ErrorKind) int {
	switch kind {
	case coordination.KindNotConfigured:
		return http.StatusServiceUnavailable
	case coordination.KindUnauthorized:
		return http.StatusUnauthorized
	case coordination.KindNotFound:
		return http.StatusNotFound
	case coordination.KindConflict:
		return http.StatusConflict
	case coordination.KindBadRequest:
		return http.StatusBadRequest
	case coordination.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = output.PrintWith(output.Config{Writer: w}, v)
}

func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, output.Success(data))
}

func writeError(w http.ResponseWriter, err *coordination.CoordError) {
	writeJSON(w, statusFor(err.Kind), output.Error(err))
}

func unauthorizedErr() *coordination.CoordError {
	return &coordination.CoordError{
		Kind:    coordination.KindUnauthorized,
		Message: "missing or invalid Authorization header",
		Action:  "send a valid Bearer token (session JWT or sk_sc_ API key)",
	}
}

func badRequestErr(message string) *coordination.CoordError {
	return &coordination.CoordError{Kind: coordination.KindBadRequest, Message: message}
}
