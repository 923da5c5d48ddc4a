package coordination

import "fmt"

// ErrorKind enumerates the classes of failure a facade operation can
// return, matching the HTTP status mapping in SPEC_FULL.md §6: NotFound,
// Conflict, BadRequest, NotConfigured, Unauthorized, RateLimited, and a
// catch-all StoreError for anything surfaced from the persistence layer.
type ErrorKind string

const (
	KindNotFound      ErrorKind = "NOT_FOUND"
	KindConflict      ErrorKind = "CONFLICT"
	KindBadRequest    ErrorKind = "BAD_REQUEST"
	KindNotConfigured ErrorKind = "NOT_CONFIGURED"
	KindUnauthorized  ErrorKind = "UNAUTHORIZED"
	KindRateLimited   ErrorKind = "RATE_LIMITED"
	KindStoreError    ErrorKind = "STORE_ERROR"
)

// CoordError is the facade's uniform error type, replacing ad hoc sentinel
// errors and bare fmt.Errorf at the coordination boundary with one type
// every adapter (HTTP, MCP, CLI) can translate the same way.
type CoordError struct {
	Kind    ErrorKind
	Message string
	Ctx     map[string]string
	Action  string
}

func (e *CoordError) Error() string { return e.Message }

// ErrorCode implements models.RecoverableError.
func (e *CoordError) ErrorCode() string { return string(e.Kind) }

// Context implements models.RecoverableError.
func (e *CoordError) Context() map[string]string { return e.Ctx }

// SuggestedAction implements models.RecoverableError.
func (e *CoordError) SuggestedAction() string { return e.Action }

func notFoundErr(entity, id string) *CoordError {
	return &CoordError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s %q not found", entity, id),
		Ctx:     map[string]string{"entity": entity, "id": id},
		Action:  "check the id and retry",
	}
}

func badRequestErr(message string) *CoordError {
	return &CoordError{Kind: KindBadRequest, Message: message}
}

func storeErr(err error) *CoordError {
	return &CoordError{
		Kind:    KindStoreError,
		Message: err.Error(),
		Action:  "retry the operation",
	}
}

func notConfiguredErr(facility string) *CoordError {
	return &CoordError{
		Kind:    KindNotConfigured,
		Message: fmt.Sprintf("%s is not configured", facility),
		Ctx:     map[string]string{"facility": facility},
		Action:  "set OPENAI_API_KEY and restart",
	}
}

func embedderErr(err error) *CoordError {
	return &CoordError{
		Kind:    KindStoreError,
		Message: fmt.Sprintf("embedding provider error: %s", err.Error()),
		Action:  "retry the operation",
	}
}

// Result is the facade's sum-type return value: exactly one of Value or
// Err is meaningful, mirroring a tagged Ok/Err variant rather than Go's
// naked (T, error), so HTTP and MCP adapters each need one translation
// function instead of bespoke error handling per call site.
type Result[T any] struct {
	Value T
	Err   *CoordError
}

func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

func Err[T any](err *CoordError) Result[T] {
	return Result[T]{Err: err}
}

// IsOk reports whether the result carries a value rather than an error.
func (r Result[T]) IsOk() bool { return r.Err == nil }
