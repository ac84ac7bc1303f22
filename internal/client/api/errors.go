package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable indicates the server could not be reached at the
	// transport level.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized indicates the bearer token was missing, invalid or
	// expired (HTTP 401/403).
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConflict indicates a business-rule conflict such as a duplicate
	// follow (HTTP 409).
	ErrConflict = errors.New("conflict")
)

// Error is the structured error body returned by the API:
//
//	{"message": "...", "errors": {"field": ["problem", ...]}}
//
// It wraps one of the sentinel errors above when the HTTP status maps to a
// known class, so callers can use errors.Is.
type Error struct {
	Status  int
	Message string
	Fields  map[string][]string

	class error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api error: status %d", e.Status)
}

func (e *Error) Unwrap() error { return e.class }
