package hostwise

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by point lookups when no matching row exists.
// Callers with a sane empty-state fallback map it to an absent result.
var ErrNotFound = errors.New("hostwise: not found")

// AuthenticationError indicates the provider rejected a credential exchange.
// Message carries the provider's own message, surfaced verbatim to the UI.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("hostwise: authentication failed: %s", e.Message)
}

// ProfileResolutionError indicates a profile fetch or insert failed for a
// reason other than "not found" or cancellation. It is logged and the
// resolved profile is treated as absent; it never blocks sign-in completion.
type ProfileResolutionError struct {
	SubjectID string
	Err       error
}

func (e *ProfileResolutionError) Error() string {
	return fmt.Sprintf("hostwise: resolving profile for subject %s: %v", e.SubjectID, e.Err)
}

func (e *ProfileResolutionError) Unwrap() error { return e.Err }

// PersistenceError indicates an entity CRUD operation failed at the remote
// store. It is propagated to the caller with the store's message and no
// automatic retry.
type PersistenceError struct {
	Op   string // list, get, create, update, delete
	Kind string // entity kind, e.g. "property"
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("hostwise: %s %s failed: %v", e.Op, e.Kind, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// DecodeError indicates a wire row did not match the entity's schema.
// Malformed rows are rejected rather than silently coerced.
type DecodeError struct {
	Kind  string
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("hostwise: decoding %s row, field %q: %v", e.Kind, e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsCancellation reports whether err arose from an aborted or superseded
// call. Cancellation is an expected byproduct of de-duplicated concurrent
// reconciliation, not a failure to surface to the user.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
