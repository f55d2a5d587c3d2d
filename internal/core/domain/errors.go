package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error surfaced by the core wraps exactly one of these,
// so callers branch with errors.Is.
var (
	ErrValidation  = errors.New("validation error")
	ErrAuth        = errors.New("authentication error")
	ErrForbidden   = errors.New("access forbidden")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("service unavailable")
)

// Error carries a kind, a caller-safe message and an optional internal cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

func Validation(msg string) error { return newError(ErrValidation, msg, nil) }

func Auth(msg string) error { return newError(ErrAuth, msg, nil) }

func Forbidden(msg string) error { return newError(ErrForbidden, msg, nil) }

func NotFound(msg string) error { return newError(ErrNotFound, msg, nil) }

func Conflict(msg string) error { return newError(ErrConflict, msg, nil) }

func Unavailable(msg string, err error) error { return newError(ErrUnavailable, msg, err) }

// Message returns the caller-safe message of err, or "" if err is not a
// domain error.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}

// Common messages shared by the stores and services.
const (
	MsgInvalidCredentials  = "invalid credentials"
	MsgNotLoggedIn         = "not logged in"
	MsgRequestUnavailable  = "request no longer available"
	MsgRequestNotFound     = "walk request not found"
	MsgUnknownDog          = "dog_id does not reference an existing dog"
	MsgUserExists          = "username or email already exists"
	MsgIdempotencyInFlight = "a request with this idempotency key is still being processed"
)
