package core

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the services wraps exactly one of
// these so the HTTP layer can map it to a status code with errors.Is.
var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrConflict         = errors.New("conflict")
	ErrExternal         = errors.New("external service failure")
	ErrEmailNotVerified = errors.New("EMAIL_NOT_VERIFIED")
)

var (
	ErrInvalidAmount     = Invalid("invalid amount")
	ErrInvalidCategory   = Invalid("invalid category")
	ErrInvalidRecurrence = Invalid("invalid recurrence")
	ErrInvalidMonth      = Invalid("invalid month, expected YYYY-MM")
	ErrInvalidDate       = Invalid("invalid date")
	ErrEmptyTitle        = Invalid("title is required")
	ErrMissingFields     = Invalid("Missing required fields")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// Invalid returns a validation error carrying msg as its user-facing text.
func Invalid(msg string) error {
	return &kindError{kind: ErrValidation, msg: msg}
}

// Invalidf is Invalid with formatting.
func Invalidf(format string, args ...any) error {
	return Invalid(fmt.Sprintf(format, args...))
}

// NotFound returns a not-found error with msg as its text.
func NotFound(msg string) error {
	return &kindError{kind: ErrNotFound, msg: msg}
}

// Unauthorized returns an authentication failure with msg as its text.
func Unauthorized(msg string) error {
	return &kindError{kind: ErrUnauthorized, msg: msg}
}

// Conflict returns a conflict error with msg as its text.
func Conflict(msg string) error {
	return &kindError{kind: ErrConflict, msg: msg}
}

// External wraps an upstream provider failure. The message is surfaced to
// callers unchanged.
func External(msg string) error {
	return &kindError{kind: ErrExternal, msg: msg}
}

// Externalf is External with formatting.
func Externalf(format string, args ...any) error {
	return External(fmt.Sprintf(format, args...))
}

// Message returns the user-facing text of the innermost kind error in err's
// chain, or fallback when there is none.
func Message(err error, fallback string) string {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.msg
	}
	return fallback
}
