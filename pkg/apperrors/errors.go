package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrConflict               = errors.New("conflict")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrForbidden              = errors.New("forbidden")
	ErrCredentialsKeyMismatch = errors.New("data source credentials were encrypted with a different key")
)

// Error pairs one of the sentinels above with a message safe to show users.
// errors.Is matches the sentinel.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// New returns an *Error of the given kind with a formatted message.
func New(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Message returns the user-facing message carried by err, or fallback when
// err has none.
func Message(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}
