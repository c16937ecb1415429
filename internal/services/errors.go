package services

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is against these; handlers map them to HTTP statuses.
var (
	ErrValidation     = errors.New("validation error")
	ErrAuthentication = errors.New("authentication error")
	ErrAuthorization  = errors.New("authorization error")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
)

// Error pairs an error kind with a client-facing message and, optionally,
// the error that caused it.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Is(target error) bool { return errors.Is(e.Kind, target) }
func (e *Error) Unwrap() error        { return e.Cause }

func validationError(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func notFound(what string) error {
	return &Error{Kind: ErrNotFound, Message: what + " not found"}
}

func conflict(msg string) error {
	return &Error{Kind: ErrConflict, Message: msg}
}

func unauthenticated(msg string, cause error) error {
	return &Error{Kind: ErrAuthentication, Message: msg, Cause: cause}
}

// Message returns the client-facing message of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
