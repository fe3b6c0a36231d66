// Package apperr defines the failure kinds surfaced by the service layer.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound        Kind = "NotFound"
	KindValidation      Kind = "ValidationError"
	KindUnauthorized    Kind = "Unauthorized"
	KindEmptyCart       Kind = "EmptyCartError"
	KindExternalService Kind = "ExternalServiceError"
	KindConflict        Kind = "Conflict"
	KindInternal        Kind = "Internal"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, apperr.NotFound(""))
// works as a kind check.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Message == ""
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func NotFound(format string, args ...any) *Error   { return New(KindNotFound, format, args...) }
func Validation(format string, args ...any) *Error { return New(KindValidation, format, args...) }
func Unauthorized(format string, args ...any) *Error {
	return New(KindUnauthorized, format, args...)
}
func EmptyCart(format string, args ...any) *Error { return New(KindEmptyCart, format, args...) }
func Conflict(format string, args ...any) *Error  { return New(KindConflict, format, args...) }
func External(err error, format string, args ...any) *Error {
	return Wrap(KindExternalService, err, format, args...)
}

// KindOf reports the kind of err, or KindInternal for anything unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the client-safe message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
