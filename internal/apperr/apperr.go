// Package apperr holds the error taxonomy shared by stores, services and handlers.
//
// Every error that should reach a client as something other than a 500 is an *Error whose Kind is
// one of the sentinels below. Callers classify with errors.Is against the sentinel.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not found")
	ErrTooManyRequests = errors.New("too many requests")
	ErrDependency      = errors.New("dependency failure")
	ErrDelivery        = errors.New("delivery failure")
)

type Error struct {
	Kind    error
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func New(kind error, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Wrap(kind error, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

func Validation(code, message string) *Error {
	return New(ErrValidation, code, message)
}

func Conflict(code, message string) *Error {
	return New(ErrConflict, code, message)
}

func Unauthorized(code, message string) *Error {
	return New(ErrUnauthorized, code, message)
}

func NotFound(code, message string) *Error {
	return New(ErrNotFound, code, message)
}

func TooManyRequests(code, message string) *Error {
	return New(ErrTooManyRequests, code, message)
}

func Dependency(message string, err error) *Error {
	return Wrap(ErrDependency, "internal_error", message, err)
}

func Delivery(message string, err error) *Error {
	return Wrap(ErrDelivery, "delivery_failed", message, err)
}

// Status maps an error to the HTTP status it should be answered with.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// As extracts the *Error from err, if any.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
