// Package apperrors defines the error taxonomy shared by the store, the
// application services and the HTTP layer.
//
// Services return typed errors; handlers translate them with HTTPStatus:
//
//	if errors.Is(err, apperrors.ErrNotFound) {
//	    // any not-found error, e.g. store.ErrExerciseNotFound
//	}
//
// Specific errors (built with the constructors) only match themselves and the
// generic sentinel of their code, so store.ErrFavoriteNotFound is not
// store.ErrExerciseNotFound even though both are not-found errors.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error category.
type Code string

const (
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeValidation   Code = "VALIDATION"
	CodeConflict     Code = "CONFLICT"
	CodeRateLimited  Code = "RATE_LIMITED"
	CodeInternal     Code = "INTERNAL"
)

// HTTPStatus returns the response status for the code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a categorized application error.
type Error struct {
	Code    Code
	Message string
	Details any

	generic bool
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is the generic sentinel for e's code.
// Identity matches are handled by errors.Is before this is consulted.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.generic && t.Code == e.Code
}

// HTTPStatus returns the response status for the error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithCause returns a copy of e wrapping err. The copy keeps matching the
// generic sentinel of its code but no longer equals e.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: e.Details, cause: err}
}

// Generic sentinels, one per code.
var (
	ErrUnauthorized = &Error{Code: CodeUnauthorized, Message: "Unauthorized", generic: true}
	ErrForbidden    = &Error{Code: CodeForbidden, Message: "Forbidden", generic: true}
	ErrNotFound     = &Error{Code: CodeNotFound, Message: "Not found", generic: true}
	ErrValidation   = &Error{Code: CodeValidation, Message: "Invalid input", generic: true}
	ErrConflict     = &Error{Code: CodeConflict, Message: "Conflict", generic: true}
	ErrRateLimited  = &Error{Code: CodeRateLimited, Message: "Too many requests", generic: true}
	ErrInternal     = &Error{Code: CodeInternal, Message: "Internal server error", generic: true}
)

func Unauthorized(msg string) *Error { return &Error{Code: CodeUnauthorized, Message: msg} }

func Forbidden(msg string) *Error { return &Error{Code: CodeForbidden, Message: msg} }

func NotFound(msg string) *Error { return &Error{Code: CodeNotFound, Message: msg} }

func Validation(msg string) *Error { return &Error{Code: CodeValidation, Message: msg} }

func Conflict(msg string) *Error { return &Error{Code: CodeConflict, Message: msg} }

// ValidationWithDetails creates a validation error carrying per-field messages.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// StatusOf returns the HTTP status for err, or 500 for uncategorized errors.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}
