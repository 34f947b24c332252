// Package apierror provides standardized error response structures for the API
// and the typed error that services return to the boundary layer.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"net/http"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail    string `json:"detail"`
	Kind      string `json:"kind,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// Kind is the stable classification of a domain error.
type Kind string

const (
	KindInvalidInput        Kind = "invalid_input"
	KindNotFound            Kind = "not_found"
	KindInsufficientBalance Kind = "insufficient_balance"
	KindConflict            Kind = "conflict"
	KindInternal            Kind = "internal"
)

// Error is a domain error: a stable Kind plus a human-readable reason.
// Cause is kept for logging only and never reaches the client.
type Error struct {
	Kind   Kind
	Reason string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Reason + ": " + e.Cause.Error()
	}
	return e.Reason
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches sentinels by kind and reason, so a wrapped copy of a sentinel still matches it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Reason == t.Reason
}

// Retryable reports whether the caller may resubmit the whole operation unchanged.
func (e *Error) Retryable() bool { return e.Kind == KindConflict }

func InvalidInput(reason string) *Error { return &Error{Kind: KindInvalidInput, Reason: reason} }
func NotFound(reason string) *Error     { return &Error{Kind: KindNotFound, Reason: reason} }
func Conflict(reason string, cause error) *Error {
	return &Error{Kind: KindConflict, Reason: reason, Cause: cause}
}
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Reason: "Error interno del servidor", Cause: cause}
}
func InsufficientBalance(reason string) *Error {
	return &Error{Kind: KindInsufficientBalance, Reason: reason}
}

// KindOf returns the Kind of err, or KindInternal when err is not a domain error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps a Kind to its transport status code.
func HTTPStatus(k Kind) int {
	switch k {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindInsufficientBalance:
		return http.StatusUnprocessableEntity
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FromError builds the response envelope for err. Internal errors never expose their cause.
func FromError(err error) (int, *APIError) {
	var e *Error
	if !errors.As(err, &e) {
		e = Internal(err)
	}
	return HTTPStatus(e.Kind), &APIError{Detail: e.Reason, Kind: string(e.Kind), Retryable: e.Retryable()}
}
