// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
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

// Kind classifies business failures raised by the service layer.
type Kind int

const (
	// Validacion: malformed input rejected before any persistence.
	Validacion Kind = iota + 1
	// Precondicion: insufficient stock, illegal transition, missing shortfall
	// justification, amount above the outstanding balance.
	Precondicion
	// NoEncontrado: referenced entity does not exist.
	NoEncontrado
	// Conflicto: the entity changed state under a concurrent request.
	Conflicto
)

// Error is a business error carrying a human-readable message that is safe to
// return verbatim to the caller.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func Validation(format string, args ...any) error {
	return &Error{Kind: Validacion, Msg: fmt.Sprintf(format, args...)}
}

func Precondition(format string, args ...any) error {
	return &Error{Kind: Precondicion, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: NoEncontrado, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: Conflicto, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of err, or 0 when err is not a business error
// (storage failures and other unexpected errors).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// HTTPStatus maps an error to the status code returned to clients.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case Validacion:
		return http.StatusUnprocessableEntity
	case Precondicion:
		return http.StatusBadRequest
	case NoEncontrado:
		return http.StatusNotFound
	case Conflicto:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
