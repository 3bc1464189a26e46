package domain

import "errors"

// Kind classifies an error for the transport layer. The set is closed: every
// error that leaves the core maps to exactly one kind.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindConflict     Kind = "conflict"
	KindInternal     Kind = "internal"
)

// Error is the error type returned by the core.
type Error struct {
	Kind    Kind
	Message string
	// Fields holds per-field messages for validation errors.
	Fields map[string]string
}

func (e *Error) Error() string {
	return e.Message
}

// NewError builds an error of the given kind.
func NewError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// NewValidationError builds a validation error from a field → message map.
func NewValidationError(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

// KindOf returns the kind of err, or KindInternal when err was not produced
// by the core.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

var (
	ErrProductNotFound    = NewError(KindNotFound, "product not found")
	ErrPageNotFound       = NewError(KindNotFound, "page not found")
	ErrProductSold        = NewError(KindConflict, "product already sold")
	ErrUserNotFound       = NewError(KindNotFound, "user not found")
	ErrUserExists         = NewError(KindConflict, "user already exists")
	ErrInvalidCredentials = NewError(KindNotFound, "user not found")
	ErrOrderNotFound      = NewError(KindNotFound, "order not found")
	ErrInvalidTransition  = NewError(KindConflict, "invalid status transition")
	ErrIdempotencyReused  = NewError(KindConflict, "idempotency key already used")
	ErrUnauthorized       = NewError(KindUnauthorized, "logged out")
	ErrForbidden          = NewError(KindForbidden, "access forbidden")
	ErrImageNotFound      = NewError(KindNotFound, "image not found")
)
