package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the service boundary. Adapters map driver
// errors onto these; handlers map these onto stable reason codes.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("write conflict")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrDependency        = errors.New("storage unavailable")
	ErrEmailTaken        = errors.New("email already registered")
	ErrInvalidCredential = errors.New("invalid email or password")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InsufficientStockError aborts the whole order and names the
// offending line so the client can show a precise message.
type InsufficientStockError struct {
	Line      int
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s (line %d): requested %d, available %d",
		e.ProductID, e.Line, e.Requested, e.Available)
}

// UnknownProductError reports a referenced product that does not
// exist, keyed by line index like InsufficientStockError.
type UnknownProductError struct {
	Line      int
	ProductID string
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("unknown product %s (line %d)", e.ProductID, e.Line)
}

func (e *UnknownProductError) Is(target error) bool { return target == ErrNotFound }

// ReasonCode returns the stable, user-visible code for an error.
// Internal detail (driver messages, stack) never leaves through it.
func ReasonCode(err error) string {
	var ve *ValidationError
	var ise *InsufficientStockError
	var upe *UnknownProductError
	switch {
	case errors.As(err, &ve):
		return "validation_failed"
	case errors.As(err, &ise):
		return "insufficient_stock"
	case errors.As(err, &upe):
		return "product_not_found"
	case errors.Is(err, ErrIllegalTransition):
		return "illegal_transition"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrEmailTaken):
		return "email_taken"
	case errors.Is(err, ErrInvalidCredential):
		return "invalid_credentials"
	case errors.Is(err, ErrDependency):
		return "storage_unavailable"
	}
	return "internal_error"
}
