package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound           = errors.New("resource not found")
	ErrPatternSetNotFound = fmt.Errorf("%w: pattern set", ErrNotFound)
	ErrColumnNotFound     = fmt.Errorf("%w: column", ErrNotFound)

	// Validation errors
	ErrValidation = errors.New("validation failed")

	// Column modeling errors
	ErrEmptyColumn    = errors.New("column has no observed values")
	ErrUnknownKind    = errors.New("unknown attribute kind")
	ErrStringEncode   = errors.New("non-categorical string attribute cannot be encoded")
	ErrNoRawValues    = errors.New("operation requires resident raw values")
	ErrInvalidDomain  = errors.New("invalid domain override")
	ErrInvalidPattern = errors.New("invalid pattern record")

	// Synthesis errors
	ErrInvalidSize = errors.New("synthesis size must be positive")
	ErrNilStream   = errors.New("random stream is nil")
	ErrNilMasker   = errors.New("masker is required")
	ErrZeroMass    = errors.New("distribution has no probability mass")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w for %s: %s", ErrValidation, field, reason)
}

func NewDomainError(name string, err error) error {
	return fmt.Errorf("%w for attribute %s", err, name)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidDomain) ||
		errors.Is(err, ErrInvalidPattern) ||
		errors.Is(err, ErrInvalidSize)
}

func IsUnsupportedError(err error) bool {
	return errors.Is(err, ErrStringEncode) ||
		errors.Is(err, ErrNoRawValues) ||
		errors.Is(err, ErrEmptyColumn)
}
