package errors

import (
	"errors"
	"fmt"
)

// Error classes shared by every layer. Callers match with Is.

var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates malformed or schema-violating input
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal indicates an internal error
	ErrInternal = errors.New("internal error")

	// ErrTimeout indicates an operation timeout
	ErrTimeout = errors.New("operation timeout")

	// ErrUnavailable indicates a dependency is not configured or not reachable
	ErrUnavailable = errors.New("service unavailable")

	// ErrNotImplemented indicates an unsupported backend or provider
	ErrNotImplemented = errors.New("not implemented")
)

// Pipeline errors

var (
	// ErrUpstream indicates the text-generation collaborator failed:
	// network error, non-success status, empty content or timeout
	ErrUpstream = errors.New("upstream failure")

	// ErrExternal is kept as an alias of ErrUpstream for provider adapters
	ErrExternal = ErrUpstream

	// ErrNarrative indicates narrative generation failed; the engine recovers from it
	ErrNarrative = errors.New("narrative generation failed")

	// ErrRateLimitExceeded indicates the caller exhausted its request window
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// ValidationError describes a single rejected field
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// Is makes every ValidationError match ErrInvalidInput
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// Helper functions

// Is checks if err is or wraps target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join combines errors, dropping nils
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func New(message string) error {
	return errors.New(message)
}

func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
