package errors

import (
	"errors"
	"fmt"
)

// Code represents an error code for categorizing errors
type Code string

const (
	// CodeUnknown indicates an unknown error
	CodeUnknown Code = "unknown"

	// CodeNotFound indicates a requested map, room, fight, character or party was not found
	CodeNotFound Code = "not_found"

	// CodeIllegalAction indicates an action submitted out of turn or invalid
	// for the combatant's current status
	CodeIllegalAction Code = "illegal_action"

	// CodeConcurrencyConflict indicates a concurrent edit was detected on a map
	CodeConcurrencyConflict Code = "concurrency_conflict"

	// CodePersistenceFailure indicates a storage write failed
	CodePersistenceFailure Code = "persistence_failure"

	// CodeValidation indicates malformed parameters
	CodeValidation Code = "validation"

	// CodePermissionDenied indicates the caller's role does not allow the operation
	CodePermissionDenied Code = "permission_denied"

	// CodeInternal indicates internal system error
	CodeInternal Code = "internal"
)

// Error represents an application error with code and metadata
type Error struct {
	// Code is the error code
	Code Code

	// Message is the error message
	Message string

	// Cause is the wrapped error
	Cause error

	// Meta contains additional context
	Meta map[string]any
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithMeta adds metadata to the error (builder pattern)
func (e *Error) WithMeta(key string, value any) *Error {
	if e.Meta == nil {
		e.Meta = make(map[string]any)
	}
	e.Meta[key] = value
	return e
}

// New creates a new error with the given code and message
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new error with formatted message
func Newf(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with additional context, preserving its code
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return &Error{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
			Meta:    copyMeta(appErr.Meta),
		}
	}

	return &Error{
		Code:    CodeUnknown,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode wraps an error with a specific code
func WrapWithCode(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}

	wrapped := Wrap(err, message)
	wrapped.Code = code
	return wrapped
}

// Helper functions for common error types

// NotFound creates a not found error
func NotFound(message string) *Error {
	return New(CodeNotFound, message)
}

// NotFoundf creates a formatted not found error
func NotFoundf(format string, args ...any) *Error {
	return Newf(CodeNotFound, format, args...)
}

// IllegalAction creates an illegal action error
func IllegalAction(message string) *Error {
	return New(CodeIllegalAction, message)
}

// IllegalActionf creates a formatted illegal action error
func IllegalActionf(format string, args ...any) *Error {
	return Newf(CodeIllegalAction, format, args...)
}

// ConcurrencyConflict creates a concurrency conflict error
func ConcurrencyConflict(message string) *Error {
	return New(CodeConcurrencyConflict, message)
}

// ConcurrencyConflictf creates a formatted concurrency conflict error
func ConcurrencyConflictf(format string, args ...any) *Error {
	return Newf(CodeConcurrencyConflict, format, args...)
}

// PersistenceFailure creates a persistence failure error
func PersistenceFailure(message string) *Error {
	return New(CodePersistenceFailure, message)
}

// PersistenceFailuref creates a formatted persistence failure error
func PersistenceFailuref(format string, args ...any) *Error {
	return Newf(CodePersistenceFailure, format, args...)
}

// Validation creates a validation error
func Validation(message string) *Error {
	return New(CodeValidation, message)
}

// Validationf creates a formatted validation error
func Validationf(format string, args ...any) *Error {
	return Newf(CodeValidation, format, args...)
}

// PermissionDenied creates a permission denied error
func PermissionDenied(message string) *Error {
	return New(CodePermissionDenied, message)
}

// Internal creates an internal error
func Internal(message string) *Error {
	return New(CodeInternal, message)
}

// Error checking functions

// Is checks if the error is of a specific code
func Is(err error, code Code) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return Is(err, CodeNotFound)
}

// IsIllegalAction checks if the error is an illegal action error
func IsIllegalAction(err error) bool {
	return Is(err, CodeIllegalAction)
}

// IsConcurrencyConflict checks if the error is a concurrency conflict error
func IsConcurrencyConflict(err error) bool {
	return Is(err, CodeConcurrencyConflict)
}

// IsPersistenceFailure checks if the error is a persistence failure error
func IsPersistenceFailure(err error) bool {
	return Is(err, CodePersistenceFailure)
}

// IsValidation checks if the error is a validation error
func IsValidation(err error) bool {
	return Is(err, CodeValidation)
}

// IsPermissionDenied checks if the error is a permission denied error
func IsPermissionDenied(err error) bool {
	return Is(err, CodePermissionDenied)
}

// GetCode returns the error code
func GetCode(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// copyMeta creates a copy of the metadata map
func copyMeta(meta map[string]any) map[string]any {
	if meta == nil {
		return nil
	}

	copied := make(map[string]any, len(meta))
	for k, v := range meta {
		copied[k] = v
	}
	return copied
}
