// Package errors provides structured error types for scantower.
//
// Two kinds of failure flow through the code base and this package keeps them
// apart by code:
//
//   - Precondition violations (INVARIANT_VIOLATION, INVALID_IDENTIFIER,
//     INCONSISTENT_GRAPH): data handed to a constructor breaks a structural
//     rule. They signal a bug in whatever produced the data and are never
//     retried.
//   - Input errors (INVALID_INPUT, INVALID_FORMAT, NOT_FOUND, ...): a user
//     pointed the tool at something unusable.
//
// Recoverable problems that concern a single package are not errors at all;
// they are recorded as model.Issue values on that package's result.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvariant, "duplicate scan result for %s", key)
//	if errors.Is(err, errors.ErrCodeInvariant) {
//	    // producer bug
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidFormat, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidIdentifier Code = "INVALID_IDENTIFIER"
	ErrCodeInvalidProvenance Code = "INVALID_PROVENANCE"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeInvalidPath       Code = "INVALID_PATH"
	ErrCodeInvalidPattern    Code = "INVALID_PATTERN"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Structural errors raised by constructors
	ErrCodeInvariant         Code = "INVARIANT_VIOLATION"
	ErrCodeConfigMismatch    Code = "CONFIG_MISMATCH"
	ErrCodeInconsistentGraph Code = "INCONSISTENT_GRAPH"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsPrecondition reports whether err signals broken input data produced by
// another component rather than a problem the user can fix.
func IsPrecondition(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvariant, ErrCodeInvalidIdentifier, ErrCodeInvalidProvenance, ErrCodeInconsistentGraph:
		return true
	}
	return false
}

// Invariant returns an ErrCodeInvariant error. It is shorthand used by
// constructors that reject structurally invalid data.
func Invariant(format string, args ...any) *Error {
	return New(ErrCodeInvariant, format, args...)
}
