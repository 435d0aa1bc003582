// Package errors provides structured error types for cyclesearch.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine, CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The engine raises three fatal kinds of error:
//   - SHAPE: malformed dimensions (ragged CTP matrix, buffer/seed width mismatch)
//   - RANGE: out-of-domain parameters (n_scans_max < 2, n_wanted out of range)
//   - INTERNAL_INCONSISTENCY: a cross-layer invariant was violated
//
// A search that runs out of scan counts is not an error; it returns an
// empty result with Exhausted set.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeRange, "n_scans_max must be at least 2, got %d", n)
//	if errors.Is(err, errors.ErrCodeRange) {
//	    // Handle parameter error
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
	// Engine errors
	ErrCodeShape    Code = "SHAPE"
	ErrCodeRange    Code = "RANGE"
	ErrCodeInternal Code = "INTERNAL_INCONSISTENCY"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidFamily Code = "INVALID_FAMILY"
	ErrCodeInvalidUnit   Code = "INVALID_UNIT"

	// Resource errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"
	ErrCodeUnavailable  Code = "UNAVAILABLE"
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

// Shape is shorthand for New(ErrCodeShape, ...).
func Shape(format string, args ...any) *Error {
	return New(ErrCodeShape, format, args...)
}

// Range is shorthand for New(ErrCodeRange, ...).
func Range(format string, args ...any) *Error {
	return New(ErrCodeRange, format, args...)
}

// Internal is shorthand for New(ErrCodeInternal, ...).
func Internal(format string, args ...any) *Error {
	return New(ErrCodeInternal, format, args...)
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

// IsFatal reports whether err is one of the engine's fatal kinds.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case ErrCodeShape, ErrCodeRange, ErrCodeInternal:
		return true
	}
	return false
}
