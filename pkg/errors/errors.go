// Package errors provides structured error types for parsimony.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library, CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Structural input errors are detected once, while a tree is parsed or
// oriented, and are always fatal:
//   - MALFORMED_TOPOLOGY: a node's degree does not match leaf/internal expectations
//   - UNRESOLVABLE_ROOT: orientation could not visit every node exactly once
//   - INVALID_SYMBOL: a leaf character outside {A,C,G,T}
//   - INCONSISTENT_COLUMN_COUNT: leaf label lengths differ
//
// Search errors:
//   - FRONTIER_EXHAUSTED: the co-optimal frontier grew past the configured bound
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMalformedTopology, "node %d has %d neighbors", v, d)
//	if errors.Is(err, errors.ErrCodeMalformedTopology) {
//	    // Handle structural error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "line %d", n)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Structural input errors
	ErrCodeMalformedTopology       Code = "MALFORMED_TOPOLOGY"
	ErrCodeUnresolvableRoot        Code = "UNRESOLVABLE_ROOT"
	ErrCodeInvalidSymbol           Code = "INVALID_SYMBOL"
	ErrCodeInconsistentColumnCount Code = "INCONSISTENT_COLUMN_COUNT"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	// Search errors
	ErrCodeFrontierExhausted Code = "FRONTIER_EXHAUSTED"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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
	for errors.As(err, &e) {
		if e.Code == code {
			return true
		}
		if e.Cause == nil {
			return false
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
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

// IsStructural reports whether err is one of the fatal structural input
// errors raised while building or orienting a tree.
func IsStructural(err error) bool {
	switch GetCode(err) {
	case ErrCodeMalformedTopology, ErrCodeUnresolvableRoot,
		ErrCodeInvalidSymbol, ErrCodeInconsistentColumnCount:
		return true
	}
	return false
}
