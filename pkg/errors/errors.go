// Package errors provides structured error types for crateup.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the report server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes are grouped by the stage that produced them:
//   - MANAGER_*, INVALID_OUTPUT: acquiring the installed inventory (fatal)
//   - NETWORK_*, NOT_FOUND, INVALID_RESPONSE: registry lookups (isolated per package)
//   - REINSTALL_*: the bulk reinstall subprocess
//   - INVALID_CONFIG, INVALID_INPUT: configuration and command-line misuse
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidConfig, "attempts must be positive, got %d", n)
//	if errors.Is(err, errors.ErrCodeInvalidConfig) {
//	    // Handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeManagerFailed, origErr, "cargo install --list")
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
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"
	ErrCodeInvalidPackage Code = "INVALID_PACKAGE"

	// Inventory acquisition errors
	ErrCodeManagerNotFound Code = "MANAGER_NOT_FOUND"
	ErrCodeManagerFailed   Code = "MANAGER_FAILED"
	ErrCodeInvalidOutput   Code = "INVALID_OUTPUT"

	// Registry lookup errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeNetwork         Code = "NETWORK_ERROR"
	ErrCodeInvalidResponse Code = "INVALID_RESPONSE"

	// Reinstall errors
	ErrCodeReinstallFailed Code = "REINSTALL_FAILED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Lookup reports whether c comes from a registry lookup. Lookup errors are
// isolated to one crate unless strict mode is on.
func (c Code) Lookup() bool {
	switch c {
	case ErrCodeNotFound, ErrCodeNetwork, ErrCodeInvalidResponse:
		return true
	}
	return false
}

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
// For *Error types, returns the message followed by the cause (if any)
// without the code prefix. For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}
