// Package gyroerr provides structured error types shared across the engine,
// the source drivers, and the CLI.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine and CLI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: manifest and lockfile validation failures
//   - NETWORK_*: transport failures from a source driver
//   - DEPENDENCY_CYCLE: dependency-graph cycle detection
//   - EXPLAINED: the failure has already been logged in full; callers must
//     propagate the abort without emitting further diagnostics
//
// # Usage
//
//	err := gyroerr.New(gyroerr.ErrCodeInvalidManifest, "missing [deps] table")
//	if gyroerr.Is(err, gyroerr.ErrCodeInvalidManifest) {
//	    // handle validation error
//	}
package gyroerr

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
	ErrCodeInvalidLockLine Code = "INVALID_LOCK_LINE"
	ErrCodeUnknownSource   Code = "UNKNOWN_SOURCE"

	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeNetwork  Code = "NETWORK_ERROR"

	ErrCodeCycle     Code = "DEPENDENCY_CYCLE"
	ErrCodeExplained Code = "EXPLAINED"

	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error { return e.Cause }

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Explained wraps cause with ErrCodeExplained, marking that the failure has
// already been communicated to the user via the log and must not be
// diagnosed a second time by an outer caller.
func Explained(cause error) *Error {
	return &Error{Code: ErrCodeExplained, Message: "see above", Cause: cause}
}

// Is reports whether err has the given error code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error, stripping the
// code prefix for *Error values and returning other errors' text as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// CycleError identifies a set of aliases that form a dependency cycle,
// surfaced by the engine's post-BFS cycle check (ErrCodeCycle).
type CycleError struct {
	Aliases []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: dependency cycle among: %v", ErrCodeCycle, e.Aliases)
}
