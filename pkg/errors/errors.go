// Package errors provides structured error types for labelsheet.
//
// Every failure that can abort a run carries a machine-readable [Code] so
// the CLI and the HTTP server can report it consistently and callers can
// decide whether a retry is safe.
//
// # Error Codes
//
//   - CONFIGURATION: invalid or missing geometry or store settings; raised before any allocation
//   - LAYOUT_SHAPE: the reserved range does not match rows x columns (internal invariant)
//   - RENDER: the document backend failed to produce a byte stream
//   - OUTPUT: the output artifact could not be staged or published
//   - PERSISTENCE: the durable counter could not be read or written
//   - COUNTER_CONFLICT: the counter changed underneath a run (a PERSISTENCE subkind)
//
// # Usage
//
//	err := errors.New(errors.ErrCodeConfiguration, "rows must be positive, got %d", rows)
//	if errors.Is(err, errors.ErrCodeConfiguration) {
//	    // Handle invalid configuration
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodePersistence, origErr, "write counter %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the failure kinds of a label run.
const (
	ErrCodeConfiguration Code = "CONFIGURATION"
	ErrCodeLayoutShape   Code = "LAYOUT_SHAPE"
	ErrCodeRender        Code = "RENDER"
	ErrCodeOutput        Code = "OUTPUT"
	ErrCodePersistence   Code = "PERSISTENCE"
	ErrCodeConflict      Code = "COUNTER_CONFLICT"

	// Server errors
	ErrCodeUnauthorized Code = "UNAUTHORIZED"
	ErrCodeNotFound     Code = "NOT_FOUND"

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
	if errors.As(err, &e) {
		return e.Code == code
	}
	var c *ConflictError
	if errors.As(err, &c) {
		return c.Code() == code
	}
	return false
}

// As is errors.As from the standard library.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var c *ConflictError
	if errors.As(err, &c) {
		return c.Code()
	}
	return ""
}

// Kind collapses subkinds onto the four fatal kinds plus OUTPUT.
// A counter conflict is a persistence failure.
func Kind(err error) Code {
	code := GetCode(err)
	if code == ErrCodeConflict {
		return ErrCodePersistence
	}
	return code
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
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

// ConflictError reports that the persisted counter no longer holds the value
// a run started from. The run must not be retried blindly: another writer
// has allocated numbers in the meantime.
type ConflictError struct {
	Expected int  // value the run read
	Actual   int  // value found at commit time
	Missing  bool // the counter disappeared
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	if e.Missing {
		return fmt.Sprintf("counter conflict: expected %d, counter is gone", e.Expected)
	}
	return fmt.Sprintf("counter conflict: expected %d, found %d", e.Expected, e.Actual)
}

// Code returns the error code for this error type.
func (e *ConflictError) Code() Code {
	return ErrCodeConflict
}
