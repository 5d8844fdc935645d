// Package errors provides structured error types for mindcanvas.
//
// Every failure that crosses a package boundary carries a machine-readable
// [Code]. Front ends branch on the code to decide how a failure is surfaced:
//
//   - NOT_FOUND: a node, edge or document does not exist
//   - MALFORMED_CLIPBOARD: the clipboard slot holds data that does not parse
//   - STORAGE_*: the persistent store failed or returned unparsable content
//   - MISSING_INPUT: the user declined to provide a required value
//   - INVALID_*: input validation failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNotFound, "mind map %q not found", name)
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // report to the user
//	}
//
//	err := errors.Wrap(errors.ErrCodeStorageUnavailable, origErr, "write %s", key)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeMissingInput  Code = "MISSING_INPUT"

	// Lookup errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Clipboard errors
	ErrCodeMalformedClipboard Code = "MALFORMED_CLIPBOARD"

	// Storage errors
	ErrCodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"
	ErrCodeStorageCorrupt     Code = "STORAGE_CORRUPT"

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

// IsCancellation reports whether err is an intentional user cancellation,
// which callers abort on without reporting anything.
func IsCancellation(err error) bool {
	return Is(err, ErrCodeMissingInput)
}
