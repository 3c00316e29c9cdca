// Package errors provides structured error types for graphedit.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine, CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly messages for alerts shown by the canvas
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *_NOT_FOUND: Resource not found
//   - *_PARSE: Corrupt persisted or imported documents
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNodeNotFound, "node %s not found", id)
//	if errors.Is(err, errors.ErrCodeNodeNotFound) {
//	    // Handle missing node
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeImportParse, origErr, "failed to import graph")
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
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidChange Code = "INVALID_CHANGE"
	ErrCodeInvalidKey    Code = "INVALID_KEY"
	ErrCodeDuplicateID   Code = "DUPLICATE_ID"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeNodeNotFound Code = "NODE_NOT_FOUND"
	ErrCodeEdgeNotFound Code = "EDGE_NOT_FOUND"

	// Document errors
	ErrCodeLoadParse   Code = "LOAD_PARSE"
	ErrCodeImportParse Code = "IMPORT_PARSE"

	// Interaction state errors
	ErrCodeNotEditing     Code = "NOT_EDITING"
	ErrCodeImportInFlight Code = "IMPORT_IN_FLIGHT"

	// Backend errors
	ErrCodeStorage Code = "STORAGE_ERROR"

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
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
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
