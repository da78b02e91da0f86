// Package errors provides structured error types for topdeps.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the HTTP server
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The codes mirror the failure classes of the dependents pipeline:
//   - NETWORK_ERROR: transport failures (DNS, reset, timeout)
//   - HTTP_STATUS: a non-2xx, non-429 response
//   - RATE_LIMITED: 429 responses after the retry budget is spent
//   - IO_ERROR / DECODE_ERROR: cache file failures (recovered locally)
//   - INVALID_INPUT: malformed repository references or options
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "invalid repository: %s", ref)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeIO, origErr, "write cache %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	ErrCodeNetwork      Code = "NETWORK_ERROR"
	ErrCodeHTTPStatus   Code = "HTTP_STATUS"
	ErrCodeRateLimited  Code = "RATE_LIMITED"
	ErrCodeIO           Code = "IO_ERROR"
	ErrCodeDecode       Code = "DECODE_ERROR"
	ErrCodeInvalidInput Code = "INVALID_INPUT"
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

// coder is implemented by typed errors that carry their own code.
type coder interface {
	Code() Code
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error or a typed error with a
// matching code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if no error in the chain carries a code.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var c coder
	if errors.As(err, &c) {
		return c.Code()
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

// HTTPStatusError reports a response outside the 2xx range that is not
// subject to retry.
type HTTPStatusError struct {
	StatusCode int
	URL        string
}

// Error implements the error interface.
func (e *HTTPStatusError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("http status %d: %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("http status %d", e.StatusCode)
}

// Code returns the error code for this error type.
func (e *HTTPStatusError) Code() Code {
	return ErrCodeHTTPStatus
}

// RateLimitedError is returned once the retry budget has been used up on
// 429 responses.
type RateLimitedError struct {
	Retries int // Retries performed before giving up
	URL     string
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited after %d retries", e.Retries)
}

// Code returns the error code for this error type.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}

// IsFatal reports whether err should end a CLI run with a non-zero exit:
// rate limiting and uncategorized HTTP status failures.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case ErrCodeRateLimited, ErrCodeHTTPStatus:
		return true
	}
	return false
}
