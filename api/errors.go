// File: api/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Common error types and error handling utilities for hioload-jobs.

package api

import "fmt"

// Common errors used across the library. Pool exhaustion is reported
// synchronously from submission calls; the scheduler never retries or
// queues a rejected submission on the caller's behalf.
var (
	ErrJobPoolExhausted     = fmt.Errorf("job pool exhausted")
	ErrCounterPoolExhausted = fmt.Errorf("counter pool exhausted")
	ErrMainQueueFull        = fmt.Errorf("main-thread queue full")
	ErrSubmitQueueFull      = fmt.Errorf("foreign-submission queue full")
	ErrSchedulerClosed      = fmt.Errorf("scheduler is closed")
	ErrInvalidArgument      = fmt.Errorf("invalid argument")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeResourceExhausted
	ErrCodeClosed
	ErrCodeInternal
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// Unwrap exposes the sentinel this error was built from, so callers can
// match with errors.Is.
func (e *Error) Unwrap() error { return e.cause }

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WrapError creates a structured error around a sentinel.
func WrapError(code ErrorCode, cause error) *Error {
	return &Error{
		Code:    code,
		Message: cause.Error(),
		Context: make(map[string]any),
		cause:   cause,
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
