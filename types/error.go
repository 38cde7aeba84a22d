package types

import (
	"fmt"
	"time"
)

// ErrorCode represents a unified error code across the SDK.
type ErrorCode string

const (
	// ErrAuthenticationMissing is returned at client construction when no
	// API key was supplied.
	ErrAuthenticationMissing ErrorCode = "AUTHENTICATION_MISSING"

	// ErrNetworkFailure covers transport-level failures (DNS, connect,
	// socket timeout) before an HTTP status was received.
	ErrNetworkFailure ErrorCode = "NETWORK_FAILURE"

	// HTTP error family: the server answered with a non-2xx status.
	ErrUnauthorized   ErrorCode = "UNAUTHORIZED"
	ErrForbidden      ErrorCode = "FORBIDDEN"
	ErrRateLimited    ErrorCode = "RATE_LIMITED"
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrUpstreamError  ErrorCode = "UPSTREAM_ERROR"

	// ErrDecodeFailure means the response body could not be parsed.
	ErrDecodeFailure ErrorCode = "DECODE_FAILURE"

	// ErrValidationFailure means a request was rejected locally, before
	// any network I/O.
	ErrValidationFailure ErrorCode = "VALIDATION_FAILURE"

	// ErrTimeout means a wait deadline elapsed before the task reached a
	// terminal status.
	ErrTimeout ErrorCode = "TIMEOUT"

	// ErrDownloadFailure aggregates per-artifact download failures.
	ErrDownloadFailure ErrorCode = "DOWNLOAD_FAILURE"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Retryable  bool      `json:"retryable"`
	Cause      error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus sets the HTTP status code.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Retryable
	}
	return false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}

// TimeoutError is returned when a wait deadline elapses before the task
// reaches a terminal status. It carries the last status the poller observed
// so callers can distinguish "never started" from "stuck at 90%".
type TimeoutError struct {
	TaskID     string
	LastStatus TaskState
	Elapsed    time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("[%s] task %s did not reach a terminal status within %s (last status: %s)",
		ErrTimeout, e.TaskID, e.Elapsed, e.LastStatus)
}
