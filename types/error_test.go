package types

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	err := NewError(ErrValidationFailure, "prompt must not be empty")
	assert.Equal(t, "[VALIDATION_FAILURE] prompt must not be empty", err.Error())

	wrapped := NewError(ErrNetworkFailure, "request failed").WithCause(errors.New("connection refused"))
	assert.Contains(t, wrapped.Error(), "connection refused")
	assert.Equal(t, "connection refused", errors.Unwrap(wrapped).Error())
}

func TestError_Builders(t *testing.T) {
	err := NewError(ErrUpstreamError, "bad gateway").
		WithHTTPStatus(502).
		WithRetryable(true)

	assert.Equal(t, 502, err.HTTPStatus)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, ErrUpstreamError, GetErrorCode(err))
}

func TestIsRetryable_PlainError(t *testing.T) {
	assert.False(t, IsRetryable(errors.New("boom")))
	assert.Equal(t, ErrorCode(""), GetErrorCode(errors.New("boom")))
}

func TestTimeoutError(t *testing.T) {
	err := &TimeoutError{TaskID: "tid-1", LastStatus: TaskRunning, Elapsed: 3 * time.Minute}
	assert.Contains(t, err.Error(), "tid-1")
	assert.Contains(t, err.Error(), "running")

	var timeout *TimeoutError
	assert.True(t, errors.As(error(err), &timeout))
}
