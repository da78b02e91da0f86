package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	assert.Equal(t, ErrCodeInvalidInput, err.Code)
	assert.Equal(t, "test message: value", err.Message)
	assert.Equal(t, "INVALID_INPUT: test message: value", err.Error())
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeNetwork, cause, "failed to fetch")

	assert.Equal(t, ErrCodeNetwork, err.Code)
	assert.Same(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{"matching code", New(ErrCodeInvalidInput, "test"), ErrCodeInvalidInput, true},
		{"non-matching code", New(ErrCodeInvalidInput, "test"), ErrCodeNetwork, false},
		{"wrapped error", Wrap(ErrCodeNetwork, New(ErrCodeInvalidInput, "inner"), "outer"), ErrCodeNetwork, true},
		{"non-Error type", errors.New("plain error"), ErrCodeInvalidInput, false},
		{"typed rate limit", &RateLimitedError{Retries: 3}, ErrCodeRateLimited, true},
		{"typed status behind fmt wrap", fmt.Errorf("page 2: %w", &HTTPStatusError{StatusCode: 500}), ErrCodeHTTPStatus, true},
		{"nil error", nil, ErrCodeNetwork, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Is(tt.err, tt.code))
		})
	}
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeDecode, GetCode(New(ErrCodeDecode, "bad gzip")))
	assert.Equal(t, ErrCodeRateLimited, GetCode(&RateLimitedError{}))
	assert.Equal(t, Code(""), GetCode(errors.New("plain")))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "user facing", UserMessage(New(ErrCodeInvalidInput, "user facing")))
	assert.Equal(t, "plain", UserMessage(errors.New("plain")))
}

func TestTypedErrorMessages(t *testing.T) {
	assert.Equal(t, "rate limited after 3 retries", (&RateLimitedError{Retries: 3}).Error())
	assert.Equal(t, "http status 404", (&HTTPStatusError{StatusCode: 404}).Error())
	assert.Equal(t, "http status 503: https://github.com/a/b",
		(&HTTPStatusError{StatusCode: 503, URL: "https://github.com/a/b"}).Error())
}

func TestIsFatal(t *testing.T) {
	require.True(t, IsFatal(&RateLimitedError{Retries: 3}))
	require.True(t, IsFatal(fmt.Errorf("wrapped: %w", &HTTPStatusError{StatusCode: 404})))
	require.False(t, IsFatal(New(ErrCodeNetwork, "reset")))
	require.False(t, IsFatal(New(ErrCodeIO, "disk full")))
	require.False(t, IsFatal(nil))
}
