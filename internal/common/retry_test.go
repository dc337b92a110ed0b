package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/reginabally/task-tracker/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastOptions(attempts int) service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestWithRetry_succeedsFirstAttempt(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return nil
	}, fastOptions(3))

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_succeedsAfterFailures(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, fastOptions(5))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_exhaustsAttempts(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return errors.New("always failing")
	}, fastOptions(3))

	assert.ErrorIs(t, err, ErrMaxRetries)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_nonRetryableStopsImmediately(t *testing.T) {
	calls := 0
	permanent := &RetryableError{Err: errors.New("bad request"), Retryable: false}

	err := WithRetry(context.Background(), func() error {
		calls++
		return permanent
	}, fastOptions(3))

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.NotErrorIs(t, err, ErrMaxRetries)
}

func TestWithRetry_cancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, func() error {
		return errors.New("transient")
	}, fastOptions(3))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryableError_unwrap(t *testing.T) {
	inner := errors.New("inner")
	wrapped := &RetryableError{Err: inner, Retryable: true}

	assert.ErrorIs(t, wrapped, inner)
	assert.Equal(t, "inner", wrapped.Error())
}
