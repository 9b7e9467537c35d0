package infra_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"keep-connect/internal/infra"
)

var fastRetry = infra.RetryConfig{
	MaxAttempts:  3,
	InitialDelay: time.Millisecond,
	MaxDelay:     5 * time.Millisecond,
	Multiplier:   2,
}

func TestWithRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := infra.WithRetry(context.Background(), fastRetry, func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestWithRetry_GivesUp(t *testing.T) {
	boom := errors.New("connection refused")
	calls := 0
	err := infra.WithRetry(context.Background(), fastRetry, func() error {
		calls++
		return boom
	})

	require.ErrorIs(t, err, boom)
	require.Equal(t, 3, calls)
}

func TestWithRetry_PermanentStopsImmediately(t *testing.T) {
	boom := errors.New("bad request")
	calls := 0
	err := infra.WithRetry(context.Background(), fastRetry, func() error {
		calls++
		return infra.Permanent(boom)
	})

	require.Equal(t, boom, err)
	require.Equal(t, 1, calls)
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastRetry
	cfg.InitialDelay = time.Hour

	calls := 0
	err := infra.WithRetry(ctx, cfg, func() error {
		calls++
		cancel()
		return errors.New("connection refused")
	})

	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}

func TestIsRetryableHTTPStatus(t *testing.T) {
	require.True(t, infra.IsRetryableHTTPStatus(http.StatusTooManyRequests))
	require.True(t, infra.IsRetryableHTTPStatus(http.StatusBadGateway))
	require.False(t, infra.IsRetryableHTTPStatus(http.StatusBadRequest))
	require.False(t, infra.IsRetryableHTTPStatus(http.StatusOK))
}
