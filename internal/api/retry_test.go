package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testRetrier(attempts int) retrier {
	return retrier{config: RetryConfig{
		MaxAttempts: attempts,
		InitialWait: 100 * time.Millisecond,
		MaxWait:     time.Second,
		Multiplier:  2,
	}}
}

func TestRetryDelayGrowsAndCaps(t *testing.T) {
	r := testRetrier(5)
	transient := &TransportError{Op: "GET /x", Err: errors.New("reset")}

	for _, tt := range []struct {
		retry int
		base  time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{5, time.Second},
		{9, time.Second},
	} {
		d := r.delay(tt.retry, transient)
		assert.GreaterOrEqual(t, d, tt.base*4/5, "retry %d", tt.retry)
		assert.LessOrEqual(t, d, tt.base*6/5, "retry %d", tt.retry)
	}
}

func TestRetryDelayHonorsRetryAfter(t *testing.T) {
	err := &StatusError{Code: http.StatusTooManyRequests, RetryAfter: 3 * time.Second}
	assert.Equal(t, 3*time.Second, testRetrier(3).delay(1, err))
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	calls := 0
	err := testRetrier(3).do(context.Background(), func() error {
		calls++
		return &StatusError{Code: http.StatusNotFound}
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	r := testRetrier(3)
	r.config.InitialWait = time.Millisecond
	r.config.MaxWait = time.Millisecond

	calls := 0
	err := r.do(context.Background(), func() error {
		calls++
		return &TransportError{Op: "GET /x", Err: errors.New("refused")}
	})
	assert.True(t, IsTransport(err))
	assert.Equal(t, 3, calls)
}

func TestRetryEndsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := testRetrier(3).do(ctx, func() error {
		calls++
		cancel()
		return &TransportError{Op: "GET /x", Err: errors.New("refused")}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
