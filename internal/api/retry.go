package api

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"time"
)

// retrier repeats idempotent reads while the service is flaky or
// throttling. Writes are sent once and never come through here.
type retrier struct {
	config RetryConfig
}

func (r retrier) do(ctx context.Context, fn func() error) error {
	err := fn()
	for attempt := 1; attempt < r.config.MaxAttempts && retryable(err); attempt++ {
		timer := time.NewTimer(r.delay(attempt, err))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		err = fn()
	}
	return err
}

// retryable reports whether a read that failed with err may succeed if
// sent again: network failures, 5xx and 429. A cancelled or expired
// context ends the loop.
func retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusTooManyRequests {
		return true
	}
	return IsTransport(err)
}

// delay is the pause before the given retry (1 for the first). The
// service's Retry-After wins; otherwise the wait doubles by Multiplier from
// InitialWait up to MaxWait, spread by up to a fifth either way so clients
// throttled together do not come back together.
func (r retrier) delay(retry int, err error) time.Duration {
	var se *StatusError
	if errors.As(err, &se) && se.RetryAfter > 0 {
		return se.RetryAfter
	}

	wait := float64(r.config.InitialWait)
	for range retry - 1 {
		wait *= r.config.Multiplier
		if wait >= float64(r.config.MaxWait) {
			break
		}
	}
	wait = min(wait, float64(r.config.MaxWait))

	spread := wait / 5
	return time.Duration(max(0, wait-spread+rand.Float64()*2*spread))
}
