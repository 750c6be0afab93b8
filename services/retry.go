package services

import (
	"context"
	"time"

	"wardrobeapi/logging"
)

// RetryPolicy retries ProviderUnavailableError with exponential backoff.
// Any other error is returned immediately.
type RetryPolicy struct {
	// Attempts counts the first call, 1 disables retries.
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration

	// sleep is replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewRetryPolicy(attempts int, baseDelay, maxDelay time.Duration) RetryPolicy {
	return RetryPolicy{Attempts: attempts, BaseDelay: baseDelay, MaxDelay: maxDelay}
}

// NoRetry runs the call exactly once.
var NoRetry = RetryPolicy{Attempts: 1}

func (p RetryPolicy) Do(ctx context.Context, step string, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	backoff := p.BaseDelay
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx)
		if err == nil || !IsProviderUnavailable(err) || attempt == attempts {
			return err
		}
		logging.FromContext(ctx).Warn("provider call failed, retrying",
			"step", step, "attempt", attempt, "backoff", backoff.String(), "error", err)
		if sleepErr := sleep(ctx, backoff); sleepErr != nil {
			return &ProviderUnavailableError{Step: step, Err: sleepErr}
		}
		backoff *= 2
		if p.MaxDelay > 0 && backoff > p.MaxDelay {
			backoff = p.MaxDelay
		}
	}
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
