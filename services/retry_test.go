package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicyRetriesUnavailable(t *testing.T) {
	var delays []time.Duration
	policy := RetryPolicy{
		Attempts:  4,
		BaseDelay: 100 * time.Millisecond,
		MaxDelay:  250 * time.Millisecond,
		sleep: func(ctx context.Context, d time.Duration) error {
			delays = append(delays, d)
			return nil
		},
	}

	calls := 0
	err := policy.Do(context.Background(), StepTagging, func(ctx context.Context) error {
		calls++
		if calls < 4 {
			return &ProviderUnavailableError{Step: StepTagging, Err: errors.New("connection reset")}
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 4, calls)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 250 * time.Millisecond}, delays)
}

func TestRetryPolicyStopsAfterAttempts(t *testing.T) {
	policy := RetryPolicy{Attempts: 3, sleep: noSleep}
	calls := 0
	err := policy.Do(context.Background(), StepTagging, func(ctx context.Context) error {
		calls++
		return &ProviderUnavailableError{Step: StepTagging, Err: errors.New("timeout")}
	})
	assert.True(t, IsProviderUnavailable(err))
	assert.Equal(t, 3, calls)
}

func TestRetryPolicyDoesNotRetryProcessingErrors(t *testing.T) {
	policy := RetryPolicy{Attempts: 3, sleep: noSleep}
	calls := 0
	err := policy.Do(context.Background(), StepTagging, func(ctx context.Context) error {
		calls++
		return newProcessingError(StepTagging, "malformed")
	})
	assert.True(t, IsProcessingError(err))
	assert.Equal(t, 1, calls)
}

func TestRetryPolicyHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	policy := NewRetryPolicy(3, time.Hour, time.Hour)
	calls := 0
	err := policy.Do(ctx, StepBackgroundRemoval, func(ctx context.Context) error {
		calls++
		return &ProviderUnavailableError{Step: StepBackgroundRemoval, Err: errors.New("down")}
	})
	assert.True(t, IsProviderUnavailable(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
