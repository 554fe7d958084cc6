package coach

import (
	"context"
	"time"
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the real-time Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RetryPolicy bounds the attempts made for one reply. Rate-limited
// attempts wait BaseDelay<<attempt, any other failure waits FailureDelay.
type RetryPolicy struct {
	MaxAttempts  int
	BaseDelay    time.Duration
	FailureDelay time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second, FailureDelay: time.Second}
}

func (p RetryPolicy) rateLimitDelay(attempt int) time.Duration {
	return p.BaseDelay << uint(attempt)
}
