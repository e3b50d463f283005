package pipeline

import (
	"context"
	"errors"
	"time"
)

// ErrRetryable marks stage errors worth another attempt
var ErrRetryable = errors.New("retryable")

// IsRetryable reports whether err matches ErrRetryable or carries a
// Retryable() bool that reports true
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRetryable) {
		return true
	}
	var r interface{ Retryable() bool }
	return errors.As(err, &r) && r.Retryable()
}

// StageFunc runs one stage against a copy of the state
type StageFunc func(ctx context.Context, state State) (Delta, error)

// RetryPolicy bounds retries of a stage
type RetryPolicy struct {
	Attempts int                                              // Including the first call; defaults to 2
	Delay    time.Duration                                    // Fixed delay between attempts; defaults to 1s
	Sleep    func(ctx context.Context, d time.Duration) error // Replaced in tests
	OnRetry  func(attempt int, err error)                     // Called before each retry
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Retry wraps stage so that retryable errors are retried up to the policy
// limit. The last error is returned unchanged once attempts run out.
func Retry(policy RetryPolicy, stage StageFunc) StageFunc {
	if policy.Attempts <= 0 {
		policy.Attempts = 2
	}
	if policy.Delay < 0 {
		policy.Delay = 0
	}
	if policy.Sleep == nil {
		policy.Sleep = sleepContext
	}

	return func(ctx context.Context, state State) (Delta, error) {
		var lastErr error
		for attempt := 1; attempt <= policy.Attempts; attempt++ {
			d, err := stage(ctx, state)
			if err == nil {
				return d, nil
			}
			lastErr = err
			if !IsRetryable(err) || attempt == policy.Attempts || ctx.Err() != nil {
				break
			}
			if policy.OnRetry != nil {
				policy.OnRetry(attempt, err)
			}
			if serr := policy.Sleep(ctx, policy.Delay); serr != nil {
				return Delta{}, serr
			}
		}
		return Delta{}, lastErr
	}
}
