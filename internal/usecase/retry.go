package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// RetryPolicy retries a failed call Retries extra times, waiting attempt² × Backoff in between.
type RetryPolicy struct {
	Retries int
	Backoff time.Duration
}

// Do runs fn until it succeeds, retryable reports false, attempts run out or ctx is done.
func (p RetryPolicy) Do(ctx context.Context, log *slog.Logger, fn func() error, retryable func(error) bool) error {
	attempts := p.Retries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*attempt) * p.Backoff
			if log != nil {
				log.Warn("retrying", "attempt", attempt+1, "of", attempts, "backoff", backoff, "error", lastErr)
			}
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("retry aborted: %w (last error: %v)", ctx.Err(), lastErr)
			case <-timer.C:
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if retryable != nil && !retryable(err) {
			return err
		}
	}

	if attempts == 1 {
		return lastErr
	}
	return fmt.Errorf("all %d attempts failed, last error: %w", attempts, lastErr)
}
