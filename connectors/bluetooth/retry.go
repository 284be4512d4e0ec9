package bluetooth

import (
	"context"
	"fmt"
	"time"
)

// retryConstant calls fn until it succeeds, at most attempts times with delay in between
func retryConstant(ctx context.Context, attempts int, delay time.Duration, fn func() error, onError func(attempt int, err error)) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if onError != nil {
			onError(attempt, err)
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("giving up after %d attempts: %w", attempts, err)
}
