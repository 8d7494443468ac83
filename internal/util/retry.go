package util

import (
	"context"
	"fmt"
	"time"
)

// Retry calls fn up to attempts times, doubling the delay between failures
// starting from baseDelay. It stops early when fn succeeds or the context is
// done. attempts must be at least 1.
func Retry(ctx context.Context, attempts int, baseDelay time.Duration, fn func() error) error {
	var lastErr error
	delay := baseDelay
	for i := 0; i < attempts; i++ {
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("giving up after %d attempts: %w", attempts, lastErr)
}
