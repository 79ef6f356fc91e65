// Package resilience provides the fixed-attempt retry used around identity-provider calls.
package resilience

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// Retry runs fn up to attempts times, doubling the delay from base after each failure.
// The last error is returned once attempts are exhausted or ctx is done.
func Retry(ctx context.Context, attempts uint64, base time.Duration, fn func(ctx context.Context) error) error {
	if attempts == 0 {
		attempts = 1
	}
	backoff := retry.WithMaxRetries(attempts-1, retry.NewExponential(base))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}
