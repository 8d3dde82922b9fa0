// Package httputil provides shared HTTP helpers for provider lookups and
// artifact downloads: a bounded retry loop and the error wrapper that
// drives it.
package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError wraps an error to indicate it should trigger a retry.
// Wrap transient failures (network timeouts, 5xx responses, empty bodies)
// with this type so that [Retry] knows to attempt the operation again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry executes fn up to attempts times with a fixed delay between
// attempts. It only retries errors wrapped with [RetryableError]; other
// errors are returned immediately. Returns the last error if all attempts
// fail, or ctx.Err() if cancelled while waiting.
//
// Downloads are strictly single-flight per dependency, so the delay stays
// fixed rather than growing: the loop is bounded and short by design of
// the caller, not by backoff growth.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return lastErr
}

// IsRetryable reports whether err is wrapped with [RetryableError]
// anywhere in its chain.
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
