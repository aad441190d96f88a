package cache

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// ErrNetwork marks transient backend failures such as timeouts and refused
// connections.
var ErrNetwork = errors.New("network error")

// maxBackoff caps the delay between retries.
const maxBackoff = 2 * time.Second

// RetryableError marks an error as worth another attempt.
type RetryableError struct{ Err error }

// Retryable wraps err so that RetryWithBackoff retries it. Nil stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err was wrapped with Retryable.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// RetryWithBackoff runs fn at most attempts times. Only retryable errors
// trigger another attempt; the delay doubles each time up to maxBackoff and
// gets up to half of itself added as jitter.
// The last error is returned unwrapped.
func RetryWithBackoff(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var err error
	for i := range attempts {
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		t := time.NewTimer(delay + rand.N(delay/2+1))
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay = min(delay*2, maxBackoff)
	}
	var re *RetryableError
	if errors.As(err, &re) {
		return re.Err
	}
	return err
}
