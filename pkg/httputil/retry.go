package httputil

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	// DefaultMaxRetries is the retry budget used by the fetch path.
	DefaultMaxRetries = 3

	// DefaultInitialDelay is the first backoff delay.
	DefaultInitialDelay = time.Second

	// maxDelay caps a single delay far above any budget used in practice.
	maxDelay = 24 * time.Hour
)

// RetryableError wraps an error to indicate it should trigger a retry.
// Wrap transient failures (network errors, 429 responses) with this type
// so that [Retry] knows to attempt the operation again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as a RetryableError. Retryable(nil) returns nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable checks if an error is wrapped with RetryableError.
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// Policy configures Retry.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt.
	// Zero or negative disables retrying.
	MaxRetries int

	// InitialDelay is the delay before the first retry. Zero selects
	// DefaultInitialDelay.
	InitialDelay time.Duration

	// Timer drives the waits between attempts. Nil uses real time.
	Timer backoff.Timer

	// Notify, if set, is called before each wait with the failure that
	// caused it, the 1-based retry number and the delay.
	Notify func(err error, retry int, delay time.Duration)
}

// Retry executes fn, retrying errors wrapped with [RetryableError] with
// exponential backoff until fn succeeds, fails permanently, or the retry
// budget runs out. It returns the number of retries performed and the final
// error with any RetryableError wrapper removed. Returns ctx.Err() if the
// context is cancelled while waiting.
func Retry(ctx context.Context, p Policy, fn func() error) (int, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialDelay
	if b.InitialInterval <= 0 {
		b.InitialInterval = DefaultInitialDelay
	}
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = maxDelay
	b.MaxElapsedTime = 0

	var bo backoff.BackOff = &backoff.StopBackOff{}
	if p.MaxRetries > 0 {
		bo = backoff.WithMaxRetries(b, uint64(p.MaxRetries))
	}

	retries := 0
	op := func() error {
		err := fn()
		if err == nil || IsRetryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}
	notify := func(err error, delay time.Duration) {
		retries++
		if p.Notify != nil {
			p.Notify(err, retries, delay)
		}
	}

	err := backoff.RetryNotifyWithTimer(op, backoff.WithContext(bo, ctx), notify, p.Timer)
	var re *RetryableError
	if errors.As(err, &re) {
		err = re.Err
	}
	return retries, err
}
