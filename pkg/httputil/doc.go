// Package httputil provides HTTP utilities shared by the fetch path.
//
// # Retry
//
// [Retry] runs an operation with exponential backoff. Only errors wrapped
// with [Retryable] trigger another attempt; any other error is returned
// immediately:
//
//	retries, err := httputil.Retry(ctx, httputil.Policy{MaxRetries: 3}, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    ...
//	})
//
// The delay starts at [DefaultInitialDelay] and doubles after every failed
// attempt, without jitter, so a budget of three retries sleeps 1s, 2s and 4s.
// The budget is a single counter: every retryable failure spends one retry
// regardless of its cause.
//
// # Configuration
//
// Default settings:
//
//   - Max retries: 3
//   - Initial delay: 1 second
//   - Multiplier: 2
//
// Tests inject a [backoff.Timer] through [Policy.Timer] to observe the
// delays without sleeping.
package httputil
