/*
Package resilience provides the retry executor for transient server failures.

# Overview

A Policy value (max retries, base delay, cap, jitter) is consumed by a
Retrier. Delays come from go-retryablehttp's DefaultBackoff, so they double
from the base delay up to the cap and respect Retry-After on 429 and 503.

# Usage

	r := resilience.NewRetrier(resilience.DefaultPolicy())
	r.Sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d) // deterministic tests
		return nil
	}

	err := r.Do(ctx, func(ctx context.Context, attempt int) error {
		return send(ctx)
	})

Only errors of kind errs.KindServer are retried. Timeouts, API errors and
protocol errors end the loop on the first occurrence.
*/
package resilience
