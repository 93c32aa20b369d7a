// Package retry provides a bounded retry combinator with a pluggable delay.
package retry

import (
	"context"
	"time"
)

// DelayFunc returns how long to wait after the given failed attempt
// (1-based) before the next one.
type DelayFunc func(attempt int) time.Duration

// Linear waits attempt*base between attempts: base, 2*base, 3*base, ...
func Linear(base time.Duration) DelayFunc {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * base
	}
}

// Do calls fn up to attempts times, sleeping delay(n) after the n-th failure.
// It stops early when fn succeeds or when ctx is done. The returned error is
// the last one fn produced, or ctx.Err() if the context ended during a wait.
func Do(ctx context.Context, attempts int, delay DelayFunc, fn func(context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for n := 1; n <= attempts; n++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if ctx.Err() != nil || n == attempts {
			break
		}
		var wait time.Duration
		if delay != nil {
			wait = delay(n)
		}
		if wait <= 0 {
			continue
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}
