package library

import (
	"context"
	"errors"
	"time"
)

// Network backends get a few chances to come up before Open gives up.
var (
	connectAttempts = 3
	connectDelay    = 250 * time.Millisecond
)

// transientError marks a failure that may succeed on a later attempt,
// such as a refused connection while a server is still starting.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// retry runs fn up to attempts times, doubling delay after each transient
// failure. Any other error ends the loop at once. The returned error never
// carries the transient marker.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var last error
	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		var te *transientError
		if !errors.As(err, &te) {
			return err
		}
		last = te.err
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return last
}

// ping retries check until it succeeds or attempts run out.
func ping(ctx context.Context, check func(context.Context) error) error {
	return retry(ctx, connectAttempts, connectDelay, func() error {
		if err := check(ctx); err != nil {
			return &transientError{err}
		}
		return nil
	})
}
