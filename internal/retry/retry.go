// Package retry implements the attempt-bounded exponential-backoff-with
// -jitter policy shared by the RPC facade and the warehouse adapter. The
// shape follows the retry loop in the teacher's L1 syncer (getSequencedLogs
// retry counter + sleep), generalized into a reusable executor.
package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/ledgerwatch/log/v3"
)

// Config parameterizes the backoff schedule.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Exponent    float64
}

// Default matches spec: 8 attempts, 1s base, 60s cap, exponent 2.0.
var Default = Config{
	MaxAttempts: 8,
	BaseDelay:   time.Second,
	MaxDelay:    60 * time.Second,
	Exponent:    2.0,
}

// Op is a parameterless fallible operation.
type Op[T any] func(ctx context.Context) (T, error)

// Do invokes op until it succeeds or attempts are exhausted, sleeping
// jittered(delay) between failures where delay grows by Exponent each
// round, capped at MaxDelay. "label" is logged with each retry/exhaustion
// message so callers can tell which logical call is retrying.
func Do[T any](ctx context.Context, cfg Config, label string, op Op[T]) (T, error) {
	var zero T
	delay := cfg.BaseDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		if cause, ok := AsTerminal(err); ok {
			return zero, cause
		}

		if attempt == cfg.MaxAttempts {
			log.Error(fmt.Sprintf("[retry] %s: attempts exhausted", label), "attempts", attempt, "err", err)
			return zero, err
		}

		wait := jittered(delay)
		log.Warn(fmt.Sprintf("[retry] %s: attempt failed, retrying", label), "attempt", attempt, "wait", wait, "err", err)

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(wait):
		}

		delay = time.Duration(float64(delay) * cfg.Exponent)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return zero, fmt.Errorf("%s: unreachable retry exhaustion", label)
}

// jittered implements "equal jitter": d + random_uniform(0, d).
func jittered(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + time.Duration(rand.Int63n(int64(d)+1))
}

// terminalError marks an error as non-retryable: Do returns it on the
// first occurrence instead of continuing the backoff schedule. Used for
// errors like -32008 (trace too large) that no number of retries will fix.
type terminalError struct{ err error }

func (t *terminalError) Error() string { return t.err.Error() }
func (t *terminalError) Unwrap() error { return t.err }

// Terminal wraps err so that Do stops retrying immediately and returns it.
func Terminal(err error) error { return &terminalError{err: err} }

// AsTerminal reports whether err (or anything it wraps) was produced by
// Terminal, returning the unwrapped cause.
func AsTerminal(err error) (error, bool) {
	var t *terminalError
	if ok := asTerminal(err, &t); ok {
		return t.err, true
	}
	return nil, false
}

func asTerminal(err error, target **terminalError) bool {
	for err != nil {
		if t, ok := err.(*terminalError); ok {
			*target = t
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
