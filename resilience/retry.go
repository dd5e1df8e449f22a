package resilience

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/kbukum/apptemplate/logger"
)

// ErrMaxRetriesExceeded is wrapped by the error returned once every attempt
// has failed.
var ErrMaxRetriesExceeded = errors.New("max retries exceeded")

// Policy describes how a call is retried.
type Policy struct {
	// Attempts is the total number of calls, including the first. Values
	// below 1 mean a single call.
	Attempts int
	// Delay is the wait after the first failure.
	Delay time.Duration
	// Factor multiplies the wait after every further failure. Values at or
	// below 1 keep the wait constant.
	Factor float64
	// MaxDelay caps the grown wait. Zero means no cap.
	MaxDelay time.Duration
	// Jitter randomizes each wait by up to this fraction (0.0 to 1.0).
	Jitter float64
	// RetryIf reports whether a failure may be retried. Defaults to
	// DefaultRetryIf.
	RetryIf func(error) bool
	// OnFailure runs after each failed attempt, before the wait.
	OnFailure func(attempt int, err error, wait time.Duration)
	// WaitAfterLast also waits after the final failed attempt.
	WaitAfterLast bool
}

// Constant returns a policy making retries+1 attempts with a fixed delay.
func Constant(retries int, delay time.Duration) Policy {
	return Policy{Attempts: max(retries, 0) + 1, Delay: delay}
}

// Exponential returns a policy doubling the delay from initial up to maxDelay
// with 10% jitter.
func Exponential(attempts int, initial, maxDelay time.Duration) Policy {
	return Policy{
		Attempts: attempts,
		Delay:    initial,
		Factor:   2.0,
		MaxDelay: maxDelay,
		Jitter:   0.1,
	}
}

// DefaultRetryIf retries all errors except context cancellation.
func DefaultRetryIf(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Retry calls fn until it succeeds, fails with an error RetryIf rejects, the
// attempts run out, or ctx ends. A rejected error is returned as is; running
// out returns an error wrapping ErrMaxRetriesExceeded and the last failure.
func Retry[T any](ctx context.Context, p Policy, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	attempts := max(p.Attempts, 1)
	retryIf := p.RetryIf
	if retryIf == nil {
		retryIf = DefaultRetryIf
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !retryIf(err) {
			return zero, err
		}

		last := attempt == attempts
		wait := p.wait(attempt)
		if p.OnFailure != nil {
			p.OnFailure(attempt, err, wait)
		}
		if last && !p.WaitAfterLast {
			break
		}
		if err := Sleep(ctx, wait); err != nil {
			return zero, err
		}
	}

	return zero, fmt.Errorf("%w after %d attempt(s): %w", ErrMaxRetriesExceeded, attempts, lastErr)
}

// wait returns the delay following the given failed attempt.
func (p Policy) wait(attempt int) time.Duration {
	d := float64(p.Delay)
	if p.Factor > 1 {
		d *= math.Pow(p.Factor, float64(attempt-1))
	}
	if p.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * d * p.Jitter
	}
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	if d < 0 {
		return 0
	}
	return time.Duration(d)
}

// ManagedCall runs fn up to retryCount+1 times, sleeping retryDelay after
// every failed attempt. Each failure is logged as a warning. When all
// attempts fail the returned error wraps ErrMaxRetriesExceeded and the last
// failure.
func ManagedCall[T any](ctx context.Context, fn func(ctx context.Context) (T, error), retryCount int, retryDelay time.Duration) (T, error) {
	return ManagedCallIf(ctx, fn, retryCount, retryDelay, func(error) bool { return true })
}

// ManagedCallIf is ManagedCall retrying only the failures retryIf accepts.
// A rejected failure is logged and returned as is, without a delay.
func ManagedCallIf[T any](ctx context.Context, fn func(ctx context.Context) (T, error), retryCount int, retryDelay time.Duration, retryIf func(error) bool) (T, error) {
	log := logger.Get("resilience")

	p := Constant(retryCount, retryDelay)
	p.RetryIf = retryIf
	p.WaitAfterLast = true
	p.OnFailure = func(attempt int, err error, wait time.Duration) {
		log.Warn(fmt.Sprintf("Call failed. Retrying in %g sec(s)", wait.Seconds()), map[string]interface{}{
			logger.FieldAttempt: attempt,
			logger.FieldError:   err.Error(),
		})
	}

	result, err := Retry(ctx, p, fn)
	switch {
	case err == nil:
	case errors.Is(err, ErrMaxRetriesExceeded):
		log.Error(err.Error())
		log.Trace()
	case ctx.Err() == nil:
		log.Error("Call failed, not retrying", map[string]interface{}{logger.FieldError: err.Error()})
	}
	return result, err
}

// Sleep blocks for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
