package resilience

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// RetryPolicy configures Retry. Delays grow as InitialDelay * Multiplier^(attempt-1).
type RetryPolicy struct {
	Attempts     int
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	// ShouldRetry classifies a failed attempt. Nil retries every error.
	ShouldRetry func(err error) bool
	// OnRetry runs before each backoff wait.
	OnRetry func(attempt int, delay time.Duration, err error)
	Sleep   Sleeper
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:     3,
		InitialDelay: time.Second,
		Multiplier:   2,
		MaxDelay:     time.Minute,
	}
}

func normalizeRetryPolicy(p RetryPolicy) RetryPolicy {
	defaults := DefaultRetryPolicy()
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = defaults.InitialDelay
	}
	if p.Multiplier < 1 {
		p.Multiplier = defaults.Multiplier
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = defaults.MaxDelay
	}
	if p.Sleep == nil {
		p.Sleep = SleepContext
	}
	return p
}

func (p RetryPolicy) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialDelay
	b.Multiplier = p.Multiplier
	b.MaxInterval = p.MaxDelay
	b.RandomizationFactor = 0
	b.Reset()
	return b
}

// Retry runs fn until it succeeds, the policy gives up or ctx is done.
// Attempts are sequential and there is no wait after the last one.
// When ctx ends during a wait, ctx.Err() is returned.
func Retry[T any](ctx context.Context, policy RetryPolicy, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var zero T
	p := normalizeRetryPolicy(policy)
	delays := p.backOff()

	var lastErr error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		out, err := fn(ctx, attempt)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if attempt == p.Attempts {
			break
		}
		if p.ShouldRetry != nil && !p.ShouldRetry(err) {
			break
		}

		delay := delays.NextBackOff()
		if p.OnRetry != nil {
			p.OnRetry(attempt, delay, err)
		}
		if err := p.Sleep(ctx, delay); err != nil {
			return zero, err
		}
	}

	return zero, lastErr
}

func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
