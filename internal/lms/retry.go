package lms

import (
	"context"
	"time"
)

// Policy configures the retry engine for one class of operation.
type Policy struct {
	// MaxTries is the total number of attempts of the primary operation,
	// 1-based: MaxTries=3 means at most 3 calls.
	MaxTries int
	// InitialDelay is the sleep before the first retry.
	InitialDelay time.Duration
	// BackoffFactor multiplies the delay per attempt: the nth retry sleeps
	// InitialDelay * BackoffFactor^(n-1).
	BackoffFactor float64
	// Retryable lists the kinds worth another attempt.
	Retryable []ErrorKind
	// Fatal lists kinds that propagate immediately. Fatal takes precedence
	// over Retryable when a kind appears in both.
	Fatal []ErrorKind
}

func (p Policy) normalized() Policy {
	if p.MaxTries < 1 {
		p.MaxTries = 1
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = time.Second
	}
	if p.BackoffFactor < 1 {
		p.BackoffFactor = 1
	}
	return p
}

func containsKind(kinds []ErrorKind, k ErrorKind) bool {
	for _, kind := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}

// sleep is swapped out in tests to observe exact backoff sequences.
var sleep = sleepContext

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Do runs op under policy p. Failures must already be classified (*Error);
// anything unclassified propagates immediately. When fallback is non-nil it
// is attempted exactly once, after the first failed attempt; a successful
// fallback short-circuits the remaining retries, a failed one is discarded
// and the primary operation continues retrying.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error), fallback func(context.Context) (T, error)) (T, error) {
	p = p.normalized()

	var zero T
	var lastErr error

	for attempt := 0; attempt < p.MaxTries; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		ce, ok := AsClassified(err)
		if !ok {
			return zero, err
		}
		if containsKind(p.Fatal, ce.Kind) {
			return zero, err
		}
		if !containsKind(p.Retryable, ce.Kind) {
			return zero, err
		}
		lastErr = err

		if attempt < p.MaxTries-1 {
			delay := backoffDelay(p, attempt)
			if ce.Kind == KindRateLimited {
				// Give a rate-limiting server extra room before hammering it.
				delay *= 2
			}
			if err := sleep(ctx, delay); err != nil {
				return zero, err
			}

			if attempt == 0 && fallback != nil {
				if result, err := fallback(ctx); err == nil {
					return result, nil
				}
				// Fallback failure is discarded; the primary path continues.
			}
		}
	}

	return zero, lastErr
}

func backoffDelay(p Policy, attempt int) time.Duration {
	delay := float64(p.InitialDelay)
	for i := 0; i < attempt; i++ {
		delay *= p.BackoffFactor
	}
	return time.Duration(delay)
}
