package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// RetryPolicy controls how many times a provider call is attempted and how
// long to wait between attempts.
type RetryPolicy struct {
	// MaxAttempts counts the first try. 1 disables retries.
	MaxAttempts int
	// BaseDelay is the wait before the first retry; it doubles afterwards.
	BaseDelay time.Duration
	// MaxDelay caps a single wait.
	MaxDelay time.Duration
	// Jitter randomizes each wait by ±Jitter of its value (0..1).
	Jitter float64
	// Retryable overrides IsTransient when set.
	Retryable func(error) bool
	// Name labels retry log lines.
	Name string
}

// DefaultRetryPolicy suits interactive lookups: one quick retry, no long stalls.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 2,
		BaseDelay:   250 * time.Millisecond,
		MaxDelay:    2 * time.Second,
		Jitter:      0.2,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 250 * time.Millisecond
	}
	if p.MaxDelay < p.BaseDelay {
		p.MaxDelay = p.BaseDelay
	}
	if p.Jitter < 0 {
		p.Jitter = 0
	}
	if p.Retryable == nil {
		p.Retryable = IsTransient
	}
	return p
}

// Delay returns the wait before retry number attempt (1-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	p = p.normalized()
	d := float64(p.BaseDelay) * math.Pow(2, float64(attempt-1))
	if d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	if p.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * d * p.Jitter
	}
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}

// Retry runs fn until it succeeds, returns a non-retryable error, the policy
// runs out of attempts, or ctx is done. The last error is returned.
func Retry[T any](ctx context.Context, p RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	p = p.normalized()

	var zero T
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil || !p.Retryable(err) || attempt == p.MaxAttempts {
			break
		}

		zap.L().Debug("retrying provider call",
			zap.String("name", p.Name),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		timer := time.NewTimer(p.Delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}
	return zero, lastErr
}
