// Package resilience guards calls to the external geocoding provider with
// retries and a circuit breaker.
package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// BreakerState is the state of a Breaker.
type BreakerState int

const (
	// Closed lets calls through.
	Closed BreakerState = iota
	// Open rejects calls until the cooldown elapses.
	Open
	// HalfOpen lets one probe through to test recovery.
	HalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned without calling the provider while the breaker is open.
var ErrCircuitOpen = eris.New("resilience: circuit open")

// Breaker stops hammering a provider that keeps failing. After Threshold
// consecutive failures it opens for Cooldown, then admits a single probe.
type Breaker struct {
	name      string
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu       sync.Mutex
	state    BreakerState
	failures int
	openedAt time.Time
	probing  bool
}

// NewBreaker creates a Breaker. Non-positive values fall back to 5 failures
// and a 30s cooldown.
func NewBreaker(name string, threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &Breaker{
		name:      name,
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// State reports the current state, accounting for an elapsed cooldown.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == Open && b.now().Sub(b.openedAt) >= b.cooldown {
		return HalfOpen
	}
	return b.state
}

// Guard runs fn through b. A nil breaker runs fn directly.
func Guard[T any](ctx context.Context, b *Breaker, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if b == nil {
		return fn(ctx)
	}
	if err := b.admit(); err != nil {
		return zero, err
	}
	val, err := fn(ctx)
	b.record(ctx, err)
	return val, err
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return ErrCircuitOpen
		}
		b.setState(HalfOpen)
		b.probing = true
		return nil
	case HalfOpen:
		if b.probing {
			return ErrCircuitOpen
		}
		b.probing = true
	}
	return nil
}

func (b *Breaker) record(ctx context.Context, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.probing = false

	// A caller abandoning its own request says nothing about provider health.
	if err != nil && ctx.Err() != nil {
		if b.state == HalfOpen {
			b.setState(Open)
			b.openedAt = b.now()
		}
		return
	}

	if err == nil {
		b.failures = 0
		if b.state != Closed {
			b.setState(Closed)
		}
		return
	}

	b.failures++
	if b.state == HalfOpen || b.failures >= b.threshold {
		b.setState(Open)
		b.openedAt = b.now()
	}
}

func (b *Breaker) setState(to BreakerState) {
	if b.state == to {
		return
	}
	zap.L().Info("circuit breaker state change",
		zap.String("name", b.name),
		zap.Stringer("from", b.state),
		zap.Stringer("to", to),
	)
	b.state = to
}
