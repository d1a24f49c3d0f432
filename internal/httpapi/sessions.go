package httpapi

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/placefinder/internal/typeahead"
	"github.com/sells-group/placefinder/pkg/geocode"
)

var (
	// ErrSessionNotFound is returned for an unknown or closed session ID.
	ErrSessionNotFound = eris.New("httpapi: session not found")
	// ErrTooManySessions is returned when the session limit is reached.
	ErrTooManySessions = eris.New("httpapi: too many sessions")
)

// Value is the last text committed by a session, with coordinates once a
// suggestion has been selected.
type Value struct {
	Text        string               `json:"text"`
	Coordinates *geocode.Coordinates `json:"coordinates,omitempty"`
}

// Session is one location input driven remotely.
type Session struct {
	ID      string
	fetcher *typeahead.Fetcher
	bus     *typeahead.PointerBus

	mu    sync.Mutex
	value Value

	// lastSeen is guarded by the owning Sessions mutex.
	lastSeen time.Time
}

func (s *Session) setValue(text string, coords *geocode.Coordinates) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = Value{Text: text, Coordinates: coords}
}

// Value returns the last committed value.
func (s *Session) Value() Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Sessions tracks live typeahead sessions sharing one provider.
type Sessions struct {
	provider typeahead.Provider
	opts     []typeahead.Option
	limit    int
	now      func() time.Time

	mu    sync.Mutex
	items map[string]*Session
}

// NewSessions creates a registry allowing at most limit concurrent sessions.
func NewSessions(provider typeahead.Provider, limit int, opts ...typeahead.Option) *Sessions {
	if limit <= 0 {
		limit = 1
	}
	return &Sessions{
		provider: provider,
		opts:     opts,
		limit:    limit,
		now:      time.Now,
		items:    make(map[string]*Session),
	}
}

// Create starts a session whose component occupies bounds.
func (r *Sessions) Create(bounds *geom.Bounds) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) >= r.limit {
		return nil, ErrTooManySessions
	}

	sess := &Session{ID: uuid.NewString(), bus: typeahead.NewPointerBus(), lastSeen: r.now()}
	opts := append(append([]typeahead.Option(nil), r.opts...), typeahead.WithOnChange(sess.setValue))
	sess.fetcher = typeahead.New(r.provider, opts...)
	if err := sess.fetcher.Attach(sess.bus, bounds); err != nil {
		sess.fetcher.Close()
		return nil, eris.Wrap(err, "httpapi: attach session")
	}

	r.items[sess.ID] = sess
	zap.L().Debug("httpapi: session created", zap.String("session", sess.ID))
	return sess, nil
}

// Get looks up a live session and marks it as recently used.
func (r *Sessions) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.items[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.lastSeen = r.now()
	return sess, nil
}

// Delete tears a session down.
func (r *Sessions) Delete(id string) error {
	r.mu.Lock()
	sess, ok := r.items[id]
	delete(r.items, id)
	r.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	sess.fetcher.Close()
	zap.L().Debug("httpapi: session closed", zap.String("session", id))
	return nil
}

// ReapIdle tears down every session not used within ttl and returns how
// many were closed.
func (r *Sessions) ReapIdle(ttl time.Duration) int {
	cutoff := r.now().Add(-ttl)

	r.mu.Lock()
	var idle []*Session
	for id, sess := range r.items {
		if sess.lastSeen.Before(cutoff) {
			idle = append(idle, sess)
			delete(r.items, id)
		}
	}
	r.mu.Unlock()

	for _, sess := range idle {
		sess.fetcher.Close()
		zap.L().Debug("httpapi: idle session reaped", zap.String("session", sess.ID))
	}
	return len(idle)
}

// RunJanitor reaps idle sessions every ttl/2 until ctx is done. A
// non-positive ttl disables reaping.
func (r *Sessions) RunJanitor(ctx context.Context, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.ReapIdle(ttl); n > 0 {
				zap.L().Info("httpapi: reaped idle sessions", zap.Int("count", n), zap.Int("live", r.Len()))
			}
		}
	}
}

// Len returns the number of live sessions.
func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// CloseAll tears down every session.
func (r *Sessions) CloseAll() {
	r.mu.Lock()
	items := r.items
	r.items = make(map[string]*Session)
	r.mu.Unlock()

	for _, sess := range items {
		sess.fetcher.Close()
	}
}
