package typeahead

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sells-group/placefinder/pkg/geocode"
)

// manualClock fires timers only when the test advances it.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (c *manualClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now + d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves time forward and runs every timer that came due, in order.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.fn()
	}
}

// fakeProvider answers from a fixed table. When gated, each call blocks until
// release(query) is called; ignoreCtx makes it ignore cancellation so stale
// responses really arrive.
type fakeProvider struct {
	mu        sync.Mutex
	calls     []string
	results   map[string][]geocode.Suggestion
	errs      map[string]error
	gated     bool
	ignoreCtx bool
	gates     map[string]chan struct{}
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		results: make(map[string][]geocode.Suggestion),
		errs:    make(map[string]error),
		gates:   make(map[string]chan struct{}),
	}
}

func (p *fakeProvider) gate(query string) chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, ok := p.gates[query]
	if !ok {
		ch = make(chan struct{})
		p.gates[query] = ch
	}
	return ch
}

func (p *fakeProvider) release(query string) { close(p.gate(query)) }

func (p *fakeProvider) Suggest(ctx context.Context, query string) ([]geocode.Suggestion, error) {
	p.mu.Lock()
	p.calls = append(p.calls, query)
	gated, ignoreCtx := p.gated, p.ignoreCtx
	p.mu.Unlock()

	if gated {
		gate := p.gate(query)
		if ignoreCtx {
			<-gate
		} else {
			select {
			case <-gate:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.errs[query]; err != nil {
		return nil, err
	}
	return p.results[query], nil
}

func (p *fakeProvider) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func suburb(name string, lat, lon float64) geocode.Suggestion {
	return geocode.Suggestion{
		DisplayName: name + ", Pune, Maharashtra, India",
		Latitude:    lat,
		Longitude:   lon,
		Address:     geocode.Address{Suburb: name, City: "Pune", State: "Maharashtra"},
	}
}

type change struct {
	text   string
	coords *geocode.Coordinates
}

// recorder collects change callbacks.
type recorder struct {
	mu      sync.Mutex
	changes []change
}

func (r *recorder) onChange(text string, coords *geocode.Coordinates) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, change{text: text, coords: coords})
}

func (r *recorder) all() []change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]change(nil), r.changes...)
}
