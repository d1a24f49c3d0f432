// Package typeahead turns a stream of keystrokes into throttled geocoding
// lookups and tracks the suggestion panel a location input shows.
package typeahead

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/placefinder/pkg/geocode"
)

// Defaults for the debounce window and the shortest query sent to the provider.
const (
	DefaultDelay     = 300 * time.Millisecond
	DefaultMinLength = 3
)

var (
	// ErrClosed is returned by operations on a torn-down Fetcher.
	ErrClosed = eris.New("typeahead: fetcher closed")
	// ErrNoSuggestion is returned when selecting an index that is not shown.
	ErrNoSuggestion = eris.New("typeahead: no such suggestion")
)

// Provider looks up suggestions for a query. geocode.Client satisfies it.
type Provider interface {
	Suggest(ctx context.Context, query string) ([]geocode.Suggestion, error)
}

// ChangeFunc receives the committed text. coords is nil for keystrokes and
// set when a suggestion is selected.
type ChangeFunc func(text string, coords *geocode.Coordinates)

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithDelay sets the quiet period after the last keystroke before a lookup.
func WithDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.delay = d
		}
	}
}

// WithMinLength sets the minimum query length, in characters, worth a lookup.
func WithMinLength(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.minLength = n
		}
	}
}

// WithClock replaces the timer source.
func WithClock(c Clock) Option {
	return func(f *Fetcher) {
		f.clock = c
	}
}

// WithOnChange registers the caller callback.
func WithOnChange(fn ChangeFunc) Option {
	return func(f *Fetcher) {
		f.onChange = fn
	}
}

// WithTimeout bounds each provider call.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// State is a snapshot of what the input component shows.
type State struct {
	Query     string           `json:"query"`
	Options   []geocode.Option `json:"options"`
	Loading   bool             `json:"loading"`
	Open      bool             `json:"open"`
	NoResults bool             `json:"no_results"`
}

// Fetcher is the controller behind one location input. Every state change is
// serialized through mu, so callers may drive it from any goroutine.
//
// Each provider call is tagged with a generation. Only the response for the
// most recently issued call is applied; an older call is cancelled when a
// newer one starts and its response is dropped if it still arrives.
type Fetcher struct {
	provider  Provider
	clock     Clock
	delay     time.Duration
	minLength int
	timeout   time.Duration
	onChange  ChangeFunc

	ctx      context.Context
	shutdown context.CancelFunc
	inflight sync.WaitGroup

	mu          sync.Mutex
	query       string
	timer       Timer
	timerSeq    uint64
	generation  uint64
	cancelCall  context.CancelFunc
	suggestions []geocode.Suggestion
	loading     bool
	open        bool
	closed      bool
	detach      []func()
}

// New creates a Fetcher backed by provider.
func New(provider Provider, opts ...Option) *Fetcher {
	ctx, cancel := context.WithCancel(context.Background())
	f := &Fetcher{
		provider:  provider,
		clock:     RealClock{},
		delay:     DefaultDelay,
		minLength: DefaultMinLength,
		ctx:       ctx,
		shutdown:  cancel,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Input commits text as the current query and restarts the debounce timer.
// The change callback sees the text immediately.
func (f *Fetcher) Input(text string) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.query = text
	f.stopTimerLocked()
	seq := f.timerSeq
	f.timer = f.clock.AfterFunc(f.delay, func() { f.fire(seq) })
	onChange := f.onChange
	f.mu.Unlock()

	if onChange != nil {
		onChange(text, nil)
	}
}

// fire runs when the debounce timer seq elapses.
func (f *Fetcher) fire(seq uint64) {
	f.mu.Lock()
	if f.closed || seq != f.timerSeq {
		f.mu.Unlock()
		return
	}
	f.timer = nil

	// Any earlier call is superseded either way.
	f.generation++
	f.cancelCallLocked()

	query := f.query
	if utf8.RuneCountInString(query) < f.minLength {
		f.suggestions = nil
		f.loading = false
		f.mu.Unlock()
		return
	}

	gen := f.generation
	var ctx context.Context
	var cancel context.CancelFunc
	if f.timeout > 0 {
		ctx, cancel = context.WithTimeout(f.ctx, f.timeout)
	} else {
		ctx, cancel = context.WithCancel(f.ctx)
	}
	f.cancelCall = cancel
	f.loading = true
	f.inflight.Add(1)
	f.mu.Unlock()

	go f.fetch(ctx, cancel, gen, query)
}

func (f *Fetcher) fetch(ctx context.Context, cancel context.CancelFunc, gen uint64, query string) {
	defer f.inflight.Done()
	defer cancel()

	results, err := f.provider.Suggest(ctx, query)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || gen != f.generation {
		zap.L().Debug("typeahead: dropping stale response",
			zap.String("query", query),
			zap.Uint64("generation", gen),
			zap.Uint64("latest", f.generation),
		)
		return
	}

	f.cancelCall = nil
	f.loading = false
	f.open = true
	if err != nil {
		zap.L().Warn("typeahead: suggestion lookup failed",
			zap.String("query", query),
			zap.Error(err),
		)
		f.suggestions = nil
		return
	}
	f.suggestions = results
}

// Select commits the label of the suggestion at index, reports it with its
// coordinates to the change callback, and closes the panel.
func (f *Fetcher) Select(index int) (geocode.Option, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return geocode.Option{}, ErrClosed
	}
	if index < 0 || index >= len(f.suggestions) {
		n := len(f.suggestions)
		f.mu.Unlock()
		return geocode.Option{}, eris.Wrapf(ErrNoSuggestion, "index %d of %d", index, n)
	}

	opt := geocode.Format(f.suggestions[index])
	f.query = opt.Label
	f.stopTimerLocked()
	f.generation++
	f.cancelCallLocked()
	f.loading = false
	f.open = false
	f.suggestions = nil
	onChange := f.onChange
	f.mu.Unlock()

	if onChange != nil {
		onChange(opt.Label, &geocode.Coordinates{Latitude: opt.Latitude, Longitude: opt.Longitude})
	}
	return opt, nil
}

// Dismiss closes the panel and keeps the current suggestions.
func (f *Fetcher) Dismiss() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
}

// Focus reopens the panel if there are suggestions to show.
func (f *Fetcher) Focus() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed && len(f.suggestions) > 0 {
		f.open = true
	}
}

// Attach listens on bus for presses outside bounds and closes the panel when
// one lands. The listener is removed by Close.
func (f *Fetcher) Attach(bus *PointerBus, bounds *geom.Bounds) error {
	unsubscribe := bus.Subscribe(func(ev PointerEvent) {
		if !contains(bounds, ev) {
			f.Dismiss()
		}
	})

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		unsubscribe()
		return ErrClosed
	}
	f.detach = append(f.detach, unsubscribe)
	f.mu.Unlock()
	return nil
}

// State returns a snapshot of the component state.
func (f *Fetcher) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	st := State{
		Query:   f.query,
		Options: geocode.FormatAll(f.suggestions),
		Loading: f.loading,
		Open:    f.open,
	}
	st.NoResults = f.open && !f.loading && len(f.suggestions) == 0 &&
		utf8.RuneCountInString(f.query) >= f.minLength
	return st
}

// Close tears the Fetcher down: the pending timer is stopped, any provider
// call is cancelled, and every listener is removed. Close waits for in-flight
// calls to return and is safe to call more than once.
func (f *Fetcher) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	f.stopTimerLocked()
	f.cancelCallLocked()
	f.loading = false
	f.open = false
	detach := f.detach
	f.detach = nil
	f.mu.Unlock()

	for _, d := range detach {
		d()
	}
	f.shutdown()
	f.inflight.Wait()
}

// stopTimerLocked cancels the pending debounce timer. Bumping timerSeq also
// voids a timer whose callback is already running.
func (f *Fetcher) stopTimerLocked() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.timerSeq++
}

func (f *Fetcher) cancelCallLocked() {
	if f.cancelCall != nil {
		f.cancelCall()
		f.cancelCall = nil
	}
}
