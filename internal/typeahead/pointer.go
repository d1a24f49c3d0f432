package typeahead

import (
	"sync"

	"github.com/twpayne/go-geom"
)

// PointerKind distinguishes mouse from touch input.
type PointerKind int

const (
	// Mouse is a mouse-down.
	Mouse PointerKind = iota
	// Touch is a touch-start.
	Touch
)

// PointerEvent is a pointer or touch press at screen coordinates.
type PointerEvent struct {
	X    float64     `json:"x"`
	Y    float64     `json:"y"`
	Kind PointerKind `json:"kind"`
}

// PointerBus fans pointer events out to registered listeners. It stands in
// for the document-level listener a browser component registers.
type PointerBus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(PointerEvent)
}

// NewPointerBus creates an empty bus.
func NewPointerBus() *PointerBus {
	return &PointerBus{subs: make(map[int]func(PointerEvent))}
}

// Subscribe registers fn and returns a function that removes it. The
// returned function is safe to call more than once.
func (b *PointerBus) Subscribe(fn func(PointerEvent)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers ev to every listener registered at the time of the call.
// Listeners run outside the bus lock so they may unsubscribe themselves.
func (b *PointerBus) Publish(ev PointerEvent) {
	b.mu.RLock()
	fns := make([]func(PointerEvent), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Len returns the number of registered listeners.
func (b *PointerBus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// NewBounds returns the screen rectangle a component occupies.
func NewBounds(minX, minY, maxX, maxY float64) *geom.Bounds {
	return geom.NewBounds(geom.XY).Set(minX, minY, maxX, maxY)
}

// contains reports whether ev landed on or inside bounds.
func contains(bounds *geom.Bounds, ev PointerEvent) bool {
	return bounds.OverlapsPoint(geom.XY, geom.Coord{ev.X, ev.Y})
}
