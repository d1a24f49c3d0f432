package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/placefinder/internal/typeahead"
	"github.com/sells-group/placefinder/pkg/geocode"
)

type stubProvider struct {
	results map[string][]geocode.Suggestion
}

func (p stubProvider) Suggest(_ context.Context, q string) ([]geocode.Suggestion, error) {
	return p.results[q], nil
}

// lockedBuffer lets the change callback and the driver write concurrently.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newDriver(t *testing.T, out io.Writer) (*typeahead.Fetcher, *typeahead.PointerBus) {
	t.Helper()
	p := stubProvider{results: map[string][]geocode.Suggestion{
		"Baner": {{
			DisplayName: "Baner, Pune, Maharashtra, India",
			Latitude:    18.559,
			Longitude:   73.786,
			Address:     geocode.Address{Suburb: "Baner", City: "Pune"},
		}},
	}}
	f := typeahead.New(p,
		typeahead.WithDelay(5*time.Millisecond),
		typeahead.WithOnChange(func(text string, coords *geocode.Coordinates) {
			if coords != nil {
				io.WriteString(out, "value: "+text+"\n") //nolint:errcheck
			}
		}),
	)
	t.Cleanup(f.Close)
	bus := typeahead.NewPointerBus()
	require.NoError(t, f.Attach(bus, typeahead.NewBounds(0, 0, 100, 50)))
	return f, bus
}

func TestRunTypeahead_SelectFlow(t *testing.T) {
	out := &lockedBuffer{}
	f, bus := newDriver(t, out)

	require.NoError(t, runTypeahead(context.Background(), strings.NewReader("Baner\n"), out, f, bus))
	require.Eventually(t, func() bool { return f.State().Open }, time.Second, 5*time.Millisecond)

	script := ":state\n:click 10 10\n:select 0\n:state\n:quit\nignored\n"
	require.NoError(t, runTypeahead(context.Background(), strings.NewReader(script), out, f, bus))

	got := out.String()
	assert.Contains(t, got, "  0. Baner, Pune\n")
	assert.Contains(t, got, "value: Baner, Pune\n")
	assert.Contains(t, got, "panel closed\n")
	assert.Equal(t, "Baner, Pune", f.State().Query)
}

func TestRunTypeahead_OutsideClick(t *testing.T) {
	out := &lockedBuffer{}
	f, bus := newDriver(t, out)

	f.Input("Baner")
	require.Eventually(t, func() bool { return f.State().Open }, time.Second, 5*time.Millisecond)

	require.NoError(t, runTypeahead(context.Background(), strings.NewReader(":click 500 500\n"), out, f, bus))
	assert.False(t, f.State().Open)

	require.NoError(t, runTypeahead(context.Background(), strings.NewReader(":focus\n"), out, f, bus))
	assert.True(t, f.State().Open)
}

func TestRunTypeahead_BadCommands(t *testing.T) {
	out := &lockedBuffer{}
	f, bus := newDriver(t, out)

	script := ":select\n:select x\n:select 3\n:click 1\n:nope\n"
	require.NoError(t, runTypeahead(context.Background(), strings.NewReader(script), out, f, bus))

	got := out.String()
	assert.Equal(t, 2, strings.Count(got, "usage: :select N"))
	assert.Contains(t, got, "error: ")
	assert.Contains(t, got, "usage: :click X Y")
	assert.Contains(t, got, "unknown command :nope")
}

func TestRunTypeahead_NoResults(t *testing.T) {
	out := &lockedBuffer{}
	f, bus := newDriver(t, out)

	f.Input("Nowhere")
	require.Eventually(t, func() bool { return f.State().Open }, time.Second, 5*time.Millisecond)

	require.NoError(t, runTypeahead(context.Background(), strings.NewReader(":state\n"), out, f, bus))
	assert.Contains(t, out.String(), "no results\n")
}
