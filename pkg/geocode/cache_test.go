package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCache struct {
	mu      sync.Mutex
	entries map[string][]Suggestion
	getErr  error
}

func (c *memCache) Get(_ context.Context, key string) ([]Suggestion, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	s, ok := c.entries[key]
	return s, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, s []Suggestion, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = s
	return nil
}

func TestCacheKey_Normalized(t *testing.T) {
	g := NewClient().(*geocoder)

	assert.Equal(t, g.cacheKey("Baner"), g.cacheKey("  baner "))
	assert.NotEqual(t, g.cacheKey("Baner"), g.cacheKey("Aundh"))
	assert.Len(t, g.cacheKey("Baner"), 64)

	other := NewClient(WithCountryCodes("ae")).(*geocoder)
	assert.NotEqual(t, g.cacheKey("Baner"), other.cacheKey("Baner"))
}

func TestSuggest_ServedFromCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(kharadiResponse)) //nolint:errcheck
	}))
	defer srv.Close()

	cache := &memCache{entries: make(map[string][]Suggestion)}
	g := newTestGeocoder(t, srv, WithCache(cache, time.Hour))

	first, err := g.Suggest(context.Background(), "Kharadi")
	require.NoError(t, err)
	second, err := g.Suggest(context.Background(), "kharadi")
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, first, second)
}

func TestSuggest_CacheReadErrorFallsThrough(t *testing.T) {
	var last *http.Request
	srv := httptest.NewServer(jsonHandler(http.StatusOK, kharadiResponse, &last))
	defer srv.Close()

	cache := &memCache{entries: make(map[string][]Suggestion), getErr: errors.New("cache down")}
	g := newTestGeocoder(t, srv, WithCache(cache, time.Hour))

	got, err := g.Suggest(context.Background(), "Kharadi")
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.NotNil(t, last)
}

func TestPostgresCache_Hit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT suggestions FROM "geocode_suggestion_cache"`).
		WithArgs("abc123").
		WillReturnRows(pgxmock.NewRows([]string{"suggestions"}).
			AddRow([]byte(`[{"display_name":"Baner, Pune","latitude":18.559,"longitude":73.786,"address":{"suburb":"Baner"}}]`)))

	c := NewPostgresCache(mock, "")
	got, ok, err := c.Get(context.Background(), "abc123")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "Baner", got[0].Address.Suburb)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCache_Miss(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT suggestions FROM`).
		WithArgs("nope").
		WillReturnError(pgx.ErrNoRows)

	_, ok, err := NewPostgresCache(mock, "").Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCache_Set(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO "geo"."cache"`).
		WithArgs("abc123", []byte(`[]`), "3600 seconds").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = NewPostgresCache(mock, "geo.cache").Set(context.Background(), "abc123", nil, time.Hour)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCache_Migrate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "geocode_suggestion_cache"`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, NewPostgresCache(mock, "").Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
