package geocode

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/placefinder/internal/db"
)

// DefaultCacheTable holds cached search responses.
const DefaultCacheTable = "geocode_suggestion_cache"

// Cache stores provider responses by query key.
type Cache interface {
	// Get returns the cached suggestions. ok is false on a miss or expiry.
	Get(ctx context.Context, key string) (suggestions []Suggestion, ok bool, err error)
	Set(ctx context.Context, key string, suggestions []Suggestion, ttl time.Duration) error
}

// WithCache serves repeated queries from c for ttl.
func WithCache(c Cache, ttl time.Duration) ClientOption {
	return func(g *geocoder) {
		g.cache = c
		g.cacheTTL = ttl
	}
}

// cacheKey returns SHA-256 hex of the normalized query and the request
// parameters that change the response.
func (g *geocoder) cacheKey(query string) string {
	normalized := fmt.Sprintf("%s|%s|%d|%s",
		strings.ToLower(strings.TrimSpace(query)),
		strings.Join(g.countryCodes, ","),
		g.limit,
		g.language,
	)
	h := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", h)
}

func (g *geocoder) checkCache(ctx context.Context, key string) ([]Suggestion, bool) {
	if g.cache == nil {
		return nil, false
	}
	s, ok, err := g.cache.Get(ctx, key)
	if err != nil {
		zap.L().Warn("geocode: cache read failed", zap.Error(err))
		return nil, false
	}
	if ok {
		zap.L().Debug("geocode cache hit", zap.String("key", key[:12]))
	}
	return s, ok
}

func (g *geocoder) storeCache(ctx context.Context, key string, s []Suggestion) {
	if g.cache == nil || g.cacheTTL <= 0 {
		return
	}
	if err := g.cache.Set(ctx, key, s, g.cacheTTL); err != nil {
		zap.L().Warn("geocode: cache write failed", zap.Error(err))
	}
}

// PostgresCache is a Cache backed by a Postgres table.
type PostgresCache struct {
	pool  db.Pool
	table string
}

// NewPostgresCache stores entries in table, or DefaultCacheTable when blank.
func NewPostgresCache(pool db.Pool, table string) *PostgresCache {
	if table == "" {
		table = DefaultCacheTable
	}
	return &PostgresCache{pool: pool, table: db.Identifier(table)}
}

// Migrate creates the cache table if it does not exist.
func (c *PostgresCache) Migrate(ctx context.Context) error {
	_, err := c.pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			query_hash  TEXT PRIMARY KEY,
			suggestions JSONB NOT NULL,
			cached_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
			expires_at  TIMESTAMPTZ NOT NULL
		)`, c.table))
	if err != nil {
		return eris.Wrap(err, "geocode: migrate cache")
	}
	return nil
}

// Get implements Cache.
func (c *PostgresCache) Get(ctx context.Context, key string) ([]Suggestion, bool, error) {
	var payload []byte
	err := c.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT suggestions FROM %s WHERE query_hash = $1 AND expires_at > now()", c.table),
		key,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "geocode: read cache")
	}

	var s []Suggestion
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, false, eris.Wrap(err, "geocode: decode cache entry")
	}
	return s, true, nil
}

// Set implements Cache.
func (c *PostgresCache) Set(ctx context.Context, key string, s []Suggestion, ttl time.Duration) error {
	if s == nil {
		s = []Suggestion{}
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return eris.Wrap(err, "geocode: encode cache entry")
	}
	_, err = c.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (query_hash, suggestions, cached_at, expires_at)
		VALUES ($1, $2, now(), now() + $3::interval)
		ON CONFLICT (query_hash) DO UPDATE SET
			suggestions = EXCLUDED.suggestions,
			cached_at = EXCLUDED.cached_at,
			expires_at = EXCLUDED.expires_at`, c.table),
		key, payload, fmt.Sprintf("%d seconds", int64(ttl.Seconds())),
	)
	if err != nil {
		return eris.Wrap(err, "geocode: store cache")
	}
	return nil
}
