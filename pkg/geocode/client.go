// Package geocode turns free-text place queries into suggestions using a
// Nominatim-compatible search API, and shapes those suggestions into short
// labels for selection menus.
package geocode

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/sells-group/placefinder/internal/resilience"
)

// DefaultBaseURL is the public OpenStreetMap Nominatim instance.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// DefaultLimit caps the number of suggestions per query.
const DefaultLimit = 5

// Client looks up place suggestions for a free-text query.
type Client interface {
	// Suggest returns up to the configured number of places matching query.
	Suggest(ctx context.Context, query string) ([]Suggestion, error)
}

// ClientOption configures the geocoder.
type ClientOption func(*geocoder)

// WithBaseURL points the client at a different Nominatim-compatible server.
func WithBaseURL(u string) ClientOption {
	return func(g *geocoder) {
		if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
			g.baseURL = u
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(g *geocoder) {
		g.httpClient = hc
	}
}

// WithTimeout sets the per-request HTTP timeout. It applies to whichever
// HTTP client is in effect once all options have run, without mutating a
// client passed to WithHTTPClient.
func WithTimeout(d time.Duration) ClientOption {
	return func(g *geocoder) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithRateLimit sets the requests-per-second ceiling for search calls.
func WithRateLimit(rps float64) ClientOption {
	return func(g *geocoder) {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithCountryCodes restricts results to the given ISO 3166-1 alpha-2 codes.
func WithCountryCodes(codes ...string) ClientOption {
	return func(g *geocoder) {
		g.countryCodes = g.countryCodes[:0]
		for _, c := range codes {
			if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
				g.countryCodes = append(g.countryCodes, c)
			}
		}
	}
}

// WithLimit caps the number of results requested per query.
func WithLimit(n int) ClientOption {
	return func(g *geocoder) {
		if n > 0 {
			g.limit = n
		}
	}
}

// WithUserAgent sets the User-Agent header, which Nominatim's usage policy requires.
func WithUserAgent(ua string) ClientOption {
	return func(g *geocoder) {
		g.userAgent = ua
	}
}

// WithLanguage sets the Accept-Language header for localized names.
func WithLanguage(lang string) ClientOption {
	return func(g *geocoder) {
		g.language = lang
	}
}

// WithRetry sets the retry policy for transient provider failures.
func WithRetry(p resilience.RetryPolicy) ClientOption {
	return func(g *geocoder) {
		g.retry = p
	}
}

// WithBreaker guards provider calls with a circuit breaker.
func WithBreaker(b *resilience.Breaker) ClientOption {
	return func(g *geocoder) {
		g.breaker = b
	}
}

type geocoder struct {
	httpClient   *http.Client
	baseURL      string
	userAgent    string
	language     string
	countryCodes []string
	limit        int
	limiter      *rate.Limiter
	retry        resilience.RetryPolicy
	breaker      *resilience.Breaker
	cache        Cache
	cacheTTL     time.Duration
	timeout      time.Duration
}

// NewClient creates a geocoding Client. By default it searches India only,
// returns five results and stays within Nominatim's one request per second.
func NewClient(opts ...ClientOption) Client {
	g := &geocoder{
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		baseURL:      DefaultBaseURL,
		userAgent:    "placefinder/1.0",
		language:     "en",
		countryCodes: []string{"in"},
		limit:        DefaultLimit,
		limiter:      rate.NewLimiter(1, 1),
		retry:        resilience.DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.httpClient == nil {
		g.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if g.timeout > 0 {
		hc := *g.httpClient
		hc.Timeout = g.timeout
		g.httpClient = &hc
	}
	g.retry.Name = "geocode"
	return g
}

// Suggest implements Client. A blank query returns no suggestions without
// calling the provider.
func (g *geocoder) Suggest(ctx context.Context, query string) ([]Suggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	key := g.cacheKey(query)
	if cached, ok := g.checkCache(ctx, key); ok {
		return cached, nil
	}

	results, err := resilience.Guard(ctx, g.breaker, func(ctx context.Context) ([]Suggestion, error) {
		return resilience.Retry(ctx, g.retry, func(ctx context.Context) ([]Suggestion, error) {
			return g.search(ctx, query)
		})
	})
	if err != nil {
		return nil, err
	}
	g.storeCache(ctx, key, results)
	return results, nil
}
