package geocode

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/sells-group/placefinder/internal/resilience"
)

// newTestLimiter creates a rate limiter that effectively does not limit for tests.
func newTestLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Inf, 1)
}

// newTestGeocoder returns a geocoder pointed at srv with no throttling and
// millisecond retry backoff.
func newTestGeocoder(t *testing.T, srv *httptest.Server, opts ...ClientOption) *geocoder {
	t.Helper()
	base := []ClientOption{
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()),
		WithRetry(resilience.RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond}),
	}
	g := NewClient(append(base, opts...)...).(*geocoder)
	g.limiter = newTestLimiter()
	return g
}

// jsonHandler serves body with status for every request and records the last request.
func jsonHandler(status int, body string, last **http.Request) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if last != nil {
			*last = r
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}
