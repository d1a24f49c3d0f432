package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/placefinder/internal/resilience"
)

// maxResponseBytes bounds how much of a search response is read.
const maxResponseBytes = 1 << 20

// searchResult is one element of a Nominatim /search jsonv2 response.
// Coordinates arrive as decimal strings.
type searchResult struct {
	DisplayName string  `json:"display_name"`
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	Address     Address `json:"address"`
}

// searchURL builds the /search request URL for query.
func (g *geocoder) searchURL(query string) string {
	params := url.Values{
		"q":              {query},
		"format":         {"jsonv2"},
		"addressdetails": {"1"},
		"limit":          {strconv.Itoa(g.limit)},
	}
	if len(g.countryCodes) > 0 {
		params.Set("countrycodes", strings.Join(g.countryCodes, ","))
	}
	return g.baseURL + "/search?" + params.Encode()
}

// search performs a single provider round trip.
func (g *geocoder) search(ctx context.Context, query string) ([]Suggestion, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "geocode: rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.searchURL(query), nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: build request")
	}
	req.Header.Set("Accept", "application/json")
	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}
	if g.language != "" {
		req.Header.Set("Accept-Language", g.language)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: search request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		statusErr := eris.Errorf("geocode: search returned status %d", resp.StatusCode)
		if resilience.IsTransientStatus(resp.StatusCode) {
			return nil, resilience.Transient(statusErr, resp.StatusCode)
		}
		return nil, statusErr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, eris.Wrap(err, "geocode: read body")
	}

	suggestions, err := parseSearchResponse(body)
	if err != nil {
		return nil, err
	}

	zap.L().Debug("geocode search",
		zap.String("query", query),
		zap.Int("results", len(suggestions)),
	)
	return suggestions, nil
}

// parseSearchResponse decodes a /search body. Any record with unparsable
// coordinates makes the whole body malformed.
func parseSearchResponse(body []byte) ([]Suggestion, error) {
	var raw []searchResult
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, eris.Wrap(err, "geocode: parse response")
	}

	out := make([]Suggestion, 0, len(raw))
	for i, r := range raw {
		lat, err := strconv.ParseFloat(strings.TrimSpace(r.Lat), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "geocode: result %d latitude", i)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(r.Lon), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "geocode: result %d longitude", i)
		}
		out = append(out, Suggestion{
			DisplayName: r.DisplayName,
			Latitude:    lat,
			Longitude:   lon,
			Address:     r.Address,
		})
	}
	return out, nil
}
