package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/placefinder/internal/catalog"
	"github.com/sells-group/placefinder/internal/config"
	"github.com/sells-group/placefinder/internal/db"
	"github.com/sells-group/placefinder/internal/location"
	"github.com/sells-group/placefinder/internal/resilience"
	"github.com/sells-group/placefinder/pkg/geocode"
)

// initGeocoder builds the provider client from config. The returned func
// releases the cache pool, if one was opened.
func initGeocoder(ctx context.Context, c config.GeocodeConfig) (geocode.Client, func(), error) {
	opts := []geocode.ClientOption{
		geocode.WithBaseURL(c.BaseURL),
		geocode.WithUserAgent(c.UserAgent),
		geocode.WithLanguage(c.Language),
		geocode.WithCountryCodes(c.CountryCodes...),
		geocode.WithLimit(c.Limit),
		geocode.WithRateLimit(c.RateLimit),
		geocode.WithRetry(resilience.RetryPolicy{
			MaxAttempts: c.Retry.MaxAttempts,
			BaseDelay:   time.Duration(c.Retry.BaseDelayMS) * time.Millisecond,
			MaxDelay:    time.Duration(c.Retry.MaxDelayMS) * time.Millisecond,
			Jitter:      0.2,
		}),
	}
	if c.TimeoutSecs > 0 {
		opts = append(opts, geocode.WithTimeout(c.Timeout()))
	}
	if c.Circuit.Threshold > 0 {
		opts = append(opts, geocode.WithBreaker(resilience.NewBreaker(
			"geocode", c.Circuit.Threshold, time.Duration(c.Circuit.CooldownSecs)*time.Second,
		)))
	}

	closeFn := func() {}
	if c.Cache.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, c.Cache.DatabaseURL, nil)
		if err != nil {
			return nil, nil, eris.Wrap(err, "open geocode cache")
		}
		cache := geocode.NewPostgresCache(pool, c.Cache.Table)
		if err := cache.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		opts = append(opts, geocode.WithCache(cache, c.Cache.TTL()))
		closeFn = pool.Close
	}
	return geocode.NewClient(opts...), closeFn, nil
}

// initClassifier uses the configured gazetteer file, or the embedded one.
func initClassifier(c config.LocationConfig) (*location.Classifier, error) {
	if c.GazetteerPath == "" {
		return location.Default(), nil
	}
	g, err := location.LoadGazetteer(c.GazetteerPath)
	if err != nil {
		return nil, err
	}
	return location.NewClassifier(g), nil
}

// initCatalog opens the configured catalog, or returns nil when none is set.
func initCatalog(ctx context.Context, c config.CatalogConfig) (catalog.Source, error) {
	if c.Driver == "" {
		return nil, nil
	}
	src, err := catalog.Open(ctx, c)
	if err != nil {
		return nil, eris.Wrap(err, "open catalog")
	}
	return src, nil
}
