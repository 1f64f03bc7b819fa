package poster

import (
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"reelmatch/internal/config"
	"reelmatch/internal/tmdb"
)

// NewFromConfig wires a Resolver with a rate-limited, circuit-broken TMDB
// client. store may be nil. Missing credentials yield a placeholder-only
// resolver rather than an error.
func NewFromConfig(cfg *config.Config, logger *slog.Logger, store Store) (*Resolver, error) {
	opts := []Option{
		WithLogger(logger),
		WithCacheSize(cfg.Poster.CacheSize),
		WithImageBaseURL(cfg.TMDB.ImageBaseURL),
		WithPlaceholderURL(cfg.Poster.PlaceholderURL),
	}
	if store != nil {
		opts = append(opts, WithStore(store))
	}
	if !cfg.HasTMDBCredentials() {
		return NewResolver(nil, opts...)
	}

	clientOpts := []tmdb.Option{
		tmdb.WithTimeout(time.Duration(cfg.TMDB.TimeoutSeconds) * time.Second),
		tmdb.WithCircuitBreaker(tmdb.NewCircuitBreaker(logger)),
	}
	if cfg.TMDB.RequestsPerSecond > 0 {
		clientOpts = append(clientOpts, tmdb.WithRateLimiter(rate.NewLimiter(rate.Limit(cfg.TMDB.RequestsPerSecond), cfg.TMDB.Burst)))
	}
	client, err := tmdb.New(tmdb.Credentials{
		ReadAccessToken: cfg.TMDB.ReadAccessToken,
		APIKey:          cfg.TMDB.APIKey,
	}, cfg.TMDB.BaseURL, cfg.TMDB.Language, clientOpts...)
	if err != nil {
		return nil, err
	}
	return NewResolver(client, opts...)
}
