package poster

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"reelmatch/internal/logging"
	"reelmatch/internal/metrics"
	"reelmatch/internal/services"
	"reelmatch/internal/tmdb"
)

// Failure reasons reported in logs and metrics.
const (
	ReasonNoResults     = "no_results"
	ReasonNoImage       = "no_image"
	ReasonUpstreamError = "upstream_error"
)

const (
	// DefaultPlaceholderURL is shown when no poster can be found.
	DefaultPlaceholderURL = "https://via.placeholder.com/300x450?text=No+Image"
	// DefaultImageBaseURL prefixes TMDB poster paths.
	DefaultImageBaseURL = "https://image.tmdb.org/t/p/w500"
	// DefaultCacheSize bounds the in-memory cache.
	DefaultCacheSize = 200
)

// Store is the persistent cache tier. posterstore.Store satisfies it.
type Store interface {
	Get(ctx context.Context, title string) (string, bool, error)
	Put(ctx context.Context, title, posterURL string) error
	Remove(ctx context.Context, title string) (bool, error)
}

// Resolver resolves poster URLs. It is safe for concurrent use.
type Resolver struct {
	searcher     tmdb.Searcher
	store        Store
	cache        *lru.Cache[string, string]
	cacheSize    int
	imageBaseURL string
	placeholder  string
	logger       *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithStore enables the persistent cache tier.
func WithStore(store Store) Option {
	return func(r *Resolver) {
		r.store = store
	}
}

// WithCacheSize sets the LRU capacity. Zero disables in-memory caching.
func WithCacheSize(size int) Option {
	return func(r *Resolver) {
		if size >= 0 {
			r.cacheSize = size
		}
	}
}

// WithImageBaseURL overrides the prefix joined to TMDB file paths.
func WithImageBaseURL(base string) Option {
	return func(r *Resolver) {
		if base = strings.TrimRight(strings.TrimSpace(base), "/"); base != "" {
			r.imageBaseURL = base
		}
	}
}

// WithPlaceholderURL overrides the fallback image.
func WithPlaceholderURL(placeholder string) Option {
	return func(r *Resolver) {
		if placeholder = strings.TrimSpace(placeholder); placeholder != "" {
			r.placeholder = placeholder
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver builds a resolver. A nil searcher puts the resolver in
// placeholder-only mode.
func NewResolver(searcher tmdb.Searcher, opts ...Option) (*Resolver, error) {
	r := &Resolver{
		searcher:     searcher,
		cacheSize:    DefaultCacheSize,
		imageBaseURL: DefaultImageBaseURL,
		placeholder:  DefaultPlaceholderURL,
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "poster")
	if r.cacheSize > 0 {
		cache, err := lru.New[string, string](r.cacheSize)
		if err != nil {
			return nil, err
		}
		r.cache = cache
	}
	if r.searcher == nil {
		logging.WarnWithContext(r.logger, "tmdb credentials missing; posters disabled", "poster_placeholder_only",
			logging.String(logging.FieldErrorHint, "set tmdb.read_access_token or TMDB_TOKEN"),
			logging.String(logging.FieldImpact, "every recommendation shows the placeholder image"),
		)
	}
	return r, nil
}

// PlaceholderURL returns the fallback image URL.
func (r *Resolver) PlaceholderURL() string {
	return r.placeholder
}

// IsPlaceholder reports whether url is the fallback image.
func (r *Resolver) IsPlaceholder(url string) bool {
	return url == r.placeholder
}

// CacheLen returns the number of in-memory entries.
func (r *Resolver) CacheLen() int {
	if r.cache == nil {
		return 0
	}
	return r.cache.Len()
}

// ResolvePoster returns a poster URL for title, or the placeholder. Results,
// placeholders included, are cached in memory keyed by the exact title.
func (r *Resolver) ResolvePoster(ctx context.Context, title string) string {
	if strings.TrimSpace(title) == "" {
		return r.placeholder
	}
	if r.cache != nil {
		if url, ok := r.cache.Get(title); ok {
			metrics.RecordPosterLookup(metrics.PosterCacheHit)
			return url
		}
	}
	logger := logging.WithContext(services.WithTitle(ctx, title), r.logger)

	if r.store != nil {
		url, ok, err := r.store.Get(ctx, title)
		switch {
		case err != nil:
			logger.Debug("poster store lookup failed", logging.Error(err))
		case ok:
			r.remember(title, url)
			metrics.RecordPosterLookup(metrics.PosterStoreHit)
			return url
		}
	}

	if r.searcher == nil {
		r.remember(title, r.placeholder)
		metrics.RecordPosterLookup(metrics.PosterPlaceholder)
		return r.placeholder
	}

	url, reason, err := r.fetch(ctx, title)
	if reason != "" {
		metrics.RecordPosterFailure(reason)
		metrics.RecordPosterLookup(metrics.PosterPlaceholder)
		if reason == ReasonUpstreamError {
			logging.WarnWithContext(logger, "poster lookup failed", "poster_upstream_error",
				logging.Error(err),
				logging.String("reason", reason),
				logging.String(logging.FieldErrorHint, "check TMDB connectivity and credentials"),
				logging.String(logging.FieldImpact, "placeholder image shown"),
			)
		} else {
			logger.Debug("no poster available",
				logging.String("reason", reason),
				logging.String(logging.FieldEventType, "poster_"+reason),
			)
		}
		if ctx.Err() == nil {
			r.remember(title, r.placeholder)
		}
		return r.placeholder
	}

	r.remember(title, url)
	metrics.RecordPosterLookup(metrics.PosterResolved)
	if r.store != nil {
		if err := r.store.Put(ctx, title, url); err != nil {
			logger.Debug("poster store write failed", logging.Error(err))
		}
	}
	return url
}

// Forget drops title from the in-memory cache and the persistent store so the
// next lookup goes back to TMDB. It reports whether either tier held it.
func (r *Resolver) Forget(ctx context.Context, title string) (bool, error) {
	var forgotten bool
	if r.cache != nil {
		forgotten = r.cache.Remove(title)
	}
	if r.store == nil {
		return forgotten, nil
	}
	removed, err := r.store.Remove(ctx, title)
	if err != nil {
		return forgotten, err
	}
	return forgotten || removed, nil
}

func (r *Resolver) remember(title, url string) {
	if r.cache != nil {
		r.cache.Add(title, url)
	}
}

// fetch performs the TMDB lookup. A non-empty reason means the placeholder
// should be used.
func (r *Resolver) fetch(ctx context.Context, title string) (string, string, error) {
	resp, err := r.searcher.SearchMovie(ctx, title)
	if err != nil {
		return "", ReasonUpstreamError, err
	}
	if resp == nil || len(resp.Results) == 0 {
		return "", ReasonNoResults, nil
	}
	first := resp.Results[0]
	if first.PosterPath != "" {
		return r.imageURL(first.PosterPath), "", nil
	}
	if first.ID <= 0 {
		return "", ReasonNoImage, nil
	}

	images, err := r.searcher.MovieImages(ctx, first.ID)
	if err != nil {
		var statusErr *tmdb.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return "", ReasonNoImage, nil
		}
		return "", ReasonUpstreamError, err
	}
	if images == nil || len(images.Posters) == 0 || images.Posters[0].FilePath == "" {
		return "", ReasonNoImage, nil
	}
	return r.imageURL(images.Posters[0].FilePath), "", nil
}

func (r *Resolver) imageURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return r.imageBaseURL + path
}
