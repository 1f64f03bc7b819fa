package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"reelmatch/internal/logging"
	"reelmatch/internal/metrics"
	"reelmatch/internal/services"
	"reelmatch/internal/similarity"
)

// DefaultK is used when a request asks for zero recommendations.
const DefaultK = 5

// PosterResolver resolves a canonical title to a poster URL. It must not fail.
type PosterResolver interface {
	ResolvePoster(ctx context.Context, title string) string
}

// Item is one recommended title.
type Item struct {
	Title     string  `json:"title"`
	Score     float64 `json:"score"`
	PosterURL string  `json:"poster_url,omitempty"`
}

// Result is the answer to a recommendation request.
type Result struct {
	Query string `json:"query"`
	Title string `json:"title"`
	Items []Item `json:"items"`
}

// Request carries per-call options.
type Request struct {
	Query       string
	K           int
	SkipPosters bool
}

// Service answers recommendation requests.
type Service struct {
	index       *similarity.Index
	posters     PosterResolver
	defaultK    int
	concurrency int
	logger      *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithDefaultK sets the k used when a request passes zero.
func WithDefaultK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.defaultK = k
		}
	}
}

// WithConcurrency bounds parallel poster lookups per request. One keeps them
// sequential.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService builds a Service. posters may be nil to disable poster lookups.
func NewService(index *similarity.Index, posters PosterResolver, opts ...Option) *Service {
	s := &Service{
		index:       index,
		posters:     posters,
		defaultK:    DefaultK,
		concurrency: 1,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "recommend")
	return s
}

// Index exposes the similarity index for search and health reporting.
func (s *Service) Index() *similarity.Index {
	return s.index
}

// PostersEnabled reports whether poster lookups are configured.
func (s *Service) PostersEnabled() bool {
	return s.posters != nil
}

// Recommend resolves query to a catalog title and returns its k nearest
// neighbours with posters. A blank query fails with services.ErrEmptyInput
// and an unmatched one with services.ErrNotFound.
func (s *Service) Recommend(ctx context.Context, query string, k int) (Result, error) {
	return s.Execute(ctx, Request{Query: query, K: k})
}

// Execute is Recommend with per-call options.
func (s *Service) Execute(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	result, err := s.execute(ctx, req)
	metrics.RecordRecommend(outcome(err), time.Since(start))

	logger := logging.WithContext(ctx, s.logger)
	if err != nil {
		logger.Debug("recommendation failed",
			logging.String("query", req.Query),
			logging.Error(err),
			logging.String(logging.FieldEventType, "recommend_failed"),
		)
		return Result{}, err
	}
	logger.Debug("recommendations served",
		logging.String(logging.FieldTitle, result.Title),
		logging.Int("count", len(result.Items)),
		logging.Duration("elapsed", time.Since(start)),
		logging.String(logging.FieldEventType, "recommend_served"),
	)
	return result, nil
}

func (s *Service) execute(ctx context.Context, req Request) (Result, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return Result{}, services.Wrap(services.ErrEmptyInput, "recommend", "recommend", "please enter a movie name", nil)
	}
	k := req.K
	if k == 0 {
		k = s.defaultK
	}
	if k < 0 {
		return Result{}, services.Wrap(services.ErrValidation, "recommend", "recommend", fmt.Sprintf("k must be positive, got %d", k), nil)
	}

	title, err := s.index.ResolveTitle(query)
	if err != nil {
		return Result{}, err
	}
	scored, err := s.index.Recommend(title, k)
	if err != nil {
		return Result{}, err
	}

	items := make([]Item, len(scored))
	for i, sc := range scored {
		items[i] = Item{Title: sc.Title, Score: sc.Score}
	}
	if s.posters != nil && !req.SkipPosters {
		if err := s.attachPosters(ctx, items); err != nil {
			return Result{}, err
		}
	}
	return Result{Query: query, Title: title, Items: items}, nil
}

func (s *Service) attachPosters(ctx context.Context, items []Item) error {
	ctx = services.WithOperation(ctx, "resolve_posters")
	if s.concurrency <= 1 {
		for i := range items {
			if err := ctx.Err(); err != nil {
				return err
			}
			items[i].PosterURL = s.posters.ResolvePoster(ctx, items[i].Title)
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			items[i].PosterURL = s.posters.ResolvePoster(gctx, items[i].Title)
			return nil
		})
	}
	return g.Wait()
}

// Poster resolves a single poster. The query is matched against the catalog
// first so the cache sees canonical titles; an unmatched query is looked up
// as typed.
func (s *Service) Poster(ctx context.Context, query string) (string, string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", "", services.Wrap(services.ErrEmptyInput, "recommend", "poster", "please enter a movie name", nil)
	}
	title := query
	if resolved, err := s.index.ResolveTitle(query); err == nil {
		title = resolved
	}
	if s.posters == nil {
		return title, "", nil
	}
	return title, s.posters.ResolvePoster(ctx, title), nil
}

// PosterForgetter is implemented by resolvers that can drop a cached poster.
type PosterForgetter interface {
	Forget(ctx context.Context, title string) (bool, error)
}

// ForgetPoster drops the cached poster for query's canonical title (or the
// raw query when it does not match). It reports whether anything was cached.
func (s *Service) ForgetPoster(ctx context.Context, query string) (string, bool, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", false, services.Wrap(services.ErrEmptyInput, "recommend", "forget poster", "please enter a movie name", nil)
	}
	title := query
	if resolved, err := s.index.ResolveTitle(query); err == nil {
		title = resolved
	}
	forgetter, ok := s.posters.(PosterForgetter)
	if !ok {
		return title, false, nil
	}
	removed, err := forgetter.Forget(ctx, title)
	if err != nil {
		return title, false, services.Wrap(services.ErrTransient, "recommend", "forget poster", "poster cache removal failed", err)
	}
	return title, removed, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.RecommendOK
	case errors.Is(err, services.ErrEmptyInput):
		return metrics.RecommendEmptyInput
	case errors.Is(err, services.ErrNotFound):
		return metrics.RecommendNotFound
	default:
		return metrics.RecommendError
	}
}
