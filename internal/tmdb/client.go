package tmdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"reelmatch/internal/metrics"
)

// Endpoint labels used for metrics and error messages.
const (
	EndpointSearchMovie = "search_movie"
	EndpointMovieImages = "movie_images"
)

// Movie is a single TMDB search match.
type Movie struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	ReleaseDate   string  `json:"release_date"`
	PosterPath    string  `json:"poster_path"`
	Popularity    float64 `json:"popularity"`
}

// SearchResponse models the TMDB paginated search response.
type SearchResponse struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// Image is one entry of a movie's image listing.
type Image struct {
	FilePath    string  `json:"file_path"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Language    string  `json:"iso_639_1"`
	VoteAverage float64 `json:"vote_average"`
}

// ImagesResponse models /movie/{id}/images.
type ImagesResponse struct {
	ID        int64   `json:"id"`
	Posters   []Image `json:"posters"`
	Backdrops []Image `json:"backdrops"`
}

// Searcher defines the TMDB operations used by poster resolution.
type Searcher interface {
	SearchMovie(ctx context.Context, query string) (*SearchResponse, error)
	MovieImages(ctx context.Context, movieID int64) (*ImagesResponse, error)
}

// Credentials holds either a v4 read access token or a v3 api key. The token
// wins when both are set.
type Credentials struct {
	ReadAccessToken string
	APIKey          string
}

// StatusError reports a non-200 TMDB response.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Latency    time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb %s returned %d (latency=%v)", strings.ReplaceAll(e.Endpoint, "_", " "), e.StatusCode, e.Latency)
}

// Temporary reports whether retrying later could succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client provides access to the TMDB API.
type Client struct {
	token      string
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[struct{}]
}

var _ Searcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithRateLimiter paces outbound requests. Callers block until a token is
// available or their context ends.
func WithRateLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// WithCircuitBreaker routes every request through cb. See NewCircuitBreaker.
func WithCircuitBreaker(cb *gobreaker.CircuitBreaker[struct{}]) Option {
	return func(c *Client) {
		c.breaker = cb
	}
}

// New creates a TMDB client.
func New(creds Credentials, baseURL, language string, opts ...Option) (*Client, error) {
	token := strings.TrimSpace(creds.ReadAccessToken)
	apiKey := strings.TrimSpace(creds.APIKey)
	if token == "" && apiKey == "" {
		return nil, errors.New("tmdb read access token or api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		token:      token,
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchMovie searches TMDB for the supplied title.
func (c *Client) SearchMovie(ctx context.Context, query string) (*SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := url.Values{}
	params.Set("query", query)
	if c.language != "" {
		params.Set("language", c.language)
	}
	var payload SearchResponse
	if err := c.get(ctx, EndpointSearchMovie, "/search/movie", params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// MovieImages lists every image TMDB holds for a movie. No language filter is
// applied so textless and foreign posters are included.
func (c *Client) MovieImages(ctx context.Context, movieID int64) (*ImagesResponse, error) {
	if movieID <= 0 {
		return nil, errors.New("movie id must be positive")
	}
	var payload ImagesResponse
	if err := c.get(ctx, EndpointMovieImages, fmt.Sprintf("/movie/%d/images", movieID), url.Values{}, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) get(ctx context.Context, endpointName, path string, params url.Values, out any) error {
	if c.breaker == nil {
		return c.do(ctx, endpointName, path, params, out)
	}
	_, err := c.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, c.do(ctx, endpointName, path, params, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.CircuitBreakerRequests.WithLabelValues(c.breaker.Name(), "rejected").Inc()
		return fmt.Errorf("tmdb %s: %w", strings.ReplaceAll(endpointName, "_", " "), err)
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.CircuitBreakerRequests.WithLabelValues(c.breaker.Name(), result).Inc()
	return err
}

func (c *Client) do(ctx context.Context, endpointName, path string, params url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("tmdb rate limit wait: %w", err)
		}
	}
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse tmdb url: %w", err)
	}
	if c.token == "" {
		params.Set("api_key", c.apiKey)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		metrics.RecordTMDBRequest(endpointName, 0, latency)
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()
	metrics.RecordTMDBRequest(endpointName, resp.StatusCode, latency)

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Endpoint: endpointName, StatusCode: resp.StatusCode, Latency: latency}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode tmdb %s response: %w", strings.ReplaceAll(endpointName, "_", " "), err)
	}
	return nil
}
