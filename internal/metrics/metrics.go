package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Poster lookup outcomes.
const (
	PosterCacheHit    = "cache_hit"
	PosterStoreHit    = "store_hit"
	PosterResolved    = "resolved"
	PosterPlaceholder = "placeholder"
)

// Recommendation outcomes.
const (
	RecommendOK         = "ok"
	RecommendEmptyInput = "empty_input"
	RecommendNotFound   = "not_found"
	RecommendError      = "error"
)

var (
	// Recommendation metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_recommend_requests_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"},
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reelmatch_recommend_duration_seconds",
			Help:    "End-to-end recommendation latency including poster resolution",
			Buckets: prometheus.DefBuckets,
		},
	)

	CatalogTitles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelmatch_catalog_titles",
			Help: "Number of titles in the loaded catalog",
		},
	)

	// Poster metrics
	PosterLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_poster_lookups_total",
			Help: "Total number of poster lookups by outcome",
		},
		[]string{"outcome"}, // "cache_hit", "store_hit", "resolved", "placeholder"
	)

	PosterFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_poster_failures_total",
			Help: "Poster lookups that fell back to the placeholder, by reason",
		},
		[]string{"reason"}, // "no_results", "no_image", "upstream_error"
	)

	// TMDB client metrics
	TMDBRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_tmdb_requests_total",
			Help: "Total number of TMDB API requests by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)

	TMDBRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelmatch_tmdb_request_duration_seconds",
			Help:    "Duration of TMDB API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reelmatch_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_api_requests_total",
			Help: "Total number of HTTP API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelmatch_api_request_duration_seconds",
			Help:    "Duration of HTTP API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)
)

// RecordRecommend records one recommendation request.
func RecordRecommend(outcome string, duration time.Duration) {
	RecommendRequests.WithLabelValues(outcome).Inc()
	RecommendDuration.Observe(duration.Seconds())
}

// RecordPosterLookup records how a poster lookup was answered.
func RecordPosterLookup(outcome string) {
	PosterLookups.WithLabelValues(outcome).Inc()
}

// RecordPosterFailure records why a poster lookup fell back to the placeholder.
func RecordPosterFailure(reason string) {
	PosterFailures.WithLabelValues(reason).Inc()
}

// RecordTMDBRequest records a TMDB call. status is 0 when the request never
// produced a response.
func RecordTMDBRequest(endpoint string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	TMDBRequests.WithLabelValues(endpoint, label).Inc()
	TMDBRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordAPIRequest records an HTTP API request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// SetCatalogTitles publishes the loaded catalog size.
func SetCatalogTitles(n int) {
	CatalogTitles.Set(float64(n))
}
