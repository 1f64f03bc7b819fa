package tmdb

import (
	"errors"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"reelmatch/internal/logging"
	"reelmatch/internal/metrics"
)

// BreakerName labels the TMDB circuit breaker in logs and metrics.
const BreakerName = "tmdb-api"

// NewCircuitBreaker builds the breaker used by WithCircuitBreaker.
//
// It opens once at least 10 requests in a one minute window have seen a 60%
// failure rate, stays open for two minutes, then lets 3 trial requests
// through. Only transport errors, 429 and 5xx responses count as failures; a
// 404 from TMDB is an answer, not an outage.
func NewCircuitBreaker(logger *slog.Logger) *gobreaker.CircuitBreaker[struct{}] {
	logger = logging.NewComponentLogger(logger, "tmdb")
	metrics.CircuitBreakerState.WithLabelValues(BreakerName).Set(0)

	return gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        BreakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				return !statusErr.Temporary()
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			if to == gobreaker.StateOpen {
				logging.WarnWithContext(logger, "tmdb circuit breaker opened", "tmdb_circuit_open",
					logging.String("from", from.String()),
					logging.String("to", to.String()),
					logging.String(logging.FieldErrorHint, "check TMDB availability and credentials"),
					logging.String(logging.FieldImpact, "posters fall back to the placeholder until TMDB recovers"),
				)
				return
			}
			logger.Info("tmdb circuit breaker state change",
				logging.String("from", from.String()),
				logging.String("to", to.String()),
				logging.String(logging.FieldEventType, "tmdb_circuit_state"),
			)
		},
	})
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
