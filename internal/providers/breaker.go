package providers

import (
	"errors"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/lumiflix/lumiflix/internal/models"
)

// newBreaker builds the circuit breaker shared by the provider clients.
// The circuit opens after a 60% failure rate over at least 10 requests,
// stays open for 2 minutes, then lets 3 probe requests through.
func newBreaker(name string, logger *slog.Logger) *gobreaker.CircuitBreaker[[]byte] {
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
}

// mapBreakerError folds breaker rejections and transport failures into the
// service error taxonomy. A rejected request means the provider is known to
// be down, so callers see ErrUnavailable rather than ErrUpstream.
func mapBreakerError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return models.ErrUnavailable
	}
	if errors.Is(err, models.ErrUpstream) || errors.Is(err, models.ErrNotFound) {
		return err
	}
	return models.ErrUpstream
}
