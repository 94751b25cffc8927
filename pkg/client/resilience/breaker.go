package resilience

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/abgdnv/shopadmin/pkg/config"
	"github.com/sony/gobreaker/v2"
)

// transientStatusError marks an upstream answer that signals a temporary
// outage rather than a problem with the request.
type transientStatusError struct {
	code int
}

func (e *transientStatusError) Error() string {
	return fmt.Sprintf("upstream responded with %d %s", e.code, http.StatusText(e.code))
}

// isTransientStatus reports whether the status code is worth retrying and
// counts against the breaker.
func isTransientStatus(code int) bool {
	switch code {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// NewCircuitBreaker builds the breaker guarding one upstream.
// It trips after more than cfg.ConsecutiveFailures consecutive failures, or
// when the error rate exceeds cfg.ErrorRatePercent once more than
// cfg.MinRequests requests were counted. Only network errors and transient
// statuses count as failures; a 404 or 400 is the upstream working correctly.
func NewCircuitBreaker(name string, cfg config.CircuitBreakerConfig) *gobreaker.CircuitBreaker[*http.Response] {
	minRequests := cfg.MinRequests
	if minRequests == 0 {
		minRequests = cfg.ConsecutiveFailures
	}
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures > cfg.ConsecutiveFailures {
				return true
			}
			if cfg.ErrorRatePercent <= 0 || counts.Requests <= minRequests {
				return false
			}
			total := counts.TotalSuccesses + counts.TotalFailures
			return float64(counts.TotalFailures)/float64(total)*100 > float64(cfg.ErrorRatePercent)
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
	}
	return gobreaker.NewCircuitBreaker[*http.Response](st)
}

// IsOpen reports whether err was produced by a breaker refusing the call.
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
