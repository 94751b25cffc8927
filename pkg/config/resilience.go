package config

import (
	"errors"
	"time"
)

// ResilienceConfig tunes the retrying, circuit-broken outbound transport.
type ResilienceConfig struct {
	Retry          RetryConfig          `koanf:"retry"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuitbreaker"`
}

// RetryConfig bounds exponential backoff. A zero MaxBackoff leaves the
// interval uncapped.
type RetryConfig struct {
	MaxAttempts    uint          `koanf:"maxattempts"`
	InitialBackoff time.Duration `koanf:"initialbackoff"`
	MaxBackoff     time.Duration `koanf:"maxbackoff"`
}

// CircuitBreakerConfig trips the breaker on either ConsecutiveFailures in a
// row or an ErrorRatePercent over at least MinRequests calls.
type CircuitBreakerConfig struct {
	ConsecutiveFailures uint32        `koanf:"consecutivefailures"`
	ErrorRatePercent    int           `koanf:"errorratepercent"`
	MinRequests         uint32        `koanf:"minrequests"`
	OpenTimeout         time.Duration `koanf:"opentimeout"`
}

func (c *ResilienceConfig) String() string {
	r, cb := c.Retry, c.CircuitBreaker
	return newSection("Resilience").
		field("retry.maxattempts", r.MaxAttempts).
		field("retry.initialbackoff", r.InitialBackoff).
		field("retry.maxbackoff", r.MaxBackoff).
		field("circuitbreaker.consecutivefailures", cb.ConsecutiveFailures).
		field("circuitbreaker.errorratepercent", cb.ErrorRatePercent).
		field("circuitbreaker.minrequests", cb.MinRequests).
		field("circuitbreaker.opentimeout", cb.OpenTimeout).
		String()
}

func (c *ResilienceConfig) Validate() error {
	r, cb := c.Retry, c.CircuitBreaker
	switch {
	case r.MaxAttempts == 0:
		return errors.New("retry.maxattempts must be greater than 0")
	case r.MaxBackoff != 0 && r.MaxBackoff < r.InitialBackoff:
		return errors.New("retry.maxbackoff must not be less than retry.initialbackoff")
	case cb.ConsecutiveFailures == 0:
		return errors.New("circuitbreaker.consecutivefailures must be greater than 0")
	case cb.ErrorRatePercent < 0 || cb.ErrorRatePercent > 100:
		return errors.New("circuitbreaker.errorratepercent must be between 0 and 100")
	}
	return firstError(
		positive("retry.initialbackoff", r.InitialBackoff),
		positive("circuitbreaker.opentimeout", cb.OpenTimeout),
	)
}
