// Package resilience wraps an http.RoundTripper with a circuit breaker and a
// retry policy for transient upstream failures.
package resilience

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/abgdnv/shopadmin/pkg/config"
	"github.com/cenkalti/backoff/v5"
	"github.com/sony/gobreaker/v2"
)

// Transport runs every attempt through the breaker. Network errors and
// 502/503/504 answers are retried with exponential backoff, but only for
// idempotent methods; a POST is attempted once.
//
// When retries are exhausted on a transient status the last response is
// returned as is, so callers can still read the upstream error body.
type Transport struct {
	next    http.RoundTripper
	breaker *gobreaker.CircuitBreaker[*http.Response]
	retry   config.RetryConfig
}

// NewTransport wraps next. A nil next means http.DefaultTransport.
func NewTransport(next http.RoundTripper, name string, cfg config.ResilienceConfig) *Transport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Transport{
		next:    next,
		breaker: NewCircuitBreaker(name, cfg.CircuitBreaker),
		retry:   cfg.Retry,
	}
}

// State exposes the breaker state for readiness reporting.
func (t *Transport) State() gobreaker.State {
	return t.breaker.State()
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	maxTries := t.retry.MaxAttempts
	if !isIdempotent(req.Method) || maxTries == 0 {
		maxTries = 1
	}

	var (
		attempt int
		last    *http.Response
	)
	operation := func() (*http.Response, error) {
		if last != nil {
			discard(last)
			last = nil
		}
		attemptReq, err := rewind(req, attempt)
		attempt++
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		resp, err := t.breaker.Execute(func() (*http.Response, error) {
			resp, err := t.next.RoundTrip(attemptReq)
			if err != nil {
				return nil, err
			}
			if isTransientStatus(resp.StatusCode) {
				return resp, &transientStatusError{code: resp.StatusCode}
			}
			return resp, nil
		})
		if err == nil {
			return resp, nil
		}
		if IsOpen(err) {
			return nil, backoff.Permanent(err)
		}
		var statusErr *transientStatusError
		if errors.As(err, &statusErr) {
			last = resp
		}
		return nil, err
	}

	resp, err := backoff.Retry(req.Context(), operation,
		backoff.WithBackOff(t.newBackOff()),
		backoff.WithMaxTries(maxTries),
	)
	if err == nil {
		return resp, nil
	}
	if last != nil {
		return last, nil
	}
	return nil, err
}

func (t *Transport) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	if t.retry.InitialBackoff > 0 {
		b.InitialInterval = t.retry.InitialBackoff
	}
	if t.retry.MaxBackoff > 0 {
		b.MaxInterval = t.retry.MaxBackoff
	}
	return b
}

// rewind returns the request to send for the given attempt. Attempts after
// the first need a fresh body from GetBody.
func rewind(req *http.Request, attempt int) (*http.Request, error) {
	if attempt == 0 || req.Body == nil || req.Body == http.NoBody {
		return req, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("cannot retry %s %s: request body is not replayable", req.Method, req.URL)
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("failed to rewind request body: %w", err)
	}
	clone := req.Clone(req.Context())
	clone.Body = body
	return clone, nil
}

func isIdempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions:
		return true
	default:
		return false
	}
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
