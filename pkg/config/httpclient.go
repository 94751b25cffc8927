package config

import (
	"fmt"
	"net/url"
	"time"
)

// HTTPClientConfig describes an upstream HTTP service.
type HTTPClientConfig struct {
	BaseURL string        `koanf:"baseurl"`
	Timeout time.Duration `koanf:"timeout"`
}

func (c *HTTPClientConfig) String() string {
	return newSection("HTTP Client").field("baseurl", c.BaseURL).field("timeout", c.Timeout).String()
}

func (c *HTTPClientConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("upstream base URL %w", errNotConfigured)
	}
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid upstream base URL: %s", c.BaseURL)
	}
	return positive("upstream timeout", c.Timeout)
}
