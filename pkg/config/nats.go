package config

import (
	"fmt"
	"time"
)

// NATSConfig selects the JetStream server product events are published to.
type NATSConfig struct {
	Enabled bool          `koanf:"enabled"`
	Url     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
	Stream  string        `koanf:"stream"`
}

func (c *NATSConfig) String() string {
	return newSection("NATS").
		field("enabled", c.Enabled).
		field("url", c.Url).
		field("timeout", c.Timeout).
		field("stream", c.Stream).
		String()
}

func (c *NATSConfig) Validate() error {
	switch {
	case !c.Enabled:
		return nil
	case c.Url == "":
		return fmt.Errorf("NATS URL %w", errNotConfigured)
	case c.Stream == "":
		return fmt.Errorf("NATS stream %w", errNotConfigured)
	}
	return positive("nats.timeout", c.Timeout)
}
