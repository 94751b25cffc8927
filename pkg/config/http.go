package config

import (
	"fmt"
	"time"
)

// HTTPConfig configures an inbound HTTP server.
type HTTPConfig struct {
	Port           int `koanf:"port"`
	MaxHeaderBytes int `koanf:"maxheaderbytes"`
	Timeout        struct {
		Read       time.Duration `koanf:"read"`
		Write      time.Duration `koanf:"write"`
		Idle       time.Duration `koanf:"idle"`
		ReadHeader time.Duration `koanf:"readheader"`
	} `koanf:"timeout"`
}

func (c *HTTPConfig) String() string {
	return newSection("HTTP Server").
		field("port", c.Port).
		field("maxheaderbytes", c.MaxHeaderBytes).
		field("timeout.read", c.Timeout.Read).
		field("timeout.write", c.Timeout.Write).
		field("timeout.idle", c.Timeout.Idle).
		field("timeout.readheader", c.Timeout.ReadHeader).
		String()
}

func (c *HTTPConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid HTTP server port: %d", c.Port)
	}
	return firstError(
		positive("server.timeout.read", c.Timeout.Read),
		positive("server.timeout.write", c.Timeout.Write),
		positive("server.timeout.idle", c.Timeout.Idle),
		positive("server.timeout.readheader", c.Timeout.ReadHeader),
	)
}
