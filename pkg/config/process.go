package config

import (
	"context"
	"fmt"
	"net"
	"time"
)

// ShutdownConfig bounds how long a service waits for its servers and
// exporters to drain after a stop signal.
type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

func (c *ShutdownConfig) String() string {
	return newSection("Shutdown").field("timeout", c.Timeout).String()
}

func (c *ShutdownConfig) Validate() error {
	return positive("shutdown timeout", c.Timeout)
}

// Context returns a fresh context bounded by the shutdown timeout. It does not
// derive from the run context, which is already cancelled by the time
// shutdown starts.
func (c *ShutdownConfig) Context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.Timeout)
}

// PProfConfig exposes net/http/pprof on a separate listener.
type PProfConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

func (c *PProfConfig) String() string {
	return newSection("PProf").field("enabled", c.Enabled).field("address", c.Addr).String()
}

func (c *PProfConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Addr == "" {
		return fmt.Errorf("pprof address %w", errNotConfigured)
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("invalid pprof address %q: %w", c.Addr, err)
	}
	return nil
}
