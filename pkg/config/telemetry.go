package config

import (
	"fmt"
	"strings"
	"time"
)

type TelemetryConfig struct {
	Traces  TracesConfig  `koanf:"traces"`
	Metrics MetricsConfig `koanf:"metrics"`
}

type TracesConfig struct {
	Enabled  bool           `koanf:"enabled"`
	OtlpHttp OtlpHttpConfig `koanf:"otlphttp"`
}

type OtlpHttpConfig struct {
	Endpoint string        `koanf:"endpoint"`
	Insecure bool          `koanf:"insecure"`
	Timeout  time.Duration `koanf:"timeout"`
}

// MetricsConfig enables the Prometheus exporter. Metrics are served on the
// service's own HTTP server under Path.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

func (c *TelemetryConfig) String() string {
	return newSection("Telemetry").
		field("traces.enabled", c.Traces.Enabled).
		field("traces.otlphttp.endpoint", c.Traces.OtlpHttp.Endpoint).
		field("traces.otlphttp.insecure", c.Traces.OtlpHttp.Insecure).
		field("traces.otlphttp.timeout", c.Traces.OtlpHttp.Timeout).
		field("metrics.enabled", c.Metrics.Enabled).
		field("metrics.path", c.Metrics.Path).
		String()
}

func (c *TelemetryConfig) Validate() error {
	if c.Traces.Enabled {
		if c.Traces.OtlpHttp.Endpoint == "" {
			return fmt.Errorf("OTel endpoint %w", errNotConfigured)
		}
		if err := positive("telemetry.traces.otlphttp.timeout", c.Traces.OtlpHttp.Timeout); err != nil {
			return err
		}
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics path must start with '/': %q", c.Metrics.Path)
	}
	return nil
}
