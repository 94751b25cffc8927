package config

import (
	"fmt"
	"strings"

	"github.com/abgdnv/shopadmin/pkg/config"
	"github.com/abgdnv/shopadmin/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig      `koanf:"server"`
	Database   config.DatabaseConfig  `koanf:"database"`
	Log        config.LogConfig       `koanf:"log"`
	PProf      config.PProfConfig     `koanf:"pprof"`
	Shutdown   config.ShutdownConfig  `koanf:"shutdown"`
	NATS       config.NATSConfig      `koanf:"nats"`
	Telemetry  config.TelemetryConfig `koanf:"telemetry"`
}

// sections lists the blocks in the order they are printed and validated.
func (c *Config) sections() []section {
	return []section{&c.HTTPServer, &c.Database, &c.NATS, &c.Telemetry, &c.Log, &c.PProf, &c.Shutdown}
}

// String prints every block; credentials are left out by the blocks themselves.
func (c *Config) String() string {
	var b strings.Builder
	for _, s := range c.sections() {
		b.WriteString(s.String())
	}
	return b.String()
}

func (c *Config) Validate() error {
	for _, s := range c.sections() {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

type section interface {
	fmt.Stringer
	configloader.Validator
}
