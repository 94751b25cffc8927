package config

import (
	"fmt"
	"strings"

	"github.com/abgdnv/shopadmin/pkg/config"
	"github.com/abgdnv/shopadmin/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
	Catalog    config.HTTPClientConfig `koanf:"catalog"`
	Resilience config.ResilienceConfig `koanf:"resilience"`
	Session    config.SessionConfig    `koanf:"session"`
	IdP        config.IdP              `koanf:"idp"`
}

// sections lists the blocks in the order they are printed and validated.
func (c *Config) sections() []section {
	return []section{&c.HTTPServer, &c.Catalog, &c.Resilience, &c.Session, &c.IdP, &c.Telemetry, &c.Log, &c.PProf, &c.Shutdown}
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
