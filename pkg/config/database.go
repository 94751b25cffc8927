package config

import (
	"fmt"
	"net/url"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DatabaseConfig selects the catalog store. An empty Driver means postgres.
type DatabaseConfig struct {
	Driver         string        `koanf:"driver"`
	URL            string        `koanf:"url"`
	Timeout        time.Duration `koanf:"timeout"`
	MigrateOnStart bool          `koanf:"migrateonstart"`
}

// String leaves the URL out since it carries credentials.
func (c *DatabaseConfig) String() string {
	return newSection("Database").
		field("driver", c.Driver).
		field("timeout", c.Timeout).
		field("migrateonstart", c.MigrateOnStart).
		String()
}

func (c *DatabaseConfig) Validate() error {
	if c.Driver != "" && c.Driver != DriverPostgres && c.Driver != DriverMemory {
		return fmt.Errorf("unknown database driver: %s", c.Driver)
	}
	if !c.UsesPostgres() {
		return nil
	}
	if c.URL == "" {
		return fmt.Errorf("database URL %w", errNotConfigured)
	}
	if u, err := url.Parse(c.URL); err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
		return fmt.Errorf("database URL must use the postgres:// scheme")
	}
	return positive("database.timeout", c.Timeout)
}

func (c *DatabaseConfig) UsesPostgres() bool {
	return c.Driver == "" || c.Driver == DriverPostgres
}
