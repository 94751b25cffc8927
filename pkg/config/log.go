package config

import (
	"fmt"
	"log/slog"
)

type LogConfig struct {
	Level string `koanf:"level"`
}

func (c *LogConfig) String() string {
	return newSection("Log").field("level", c.Level).String()
}

// Validate accepts the slog level names in any case; an empty level means info.
func (c *LogConfig) Validate() error {
	if c.Level == "" {
		return nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Level)); err != nil {
		return fmt.Errorf("unknown log level: %s", c.Level)
	}
	return nil
}
