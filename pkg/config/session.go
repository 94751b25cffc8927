package config

import (
	"fmt"
	"time"
)

// SessionConfig configures the cookie that pins a browser to its admin
// screen and how long an untouched screen is kept.
type SessionConfig struct {
	CookieName  string        `koanf:"cookiename"`
	IdleTimeout time.Duration `koanf:"idletimeout"`
	Secure      bool          `koanf:"secure"`
}

func (c *SessionConfig) String() string {
	return newSection("Session").
		field("cookiename", c.CookieName).
		field("idletimeout", c.IdleTimeout).
		field("secure", c.Secure).
		String()
}

func (c *SessionConfig) Validate() error {
	if c.CookieName == "" {
		return fmt.Errorf("session cookie name %w", errNotConfigured)
	}
	return positive("session.idletimeout", c.IdleTimeout)
}
