package config

import (
	"errors"
	"time"
)

// IdP configures bearer token verification against an OpenID provider.
// When Enabled is false the remaining fields are ignored.
type IdP struct {
	Enabled     bool          `koanf:"enabled"`
	JwksURL     string        `koanf:"jwksurl"`
	Issuer      string        `koanf:"issuer"`
	ClientID    string        `koanf:"clientid"`
	MinInterval time.Duration `koanf:"mininterval"`
}

func (c *IdP) String() string {
	return newSection("IdP").
		field("enabled", c.Enabled).
		field("jwksurl", c.JwksURL).
		field("issuer", c.Issuer).
		field("clientid", c.ClientID).
		field("mininterval", c.MinInterval).
		String()
}

func (c *IdP) Validate() error {
	switch {
	case !c.Enabled:
		return nil
	case c.JwksURL == "":
		return errors.New("IdP JWKS URL cannot be empty")
	case c.Issuer == "":
		return errors.New("IdP issuer cannot be empty")
	case c.ClientID == "":
		return errors.New("IdP client ID cannot be empty")
	}
	return positive("idp.mininterval", c.MinInterval)
}
