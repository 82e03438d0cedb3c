package auth

import (
	"errors"
	"time"
)

// DefaultCookieName is the cookie that carries the tenant.
const DefaultCookieName = "customer_id"

// Config configures tenant cookies.
type Config struct {
	// Secret enables signed cookies when non-empty.
	Secret     string        `mapstructure:"secret"`
	CookieName string        `mapstructure:"cookie_name"`
	Issuer     string        `mapstructure:"issuer"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	Secure     bool          `mapstructure:"secure_cookie"`
}

// ApplyDefaults fills in unset values.
func (c *Config) ApplyDefaults() {
	if c.CookieName == "" {
		c.CookieName = DefaultCookieName
	}
	if c.Issuer == "" {
		c.Issuer = "clinicq"
	}
	if c.TokenTTL == 0 {
		c.TokenTTL = 30 * 24 * time.Hour
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Secret != "" && len(c.Secret) < 16 {
		return errors.New("auth: secret must be at least 16 bytes")
	}
	if c.TokenTTL < 0 {
		return errors.New("auth: token_ttl must not be negative")
	}
	return nil
}

// Signed reports whether cookies carry signed tokens.
func (c *Config) Signed() bool { return c.Secret != "" }
