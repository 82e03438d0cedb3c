package app

import (
	"fmt"
	"time"

	"github.com/kbukum/clinicq/auth"
	"github.com/kbukum/clinicq/config"
	"github.com/kbukum/clinicq/database"
	"github.com/kbukum/clinicq/observability"
	"github.com/kbukum/clinicq/server"
	"github.com/kbukum/clinicq/sse"
	"github.com/kbukum/clinicq/version"
)

// ServiceName is the default service name and config file stem.
const ServiceName = "clinicq"

// Config is the complete clinicq configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Database      database.Config      `yaml:"database" mapstructure:"database"`
	SSE           SSEConfig            `yaml:"sse" mapstructure:"sse"`
	Auth          auth.Config          `yaml:"auth" mapstructure:"auth"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
	Seed          SeedConfig           `yaml:"seed" mapstructure:"seed"`
}

// SSEConfig tunes the notification broker.
type SSEConfig struct {
	// Capacity is the per-subscriber buffer; events beyond it are dropped.
	Capacity  int           `yaml:"capacity" mapstructure:"capacity"`
	KeepAlive time.Duration `yaml:"keepalive" mapstructure:"keepalive"`
}

// SeedConfig controls the sample data migration.
type SeedConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// ApplyDefaults fills every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ServiceName
	}
	if c.Version == "" {
		c.Version = version.Get().Version
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()

	// the clinic domain cannot run without its store
	c.Database.Enabled = true
	c.Database.ApplyDefaults()

	if c.SSE.Capacity <= 0 {
		c.SSE.Capacity = sse.DefaultChannelCapacity
	}
	if c.SSE.KeepAlive <= 0 {
		c.SSE.KeepAlive = sse.DefaultKeepAlive
	}
	c.Auth.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if c.SSE.Capacity <= 0 {
		return fmt.Errorf("sse.capacity must be > 0")
	}
	if c.SSE.KeepAlive < time.Second {
		return fmt.Errorf("sse.keepalive must be at least 1s (got: %s)", c.SSE.KeepAlive)
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.Observability.Validate()
}
