package database

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/clinicq/component"
	"github.com/kbukum/clinicq/logger"
)

// Component wraps DB and implements component.Component for lifecycle management.
type Component struct {
	db     *DB
	cfg    Config
	log    *logger.Logger
	models []interface{}
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a database component for use with the component registry.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	cfg.ApplyDefaults()
	return &Component{
		cfg: cfg,
		log: log.WithComponent("database"),
	}
}

// WithAutoMigrate registers models for auto-migration on Start.
func (c *Component) WithAutoMigrate(models ...interface{}) *Component {
	c.models = append(c.models, models...)
	return c
}

// DB returns the underlying *DB, or nil if not started.
func (c *Component) DB() *DB {
	return c.db
}

func (c *Component) Name() string { return "database" }

// Start connects and, when enabled, runs auto-migration for the registered models.
func (c *Component) Start(ctx context.Context) error {
	if !c.cfg.Enabled {
		c.log.Info("Database disabled, skipping connection")
		return nil
	}
	db, err := Open(ctx, c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("database start: %w", err)
	}
	c.db = db

	if c.cfg.AutoMigrate && len(c.models) > 0 {
		if err := c.db.AutoMigrate(c.models...); err != nil {
			return fmt.Errorf("database auto-migrate: %w", err)
		}
	}
	return nil
}

// Stop closes the connection pool.
func (c *Component) Stop(_ context.Context) error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *Component) Health(ctx context.Context) component.Health {
	h := component.Health{Name: c.Name()}
	switch {
	case !c.cfg.Enabled:
		h.Status = component.StatusDegraded
		h.Message = "disabled"
		return h
	case c.db == nil:
		h.Status = component.StatusUnhealthy
		h.Message = "database not initialized"
		return h
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.db.PingContext(pingCtx); err != nil {
		h.Status = component.StatusUnhealthy
		h.Message = err.Error()
		return h
	}

	open, inUse, idle := c.db.Stats()
	h.Status = component.StatusHealthy
	h.Message = fmt.Sprintf("open=%d in_use=%d idle=%d", open, inUse, idle)
	return h
}

func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Database",
		Type:    c.cfg.Driver,
		Details: fmt.Sprintf("max_open=%d migrate=%t", c.cfg.MaxOpenConns, c.cfg.AutoMigrate),
	}
}
