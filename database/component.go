package database

import (
	"context"
	"fmt"

	"github.com/kbukum/sessionkit/component"
	"github.com/kbukum/sessionkit/logger"
)

// Component manages the DB lifecycle for bootstrap.
type Component struct {
	db  *DB
	cfg Config
	log *logger.Logger
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a database component.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{
		cfg: cfg,
		log: log.WithComponent("database"),
	}
}

// DB returns the underlying *DB, or nil before Start.
func (c *Component) DB() *DB { return c.db }

func (c *Component) Name() string { return "database" }

// Start connects and, when configured, applies pending migrations.
func (c *Component) Start(ctx context.Context) error {
	if !c.cfg.Enabled {
		c.log.Info("Database component disabled")
		return nil
	}
	db, err := Open(ctx, c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("database start: %w", err)
	}
	c.db = db

	if c.cfg.Migrate {
		if err := c.db.MigrateUp(); err != nil {
			return fmt.Errorf("database migrate: %w", err)
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

// Health pings the database.
func (c *Component) Health(ctx context.Context) component.Health {
	if c.db == nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: "database not initialized",
		}
	}
	if _, err := c.db.CheckHealth(ctx); err != nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: "ping failed",
		}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe returns the startup summary line.
func (c *Component) Describe() component.Description {
	details := fmt.Sprintf("driver=%s pool=%d/%d", c.cfg.Driver, c.cfg.MaxOpenConns, c.cfg.MaxIdleConns)
	if c.cfg.Migrate {
		details += " migrate=on"
	}
	return component.Description{Name: "Database", Type: "database", Details: details}
}
