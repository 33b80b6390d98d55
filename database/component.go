package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/TestimonyAdegoke/montessa-sub006/component"
	"github.com/TestimonyAdegoke/montessa-sub006/logger"
)

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component owns the database connection's lifecycle.
type Component struct {
	cfg    Config
	log    *logger.Logger
	driver DriverFunc
	models []interface{}

	mu sync.RWMutex
	db *DB
}

// NewComponent creates a database component for the component registry.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	return &Component{
		cfg: cfg,
		log: log.WithComponent("database"),
	}
}

// WithDriver overrides the dialector chosen by cfg.Driver.
func (c *Component) WithDriver(fn DriverFunc) *Component {
	c.driver = fn
	return c
}

// WithAutoMigrate registers models for auto-migration on Start.
func (c *Component) WithAutoMigrate(models ...interface{}) *Component {
	c.models = append(c.models, models...)
	return c
}

// DB returns the connected database, or nil before Start or when disabled.
func (c *Component) DB() *DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// Name returns the component name.
func (c *Component) Name() string { return "database" }

// Start connects and runs auto-migration when enabled. A disabled
// component does nothing.
func (c *Component) Start(ctx context.Context) error {
	if !c.cfg.Enabled {
		c.log.Info("Database disabled")
		return nil
	}

	var (
		db  *DB
		err error
	)
	if c.driver != nil {
		db, err = NewWithContext(ctx, c.driver(c.cfg.DSN), c.cfg, c.log)
	} else {
		db, err = Open(ctx, c.cfg, c.log)
	}
	if err != nil {
		return fmt.Errorf("database start: %w", err)
	}

	if c.cfg.AutoMigrate && len(c.models) > 0 {
		if err := db.AutoMigrate(c.models...); err != nil {
			_ = db.Close()
			return fmt.Errorf("database auto-migrate: %w", err)
		}
	}

	c.mu.Lock()
	c.db = db
	c.mu.Unlock()
	return nil
}

// Stop closes the connection.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	db := c.db
	c.db = nil
	c.mu.Unlock()

	if db == nil {
		return nil
	}
	return db.Close()
}

// Health pings the database and reports pool usage.
func (c *Component) Health(ctx context.Context) component.Health {
	if !c.cfg.Enabled {
		return component.Health{Name: c.Name(), Status: component.StatusHealthy, Message: "disabled"}
	}
	db := c.DB()
	if db == nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: "database not connected",
		}
	}
	if err := db.PingContext(ctx); err != nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: fmt.Sprintf("ping failed: %v", err),
		}
	}

	msg := ""
	if sqlDB, err := db.GormDB.DB(); err == nil {
		stats := sqlDB.Stats()
		msg = fmt.Sprintf("open=%d in_use=%d idle=%d", stats.OpenConnections, stats.InUse, stats.Idle)
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy, Message: msg}
}

// Describe returns the startup summary entry.
func (c *Component) Describe() component.Description {
	details := fmt.Sprintf("%s pool=%d/%d", c.cfg.Driver, c.cfg.MaxOpenConns, c.cfg.MaxIdleConns)
	if c.cfg.AutoMigrate {
		details += " auto-migrate=on"
	}
	if !c.cfg.Enabled {
		details = "disabled"
	}
	return component.Description{
		Name:    "Database",
		Type:    "database",
		Details: details,
	}
}
