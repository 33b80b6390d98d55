package app

import (
	"fmt"

	"github.com/TestimonyAdegoke/montessa-sub006/auth"
	"github.com/TestimonyAdegoke/montessa-sub006/config"
	"github.com/TestimonyAdegoke/montessa-sub006/database"
	"github.com/TestimonyAdegoke/montessa-sub006/observability"
	"github.com/TestimonyAdegoke/montessa-sub006/realtime"
	"github.com/TestimonyAdegoke/montessa-sub006/redis"
	"github.com/TestimonyAdegoke/montessa-sub006/server"
)

// ServiceName is the config and logging name of the service.
const ServiceName = "montessa"

// Config is the full service configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Realtime      realtime.Config      `yaml:"realtime" mapstructure:"realtime"`
	Auth          auth.Config          `yaml:"auth" mapstructure:"auth"`
	Database      database.Config      `yaml:"database" mapstructure:"database"`
	Redis         redis.Config         `yaml:"redis" mapstructure:"redis"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
	RateLimit     RateLimitConfig      `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// RateLimitConfig bounds requests per user per minute.
type RateLimitConfig struct {
	// Stream limits stream (re)connects, which browsers retry on their own.
	Stream int `yaml:"stream" mapstructure:"stream"`
	API    int `yaml:"api" mapstructure:"api"`
}

// ApplyDefaults fills every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ServiceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	if c.Debug {
		c.Server.Debug = true
	}
	c.Realtime.ApplyDefaults()
	c.Auth.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Redis.ApplyDefaults()
	c.Observability.ApplyDefaults()
	if c.RateLimit.Stream == 0 {
		c.RateLimit.Stream = 30
	}
	if c.RateLimit.API == 0 {
		c.RateLimit.API = 300
	}
}

// Validate checks every section and the relay's dependency on Redis.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Realtime.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Redis.Validate(); err != nil {
		return err
	}
	if err := c.Observability.Validate(); err != nil {
		return err
	}
	if c.Realtime.Relay.Enabled && !c.Redis.Enabled {
		return fmt.Errorf("realtime.relay.enabled requires redis.enabled")
	}
	if c.RateLimit.Stream < 0 || c.RateLimit.API < 0 {
		return fmt.Errorf("rate_limit values must not be negative")
	}
	return nil
}

// LoadConfig reads the service configuration from the resolved config file,
// .env file and environment, then applies defaults.
func LoadConfig(opts ...config.LoaderOption) (*Config, error) {
	var cfg Config
	if err := config.LoadConfig(ServiceName, &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}
