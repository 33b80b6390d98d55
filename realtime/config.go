package realtime

import (
	"fmt"
	"time"
)

const (
	DefaultHeartbeatInterval = 30 * time.Second
	DefaultWriteTimeout      = 10 * time.Second
	DefaultRelayChannel      = "montessa:realtime"
)

// Config configures the realtime hub.
type Config struct {
	// HeartbeatInterval is the gap between ping frames on an idle stream.
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval" mapstructure:"heartbeat_interval"`
	// WriteTimeout bounds a single frame write. Zero disables the bound.
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	Relay        RelayConfig   `yaml:"relay" mapstructure:"relay"`
}

// RelayConfig enables cross-instance fan-out through a broker.
type RelayConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Channel string `yaml:"channel" mapstructure:"channel"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.Relay.Channel == "" {
		c.Relay.Channel = DefaultRelayChannel
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.HeartbeatInterval <= 0 {
		return fmt.Errorf("realtime.heartbeat_interval must be positive (got: %s)", c.HeartbeatInterval)
	}
	if c.WriteTimeout < 0 {
		return fmt.Errorf("realtime.write_timeout must not be negative (got: %s)", c.WriteTimeout)
	}
	if c.Relay.Enabled && c.Relay.Channel == "" {
		return fmt.Errorf("realtime.relay.channel is required when the relay is enabled")
	}
	return nil
}
