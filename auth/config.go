package auth

import (
	"fmt"

	"github.com/TestimonyAdegoke/montessa-sub006/auth/jwt"
)

// Config holds authentication configuration.
type Config struct {
	JWT jwt.Config `yaml:"jwt" mapstructure:"jwt"`
	// QueryParam names the query parameter accepted in place of the
	// Authorization header. Browsers cannot set headers on EventSource.
	QueryParam string `yaml:"query_param" mapstructure:"query_param"`
}

// ApplyDefaults sets defaults on the sub-configurations.
func (c *Config) ApplyDefaults() {
	c.JWT.ApplyDefaults()
	if c.QueryParam == "" {
		c.QueryParam = "access_token"
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := c.JWT.Validate(); err != nil {
		return fmt.Errorf("auth.jwt: %w", err)
	}
	return nil
}

// Describe returns a one-liner for the startup summary.
func (c *Config) Describe() string {
	return fmt.Sprintf("JWT(%s) TTL=%s", c.JWT.Method, c.JWT.AccessTokenTTL)
}
