package observability

import (
	"fmt"
	"time"
)

const (
	DefaultSampleRate     = 1.0
	DefaultMetricInterval = 15 * time.Second
)

// Config configures OpenTelemetry export. Export is off while Endpoint is
// empty; instruments and spans are still created against the no-op globals.
type Config struct {
	// Endpoint is the OTLP HTTP collector host:port (e.g. "localhost:4318").
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// Tracing toggles the tracer provider when an endpoint is set.
	Tracing bool `yaml:"tracing" mapstructure:"tracing"`
	// Metrics toggles the meter provider when an endpoint is set.
	Metrics bool `yaml:"metrics" mapstructure:"metrics"`
	// SampleRate is the trace sampling ratio (0.0 to 1.0).
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
	// MetricInterval is the periodic metric export interval.
	MetricInterval time.Duration `yaml:"metric_interval" mapstructure:"metric_interval"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.SampleRate == 0 {
		c.SampleRate = DefaultSampleRate
	}
	if c.MetricInterval == 0 {
		c.MetricInterval = DefaultMetricInterval
	}
}

// Enabled reports whether anything is exported.
func (c *Config) Enabled() bool {
	return c.Endpoint != "" && (c.Tracing || c.Metrics)
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("observability.sample_rate must be between 0 and 1 (got: %v)", c.SampleRate)
	}
	if c.MetricInterval < 0 {
		return fmt.Errorf("observability.metric_interval must not be negative (got: %s)", c.MetricInterval)
	}
	return nil
}

// ServiceInfo identifies the exporting service on every resource.
type ServiceInfo struct {
	Name        string
	Version     string
	Environment string
}
