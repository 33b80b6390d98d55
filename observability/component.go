package observability

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/TestimonyAdegoke/montessa-sub006/component"
	"github.com/TestimonyAdegoke/montessa-sub006/logger"
)

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component installs the meter and tracer providers on Start and flushes
// them on Stop. With export disabled it does nothing.
type Component struct {
	cfg Config
	svc ServiceInfo
	log *logger.Logger

	mu sync.Mutex
	mp *sdkmetric.MeterProvider
	tp *sdktrace.TracerProvider
}

// NewComponent creates the observability component.
func NewComponent(cfg Config, svc ServiceInfo, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	return &Component{cfg: cfg, svc: svc, log: log.WithComponent("observability")}
}

// Name returns the component name.
func (c *Component) Name() string { return "observability" }

// Start installs the configured providers.
func (c *Component) Start(ctx context.Context) error {
	if !c.cfg.Enabled() {
		c.log.Debug("Telemetry export disabled")
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfg.Metrics {
		mp, err := InitMeter(ctx, c.cfg, c.svc)
		if err != nil {
			return err
		}
		c.mp = mp
	}
	if c.cfg.Tracing {
		tp, err := InitTracer(ctx, c.cfg, c.svc)
		if err != nil {
			if c.mp != nil {
				_ = c.mp.Shutdown(ctx)
				c.mp = nil
			}
			return err
		}
		c.tp = tp
	}

	c.log.Info("Telemetry export started", logger.Fields(
		"endpoint", c.cfg.Endpoint,
		"metrics", c.cfg.Metrics,
		"tracing", c.cfg.Tracing,
		"sample_rate", c.cfg.SampleRate,
	))
	return nil
}

// Stop flushes and shuts down the providers.
func (c *Component) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.tp != nil {
		if err := c.tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider: %w", err))
		}
		c.tp = nil
	}
	if c.mp != nil {
		if err := c.mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider: %w", err))
		}
		c.mp = nil
	}
	return errors.Join(errs...)
}

// Health reports whether export is running.
func (c *Component) Health(ctx context.Context) component.Health {
	c.mu.Lock()
	defer c.mu.Unlock()

	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	switch {
	case !c.cfg.Enabled():
		h.Message = "disabled"
	case c.mp == nil && c.tp == nil:
		h.Status = component.StatusUnhealthy
		h.Message = "not started"
	default:
		h.Message = "exporting to " + c.cfg.Endpoint
	}
	return h
}

// Describe returns the startup summary line.
func (c *Component) Describe() component.Description {
	details := "disabled"
	if c.cfg.Enabled() {
		details = fmt.Sprintf("endpoint=%s metrics=%t tracing=%t", c.cfg.Endpoint, c.cfg.Metrics, c.cfg.Tracing)
	}
	return component.Description{
		Name:    "Telemetry",
		Type:    "otlp",
		Details: details,
	}
}
