package realtime

import (
	"context"
	"fmt"

	"github.com/TestimonyAdegoke/montessa-sub006/component"
	"github.com/TestimonyAdegoke/montessa-sub006/logger"
)

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component owns the process-wide Registry, Dispatcher and Manager and,
// when a broker is attached, the Relay.
type Component struct {
	cfg        Config
	registry   *Registry
	dispatcher *Dispatcher
	manager    *Manager
	relay      *Relay
	log        *logger.Logger
}

// Option configures a Component.
type Option func(*componentOptions)

type componentOptions struct {
	metrics *Metrics
	broker  Broker
}

// WithMetrics records realtime instruments on m.
func WithMetrics(m *Metrics) Option {
	return func(o *componentOptions) { o.metrics = m }
}

// WithBroker attaches a broker. It is only used when cfg.Relay.Enabled.
func WithBroker(b Broker) Option {
	return func(o *componentOptions) { o.broker = b }
}

// NewComponent builds the realtime hub from cfg.
func NewComponent(cfg Config, log *logger.Logger, opts ...Option) *Component {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithComponent("realtime")

	var o componentOptions
	for _, opt := range opts {
		opt(&o)
	}

	registry := NewRegistry(log)
	dispatcher := NewDispatcher(registry,
		WithDispatcherMetrics(o.metrics),
		WithDispatcherLogger(log),
	)
	manager := NewManager(registry, cfg,
		WithManagerMetrics(o.metrics),
		WithManagerLogger(log),
	)

	c := &Component{
		cfg:        cfg,
		registry:   registry,
		dispatcher: dispatcher,
		manager:    manager,
		log:        log,
	}
	if cfg.Relay.Enabled && o.broker != nil {
		c.relay = NewRelay(o.broker, dispatcher, log)
	}
	return c
}

func (c *Component) Registry() *Registry     { return c.registry }
func (c *Component) Dispatcher() *Dispatcher { return c.dispatcher }
func (c *Component) Manager() *Manager       { return c.manager }

// Emitter returns the relay when one is configured and the local
// dispatcher otherwise.
func (c *Component) Emitter() Emitter {
	if c.relay != nil {
		return c.relay
	}
	return c.dispatcher
}

// Name returns the component name.
func (c *Component) Name() string { return "realtime" }

// Start subscribes the relay, if any.
func (c *Component) Start(ctx context.Context) error {
	if c.relay == nil {
		return nil
	}
	if err := c.relay.Start(ctx); err != nil {
		return err
	}
	c.log.Info("Relay subscribed", logger.Fields("channel", c.cfg.Relay.Channel))
	return nil
}

// Stop ends the relay subscription and closes every open stream. Each
// stream's own request goroutine finishes its teardown.
func (c *Component) Stop(ctx context.Context) error {
	if c.relay != nil {
		c.relay.Stop()
	}
	n := c.registry.CloseAll()
	c.log.Info("Realtime hub stopped", logger.Fields("closed_streams", n))
	return nil
}

// Health is degraded when a configured relay has lost its subscription.
func (c *Component) Health(ctx context.Context) component.Health {
	users, handles := c.registry.Count()
	h := component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d users, %d streams", users, handles),
	}
	if c.relay != nil && !c.relay.Running() {
		h.Status = component.StatusDegraded
		h.Message += ", relay not subscribed"
	}
	return h
}

// Describe returns the startup summary line.
func (c *Component) Describe() component.Description {
	relay := "off"
	if c.relay != nil {
		relay = c.cfg.Relay.Channel
	}
	return component.Description{
		Name:    "Realtime Hub",
		Type:    "realtime",
		Details: fmt.Sprintf("heartbeat=%s relay=%s", c.cfg.HeartbeatInterval, relay),
	}
}
