package realtime

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the realtime instruments. A nil *Metrics records nothing.
type Metrics struct {
	activeStreams metric.Int64UpDownCounter
	dispatched    metric.Int64Counter
	delivered     metric.Int64Counter
	pruned        metric.Int64Counter
	heartbeats    metric.Int64Counter
}

// NewMetrics creates the realtime instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	activeStreams, err := meter.Int64UpDownCounter("realtime.streams.active",
		metric.WithDescription("Open event streams"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating realtime.streams.active: %w", err)
	}

	dispatched, err := meter.Int64Counter("realtime.events.dispatched",
		metric.WithDescription("Events dispatched, by kind and whether anyone was online"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating realtime.events.dispatched: %w", err)
	}

	delivered, err := meter.Int64Counter("realtime.frames.delivered",
		metric.WithDescription("Event frames written to a stream"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating realtime.frames.delivered: %w", err)
	}

	pruned, err := meter.Int64Counter("realtime.handles.pruned",
		metric.WithDescription("Handles removed after a failed write"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating realtime.handles.pruned: %w", err)
	}

	heartbeats, err := meter.Int64Counter("realtime.heartbeats",
		metric.WithDescription("Heartbeat frames written"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating realtime.heartbeats: %w", err)
	}

	return &Metrics{
		activeStreams: activeStreams,
		dispatched:    dispatched,
		delivered:     delivered,
		pruned:        pruned,
		heartbeats:    heartbeats,
	}, nil
}

func (m *Metrics) streamOpened(ctx context.Context) {
	if m != nil {
		m.activeStreams.Add(ctx, 1)
	}
}

func (m *Metrics) streamClosed(ctx context.Context) {
	if m != nil {
		m.activeStreams.Add(ctx, -1)
	}
}

func (m *Metrics) recordDispatch(ctx context.Context, kind string, res Result) {
	if m == nil {
		return
	}
	m.dispatched.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.Bool("online", !res.NoRecipient()),
	))
	if res.Delivered > 0 {
		m.delivered.Add(ctx, int64(res.Delivered))
	}
	if res.Pruned > 0 {
		m.pruned.Add(ctx, int64(res.Pruned))
	}
}

func (m *Metrics) heartbeat(ctx context.Context) {
	if m != nil {
		m.heartbeats.Add(ctx, 1)
	}
}
