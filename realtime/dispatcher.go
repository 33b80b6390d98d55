package realtime

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/TestimonyAdegoke/montessa-sub006/errors"
	"github.com/TestimonyAdegoke/montessa-sub006/logger"
)

const tracerName = "github.com/TestimonyAdegoke/montessa-sub006/realtime"

// Result summarizes one dispatch.
type Result struct {
	// Recipients is the number of handles open when the dispatch started.
	Recipients int `json:"recipients"`
	Delivered  int `json:"delivered"`
	// Pruned counts handles removed because their write failed.
	Pruned int `json:"pruned"`
	// Relayed is set when the event went to the broker instead of being
	// written locally. The counts are then unknown to the publisher and
	// left at zero.
	Relayed bool `json:"relayed,omitempty"`
}

// NoRecipient reports whether the user had no open stream. This is not an
// error: the user may simply be offline. A relayed result never reports
// NoRecipient, since another instance may hold the stream.
func (r Result) NoRecipient() bool { return !r.Relayed && r.Recipients == 0 }

// Emitter delivers events. Dispatcher delivers locally; Relay delivers
// through a broker to every instance.
type Emitter interface {
	Emit(ctx context.Context, ev Event) (Result, error)
}

// Dispatcher writes events to the open handles of their target user.
type Dispatcher struct {
	registry *Registry
	metrics  *Metrics
	tracer   trace.Tracer
	log      *logger.Logger
}

var _ Emitter = (*Dispatcher)(nil)

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherMetrics records dispatch counters on m.
func WithDispatcherMetrics(m *Metrics) DispatcherOption {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithDispatcherLogger sets the dispatcher logger.
func WithDispatcherLogger(log *logger.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.log = log }
}

// WithTracer overrides the tracer used for dispatch spans.
func WithTracer(t trace.Tracer) DispatcherOption {
	return func(d *Dispatcher) { d.tracer = t }
}

// NewDispatcher creates a dispatcher over registry.
func NewDispatcher(registry *Registry, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.tracer == nil {
		d.tracer = otel.Tracer(tracerName)
	}
	return d
}

// Dispatch builds an event from kind and data and delivers it to userID.
// The only error is data that cannot be encoded as JSON.
func (d *Dispatcher) Dispatch(ctx context.Context, userID, kind string, data any) (Result, error) {
	ev, err := NewEvent(userID, kind, data)
	if err != nil {
		return Result{}, errors.InvalidInput("data", err.Error()).WithCause(err)
	}
	return d.DispatchEvent(ctx, ev), nil
}

// Emit delivers ev locally.
func (d *Dispatcher) Emit(ctx context.Context, ev Event) (Result, error) {
	return d.DispatchEvent(ctx, ev), nil
}

// DispatchEvent makes one write attempt per open handle of ev's target.
// Handles whose write fails are deregistered and closed at once; the rest
// still receive the event. Nothing is retried or buffered.
func (d *Dispatcher) DispatchEvent(ctx context.Context, ev Event) Result {
	ctx, span := d.tracer.Start(ctx, "realtime.dispatch", trace.WithAttributes(
		attribute.String("realtime.kind", ev.Kind),
		attribute.String("realtime.user_id", ev.TargetUserID),
	))
	defer span.End()

	var res Result
	handles := d.registry.Handles(ev.TargetUserID)
	res.Recipients = len(handles)

	if res.NoRecipient() {
		d.log.Debug("No open stream for event", logger.Fields(
			logger.FieldUserID, ev.TargetUserID,
			logger.FieldEventKind, ev.Kind,
		))
		d.metrics.recordDispatch(ctx, ev.Kind, res)
		return res
	}

	frame, err := ev.Frame()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		d.log.Error("Event encode failed", logger.ErrorFields("dispatch", err))
		return res
	}

	for _, h := range handles {
		if err := h.Send(frame); err != nil {
			if d.registry.Deregister(ev.TargetUserID, h) {
				res.Pruned++
			}
			_ = h.Close()
			d.log.Debug("Pruned dead stream", logger.Fields(
				logger.FieldUserID, ev.TargetUserID,
				logger.FieldHandleID, h.ID(),
				logger.FieldError, err.Error(),
			))
			continue
		}
		res.Delivered++
	}

	span.SetAttributes(
		attribute.Int("realtime.recipients", res.Recipients),
		attribute.Int("realtime.delivered", res.Delivered),
		attribute.Int("realtime.pruned", res.Pruned),
	)
	d.metrics.recordDispatch(ctx, ev.Kind, res)
	return res
}
