package realtime

import (
	"context"
	"sync"

	"github.com/TestimonyAdegoke/montessa-sub006/errors"
	"github.com/TestimonyAdegoke/montessa-sub006/logger"
)

// Broker carries events between instances.
type Broker interface {
	Publish(ctx context.Context, ev Event) error
	// Subscribe returns once the subscription is live and then calls onEvent
	// for every received event until ctx is canceled.
	Subscribe(ctx context.Context, onEvent func(Event)) error
}

// Relay publishes events to a Broker and dispatches every event received
// from it locally, so a user connected to any instance gets the event.
type Relay struct {
	broker     Broker
	dispatcher *Dispatcher
	log        *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

var _ Emitter = (*Relay)(nil)

// NewRelay creates a relay between broker and the local dispatcher.
func NewRelay(broker Broker, dispatcher *Dispatcher, log *logger.Logger) *Relay {
	if log == nil {
		log = logger.Nop()
	}
	return &Relay{broker: broker, dispatcher: dispatcher, log: log}
}

// Start subscribes to the broker. Calling Start on a running relay is a
// no-op.
func (r *Relay) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return nil
	}

	subCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	err := r.broker.Subscribe(subCtx, func(ev Event) {
		r.dispatcher.DispatchEvent(subCtx, ev)
	})
	if err != nil {
		cancel()
		return errors.BrokerError(err)
	}
	r.cancel = cancel
	return nil
}

// Stop ends the subscription.
func (r *Relay) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

// Running reports whether the relay is subscribed.
func (r *Relay) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

// Emit publishes ev. When the broker rejects it the event is delivered
// locally instead, so users on this instance still see it.
func (r *Relay) Emit(ctx context.Context, ev Event) (Result, error) {
	if err := r.broker.Publish(ctx, ev); err != nil {
		r.log.Warn("Broker publish failed, dispatching locally", logger.Fields(
			logger.FieldEventKind, ev.Kind,
			logger.FieldUserID, ev.TargetUserID,
			logger.FieldError, err.Error(),
		))
		return r.dispatcher.DispatchEvent(ctx, ev), nil
	}
	return Result{Relayed: true}, nil
}
