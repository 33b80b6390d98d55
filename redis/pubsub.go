package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/TestimonyAdegoke/montessa-sub006/logger"
	"github.com/TestimonyAdegoke/montessa-sub006/realtime"
	"github.com/TestimonyAdegoke/montessa-sub006/resilience"
)

// Publish breaker defaults. While open, Publish fails at once and the relay
// delivers locally without waiting on Redis timeouts.
const (
	publishMaxFailures = 5
	publishCooldown    = 10 * time.Second
)

// ErrNotConnected is returned when the Redis component has not started.
var ErrNotConnected = errors.New("redis: not connected")

// ClientSource yields the current client. *Component implements it.
type ClientSource interface {
	Client() *Client
}

// PubSub is a realtime.Broker over one Redis pub/sub channel. Events are
// JSON encoded on the wire.
type PubSub struct {
	source  ClientSource
	channel string
	log     *logger.Logger
	breaker *resilience.Breaker
}

var _ realtime.Broker = (*PubSub)(nil)

// NewPubSub creates a broker on channel. The client is looked up on each
// call so the broker can be built before the Redis component starts.
func NewPubSub(source ClientSource, channel string, log *logger.Logger) *PubSub {
	if log == nil {
		log = logger.Nop()
	}
	p := &PubSub{
		source:  source,
		channel: channel,
		log:     log.WithComponent("redis-pubsub"),
	}
	p.breaker = resilience.NewBreaker(resilience.BreakerConfig{
		Name:        "redis-publish",
		MaxFailures: publishMaxFailures,
		Cooldown:    publishCooldown,
		OnStateChange: func(name string, from, to resilience.State) {
			p.log.Warn("Publish breaker changed state", logger.Fields(
				"breaker", name, "from", from.String(), "to", to.String(),
			))
		},
	})
	return p
}

// Channel returns the Redis channel name.
func (p *PubSub) Channel() string { return p.channel }

// BreakerState reports the publish breaker's state.
func (p *PubSub) BreakerState() resilience.State { return p.breaker.State() }

// Publish sends ev to every subscribed instance, this one included.
func (p *PubSub) Publish(ctx context.Context, ev realtime.Event) error {
	client := p.source.Client()
	if client == nil {
		return ErrNotConnected
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	err = p.breaker.Execute(func() error {
		_, err := client.Publish(ctx, p.channel, raw)
		return err
	})
	if err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Subscribe waits for the subscription to be confirmed, then forwards
// events to onEvent from a background goroutine until ctx is canceled.
// Undecodable payloads are logged and skipped.
func (p *PubSub) Subscribe(ctx context.Context, onEvent func(realtime.Event)) error {
	if onEvent == nil {
		return errors.New("redis: onEvent callback required")
	}
	client := p.source.Client()
	if client == nil {
		return ErrNotConnected
	}

	sub := client.Subscribe(ctx, p.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}
	p.log.Info("Subscribed", logger.Fields("channel", p.channel))

	go func() {
		defer func() { _ = sub.Close() }()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					p.log.Warn("Subscription channel closed", logger.Fields("channel", p.channel))
					return
				}
				var ev realtime.Event
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					p.log.Warn("Dropping undecodable event", logger.ErrorFields("decode", err))
					continue
				}
				onEvent(ev)
			}
		}
	}()
	return nil
}
