// Package redis provides the Redis client component and the pub/sub broker
// that relays realtime events between instances.
//
// The component is optional. With redis.enabled false nothing connects and
// the realtime hub runs single-instance.
//
//	comp := redis.NewComponent(cfg.Redis, log)
//	broker := redis.NewPubSub(comp, cfg.Realtime.Relay.Channel, log)
//	hub := realtime.NewComponent(cfg.Realtime, log, realtime.WithBroker(broker))
//
// Register comp before hub so the client is connected when the relay
// subscribes.
package redis
