// Package realtime fans server-sent events out to every open browser stream
// of a user.
//
// A Registry maps user ids to their open stream handles. The Dispatcher
// writes one frame per handle and prunes handles whose write fails. The
// Manager owns a single streaming request: it sends the connected
// handshake, registers the stream, keeps it alive with ping comments and
// tears it down exactly once when the client goes away.
//
//	rt := realtime.NewComponent(cfg, log)
//	router.GET("/api/realtime/stream", realtime.StreamHandler(rt.Manager()))
//	rt.Dispatcher().Dispatch(ctx, userID, realtime.KindMessageCreated, msg)
//
// Delivery is best effort and at most once. Events for users with no open
// stream are dropped. With a Relay the same events reach users connected
// to other instances through a Broker.
package realtime
