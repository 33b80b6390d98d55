// Package component defines the lifecycle contract shared by the service's
// infrastructure pieces (database, redis, realtime hub, HTTP server) and a
// Registry that starts them in registration order and stops them in
// reverse.
package component
