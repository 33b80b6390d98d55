// Package app assembles the montessa service: configuration, the component
// registry and the HTTP routes.
//
// Components register in dependency order (telemetry, database, redis,
// realtime, HTTP server) and stop in reverse. When the server stops, every
// open event stream is closed so in-flight requests can drain.
//
// Routes:
//
//	GET  /health, /ready, /info
//	GET  /api/realtime/stream           event stream for the caller
//	GET  /api/realtime/users            admin only
//	POST /api/messages                  send a direct message
//	GET  /api/messages?with=&limit=     conversation, newest first
//	POST /api/messages/:id/read         recipient marks a message read
//	POST /api/notifications             admin or staff, not stored
package app
