// Package server provides the HTTP server: a Gin engine mounted on a root
// ServeMux, served over h2c, with lifecycle management through the
// component registry.
//
// # Middleware
//
// Every request passes through the server-level chain (server/middleware):
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: request id generation and propagation
//   - CORS: cross-origin resource sharing
//   - BodySizeLimit: request body size cap
//   - RequestLogger: request logging with duration and status
//
// Route groups add Auth, RequireRole and RateLimit as Gin middleware.
//
// # Endpoints
//
// RegisterDefaultEndpoints adds /health, /ready and /info (server/endpoint).
//
// # Responses
//
// Handlers answer through RespondOK, RespondCreated and RespondWithError so
// every body uses the {"data": ...} or {"error": {...}} envelope.
package server
