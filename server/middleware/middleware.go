// Package middleware holds the HTTP middleware the server installs around
// every route, plus the gin middleware used on authenticated route groups.
package middleware

import (
	"net/http"
	"slices"
)

// Middleware wraps an http.Handler. Server-level middleware uses this
// signature so it covers every handler on the mux, gin or not.
type Middleware func(http.Handler) http.Handler

// Chain composes middlewares. The first is the outermost.
func Chain(middlewares ...Middleware) Middleware {
	return func(h http.Handler) http.Handler {
		for _, mw := range slices.Backward(middlewares) {
			h = mw(h)
		}
		return h
	}
}
