// Package middleware holds the HTTP middleware of the service.
//
// Server-wide concerns (recovery, request id, CORS, body limits, request
// logging) are standard net/http Middleware applied around the Gin
// engine. Route-level concerns that need Gin's route information (access
// token auth, metrics) are gin.HandlerFunc.
package middleware

import "net/http"

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Chain composes multiple middleware. The first in the list is the outermost
// (runs first on a request, last on a response).
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
