// Package server runs the HTTP API: a Gin engine behind an h2c handler,
// wrapped in the net/http middleware chain from server/middleware.
//
// Routes are registered by server/endpoint on Engine(); the server itself
// only owns the listener and its lifecycle. NewComponent adapts a Server
// to component.Component for the bootstrap registry.
package server
