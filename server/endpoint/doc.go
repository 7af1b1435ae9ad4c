// Package endpoint holds the HTTP handlers: /health and the /auth routes.
//
// Tokens travel in HttpOnly, SameSite=Lax cookies scoped to path "/" and
// the configured domain. Login also returns the access token in the body
// as {"token": "..."} for clients that send it as a Bearer header.
package endpoint
