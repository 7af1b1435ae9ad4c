// Package component defines lifecycle-managed pieces of the service.
//
// A Component is started in registration order and stopped in reverse.
// Components may also implement Describable to appear in the startup
// summary and RouteProvider to list HTTP routes.
package component
