package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a lifecycle-managed part of the service (database, HTTP
// server, telemetry exporters).
type Component interface {
	// Name returns the unique registration name.
	Name() string

	// Start initializes and starts the component.
	Start(ctx context.Context) error

	// Stop shuts the component down and releases its resources.
	Stop(ctx context.Context) error

	// Health reports the current status.
	Health(ctx context.Context) Health
}

// Description holds startup summary information.
type Description struct {
	// Name is the display name. Empty means the component's Name().
	Name string
	// Type categorizes the component: "database", "server", "telemetry".
	Type string
	// Details is a one-liner such as "driver=postgres pool=25/5".
	Details string
	// Port is the primary port, 0 if not applicable.
	Port int
}

// Describable is optionally implemented by components that report
// themselves in the startup summary.
type Describable interface {
	Describe() Description
}

// Route holds a single HTTP route for the startup summary.
type Route struct {
	Method  string
	Path    string
	Handler string
}

// RouteProvider is optionally implemented by server components to
// report registered routes.
type RouteProvider interface {
	Routes() []Route
}
