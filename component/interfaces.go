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

// Component is a lifecycle-managed piece of infrastructure.
type Component interface {
	// Name returns the unique registration name.
	Name() string
	Start(ctx context.Context) error
	// Stop releases resources. It must be safe to call after a failed Start.
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}

// Description is a one-line self report used in the startup summary.
type Description struct {
	// Name is the display name; the component's Name() is used when empty.
	Name string
	// Type categorizes the component: "database", "redis", "server", "realtime".
	Type    string
	Details string
	Port    int
}

// Describable is optionally implemented by components that want to appear
// in the startup summary.
type Describable interface {
	Describe() Description
}

// Route is one registered HTTP route for the startup summary.
type Route struct {
	Method  string
	Path    string
	Handler string
	System  bool
}

// RouteProvider is optionally implemented by server components to report
// their routes.
type RouteProvider interface {
	Routes() []Route
}
