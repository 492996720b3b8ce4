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

// Healthy reports whether the status is StatusHealthy.
func (h Health) Healthy() bool {
	return h.Status == StatusHealthy
}

// Component is a lifecycle-managed piece of infrastructure, such as the
// HTTP transport behind an API client or a fake upstream in tests.
type Component interface {
	// Name returns the unique name of the component.
	Name() string

	// Start initializes and starts the component.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the component and releases resources.
	Stop(ctx context.Context) error

	// Health returns the current health status of the component.
	Health(ctx context.Context) Health
}

// Description is a one-line summary a component reports about itself.
type Description struct {
	// Name is the display name. If empty, the component's Name() is used.
	Name string
	// Type categorizes the component: "http-client", "fake-upstream", ...
	Type string
	// Details is a human-readable one-liner, e.g. "timeout=60s http2=true".
	Details string
	// Port is the primary port, 0 if not applicable.
	Port int
}

// Describable is optionally implemented by Components to self-report
// how they are configured.
type Describable interface {
	Describe() Description
}
