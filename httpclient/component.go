package httpclient

import (
	"context"
	"fmt"

	"github.com/kbukum/apikit/component"
)

// Component wraps an Adapter with lifecycle management.
type Component struct {
	adapter *Adapter
	config  Config
	opts    []Option
}

var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// NewComponent creates a new HTTP adapter component.
// The adapter is created lazily in Start().
func NewComponent(cfg Config, opts ...Option) *Component {
	return &Component{config: cfg, opts: opts}
}

// Name returns the component name.
func (c *Component) Name() string {
	if c.config.Name == "" {
		return "http"
	}
	return c.config.Name
}

// Start initializes the HTTP adapter.
func (c *Component) Start(_ context.Context) error {
	a, err := New(c.config, c.opts...)
	if err != nil {
		return err
	}
	c.adapter = a
	return nil
}

// Stop closes the HTTP adapter and releases resources.
func (c *Component) Stop(ctx context.Context) error {
	if c.adapter == nil {
		return nil
	}
	err := c.adapter.Close(ctx)
	c.adapter = nil
	return err
}

// Health reports unhealthy until Start succeeds.
func (c *Component) Health(_ context.Context) component.Health {
	if c.adapter == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe summarises the transport configuration.
func (c *Component) Describe() component.Description {
	cfg := c.config
	cfg.ApplyDefaults()
	auth := AuthNone
	if cfg.Auth != nil {
		auth = cfg.Auth.Type
	}
	return component.Description{
		Name:    c.Name(),
		Type:    "http-client",
		Details: fmt.Sprintf("timeout=%s http2=%t tls=%t auth=%s", cfg.Timeout, cfg.HTTP2, cfg.TLS.IsEnabled(), auth),
	}
}

// Adapter returns the underlying HTTP adapter. Must be called after Start().
func (c *Component) Adapter() *Adapter {
	return c.adapter
}
