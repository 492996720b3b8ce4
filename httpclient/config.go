package httpclient

import (
	"fmt"
	"time"

	"github.com/kbukum/apikit/version"
)

const (
	defaultTimeout         = 60 * time.Second
	defaultRequestIDHeader = "X-Request-ID"
)

// Config configures the HTTP transport used for live dispatches.
type Config struct {
	// Name identifies the transport in logs, metrics and health reports.
	Name string `yaml:"name" mapstructure:"name"`

	// Timeout bounds a whole exchange, including reading the body. Defaults to 60s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// TLS configures TLS settings for the HTTP transport.
	TLS *TLSConfig `yaml:"tls" mapstructure:"tls"`

	// Headers are default headers applied to all requests. Headers already
	// present on a request are left alone.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// Auth configures authentication applied to all requests.
	Auth *AuthConfig `yaml:"-" mapstructure:"-"`

	// HTTP2 configures the transport for HTTP/2 over TLS.
	HTTP2 bool `yaml:"http2" mapstructure:"http2"`

	// RequestIDHeader names the header carrying a generated request ID.
	// Defaults to X-Request-ID. Set to "-" to disable.
	RequestIDHeader string `yaml:"request_id_header" mapstructure:"request_id_header"`

	// UserAgent is sent when a request has none. Defaults to apikit/<version>.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "http"
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.RequestIDHeader == "" {
		c.RequestIDHeader = defaultRequestIDHeader
	}
	if c.UserAgent == "" {
		c.UserAgent = version.UserAgent()
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	if c.TLS != nil {
		if err := c.TLS.Validate(); err != nil {
			return err
		}
	}
	return nil
}
