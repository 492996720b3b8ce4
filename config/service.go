package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kbukum/apikit/apiclient"
	"github.com/kbukum/apikit/httpclient"
	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/observability"
)

// ServiceConfig is the configuration of a service that talks to HTTP APIs
// through apikit clients. Projects embed it in their own config structs:
//
//	type MyConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Region string `yaml:"region" mapstructure:"region"`
//	}
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`

	// HTTP configures the shared transport.
	HTTP httpclient.Config `yaml:"http" mapstructure:"http"`
	// Clients configures dispatch clients by name.
	Clients map[string]apiclient.Config `yaml:"clients" mapstructure:"clients"`

	// Tracing and Metrics are off when nil.
	Tracing *observability.TracerConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics *observability.MeterConfig  `yaml:"metrics" mapstructure:"metrics"`
}

// GetServiceConfig returns the base ServiceConfig. It is promoted to
// embedding structs.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults fills in defaults for every section.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()

	if c.HTTP.Name == "" {
		c.HTTP.Name = c.Name
	}
	c.HTTP.ApplyDefaults()

	for name, client := range c.Clients {
		if client.Name == "" {
			client.Name = name
		}
		client.ApplyDefaults()
		c.Clients[name] = client
	}

	if c.Tracing != nil && c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = c.Name
	}
	if c.Metrics != nil && c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = c.Name
	}
}

// Validate validates every section. Call ApplyDefaults first.
func (c *ServiceConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	validEnvs := []string{"development", "staging", "production"}
	if !slices.Contains(validEnvs, c.Environment) {
		return fmt.Errorf("config.environment must be one of %v (got: %s)", validEnvs, c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("config.http: %w", err)
	}
	for name, client := range c.Clients {
		if err := client.Validate(); err != nil {
			return fmt.Errorf("config.clients.%s: %w", name, err)
		}
	}
	return nil
}

// Client returns the configuration of the named client, or a defaulted
// one when it is not configured. Names are matched case-insensitively.
func (c *ServiceConfig) Client(name string) apiclient.Config {
	if cfg, ok := c.Clients[strings.ToLower(name)]; ok {
		return cfg
	}
	if cfg, ok := c.Clients[name]; ok {
		return cfg
	}
	cfg := apiclient.Config{Name: name}
	cfg.ApplyDefaults()
	return cfg
}
