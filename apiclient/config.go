package apiclient

import (
	"fmt"
	"strings"
)

// Config is the loadable configuration of one client.
type Config struct {
	// Name identifies the client in logs, spans and metrics.
	Name string `yaml:"name" mapstructure:"name"`
	// DefaultStub is the policy for endpoints missing from Stubs.
	DefaultStub string `yaml:"default_stub" mapstructure:"default_stub"`
	// Stubs maps endpoint names to policies: "never", "immediate" or
	// "delay:<duration>". Names are matched case-insensitively.
	Stubs map[string]string `yaml:"stubs" mapstructure:"stubs"`
	// FixturesDir is where stub fixtures are read from.
	FixturesDir string `yaml:"fixtures_dir" mapstructure:"fixtures_dir"`
	// StrictFixtures panics on a missing or corrupt fixture.
	StrictFixtures bool `yaml:"strict_fixtures" mapstructure:"strict_fixtures"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "apiclient"
	}
	if c.DefaultStub == "" {
		c.DefaultStub = "never"
	}
	if c.FixturesDir == "" {
		c.FixturesDir = "testdata"
	}
}

// Validate checks that every policy string parses.
func (c *Config) Validate() error {
	if _, err := ParseStubPolicy(c.DefaultStub); err != nil {
		return fmt.Errorf("default_stub: %w", err)
	}
	for name, s := range c.Stubs {
		if _, err := ParseStubPolicy(s); err != nil {
			return fmt.Errorf("stubs.%s: %w", name, err)
		}
	}
	return nil
}

// Options returns the client options the configuration implies.
func (c Config) Options() []Option {
	c.ApplyDefaults()
	opts := []Option{
		WithName(c.Name),
		WithFixtures(NewDirLoader(c.FixturesDir)),
	}
	if c.StrictFixtures {
		opts = append(opts, WithStrictFixtures())
	}
	return opts
}

// ConfigStubs builds a stub resolver from cfg, keyed by EndpointName.
func ConfigStubs[A API](cfg Config) (StubFunc[A], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fallback, _ := ParseStubPolicy(cfg.DefaultStub)
	table := make(map[string]StubPolicy, len(cfg.Stubs))
	for name, s := range cfg.Stubs {
		table[strings.ToLower(name)], _ = ParseStubPolicy(s)
	}

	return func(api A) StubPolicy {
		if p, ok := table[strings.ToLower(EndpointName(api))]; ok {
			return p
		}
		return fallback
	}, nil
}

// NewFromConfig creates a client whose stub policies and fixtures come
// from cfg. opts are applied after the configured ones.
func NewFromConfig[A API](cfg Config, session Session, endpointFn EndpointFunc[A], opts ...Option) (*Client[A], error) {
	stubFn, err := ConfigStubs[A](cfg)
	if err != nil {
		return nil, err
	}
	return New(session, endpointFn, stubFn, append(cfg.Options(), opts...)...), nil
}
