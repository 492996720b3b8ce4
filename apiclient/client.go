package apiclient

import (
	"net/http"

	"github.com/kbukum/apikit/httpclient"
	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/observability"
)

// Session performs HTTP exchanges and must be safe for concurrent use.
// *http.Client and *httpclient.Adapter both satisfy it.
type Session interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client dispatches calls for the endpoints of A. It holds no per-call
// state and is safe for concurrent use.
type Client[A API] struct {
	session    Session
	endpointFn EndpointFunc[A]
	stubFn     StubFunc[A]
	opts       options
}

type options struct {
	name     string
	log      *logger.Logger
	metrics  *observability.Metrics
	tracing  bool
	fixtures FixtureLoader
	strict   bool
}

// Option configures a Client.
type Option func(*options)

// WithName names the client in logs, spans and metrics. Defaults to "apiclient".
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger sets the dispatch logger. Defaults to logger.Get("apiclient").
func WithLogger(log *logger.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithMetrics records dispatch metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTracing opens an apiclient.dispatch span per call.
func WithTracing() Option {
	return func(o *options) { o.tracing = true }
}

// WithFixtures sets the loader used by stubbed calls. Defaults to the
// testdata directory.
func WithFixtures(loader FixtureLoader) Option {
	return func(o *options) { o.fixtures = loader }
}

// WithStrictFixtures makes a missing or corrupt fixture panic instead of
// failing the call with a *FixtureError.
func WithStrictFixtures() Option {
	return func(o *options) { o.strict = true }
}

// New creates a client. A nil endpointFn uses EndpointMapping and a nil
// stubFn uses NeverStub.
func New[A API](session Session, endpointFn EndpointFunc[A], stubFn StubFunc[A], opts ...Option) *Client[A] {
	if endpointFn == nil {
		endpointFn = EndpointMapping[A]
	}
	if stubFn == nil {
		stubFn = NeverStub[A]
	}

	o := options{name: "apiclient"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Get(o.name)
	}
	if o.fixtures == nil {
		o.fixtures = NewDirLoader("testdata")
	}

	return &Client[A]{
		session:    session,
		endpointFn: endpointFn,
		stubFn:     stubFn,
		opts:       o,
	}
}

// NewDefault creates a client over a default httpclient.Adapter (60s
// timeout) with EndpointMapping and NeverStub.
func NewDefault[A API](opts ...Option) *Client[A] {
	return New[A](httpclient.NewDefault(), nil, nil, opts...)
}

// Name returns the client name.
func (c *Client[A]) Name() string { return c.opts.name }

// Endpoint resolves the descriptor for api.
func (c *Client[A]) Endpoint(api A) Endpoint { return c.endpointFn(api) }

// StubPolicy resolves the stub policy for api.
func (c *Client[A]) StubPolicy(api A) StubPolicy { return c.stubFn(api) }
