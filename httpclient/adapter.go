package httpclient

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/net/http2"

	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/observability"
)

// Adapter is the live transport behind an API client. It owns an
// *http.Client and runs each exchange through a middleware chain of
// default headers, auth, request IDs, and the configured logging,
// tracing and metrics.
//
// Adapter never reads or closes response bodies. That is the caller's job.
type Adapter struct {
	httpClient *http.Client
	config     Config
	doer       Doer

	transport   http.RoundTripper
	log         *logger.Logger
	metrics     *observability.Metrics
	tracing     bool
	middlewares []Middleware
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithTransport replaces the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(a *Adapter) { a.transport = rt }
}

// WithLogger logs every exchange at debug level and failures at warn.
func WithLogger(log *logger.Logger) Option {
	return func(a *Adapter) { a.log = log }
}

// WithTransportMetrics records per-exchange transport metrics.
func WithTransportMetrics(m *observability.Metrics) Option {
	return func(a *Adapter) { a.metrics = m }
}

// WithSpans opens an http.request span per exchange.
func WithSpans() Option {
	return func(a *Adapter) { a.tracing = true }
}

// WithMiddleware appends custom middlewares. They run innermost, closest
// to the wire.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *Adapter) { a.middlewares = append(a.middlewares, mw...) }
}

// New creates a new HTTP adapter with the given configuration.
func New(cfg Config, opts ...Option) (*Adapter, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Adapter{config: cfg}
	for _, opt := range opts {
		opt(a)
	}

	if a.transport == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		tlsCfg, err := cfg.TLS.Build()
		if err != nil {
			return nil, err
		}
		if tlsCfg != nil {
			transport.TLSClientConfig = tlsCfg
		}
		if cfg.HTTP2 {
			if err := http2.ConfigureTransport(transport); err != nil {
				return nil, fmt.Errorf("httpclient: configure http2: %w", err)
			}
		}
		a.transport = transport
	}

	a.httpClient = &http.Client{
		Transport: a.transport,
		Timeout:   cfg.Timeout,
	}
	a.doer = a.buildChain()(a.httpClient)

	return a, nil
}

// NewDefault creates an adapter with default configuration.
func NewDefault() *Adapter {
	a, err := New(Config{})
	if err != nil {
		// Defaults always validate.
		panic(err)
	}
	return a
}

func (a *Adapter) buildChain() Middleware {
	var chain []Middleware
	if a.tracing {
		chain = append(chain, WithTracing())
	}
	if a.metrics != nil {
		chain = append(chain, WithMetrics(a.metrics))
	}
	if a.log != nil {
		chain = append(chain, WithLogging(a.log))
	}
	if len(a.config.Headers) > 0 {
		chain = append(chain, WithHeaders(a.config.Headers))
	}
	chain = append(chain, WithUserAgent(a.config.UserAgent))
	if a.config.RequestIDHeader != "-" {
		chain = append(chain, WithRequestID(a.config.RequestIDHeader))
	}
	if a.config.Auth != nil {
		chain = append(chain, WithAuth(a.config.Auth))
	}
	chain = append(chain, a.middlewares...)
	return Chain(chain...)
}

// Do performs one exchange through the middleware chain.
func (a *Adapter) Do(req *http.Request) (*http.Response, error) {
	return a.doer.Do(req)
}

// Unwrap returns the underlying *http.Client for advanced use cases.
func (a *Adapter) Unwrap() *http.Client {
	return a.httpClient
}

// Name returns the adapter name.
func (a *Adapter) Name() string {
	return a.config.Name
}

// Close releases idle connections held by the adapter.
func (a *Adapter) Close(_ context.Context) error {
	a.httpClient.CloseIdleConnections()
	return nil
}

// GetConfig returns the adapter's configuration.
func (a *Adapter) GetConfig() Config {
	return a.config
}
