package httpclient

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/propagation"

	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/observability"
)

// Doer performs one HTTP exchange.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoerFunc adapts a function to Doer.
type DoerFunc func(req *http.Request) (*http.Response, error)

// Do calls f(req).
func (f DoerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

// Middleware wraps a Doer with cross-cutting behavior.
type Middleware func(Doer) Doer

// Chain composes middlewares. The first one is outermost.
//
// Chain(a, b, c)(d) is equivalent to a(b(c(d))).
func Chain(middlewares ...Middleware) Middleware {
	return func(inner Doer) Doer {
		for i := len(middlewares) - 1; i >= 0; i-- {
			inner = middlewares[i](inner)
		}
		return inner
	}
}

// WithHeaders sets default headers that the request does not already carry.
func WithHeaders(headers map[string]string) Middleware {
	return func(inner Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			for k, v := range headers {
				if req.Header.Get(k) == "" {
					req.Header.Set(k, v)
				}
			}
			return inner.Do(req)
		})
	}
}

// WithUserAgent sets the User-Agent header when the request has none.
func WithUserAgent(ua string) Middleware {
	return WithHeaders(map[string]string{"User-Agent": ua})
}

// WithAuth applies auth to every request.
func WithAuth(auth *AuthConfig) Middleware {
	return func(inner Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			auth.apply(req)
			return inner.Do(req)
		})
	}
}

// WithRequestID stamps a fresh UUID into header unless one is present.
func WithRequestID(header string) Middleware {
	return func(inner Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(header) == "" {
				req.Header.Set(header, uuid.NewString())
			}
			return inner.Do(req)
		})
	}
}

// WithLogging logs each exchange: method, URL, status and duration.
func WithLogging(log *logger.Logger) Middleware {
	return func(inner Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := inner.Do(req)

			fields := logger.MergeWithDuration(logger.Fields(
				logger.FieldMethod, req.Method,
				logger.FieldEndpoint, req.URL.Redacted(),
			), time.Since(start))
			l := log.WithContext(req.Context())

			if err != nil {
				l.Warn("http exchange failed", logger.MergeWithError(fields, err))
				return resp, err
			}
			fields[logger.FieldStatusCode] = resp.StatusCode
			l.Debug("http exchange ok", fields)
			return resp, nil
		})
	}
}

// WithTracing opens an http.request span per exchange and propagates the
// trace context into the outbound headers.
func WithTracing() Middleware {
	return func(inner Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			ctx, span := observability.StartSpan(req.Context(), observability.SpanHTTPRequest)
			defer span.End()

			observability.SetSpanAttribute(ctx, observability.AttrHTTPMethod, req.Method)
			observability.SetSpanAttribute(ctx, observability.AttrHTTPURL, req.URL.Redacted())
			observability.InjectHeaders(ctx, propagation.HeaderCarrier(req.Header))

			resp, err := inner.Do(req.WithContext(ctx))
			if err != nil {
				observability.SetSpanError(ctx, err)
				return resp, err
			}
			observability.SetSpanAttribute(ctx, observability.AttrStatusCode, resp.StatusCode)
			return resp, nil
		})
	}
}

// WithMetrics records one transport sample per exchange.
func WithMetrics(m *observability.Metrics) Middleware {
	return func(inner Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := inner.Do(req)
			m.RecordTransport(req.Context(), req.Method, statusClass(resp, err), time.Since(start))
			return resp, err
		})
	}
}

func statusClass(resp *http.Response, err error) string {
	if err != nil || resp == nil {
		return "error"
	}
	return strconv.Itoa(resp.StatusCode/100) + "xx"
}
