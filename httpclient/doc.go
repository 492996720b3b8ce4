// Package httpclient provides the live HTTP transport used by apiclient:
// an *http.Client with TLS, optional HTTP/2, default headers, auth,
// request IDs, and logging/tracing/metrics middleware.
//
// # Basic Usage
//
//	adapter, err := httpclient.New(httpclient.Config{
//	    Timeout: 30 * time.Second,
//	    Auth:    httpclient.BearerAuth("my-token"),
//	}, httpclient.WithLogger(log), httpclient.WithSpans())
//
//	resp, err := adapter.Do(req)
//
// Adapter satisfies apiclient.Session, so it can be handed straight to
// apiclient.New.
package httpclient
