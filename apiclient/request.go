package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strings"
)

// URL builds the request URL from scheme, host, path and query items.
// It fails with URLError when the components cannot form a valid URL.
func (e Endpoint) URL() (*url.URL, error) {
	query := e.QueryItems
	if params, ok := TaskParameters(e.Task); ok && !e.hasBody() {
		query = maps.Clone(query)
		if query == nil {
			query = make(map[string]string, len(params))
		}
		for k, v := range params {
			query[k] = fmt.Sprint(v)
		}
	}

	components := URLComponents{Scheme: e.Scheme, Host: e.Host, Path: e.Path, QueryItems: query}

	switch e.Scheme {
	case SchemeHTTP, SchemeHTTPS:
	default:
		return nil, errURL(components, fmt.Errorf("unsupported scheme %q", e.Scheme))
	}
	if e.Host == "" {
		return nil, errURL(components, errors.New("empty host"))
	}
	if strings.ContainsAny(e.Host, "/?#@") {
		return nil, errURL(components, fmt.Errorf("invalid host %q", e.Host))
	}
	if e.Path != "" && !strings.HasPrefix(e.Path, "/") {
		return nil, errURL(components, fmt.Errorf("path %q must start with /", e.Path))
	}

	u := &url.URL{Scheme: string(e.Scheme), Host: e.Host, Path: e.Path}
	if len(query) > 0 {
		values := make(url.Values, len(query))
		for k, v := range query {
			values.Set(k, v)
		}
		u.RawQuery = values.Encode()
	}

	// Round-trip through the parser so hosts with invalid characters or
	// ports are rejected here rather than by the transport.
	parsed, err := url.Parse(u.String())
	if err != nil {
		return nil, errURL(components, err)
	}
	if parsed.Host != e.Host {
		return nil, errURL(components, fmt.Errorf("invalid host %q", e.Host))
	}
	return parsed, nil
}

// hasBody reports whether parameters travel in the body for this method.
func (e Endpoint) hasBody() bool {
	return e.Method == MethodPost || e.Method == MethodPut
}

// NewRequest builds the transport request. URL failures are URLError and
// body serialization failures are BodyEncodingError.
func (e Endpoint) NewRequest(ctx context.Context) (*http.Request, error) {
	u, err := e.URL()
	if err != nil {
		return nil, err
	}

	body := e.Body
	if params, ok := TaskParameters(e.Task); ok && e.hasBody() {
		body = maps.Clone(body)
		if body == nil {
			body = make(map[string]any, len(params))
		}
		maps.Copy(body, params)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errBodyEncoding(err)
		}
		reader = bytes.NewReader(data)
	}

	method := string(e.Method)
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, errURL(URLComponents{Scheme: e.Scheme, Host: e.Host, Path: e.Path, QueryItems: e.QueryItems}, err)
	}

	for k, v := range e.Headers {
		req.Header.Set(k, v)
	}
	if reader != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}
