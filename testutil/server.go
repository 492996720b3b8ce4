package testutil

import (
	"context"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/apikit/component"
)

// Response is a canned upstream reply.
type Response struct {
	Status int
	Body   string
	Header map[string]string
	// Delay holds the reply back; a client that gives up first sees no reply.
	Delay time.Duration
}

// RecordedRequest is one request the server received.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Server is a fake upstream API on a gin engine behind httptest. Routes
// answer with canned responses and every request is recorded, so tests can
// assert exactly what went over the wire, or that nothing did.
type Server struct {
	name string

	mu       sync.Mutex
	routes   map[string]Response
	requests []RecordedRequest
	srv      *httptest.Server
}

var _ TestComponent = (*Server)(nil)
var _ component.Describable = (*Server)(nil)

// NewServer creates an unstarted fake upstream.
func NewServer(name string) *Server {
	return &Server{name: name, routes: make(map[string]Response)}
}

func routeKey(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

// Handle registers the reply for method and path. Unregistered routes get 404.
func (s *Server) Handle(method, path string, resp Response) *Server {
	if resp.Status == 0 {
		resp.Status = http.StatusOK
	}
	s.mu.Lock()
	s.routes[routeKey(method, path)] = resp
	s.mu.Unlock()
	return s
}

// JSON registers a JSON body with the given status.
func (s *Server) JSON(method, path string, status int, body string) *Server {
	return s.Handle(method, path, Response{Status: status, Body: body})
}

// Name returns the component name.
func (s *Server) Name() string { return s.name }

// Start binds the server to a random local port.
func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv != nil {
		return fmt.Errorf("server %s already started", s.name)
	}

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Any("/*path", s.serve)

	s.srv = httptest.NewServer(engine)
	return nil
}

// Stop shuts the server down.
func (s *Server) Stop(_ context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.srv = nil
	s.mu.Unlock()
	if srv != nil {
		srv.Close()
	}
	return nil
}

// Health reports healthy while the server is running.
func (s *Server) Health(_ context.Context) component.Health {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv == nil {
		return component.Health{Name: s.name, Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: s.name, Status: component.StatusHealthy}
}

// Describe summarises the server.
func (s *Server) Describe() component.Description {
	s.mu.Lock()
	defer s.mu.Unlock()
	return component.Description{
		Name:    s.name,
		Type:    "fake-upstream",
		Details: fmt.Sprintf("routes=%d", len(s.routes)),
	}
}

// Reset forgets recorded requests. Routes are kept.
func (s *Server) Reset(_ context.Context) error {
	s.mu.Lock()
	s.requests = nil
	s.mu.Unlock()
	return nil
}

// Snapshot captures the route table.
func (s *Server) Snapshot(_ context.Context) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.routes), nil
}

// Restore replaces the route table with a snapshot.
func (s *Server) Restore(_ context.Context, snapshot interface{}) error {
	routes, ok := snapshot.(map[string]Response)
	if !ok {
		return fmt.Errorf("server %s: unexpected snapshot type %T", s.name, snapshot)
	}
	s.mu.Lock()
	s.routes = maps.Clone(routes)
	s.mu.Unlock()
	return nil
}

// URL returns the base URL, e.g. http://127.0.0.1:41234.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv == nil {
		return ""
	}
	return s.srv.URL
}

// Host returns host:port of the running server.
func (s *Server) Host() string {
	u, err := url.Parse(s.URL())
	if err != nil {
		return ""
	}
	return u.Host
}

// Client returns an *http.Client for the server.
func (s *Server) Client() *http.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv == nil {
		return http.DefaultClient
	}
	return s.srv.Client()
}

// Requests returns the recorded requests in arrival order.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// Hits counts requests received for method and path.
func (s *Server) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if routeKey(r.Method, r.Path) == routeKey(method, path) {
			n++
		}
	}
	return n
}

// TotalHits counts all recorded requests.
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *Server) serve(c *gin.Context) {
	body, _ := io.ReadAll(c.Request.Body)
	rec := RecordedRequest{
		Method: c.Request.Method,
		Path:   c.Request.URL.Path,
		Query:  c.Request.URL.Query(),
		Header: c.Request.Header.Clone(),
		Body:   body,
	}

	s.mu.Lock()
	s.requests = append(s.requests, rec)
	resp, ok := s.routes[routeKey(rec.Method, rec.Path)]
	s.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no route for " + routeKey(rec.Method, rec.Path)})
		return
	}

	if resp.Delay > 0 {
		timer := time.NewTimer(resp.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-c.Request.Context().Done():
			return
		}
	}

	for k, v := range resp.Header {
		c.Header(k, v)
	}
	contentType := "application/json"
	if ct, ok := resp.Header["Content-Type"]; ok {
		contentType = ct
	}
	c.Data(resp.Status, contentType, []byte(resp.Body))
}
