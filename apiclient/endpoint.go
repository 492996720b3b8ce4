package apiclient

import (
	"maps"
	"net/http"
)

// Method is an HTTP method an endpoint may use.
type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodDelete Method = http.MethodDelete
)

// Scheme is the URL scheme of an endpoint.
type Scheme string

const (
	SchemeHTTP  Scheme = "http"
	SchemeHTTPS Scheme = "https"
)

// Task describes how an endpoint's payload is sent. It is either
// RequestPlain or RequestParameters.
type Task interface {
	isTask()
}

type plainTask struct{}

func (plainTask) isTask() {}

type parametersTask struct {
	params map[string]any
}

func (parametersTask) isTask() {}

// RequestPlain sends the endpoint exactly as described.
func RequestPlain() Task { return plainTask{} }

// RequestParameters merges params into the query string for GET and DELETE
// and into the JSON body for POST and PUT. Parameters win over body keys
// and query items of the same name.
func RequestParameters(params map[string]any) Task {
	return parametersTask{params: maps.Clone(params)}
}

// TaskParameters returns the parameters of a RequestParameters task.
func TaskParameters(t Task) (map[string]any, bool) {
	p, ok := t.(parametersTask)
	if !ok {
		return nil, false
	}
	return maps.Clone(p.params), true
}

// FileKind is the encoding of a fixture file and its file extension.
type FileKind string

const (
	FileKindJSON FileKind = "json"
	FileKindYAML FileKind = "yaml"
)

// MockSpec names the canned response of a stubbed endpoint.
type MockSpec struct {
	FixtureName string
	FixtureKind FileKind
	// SendError makes the stub fail with RequestError; the fixture is
	// never loaded.
	SendError bool
}

// API is the contract an endpoint identifier implements. Applications
// usually declare one type whose values enumerate their endpoints.
type API interface {
	Method() Method
	Scheme() Scheme
	Host() string
	Path() string
	QueryItems() map[string]string
	Body() map[string]any
	Headers() map[string]string
	Task() Task
	Mock() *MockSpec
}

// Named is optionally implemented by API values to give endpoints a stable
// name for stub configuration, logs and spans.
type Named interface {
	Name() string
}

// Endpoint describes one request. The engine never mutates an Endpoint;
// the request builder copies what it needs.
type Endpoint struct {
	Method     Method
	Scheme     Scheme
	Host       string
	Path       string
	QueryItems map[string]string
	Body       map[string]any
	Headers    map[string]string
	Task       Task
	Mock       *MockSpec
}

// EndpointFunc maps an endpoint identifier to its descriptor.
type EndpointFunc[A API] func(A) Endpoint

// EndpointMapping copies every field of api into a new Endpoint.
func EndpointMapping[A API](api A) Endpoint {
	var mock *MockSpec
	if m := api.Mock(); m != nil {
		cp := *m
		mock = &cp
	}
	return Endpoint{
		Method:     api.Method(),
		Scheme:     api.Scheme(),
		Host:       api.Host(),
		Path:       api.Path(),
		QueryItems: maps.Clone(api.QueryItems()),
		Body:       maps.Clone(api.Body()),
		Headers:    maps.Clone(api.Headers()),
		Task:       api.Task(),
		Mock:       mock,
	}
}
