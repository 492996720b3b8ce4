package apiclient

import (
	"bytes"
	"testing"

	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/testutil"
)

type User struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name" validate:"required"`
}

// testAPI is an endpoint identifier whose descriptor is given inline.
type testAPI struct {
	name    string
	method  Method
	scheme  Scheme
	host    string
	path    string
	query   map[string]string
	body    map[string]any
	headers map[string]string
	task    Task
	mock    *MockSpec
}

func (a testAPI) Name() string                  { return a.name }
func (a testAPI) Method() Method                { return a.method }
func (a testAPI) Scheme() Scheme                { return a.scheme }
func (a testAPI) Host() string                  { return a.host }
func (a testAPI) Path() string                  { return a.path }
func (a testAPI) QueryItems() map[string]string { return a.query }
func (a testAPI) Body() map[string]any          { return a.body }
func (a testAPI) Headers() map[string]string    { return a.headers }
func (a testAPI) Task() Task                    { return a.task }
func (a testAPI) Mock() *MockSpec               { return a.mock }

func getUser(host string) testAPI {
	return testAPI{
		name:   "get_user",
		method: MethodGet,
		scheme: SchemeHTTP,
		host:   host,
		path:   "/users",
		query:  map[string]string{"id": "7"},
		task:   RequestPlain(),
	}
}

func withMock(api testAPI, mock MockSpec) testAPI {
	api.mock = &mock
	return api
}

var userFixtures = testutil.Fixtures(map[string]string{
	"user_ok.json":       `{"id":1,"name":"Bo"}`,
	"user_ok.yaml":       "id: 2\nname: Cy\n",
	"user_bad.json":      `{"id":"one"}`,
	"user_null.json":     `null`,
	"user_nameless.json": `{"id":1}`,
})

func usersServer(t *testing.T) *testutil.Server {
	t.Helper()
	srv := testutil.NewServer("users")
	testutil.T(t).Setup(srv)
	return srv
}

func newTestClient(t *testing.T, srv *testutil.Server, stubFn StubFunc[testAPI], opts ...Option) *Client[testAPI] {
	t.Helper()
	opts = append([]Option{WithFixtures(NewFSLoader(userFixtures)), WithLogger(nopLogger())}, opts...)
	return New[testAPI](srv.Client(), nil, stubFn, opts...)
}

func jsonLogger(buf *bytes.Buffer) *logger.Logger {
	return logger.NewWithWriter(buf, &logger.Config{Level: "debug", Format: "json"}, "apiclient")
}

func nopLogger() *logger.Logger {
	return logger.NewNop()
}
