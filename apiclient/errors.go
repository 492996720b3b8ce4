package apiclient

import (
	"errors"
	"fmt"
	"net/http"

	apperrors "github.com/kbukum/apikit/errors"
)

// Kind classifies a NetworkError. The set is closed.
type Kind int

const (
	// InvalidHTTPResponse: the transport returned something that is not an HTTP response.
	InvalidHTTPResponse Kind = iota + 1
	// URLError: the endpoint's components do not form a valid URL.
	URLError
	// BodyEncodingError: the request body cannot be serialized.
	BodyEncodingError
	// UnknownError: transport failure, or a stub requested without mock data.
	UnknownError
	// ServerError: status code outside 200-299.
	ServerError
	// Decode: the response body does not decode as the expected type.
	Decode
	// RequestError: a stub configured to simulate failure.
	RequestError
)

var kindNames = map[Kind]string{
	InvalidHTTPResponse: "invalid_http_response",
	URLError:            "url_error",
	BodyEncodingError:   "body_encoding_error",
	UnknownError:        "unknown_error",
	ServerError:         "server_error",
	Decode:              "decode",
	RequestError:        "request_error",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// URLComponents are the parts a URL was attempted from.
type URLComponents struct {
	Scheme     Scheme
	Host       string
	Path       string
	QueryItems map[string]string
}

// NetworkError is the failure every dispatch reports, apart from
// cancellation and fixture setup errors.
type NetworkError struct {
	Kind        Kind
	Description string
	// Components is set for URLError.
	Components *URLComponents
	// StatusCode is set for ServerError.
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	msg := "apiclient: " + e.Kind.String()
	switch {
	case e.Kind == ServerError && e.StatusCode != 0:
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	case e.Kind == URLError && e.Components != nil:
		c := e.Components
		msg += fmt.Sprintf(" (scheme=%q host=%q path=%q)", c.Scheme, c.Host, c.Path)
	}
	if e.Description != "" {
		msg += ": " + e.Description
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *NetworkError) Unwrap() error { return e.Err }

// AppError maps the failure onto the shared application error codes.
func (e *NetworkError) AppError() *apperrors.AppError {
	var app *apperrors.AppError
	switch e.Kind {
	case URLError, BodyEncodingError:
		app = apperrors.New(apperrors.ErrCodeInvalidInput, e.Error(), http.StatusBadRequest)
	case Decode:
		app = apperrors.New(apperrors.ErrCodeInvalidFormat, e.Error(), http.StatusBadGateway)
	case UnknownError:
		app = apperrors.New(apperrors.ErrCodeConnectionFailed, e.Error(), http.StatusBadGateway)
	case ServerError:
		app = apperrors.ExternalServiceError("upstream", e).WithDetail("status_code", e.StatusCode)
		if e.StatusCode == http.StatusServiceUnavailable {
			app.Code = apperrors.ErrCodeServiceUnavailable
		}
		return app
	case RequestError:
		app = apperrors.New(apperrors.ErrCodeServiceUnavailable, e.Error(), http.StatusServiceUnavailable)
	default:
		app = apperrors.New(apperrors.ErrCodeExternalService, e.Error(), http.StatusBadGateway)
	}
	return app.WithCause(e).WithDetail("kind", e.Kind.String())
}

func newError(kind Kind, description string, err error) *NetworkError {
	return &NetworkError{Kind: kind, Description: description, Err: err}
}

func errInvalidHTTPResponse(description string) *NetworkError {
	return newError(InvalidHTTPResponse, description, nil)
}

func errURL(c URLComponents, err error) *NetworkError {
	return &NetworkError{Kind: URLError, Description: "invalid URL components", Components: &c, Err: err}
}

func errBodyEncoding(err error) *NetworkError {
	return newError(BodyEncodingError, "", err)
}

func errUnknown(description string, err error) *NetworkError {
	return newError(UnknownError, description, err)
}

func errServer(status int) *NetworkError {
	return &NetworkError{Kind: ServerError, StatusCode: status}
}

func errDecode(err error) *NetworkError {
	return newError(Decode, "", err)
}

func errRequest(description string) *NetworkError {
	return newError(RequestError, description, nil)
}

// KindOf returns the Kind of the NetworkError in err's chain, or 0.
func KindOf(err error) Kind {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Kind
	}
	return 0
}

// IsKind reports whether err's chain holds a NetworkError of kind k.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}

// ErrFixtureNotFound is wrapped by FixtureError when the fixture is missing.
var ErrFixtureNotFound = errors.New("fixture not found")

// FixtureError reports a missing or corrupt fixture. It signals a broken
// test setup and is not part of the NetworkError taxonomy.
type FixtureError struct {
	Name string
	Kind FileKind
	Err  error
}

func (e *FixtureError) Error() string {
	return fmt.Sprintf("apiclient: fixture %s.%s: %v", e.Name, e.Kind, e.Err)
}

func (e *FixtureError) Unwrap() error { return e.Err }

// AppError maps a broken fixture setup to an internal AppError.
func (e *FixtureError) AppError() *apperrors.AppError {
	return apperrors.Internal(e).WithDetail("fixture", e.Name+"."+string(e.Kind))
}
