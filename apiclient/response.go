package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"

	"github.com/kbukum/apikit/validation"
)

var errNullPayload = errors.New("null payload for non-nullable type")

// DecodeResponse classifies a status code and decodes body as T.
//
// 2xx decodes the whole body as JSON. Structs carrying `validate` tags are
// validated after decoding. Any other status is ServerError and the body is
// ignored.
func DecodeResponse[T any](status int, body []byte) (T, error) {
	var zero T
	switch {
	case status < 100 || status > 999:
		return zero, errInvalidHTTPResponse("invalid status code")
	case status < 200 || status > 299:
		return zero, errServer(status)
	}

	v, err := decodeJSON[T](body)
	if err != nil {
		return zero, errDecode(err)
	}
	if err := validateDecoded(v); err != nil {
		return zero, errDecode(err)
	}
	return v, nil
}

// HandleResponse reads and closes resp.Body, then applies DecodeResponse.
func HandleResponse[T any](resp *http.Response) (T, error) {
	var zero T
	if resp == nil {
		return zero, errInvalidHTTPResponse("no response")
	}
	if resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	if resp.StatusCode < 100 {
		return zero, errInvalidHTTPResponse("missing status line")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return zero, errServer(resp.StatusCode)
	}

	var body []byte
	if resp.Body != nil {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return zero, errUnknown("read response body", err)
		}
		body = data
	}
	return DecodeResponse[T](resp.StatusCode, body)
}

func decodeJSON[T any](data []byte) (T, error) {
	var v T
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) && !nullable[T]() {
		return v, errNullPayload
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, err
	}
	return v, nil
}

func nullable[T any]() bool {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return true
	}
	return false
}

func validateDecoded(v any) error {
	if !validation.Applies(v) {
		return nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	return validation.Validate(rv.Interface())
}
