package lambda

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"lambda-jsonapi/internal/jsoncodec"
)

// DefaultContentType seeds every new response.
const DefaultContentType = "application/vnd.api+json"

// Response is the mutable response owned by one controller invocation.
type Response struct {
	status  int
	headers *Headers
	body    any
}

// NewResponse returns a 200 response with the default content type.
func NewResponse() *Response {
	r := &Response{status: http.StatusOK, headers: NewHeaders()}
	r.headers.Set("content-type", DefaultContentType)
	return r
}

func (r *Response) Status() int { return r.status }

func (r *Response) SetStatus(status int) { r.status = status }

// StatusMessage returns the reason phrase of the current status.
func (r *Response) StatusMessage() string { return http.StatusText(r.status) }

func (r *Response) Headers() *Headers { return r.headers }

func (r *Response) SetHeader(key string, value any) { r.headers.Set(key, value) }

func (r *Response) Header(key string) string { return r.headers.Get(key) }

func (r *Response) DeleteHeader(key string) { r.headers.Delete(key) }

func (r *Response) HasHeader(key string) bool { return r.headers.Has(key) }

// Body returns the body as set: a string, a byte slice, or any value that
// serializes to JSON.
func (r *Response) Body() any { return r.body }

func (r *Response) SetBody(body any) { r.body = body }

func statusWithoutBody(status int) bool {
	return (status >= 100 && status <= 199) || status == http.StatusNoContent || status == http.StatusNotModified
}

func isBlank(body any) bool {
	switch v := body.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []byte:
		return strings.TrimSpace(string(v)) == ""
	}
	rv := reflect.ValueOf(body)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// WireBody returns the body as it goes on the wire, or nil when the status
// forbids a body or the body is blank.
func (r *Response) WireBody() (*string, error) {
	if statusWithoutBody(r.status) || isBlank(r.body) {
		return nil, nil
	}
	var s string
	switch v := r.body.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		encoded, err := jsoncodec.MarshalToString(v)
		if err != nil {
			return nil, fmt.Errorf("encode response body: %w", err)
		}
		s = encoded
	}
	return &s, nil
}

// WireStatus returns the status that goes on the wire for the given body. A
// 2xx or 3xx response without a body becomes 204 or 304.
func (r *Response) WireStatus(body *string) int {
	if body != nil {
		return r.status
	}
	switch {
	case r.status >= 200 && r.status <= 299:
		return http.StatusNoContent
	case r.status >= 300 && r.status <= 399:
		return http.StatusNotModified
	}
	return r.status
}

// Reply renders the platform envelope. elb adds isBase64Encoded: false, which
// ALB target groups require.
func (r *Response) Reply(elb bool) (Reply, error) {
	body, err := r.WireBody()
	if err != nil {
		return Reply{}, err
	}
	reply := Reply{
		StatusCode: r.WireStatus(body),
		Headers:    r.headers.Map(),
		Body:       body,
	}
	if elb {
		encoded := false
		reply.IsBase64Encoded = &encoded
	}
	return reply, nil
}
