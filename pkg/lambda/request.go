package lambda

import (
	"encoding/base64"
	"regexp"
	"strings"

	"lambda-jsonapi/internal/jsoncodec"
	"lambda-jsonapi/pkg/apierror"
)

var localhost = regexp.MustCompile(`^127\.\d{1,3}\.\d{1,3}\.\d{1,3}$|^::1$|^0:0:0:0:0:0:0:1(%.*)?$`)

var xmlHTTPRequest = regexp.MustCompile(`(?i)XMLHttpRequest`)

const nonObjectBodyMessage = "The request body must be empty or a JSON object."

// Request is the canonical request read from a proxy event. It is owned by a
// single invocation.
type Request struct {
	event       *Event
	headers     *Headers
	rawBody     []byte
	bodyErr     error
	queryString string

	bodyParams  map[string]any
	queryParams map[string]any
}

// NewRequest reads event into a Request.
func NewRequest(event *Event) *Request {
	if event == nil {
		event = &Event{}
	}
	r := &Request{event: event}
	r.headers = readHeaders(event)
	r.rawBody, r.bodyErr = decodeBody(event)
	r.queryString = BuildQuery(queryParameterSource(event))
	return r
}

func readHeaders(event *Event) *Headers {
	h := HeadersFromMap(event.Headers)
	for key, values := range event.MultiValueHeaders {
		if len(values) == 0 {
			continue
		}
		h.Set(key, strings.Join(values, ", "))
	}
	return h
}

func decodeBody(event *Event) ([]byte, error) {
	if event.Body == "" {
		return nil, nil
	}
	if !event.IsBase64Encoded {
		return []byte(event.Body), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(event.Body)
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(event.Body, "="))
	}
	if err != nil {
		return nil, apierror.New(400, "The request body is not valid base64.")
	}
	return decoded, nil
}

// queryParameterSource prefers the multi-value map. The single-value map drops
// repeated keys and is only consulted when no multi-value map was delivered.
func queryParameterSource(event *Event) map[string][]string {
	if event.MultiValueQueryStringParameters != nil {
		return event.MultiValueQueryStringParameters
	}
	if event.QueryStringParameters == nil {
		return nil
	}
	result := make(map[string][]string, len(event.QueryStringParameters))
	for key, value := range event.QueryStringParameters {
		result[key] = []string{value}
	}
	return result
}

// Event returns the underlying proxy event.
func (r *Request) Event() *Event { return r.event }

// Method returns the upper-cased HTTP method.
func (r *Request) Method() string {
	return strings.ToUpper(r.event.HTTPMethod)
}

func (r *Request) Path() string { return r.event.Path }

// Resource returns the API Gateway resource template, e.g. "/items/{id}".
func (r *Request) Resource() string { return r.event.Resource }

func (r *Request) Headers() *Headers { return r.headers }

func (r *Request) Header(key string) string { return r.headers.Get(key) }

// RawBody returns the body, base64-decoded when the event says so, or nil when
// the event has no body.
func (r *Request) RawBody() []byte { return r.rawBody }

func (r *Request) ContentLength() int { return len(r.rawBody) }

func (r *Request) MediaType() string { return r.headers.Get("content-type") }

// RequestParameters parses the body as a JSON object. A blank body yields an
// empty map; anything other than a JSON object fails with a 400 error.
func (r *Request) RequestParameters() (map[string]any, error) {
	if r.bodyErr != nil {
		return nil, r.bodyErr
	}
	if r.bodyParams != nil {
		return r.bodyParams, nil
	}
	if strings.TrimSpace(string(r.rawBody)) == "" {
		r.bodyParams = map[string]any{}
		return r.bodyParams, nil
	}

	var data any
	if err := jsoncodec.Unmarshal(r.rawBody, &data); err != nil {
		return nil, apierror.Wrap(400, err)
	}
	obj, ok := data.(map[string]any)
	if !ok {
		return nil, apierror.New(400, nonObjectBodyMessage)
	}
	r.bodyParams = obj
	return obj, nil
}

// QueryString returns the query string rebuilt from the event's query
// parameters.
func (r *Request) QueryString() string { return r.queryString }

// QueryParameters decodes the rebuilt query string with nested bracket
// semantics.
func (r *Request) QueryParameters() (map[string]any, error) {
	if r.queryParams != nil {
		return r.queryParams, nil
	}
	params, err := ParseNestedQuery(r.queryString)
	if err != nil {
		return nil, apierror.Wrap(400, err)
	}
	r.queryParams = params
	return params, nil
}

// PathParameters returns the event's path parameters, never nil.
func (r *Request) PathParameters() map[string]string {
	result := make(map[string]string, len(r.event.PathParameters))
	for key, value := range r.event.PathParameters {
		result[key] = value
	}
	return result
}

func (r *Request) PathParameter(key string) string {
	return r.event.PathParameters[key]
}

// FullPath returns the path followed by the rebuilt query string.
//
// API Gateway does not deliver the path exactly as the client sent it, so this
// is equivalent to, but not necessarily identical with, the original request
// target.
func (r *Request) FullPath() string {
	if r.queryString == "" {
		return r.event.Path
	}
	return r.event.Path + "?" + r.queryString
}

// OriginalURL returns an https URL built from the request's domain name and
// FullPath.
func (r *Request) OriginalURL() string {
	return "https://" + r.event.RequestContext.DomainName + r.FullPath()
}

func (r *Request) SourceIP() string {
	return r.event.RequestContext.Identity.SourceIP
}

// IsLocalAddress reports whether the source IP is a loopback address.
func (r *Request) IsLocalAddress() bool {
	return localhost.MatchString(r.SourceIP())
}

// AuthorizationHeader returns the authorization header, falling back to
// x-authorization.
func (r *Request) AuthorizationHeader() string {
	if value, ok := r.headers.Lookup("authorization"); ok && value != "" {
		return value
	}
	return r.headers.Get("x-authorization")
}

func (r *Request) IsXHR() bool {
	return xmlHTTPRequest.MatchString(r.headers.Get("x-requested-with"))
}

func (r *Request) IsELB() bool { return r.event.ELB }
