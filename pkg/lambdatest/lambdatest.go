// Package lambdatest provides helpers for building proxy events and
// inspecting replies in tests.
package lambdatest

import (
	"encoding/base64"
	"net/url"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"

	"lambda-jsonapi/internal/jsoncodec"
	"lambda-jsonapi/pkg/lambda"
)

// EventOption customises an event built by NewEvent.
type EventOption func(*lambda.Event)

// NewEvent builds an API Gateway proxy event for method and path. A query
// string in path is moved into the multi-value query parameters.
func NewEvent(method, path string, opts ...EventOption) *lambda.Event {
	event := &lambda.Event{APIGatewayProxyRequest: events.APIGatewayProxyRequest{
		HTTPMethod:                      strings.ToUpper(method),
		Path:                            path,
		Resource:                        path,
		Headers:                         map[string]string{},
		MultiValueQueryStringParameters: map[string][]string{},
		PathParameters:                  map[string]string{},
		RequestContext: events.APIGatewayProxyRequestContext{
			DomainName: "localhost",
			Identity:   events.APIGatewayRequestIdentity{SourceIP: "127.0.0.1"},
		},
	}}
	if rawPath, rawQuery, ok := strings.Cut(path, "?"); ok {
		event.Path = rawPath
		event.Resource = rawPath
		if values, err := url.ParseQuery(rawQuery); err == nil {
			for key, list := range values {
				event.MultiValueQueryStringParameters[key] = list
			}
		}
	}
	for _, opt := range opts {
		opt(event)
	}
	return event
}

// Resource sets the API Gateway resource template, e.g. "/items/{id}".
func Resource(resource string) EventOption {
	return func(e *lambda.Event) { e.Resource = resource }
}

// PathParameter sets one path parameter.
func PathParameter(key, value string) EventOption {
	return func(e *lambda.Event) { e.PathParameters[key] = value }
}

// Header sets one single-value header.
func Header(key, value string) EventOption {
	return func(e *lambda.Event) { e.Headers[key] = value }
}

// Query appends values to a multi-value query parameter.
func Query(key string, values ...string) EventOption {
	return func(e *lambda.Event) {
		e.MultiValueQueryStringParameters[key] = append(e.MultiValueQueryStringParameters[key], values...)
	}
}

// Body sets a raw body.
func Body(body string) EventOption {
	return func(e *lambda.Event) {
		e.Body = body
		e.IsBase64Encoded = false
	}
}

// Base64Body sets body base64 encoded.
func Base64Body(body []byte) EventOption {
	return func(e *lambda.Event) {
		e.Body = base64.StdEncoding.EncodeToString(body)
		e.IsBase64Encoded = true
	}
}

// JSONBody encodes v as the body and sets a JSON:API content type.
func JSONBody(t testing.TB, v any) EventOption {
	t.Helper()
	body, err := jsoncodec.MarshalToString(v)
	if err != nil {
		t.Fatalf("lambdatest: encode body: %v", err)
	}
	return func(e *lambda.Event) {
		e.Body = body
		e.IsBase64Encoded = false
		e.Headers["content-type"] = "application/vnd.api+json"
	}
}

// ELB marks the event as coming from an Application Load Balancer.
func ELB() EventOption {
	return func(e *lambda.Event) { e.ELB = true }
}

// Raw encodes event the way the platform delivers it, including the
// requestContext.elb marker for ELB events.
func Raw(t testing.TB, event *lambda.Event) []byte {
	t.Helper()
	raw, err := jsoncodec.Marshal(event.APIGatewayProxyRequest)
	if err != nil {
		t.Fatalf("lambdatest: encode event: %v", err)
	}
	if !event.ELB {
		return raw
	}

	var generic map[string]any
	if err := jsoncodec.Unmarshal(raw, &generic); err != nil {
		t.Fatalf("lambdatest: decode event: %v", err)
	}
	requestContext, _ := generic["requestContext"].(map[string]any)
	if requestContext == nil {
		requestContext = map[string]any{}
	}
	requestContext["elb"] = map[string]any{"targetGroupArn": "arn:aws:elasticloadbalancing:local:0:targetgroup/test"}
	generic["requestContext"] = requestContext

	raw, err = jsoncodec.Marshal(generic)
	if err != nil {
		t.Fatalf("lambdatest: encode event: %v", err)
	}
	return raw
}

// Document is a decoded JSON:API reply body.
type Document struct {
	Data     any              `json:"data"`
	Included []map[string]any `json:"included"`
	Errors   []ErrorObject    `json:"errors"`
	Meta     map[string]any   `json:"meta"`
}

// ErrorObject is a decoded JSON:API error.
type ErrorObject struct {
	Status string            `json:"status"`
	Title  string            `json:"title"`
	Detail string            `json:"detail"`
	Code   string            `json:"code"`
	Source map[string]string `json:"source"`
}

// DecodeReply decodes the reply body as a JSON:API document.
func DecodeReply(t testing.TB, reply lambda.Reply) Document {
	t.Helper()
	var doc Document
	if reply.Body == nil {
		t.Fatalf("lambdatest: reply %d has no body", reply.StatusCode)
	}
	if err := jsoncodec.UnmarshalFromString(*reply.Body, &doc); err != nil {
		t.Fatalf("lambdatest: decode reply body %q: %v", *reply.Body, err)
	}
	return doc
}

// Resource returns the single primary resource, or nil.
func (d Document) Resource() map[string]any {
	data, _ := d.Data.(map[string]any)
	return data
}

// Resources returns the primary resource collection, or nil.
func (d Document) Resources() []map[string]any {
	list, _ := d.Data.([]any)
	result := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			result = append(result, m)
		}
	}
	return result
}

// Attributes returns the attributes of the single primary resource.
func (d Document) Attributes() map[string]any {
	attributes, _ := d.Resource()["attributes"].(map[string]any)
	if attributes == nil {
		return map[string]any{}
	}
	return attributes
}
