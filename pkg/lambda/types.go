package lambda

import (
	"fmt"

	"github.com/aws/aws-lambda-go/events"

	"lambda-jsonapi/internal/jsoncodec"
)

// Event is an API Gateway (REST) or ALB proxy event.
type Event struct {
	events.APIGatewayProxyRequest

	// ELB is set when the event's request context carries an "elb" entry, i.e.
	// the event came from an Application Load Balancer target group.
	ELB bool
}

// ParseEvent decodes a raw proxy event.
func ParseEvent(raw []byte) (*Event, error) {
	event := &Event{}
	if err := jsoncodec.Unmarshal(raw, &event.APIGatewayProxyRequest); err != nil {
		return nil, fmt.Errorf("decode proxy event: %w", err)
	}

	var probe struct {
		RequestContext map[string]any `json:"requestContext"`
	}
	if err := jsoncodec.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("decode proxy event request context: %w", err)
	}
	_, event.ELB = probe.RequestContext["elb"]

	return event, nil
}

// Reply is the envelope returned to the platform. Body is nil when the
// response has no entity body.
type Reply struct {
	StatusCode      int               `json:"statusCode"`
	Headers         map[string]string `json:"headers"`
	Body            *string           `json:"body"`
	IsBase64Encoded *bool             `json:"isBase64Encoded,omitempty"`
}

// BodyString returns the body, or "" when there is none.
func (r Reply) BodyString() string {
	if r.Body == nil {
		return ""
	}
	return *r.Body
}

// ProxyResponse converts the reply into the aws-lambda-go API Gateway type.
func (r Reply) ProxyResponse() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode:      r.StatusCode,
		Headers:         r.Headers,
		Body:            r.BodyString(),
		IsBase64Encoded: r.IsBase64Encoded != nil && *r.IsBase64Encoded,
	}
}
