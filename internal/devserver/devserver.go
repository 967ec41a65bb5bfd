// Package devserver runs the Lambda application behind a local gin server.
package devserver

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"lambda-jsonapi/internal/config"
	"lambda-jsonapi/internal/middleware"
	"lambda-jsonapi/pkg/apierror"
	"lambda-jsonapi/pkg/jsonapi"
	"lambda-jsonapi/pkg/lambda"
)

// MaxBodySize matches the synchronous Lambda invocation payload limit.
const MaxBodySize = 6 << 20

// Handler processes one proxy event.
type Handler interface {
	Handle(ctx context.Context, event *lambda.Event) lambda.Reply
}

// NewRouter returns a gin engine that serves /health and /metrics and proxies
// every other request to handler as an API Gateway event.
func NewRouter(cfg *config.Config, logger *logrus.Logger, handler Handler, registry *prometheus.Registry) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(logger))
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RateLimiter(logger, cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	router.Use(middleware.RequestSizeLimit(MaxBodySize))
	router.Use(middleware.ContentTypeValidation())

	started := time.Now()
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "healthy",
			"timestamp":   time.Now().UTC(),
			"uptime":      time.Since(started).Round(time.Second).String(),
			"environment": cfg.Environment,
			"stage":       cfg.Stage,
		})
	})
	if registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	router.NoRoute(Proxy(cfg.Stage, handler))
	return router
}

// Proxy converts requests into proxy events for handler and writes its reply.
func Proxy(stage string, handler Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			err := apierror.New(http.StatusRequestEntityTooLarge, "").WithDetail(err.Error())
			c.Data(http.StatusRequestEntityTooLarge, jsonapi.MediaType, []byte(jsonapi.ErrorDocument(err).String()))
			return
		}

		event := EventFromRequest(c.Request, body, c.ClientIP())
		event.RequestContext.Stage = stage
		event.RequestContext.RequestID = c.GetString(middleware.RequestIDKey)

		WriteReply(c, handler.Handle(c.Request.Context(), event))
	}
}

// EventFromRequest builds the API Gateway event for r. Bodies that are not
// valid UTF-8 are base64 encoded.
func EventFromRequest(r *http.Request, body []byte, sourceIP string) *lambda.Event {
	headers := make(map[string]string, len(r.Header))
	multiHeaders := make(map[string][]string, len(r.Header))
	for key, values := range r.Header {
		name := strings.ToLower(key)
		multiHeaders[name] = values
		headers[name] = values[len(values)-1]
	}
	if r.Host != "" {
		headers["host"] = r.Host
		multiHeaders["host"] = []string{r.Host}
	}

	query := r.URL.Query()
	singleQuery := make(map[string]string, len(query))
	for key, values := range query {
		singleQuery[key] = values[len(values)-1]
	}

	event := &lambda.Event{APIGatewayProxyRequest: events.APIGatewayProxyRequest{
		HTTPMethod:                      r.Method,
		Path:                            r.URL.Path,
		Resource:                        r.URL.Path,
		Headers:                         headers,
		MultiValueHeaders:               multiHeaders,
		QueryStringParameters:           singleQuery,
		MultiValueQueryStringParameters: map[string][]string(query),
		RequestContext: events.APIGatewayProxyRequestContext{
			DomainName: hostname(r.Host),
			HTTPMethod: r.Method,
			Path:       r.URL.Path,
			Identity:   events.APIGatewayRequestIdentity{SourceIP: sourceIP, UserAgent: r.UserAgent()},
		},
	}}
	if utf8.Valid(body) {
		event.Body = string(body)
	} else {
		event.Body = base64.StdEncoding.EncodeToString(body)
		event.IsBase64Encoded = true
	}
	return event
}

// WriteReply copies reply onto the gin response.
func WriteReply(c *gin.Context, reply lambda.Reply) {
	response := reply.ProxyResponse()
	for key, value := range response.Headers {
		c.Header(key, value)
	}
	if reply.Body == nil {
		c.Status(response.StatusCode)
		c.Writer.WriteHeaderNow()
		return
	}

	body := []byte(response.Body)
	if response.IsBase64Encoded {
		if decoded, err := base64.StdEncoding.DecodeString(response.Body); err == nil {
			body = decoded
		}
	}
	c.Data(response.StatusCode, response.Headers["content-type"], body)
}

func hostname(host string) string {
	if name, _, ok := strings.Cut(host, ":"); ok {
		return name
	}
	return host
}
