package app

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lambda-jsonapi/internal/jsoncodec"
	"lambda-jsonapi/pkg/apierror"
	"lambda-jsonapi/pkg/controller"
	"lambda-jsonapi/pkg/jsonapi"
	"lambda-jsonapi/pkg/lambda"
	"lambda-jsonapi/pkg/lambdatest"
)

type item struct {
	ID   string
	Name string
}

type recordingNotifier struct {
	errs   []error
	fields []map[string]any
}

func (n *recordingNotifier) Notify(_ context.Context, err error, fields map[string]any) {
	n.errs = append(n.errs, err)
	n.fields = append(n.fields, fields)
}

func newLogger() (*logrus.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})
	return logger, &buf
}

func newTestApp(t *testing.T, opts ...Option) *Application {
	t.Helper()

	catalog := jsonapi.NewCatalog().RegisterFor(item{}, jsonapi.Typed(func(i item) jsonapi.Object {
		return jsonapi.Object{Type: "items", ID: i.ID, Attributes: map[string]any{"name": i.Name}}
	}))

	items := controller.MustNew("items",
		controller.JSONAPI(jsonapi.NewCatalogRenderer(catalog)),
		controller.Action("show", func(c *controller.Context) error {
			return c.Render(item{ID: c.Request().PathParameter("id"), Name: "Widget"})
		}),
		controller.Action("create", func(c *controller.Context) error {
			params, err := c.Params()
			if err != nil {
				return err
			}
			return c.Render(item{ID: "1", Name: params.String("name")}, controller.Status(http.StatusCreated))
		}),
		controller.Action("destroy", func(c *controller.Context) error {
			return apierror.New(http.StatusForbidden, "Items cannot be deleted")
		}),
		controller.Action("crash", func(c *controller.Context) error {
			return errors.New("database is on fire")
		}),
		controller.Action("panic", func(c *controller.Context) error {
			panic("unexpected")
		}),
	)

	a := New(opts...)
	require.NoError(t, a.Register(items))
	require.NoError(t, a.Route("GET", "/items/{id}", "items", "show"))
	require.NoError(t, a.Route("POST", "/items", "items", "create"))
	require.NoError(t, a.Route("DELETE", "/items/{id}", "items", "destroy"))
	require.NoError(t, a.Route("GET", "/crash", "items", "crash"))
	require.NoError(t, a.Route("GET", "/panic", "items", "panic"))
	require.NoError(t, a.Validate())
	return a
}

func TestHandleRendersResource(t *testing.T) {
	logger, _ := newLogger()
	a := newTestApp(t, WithLogger(logger))

	event := lambdatest.NewEvent("GET", "/items/42",
		lambdatest.Resource("/items/{id}"),
		lambdatest.PathParameter("id", "42"),
	)
	reply := a.Handle(context.Background(), event)

	assert.Equal(t, http.StatusOK, reply.StatusCode)
	assert.Equal(t, jsonapi.MediaType, reply.Headers["content-type"])
	assert.Nil(t, reply.IsBase64Encoded)
	doc := lambdatest.DecodeReply(t, reply)
	assert.Equal(t, "42", doc.Resource()["id"])
	assert.Equal(t, "Widget", doc.Attributes()["name"])
}

func TestHandleMatchesConcretePaths(t *testing.T) {
	a := newTestApp(t)

	reply := a.Handle(context.Background(), lambdatest.NewEvent("GET", "/items/7"))

	assert.Equal(t, http.StatusOK, reply.StatusCode)
	assert.Equal(t, "7", lambdatest.DecodeReply(t, reply).Resource()["id"])
}

func TestHandleInvalidBody(t *testing.T) {
	notifier := &recordingNotifier{}
	a := newTestApp(t, WithNotifier(notifier))

	reply := a.Handle(context.Background(), lambdatest.NewEvent("POST", "/items", lambdatest.Body("not json")))

	assert.Equal(t, http.StatusBadRequest, reply.StatusCode)
	doc := lambdatest.DecodeReply(t, reply)
	require.Len(t, doc.Errors, 1)
	assert.Equal(t, "400", doc.Errors[0].Status)
	assert.Equal(t, "Bad Request", doc.Errors[0].Title)
	assert.NotEmpty(t, doc.Errors[0].Detail)
	assert.Empty(t, notifier.errs)
}

func TestHandleCreate(t *testing.T) {
	a := newTestApp(t)

	event := lambdatest.NewEvent("POST", "/items", lambdatest.JSONBody(t, map[string]any{"name": "Gizmo"}))
	reply := a.Handle(context.Background(), event)

	assert.Equal(t, http.StatusCreated, reply.StatusCode)
	assert.Equal(t, "Gizmo", lambdatest.DecodeReply(t, reply).Attributes()["name"])
}

func TestHandleFrameworkError(t *testing.T) {
	notifier := &recordingNotifier{}
	a := newTestApp(t, WithNotifier(notifier))

	reply := a.Handle(context.Background(), lambdatest.NewEvent("DELETE", "/items/1"))

	assert.Equal(t, http.StatusForbidden, reply.StatusCode)
	assert.JSONEq(t, `{"errors":[{"status":"403","title":"Forbidden","detail":"Items cannot be deleted"}]}`, reply.BodyString())
	assert.Empty(t, notifier.errs)
}

func TestHandleUnknownRoute(t *testing.T) {
	a := newTestApp(t)

	reply := a.Handle(context.Background(), lambdatest.NewEvent("GET", "/nowhere"))

	assert.Equal(t, http.StatusNotFound, reply.StatusCode)
	doc := lambdatest.DecodeReply(t, reply)
	require.Len(t, doc.Errors, 1)
	assert.Contains(t, doc.Errors[0].Detail, "route not found: GET /nowhere")
}

func TestHandleUnexpectedError(t *testing.T) {
	tests := []struct {
		name   string
		expose bool
		detail string
	}{
		{"hidden", false, genericErrorDetail},
		{"exposed", true, "database is on fire"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := newLogger()
			notifier := &recordingNotifier{}
			a := newTestApp(t, WithLogger(logger), WithNotifier(notifier), ExposeErrorDetails(tt.expose))

			reply := a.Handle(context.Background(), lambdatest.NewEvent("GET", "/crash"))

			assert.Equal(t, http.StatusInternalServerError, reply.StatusCode)
			assert.JSONEq(t, `{"errors":[{"status":"500","title":"Internal Server Error","detail":"`+tt.detail+`"}]}`, reply.BodyString())
			assert.NotEmpty(t, reply.Headers["x-error-id"])
			require.Len(t, notifier.errs, 1)
			assert.EqualError(t, notifier.errs[0], "database is on fire")
			assert.Equal(t, "crash", notifier.fields[0]["action"])
			assert.Contains(t, logs.String(), "database is on fire")
			assert.Contains(t, logs.String(), reply.Headers["x-error-id"])
		})
	}
}

func TestHandlePanic(t *testing.T) {
	logger, logs := newLogger()
	notifier := &recordingNotifier{}
	a := newTestApp(t, WithLogger(logger), WithNotifier(notifier))

	reply := a.Handle(context.Background(), lambdatest.NewEvent("GET", "/panic"))

	assert.Equal(t, http.StatusInternalServerError, reply.StatusCode)
	require.Len(t, notifier.errs, 1)
	assert.EqualError(t, notifier.errs[0], "panic: unexpected")
	assert.Contains(t, logs.String(), "runtime/debug.Stack")
}

func TestHandleELB(t *testing.T) {
	a := newTestApp(t)

	reply := a.Handle(context.Background(), lambdatest.NewEvent("GET", "/items/1", lambdatest.ELB()))

	require.NotNil(t, reply.IsBase64Encoded)
	assert.False(t, *reply.IsBase64Encoded)
}

func TestHandler(t *testing.T) {
	a := newTestApp(t)
	handler := a.Handler()

	raw := lambdatest.Raw(t, lambdatest.NewEvent("GET", "/items/5", lambdatest.ELB()))
	reply, err := handler(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, reply.StatusCode)
	require.NotNil(t, reply.IsBase64Encoded)

	encoded, err := jsoncodec.MarshalToString(reply)
	require.NoError(t, err)
	assert.Contains(t, encoded, `"isBase64Encoded":false`)

	reply, err = handler(context.Background(), []byte(`[1,2`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, reply.StatusCode)
}

func TestRequestLogger(t *testing.T) {
	logger, logs := newLogger()
	a := newTestApp(t, WithLogger(logger))

	ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{AwsRequestID: "req-123"})
	a.Handle(ctx, lambdatest.NewEvent("GET", "/items/9?page=2"))

	var entry map[string]any
	require.NoError(t, jsoncodec.Unmarshal(logs.Bytes(), &entry))
	assert.Equal(t, "Request completed", entry["msg"])
	assert.Equal(t, "/items/9", entry["url"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, float64(200), entry["status"])
	assert.Equal(t, "items", entry["controller"])
	assert.Equal(t, "show", entry["action"])
	assert.Equal(t, "req-123", entry["request_id"])
	assert.Equal(t, map[string]any{"id": "9", "page": "2"}, entry["params"])
	assert.Greater(t, entry["length"], float64(0))
}

func TestMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics("test")
	require.NoError(t, metrics.Register(registry))
	a := newTestApp(t, WithMetrics(metrics))

	a.Handle(context.Background(), lambdatest.NewEvent("GET", "/items/1"))
	a.Handle(context.Background(), lambdatest.NewEvent("GET", "/items/2"))
	a.Handle(context.Background(), lambdatest.NewEvent("GET", "/missing"))

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.requests.WithLabelValues("items", "show", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues("none", "none", "404")))
	assert.Error(t, metrics.Register(registry))
}

func TestValidate(t *testing.T) {
	a := New()
	require.NoError(t, a.Register(controller.MustNew("items", controller.Action("show", func(*controller.Context) error { return nil }))))
	require.NoError(t, a.Route("GET", "/items/{id}", "items", "show"))
	require.NoError(t, a.Route("GET", "/items", "items", "index"))
	require.NoError(t, a.Route("GET", "/users", "users", "index"))

	err := a.Validate()
	assert.ErrorIs(t, err, ErrUnknownController)
	assert.ErrorIs(t, err, controller.ErrUnknownAction)

	assert.Error(t, a.Register(controller.MustNew("items")))
	assert.Len(t, a.Routes(), 3)
}

func TestHandleNilEvent(t *testing.T) {
	reply := New().Handle(context.Background(), nil)
	assert.Equal(t, http.StatusNotFound, reply.StatusCode)
	assert.IsType(t, lambda.Reply{}, reply)
}

func TestRescuerKeepsErrorMetadata(t *testing.T) {
	logger, _ := newLogger()
	call := &Call{Request: lambda.NewRequest(nil), Response: lambda.NewResponse()}
	failing := func(context.Context, *Call) error {
		return apierror.New(http.StatusConflict, "already taken").WithPointer("/data/attributes/email").WithCode("duplicate")
	}

	err := Rescuer(logger, false)(failing)(context.Background(), call)

	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, call.Response.Status())
	assert.False(t, call.Response.HasHeader("x-error-id"))
	assert.JSONEq(t,
		`{"errors":[{"status":"409","title":"Conflict","detail":"already taken","code":"duplicate","source":{"pointer":"/data/attributes/email"}}]}`,
		call.Response.Body().(string))
}

func TestRescuerLogsActionStack(t *testing.T) {
	logger, logs := newLogger()
	a := newTestApp(t, WithLogger(logger))

	reply := a.Handle(context.Background(), lambdatest.NewEvent("GET", "/crash"))
	require.Equal(t, http.StatusInternalServerError, reply.StatusCode)

	var entry map[string]any
	require.NoError(t, jsoncodec.UnmarshalFromString(lastLine(logs.String(), "database is on fire"), &entry))
	stack, _ := entry["stack"].(string)
	assert.Contains(t, stack, "goroutine")
	assert.Contains(t, stack, "controller.(*Controller).dispatch")
	assert.NotEqual(t, "database is on fire", stack)
}

func TestHandleRendersTypedNilError(t *testing.T) {
	c := controller.MustNew("items",
		controller.JSONAPI(jsonapi.NewCatalogRenderer(jsonapi.NewCatalog())),
		controller.Action("show", func(c *controller.Context) error {
			var missing *apierror.Error
			return c.Render(missing)
		}),
	)
	a := New()
	require.NoError(t, a.Register(c))
	require.NoError(t, a.Route("GET", "/items/{id}", "items", "show"))

	reply := a.Handle(context.Background(), lambdatest.NewEvent("GET", "/items/1", lambdatest.Resource("/items/{id}")))

	assert.Equal(t, http.StatusOK, reply.StatusCode)
	assert.JSONEq(t, `{"data":{}}`, reply.BodyString())
}

func lastLine(logs, substr string) string {
	lines := strings.Split(strings.TrimSpace(logs), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.Contains(lines[i], substr) {
			return lines[i]
		}
	}
	return ""
}
