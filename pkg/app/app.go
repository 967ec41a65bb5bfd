// Package app ties controllers, routes and middleware into a Lambda handler.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"lambda-jsonapi/pkg/apierror"
	"lambda-jsonapi/pkg/controller"
	"lambda-jsonapi/pkg/jsonapi"
	"lambda-jsonapi/pkg/lambda"
)

// ErrUnknownController is returned when a route names a controller that was
// never registered.
var ErrUnknownController = errors.New("unknown controller")

// Application routes proxy events to controllers through a middleware stack:
// request logger, metrics, rescuer, alerting, then middleware added with Use,
// then the dispatcher.
type Application struct {
	logger        *logrus.Logger
	notifier      Notifier
	metrics       *Metrics
	exposeDetails bool

	router      Router
	controllers map[string]controller.Dispatcher
	middleware  []Middleware
}

// Option configures an Application.
type Option func(*Application)

// WithLogger sets the logger used by the request logger and the rescuer.
func WithLogger(logger *logrus.Logger) Option {
	return func(a *Application) { a.logger = logger }
}

// WithNotifier enables alerting for server errors.
func WithNotifier(n Notifier) Option {
	return func(a *Application) { a.notifier = n }
}

// WithMetrics records dispatch metrics. The collectors must be registered by
// the caller.
func WithMetrics(m *Metrics) Option {
	return func(a *Application) { a.metrics = m }
}

// ExposeErrorDetails makes the rescuer include the message of unexpected
// errors in the response.
func ExposeErrorDetails(expose bool) Option {
	return func(a *Application) { a.exposeDetails = expose }
}

func New(opts ...Option) *Application {
	a := &Application{
		logger:      logrus.New(),
		controllers: make(map[string]controller.Dispatcher),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Register adds controllers. Names must be unique.
func (a *Application) Register(controllers ...controller.Dispatcher) error {
	for _, c := range controllers {
		if _, exists := a.controllers[c.Name()]; exists {
			return fmt.Errorf("controller %q registered twice", c.Name())
		}
		a.controllers[c.Name()] = c
	}
	return nil
}

// Route maps method and resource to controllerName#action.
func (a *Application) Route(method, resource, controllerName, action string) error {
	return a.router.Add(Route{Method: method, Resource: resource, Controller: controllerName, Action: action})
}

// Routes returns the route table.
func (a *Application) Routes() []Route {
	return a.router.Routes()
}

// Use appends middleware run inside the rescuer, in order.
func (a *Application) Use(mws ...Middleware) {
	a.middleware = append(a.middleware, mws...)
}

// Validate checks that every route names a registered controller and, where
// the controller can tell, a defined action.
func (a *Application) Validate() error {
	var errs []error
	for _, route := range a.router.routes {
		c, ok := a.controllers[route.Controller]
		if !ok {
			errs = append(errs, fmt.Errorf("%s: %w %q", route, ErrUnknownController, route.Controller))
			continue
		}
		if actions, ok := c.(interface{ HasAction(string) bool }); ok && !actions.HasAction(route.Action) {
			errs = append(errs, fmt.Errorf("%s: %w %q", route, controller.ErrUnknownAction, route.Action))
		}
	}
	return errors.Join(errs...)
}

func (a *Application) stack() HandlerFunc {
	mws := []Middleware{RequestLogger(a.logger)}
	if a.metrics != nil {
		mws = append(mws, a.metrics.Middleware())
	}
	mws = append(mws, Rescuer(a.logger, a.exposeDetails))
	if a.notifier != nil {
		mws = append(mws, Alerting(a.notifier))
	}
	mws = append(mws, a.middleware...)
	return Chain(a.dispatch, mws...)
}

func (a *Application) dispatch(ctx context.Context, call *Call) error {
	if !call.Matched {
		err := fmt.Errorf("%w: %s %s", ErrRouteNotFound, call.Request.Method(), call.Request.Path())
		return apierror.Wrap(http.StatusNotFound, err)
	}
	c, ok := a.controllers[call.Route.Controller]
	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnknownController, call.Route.Controller)
		return apierror.Wrap(http.StatusInternalServerError, err)
	}
	return c.Dispatch(ctx, call.Route.Action, call.Request, call.Response)
}

// Handle processes one proxy event and always produces a reply.
func (a *Application) Handle(ctx context.Context, event *lambda.Event) lambda.Reply {
	if event == nil {
		event = &lambda.Event{}
	}

	route, params, matched := a.router.Match(event.HTTPMethod, event.Resource, event.Path)
	if matched && len(event.PathParameters) == 0 && len(params) > 0 {
		withParams := *event
		withParams.PathParameters = params
		event = &withParams
	}

	call := &Call{
		Event:    event,
		Request:  lambda.NewRequest(event),
		Response: lambda.NewResponse(),
		Route:    route,
		Matched:  matched,
	}
	if err := a.stack()(ctx, call); err != nil {
		a.logger.WithError(err).Error("Middleware returned an unrescued error")
		return errorReply(apierror.StatusOf(err), event.ELB)
	}

	reply, err := call.Response.Reply(event.ELB)
	if err != nil {
		a.logger.WithError(err).Error("Failed to encode response")
		return errorReply(http.StatusInternalServerError, event.ELB)
	}
	return reply
}

// Handler returns a function for lambda.Start. Events that cannot be decoded
// get a 400 reply.
func (a *Application) Handler() func(context.Context, json.RawMessage) (lambda.Reply, error) {
	return func(ctx context.Context, raw json.RawMessage) (lambda.Reply, error) {
		event, err := lambda.ParseEvent(raw)
		if err != nil {
			a.logger.WithError(err).Warn("Rejected malformed proxy event")
			return errorReply(http.StatusBadRequest, false), nil
		}
		return a.Handle(ctx, event), nil
	}
}

func errorReply(status int, elb bool) lambda.Reply {
	body := jsonapi.ErrorDocument(apierror.New(status, "")).String()
	reply := lambda.Reply{
		StatusCode: status,
		Headers:    map[string]string{"content-type": jsonapi.MediaType},
		Body:       &body,
	}
	if elb {
		isBase64 := false
		reply.IsBase64Encoded = &isBase64
	}
	return reply
}
