package controller

import (
	"context"
	"net/http"
	"net/url"

	"lambda-jsonapi/pkg/apierror"
	"lambda-jsonapi/pkg/jsonapi"
	"lambda-jsonapi/pkg/lambda"
)

// State is the dispatch state of a Context.
type State int

const (
	StateIdle State = iota
	StateDispatching
	StateResponded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDispatching:
		return "dispatching"
	case StateResponded:
		return "responded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

const doubleResponseMessage = "render or redirect was called more than once."

// Context is the state of one dispatch. It is owned by a single invocation
// and must not be retained after the action returns.
type Context struct {
	ctx        context.Context
	controller *Controller
	action     string
	request    *lambda.Request
	response   *lambda.Response

	state     State
	responded bool
	params    Parameters
	values    map[string]any
}

func newContext(ctx context.Context, controller *Controller, action string, req *lambda.Request, resp *lambda.Response) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		req = lambda.NewRequest(nil)
	}
	if resp == nil {
		resp = lambda.NewResponse()
	}
	return &Context{
		ctx:        ctx,
		controller: controller,
		action:     action,
		request:    req,
		response:   resp,
	}
}

func (c *Context) Context() context.Context { return c.ctx }

func (c *Context) Request() *lambda.Request { return c.request }

func (c *Context) Response() *lambda.Response { return c.response }

func (c *Context) ActionName() string { return c.action }

func (c *Context) ControllerName() string { return c.controller.name }

func (c *Context) State() State { return c.state }

// Responded reports whether Render or RedirectTo succeeded.
func (c *Context) Responded() bool { return c.responded }

// Params returns the merged request parameters, parsing them on first use.
func (c *Context) Params() (Parameters, error) {
	if c.params != nil {
		return c.params, nil
	}
	params, err := NewParameters(c.request)
	if err != nil {
		return nil, err
	}
	c.params = params
	return params, nil
}

// JSONAPIParams returns render options from the fields and include
// parameters.
func (c *Context) JSONAPIParams() (jsonapi.Options, error) {
	params, err := c.Params()
	if err != nil {
		return jsonapi.Options{}, err
	}
	return jsonapi.ParseParams(params), nil
}

// Set stores a value for later hooks and the action.
func (c *Context) Set(key string, value any) {
	if c.values == nil {
		c.values = make(map[string]any)
	}
	c.values[key] = value
}

func (c *Context) Get(key string) (any, bool) {
	value, ok := c.values[key]
	return value, ok
}

// Render sets the response from content. It fails when a response was already
// rendered and for unknown status codes.
func (c *Context) Render(content any, opts ...RenderOption) error {
	if c.responded {
		return apierror.New(http.StatusInternalServerError, doubleResponseMessage)
	}

	var options jsonapi.Options
	for _, opt := range opts {
		opt(&options)
	}
	if options.Status != 0 {
		if err := ValidateStatus(options.Status); err != nil {
			return err
		}
	}

	if err := c.controller.renderer.Render(c, content, options); err != nil {
		return err
	}
	c.responded = true
	return nil
}

// RedirectTo responds with a redirection to target. A zero status uses the
// controller's default redirect status and an empty message a generated one.
func (c *Context) RedirectTo(target string, status int, message string) error {
	if c.responded {
		return apierror.New(http.StatusInternalServerError, doubleResponseMessage)
	}
	if status == 0 {
		status = c.controller.redirectStatus
	}
	if err := ValidateRedirectURL(target); err != nil {
		return err
	}
	if err := ValidateRedirectStatus(status); err != nil {
		return err
	}

	location, _ := url.Parse(target)
	c.response.SetHeader("location", location.String())
	c.response.SetStatus(status)
	body := c.controller.renderer.RedirectBody(target, status, message)
	if body != nil {
		c.response.SetHeader("content-type", c.controller.renderer.ContentType(body))
	}
	c.response.SetBody(body)
	c.responded = true
	return nil
}
