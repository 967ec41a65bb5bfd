// Package controller dispatches requests to named controller actions, runs
// their filters and renders their single response.
package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"sort"

	"lambda-jsonapi/pkg/apierror"
	"lambda-jsonapi/pkg/jsonapi"
	"lambda-jsonapi/pkg/lambda"
)

// DefaultRedirectStatus is used by RedirectTo when no status is given.
const DefaultRedirectStatus = http.StatusTemporaryRedirect

var (
	// ErrUnknownAction is returned when a dispatch names an action the
	// controller does not define.
	ErrUnknownAction = errors.New("unknown action")
	// ErrInvalidController is returned by New for an inconsistent definition.
	ErrInvalidController = errors.New("invalid controller definition")
)

// ActionError wraps an error that is not an *apierror.Error when it leaves an
// action or hook, recording the stack at that point.
type ActionError struct {
	Err   error
	Stack []byte
}

func (e *ActionError) Error() string { return e.Err.Error() }

func (e *ActionError) Unwrap() error { return e.Err }

// ActionFunc is a controller action or filter hook.
type ActionFunc func(c *Context) error

// Dispatcher runs one action of a controller against a request/response pair.
type Dispatcher interface {
	Name() string
	Dispatch(ctx context.Context, action string, req *lambda.Request, resp *lambda.Response) error
}

// Controller is an immutable set of actions and filters. It is built once at
// start-up and shared by all invocations; per-invocation state lives in
// Context.
type Controller struct {
	name           string
	actions        map[string]ActionFunc
	filters        Filters
	renderer       ContentRenderer
	redirectStatus int
}

// Option configures a Controller.
type Option func(*Controller)

// Action registers fn under name.
func Action(name string, fn ActionFunc) Option {
	return func(c *Controller) {
		if c.actions == nil {
			c.actions = make(map[string]ActionFunc)
		}
		c.actions[name] = fn
	}
}

// Before registers a before hook.
func Before(name string, fn ActionFunc, opts ...HookOption) Option {
	return func(c *Controller) { c.filters.Before(name, fn, opts...) }
}

// After registers an after hook.
func After(name string, fn ActionFunc, opts ...HookOption) Option {
	return func(c *Controller) { c.filters.After(name, fn, opts...) }
}

// JSONAPI makes the controller render JSON:API documents with r.
func JSONAPI(r *jsonapi.Renderer) Option {
	return func(c *Controller) { c.renderer = JSONAPIRenderer{Renderer: r} }
}

// WithRenderer replaces the content renderer.
func WithRenderer(r ContentRenderer) Option {
	return func(c *Controller) { c.renderer = r }
}

// RedirectStatus sets the status RedirectTo uses by default.
func RedirectStatus(status int) Option {
	return func(c *Controller) { c.redirectStatus = status }
}

// New builds a controller and validates its action table: every action and
// hook needs a function, and hook Only/Except lists may name known actions only.
func New(name string, opts ...Option) (*Controller, error) {
	c := &Controller{
		name:           name,
		actions:        make(map[string]ActionFunc),
		renderer:       PlainRenderer{},
		redirectStatus: DefaultRedirectStatus,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNew is New for package-level definitions; it panics on error.
func MustNew(name string, opts ...Option) *Controller {
	c, err := New(name, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Controller) validate() error {
	if c.name == "" {
		return fmt.Errorf("%w: controller name is empty", ErrInvalidController)
	}
	for action, fn := range c.actions {
		if action == "" || fn == nil {
			return fmt.Errorf("%w: %s has an unnamed or nil action", ErrInvalidController, c.name)
		}
	}
	if r, ok := c.renderer.(JSONAPIRenderer); c.renderer == nil || (ok && r.Renderer == nil) {
		return fmt.Errorf("%w: %s has no content renderer", ErrInvalidController, c.name)
	}
	if err := ValidateRedirectStatus(c.redirectStatus); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidController, c.name, err)
	}
	hooks := append(append([]Hook(nil), c.filters.before...), c.filters.after...)
	for _, hook := range hooks {
		if hook.Func == nil {
			return fmt.Errorf("%w: %s hook %q has no function", ErrInvalidController, c.name, hook.Name)
		}
		for _, action := range append(append([]string(nil), hook.Only...), hook.Except...) {
			if _, ok := c.actions[action]; !ok {
				return fmt.Errorf("%w: %s hook %q references unknown action %q", ErrInvalidController, c.name, hook.Name, action)
			}
		}
	}
	return nil
}

func (c *Controller) Name() string { return c.name }

// Actions returns the sorted action names.
func (c *Controller) Actions() []string {
	names := make([]string, 0, len(c.actions))
	for name := range c.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasAction reports whether action is defined.
func (c *Controller) HasAction(action string) bool {
	_, ok := c.actions[action]
	return ok
}

// Dispatch runs action with its filters against req and resp. Framework errors
// raised by the action or its hooks are returned unchanged; any other error is
// wrapped in an *ActionError.
func (c *Controller) Dispatch(ctx context.Context, action string, req *lambda.Request, resp *lambda.Response) error {
	_, err := c.dispatch(ctx, action, req, resp)
	return err
}

func (c *Controller) dispatch(ctx context.Context, action string, req *lambda.Request, resp *lambda.Response) (*Context, error) {
	cc := newContext(ctx, c, action, req, resp)

	fn, ok := c.actions[action]
	if !ok {
		cc.state = StateFailed
		err := fmt.Errorf("%w: %s#%s", ErrUnknownAction, c.name, action)
		return cc, apierror.Wrap(http.StatusInternalServerError, err)
	}

	cc.state = StateDispatching
	if err := c.filters.RunWithFilters(cc, action, fn); err != nil {
		cc.state = StateFailed
		if _, known := apierror.As(err); !known {
			err = &ActionError{Err: err, Stack: debug.Stack()}
		}
		return cc, err
	}
	cc.state = StateResponded
	return cc, nil
}
