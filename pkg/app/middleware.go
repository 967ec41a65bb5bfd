package app

import (
	"context"

	"lambda-jsonapi/pkg/lambda"
)

// Call is one invocation flowing through the middleware stack.
type Call struct {
	Event    *lambda.Event
	Request  *lambda.Request
	Response *lambda.Response

	// Route is the matched route; Matched is false when none matched.
	Route   Route
	Matched bool
}

// HandlerFunc processes a call, filling in its response.
type HandlerFunc func(ctx context.Context, call *Call) error

// Middleware wraps a HandlerFunc.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain wraps h with mws, the first middleware being the outermost.
func Chain(h HandlerFunc, mws ...Middleware) HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			h = mws[i](h)
		}
	}
	return h
}
