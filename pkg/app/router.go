package app

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRouteNotFound is returned when no route matches a request.
var ErrRouteNotFound = errors.New("route not found")

// Route maps a method and API Gateway resource, e.g. "/customers/{id}", to a
// controller action.
type Route struct {
	Method     string
	Resource   string
	Controller string
	Action     string
}

func (r Route) String() string {
	return fmt.Sprintf("%s %s -> %s#%s", r.Method, r.Resource, r.Controller, r.Action)
}

// Router is a fixed route table. Routes are matched in registration order.
type Router struct {
	routes []Route
}

// Add appends a route. The method is normalised to upper case and the
// resource must start with "/".
func (r *Router) Add(route Route) error {
	route.Method = strings.ToUpper(strings.TrimSpace(route.Method))
	switch {
	case route.Method == "":
		return fmt.Errorf("route %s: method is empty", route)
	case !strings.HasPrefix(route.Resource, "/"):
		return fmt.Errorf("route %s: resource must start with /", route)
	case route.Controller == "" || route.Action == "":
		return fmt.Errorf("route %s: controller and action are required", route)
	}
	r.routes = append(r.routes, route)
	return nil
}

// Routes returns the route table.
func (r *Router) Routes() []Route {
	return append([]Route(nil), r.routes...)
}

// Match finds the route for method and either the resource template the
// platform resolved or, failing that, the concrete path. Path parameters are
// extracted from the path when it had to be matched.
func (r *Router) Match(method, resource, path string) (Route, map[string]string, bool) {
	method = strings.ToUpper(method)
	if resource != "" {
		for _, route := range r.routes {
			if route.Method == method && route.Resource == resource {
				return route, nil, true
			}
		}
	}
	for _, route := range r.routes {
		if route.Method != method {
			continue
		}
		if params, ok := matchPath(route.Resource, path); ok {
			return route, params, true
		}
	}
	return Route{}, nil, false
}

// matchPath matches a resource template against a path. "{name}" matches one
// segment and "{name+}" the remainder of the path.
func matchPath(resource, path string) (map[string]string, bool) {
	patterns := splitSegments(resource)
	segments := splitSegments(path)
	params := make(map[string]string)

	for i, pattern := range patterns {
		name, isParam := strings.CutPrefix(pattern, "{")
		if isParam {
			name = strings.TrimSuffix(name, "}")
		}
		if isParam && strings.HasSuffix(name, "+") {
			if i >= len(segments) {
				return nil, false
			}
			params[strings.TrimSuffix(name, "+")] = strings.Join(segments[i:], "/")
			return params, true
		}
		if i >= len(segments) {
			return nil, false
		}
		switch {
		case isParam:
			params[name] = segments[i]
		case pattern != segments[i]:
			return nil, false
		}
	}
	if len(patterns) != len(segments) {
		return nil, false
	}
	return params, true
}

func splitSegments(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
