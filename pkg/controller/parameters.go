package controller

import (
	"maps"

	"github.com/spf13/cast"

	"lambda-jsonapi/pkg/lambda"
)

// Parameters are the request parameters of an invocation: body parameters,
// overlaid by query parameters, overlaid by path parameters.
type Parameters map[string]any

// NewParameters merges the parameters of req. Body and query parse failures
// are returned as 400 errors.
func NewParameters(req *lambda.Request) (Parameters, error) {
	body, err := req.RequestParameters()
	if err != nil {
		return nil, err
	}
	query, err := req.QueryParameters()
	if err != nil {
		return nil, err
	}

	params := make(Parameters, len(body)+len(query))
	maps.Copy(params, body)
	maps.Copy(params, query)
	for key, value := range req.PathParameters() {
		params[key] = value
	}
	return params, nil
}

func (p Parameters) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// String returns the parameter coerced to a string, or "" when absent.
func (p Parameters) String(key string) string {
	return cast.ToString(p[key])
}

// Int returns the parameter coerced to an int, or 0 when absent or invalid.
func (p Parameters) Int(key string) int {
	return cast.ToInt(p[key])
}

// Map returns a nested parameter map, or nil.
func (p Parameters) Map(key string) map[string]any {
	m, _ := p[key].(map[string]any)
	return m
}
