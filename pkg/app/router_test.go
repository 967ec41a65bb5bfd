package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterAdd(t *testing.T) {
	var r Router

	assert.Error(t, r.Add(Route{Resource: "/items", Controller: "items", Action: "index"}))
	assert.Error(t, r.Add(Route{Method: "GET", Resource: "items", Controller: "items", Action: "index"}))
	assert.Error(t, r.Add(Route{Method: "GET", Resource: "/items", Controller: "items"}))
	require.NoError(t, r.Add(Route{Method: "get", Resource: "/items", Controller: "items", Action: "index"}))

	assert.Equal(t, "GET", r.Routes()[0].Method)
}

func TestRouterMatch(t *testing.T) {
	var r Router
	require.NoError(t, r.Add(Route{Method: "GET", Resource: "/items", Controller: "items", Action: "index"}))
	require.NoError(t, r.Add(Route{Method: "GET", Resource: "/items/{id}", Controller: "items", Action: "show"}))
	require.NoError(t, r.Add(Route{Method: "GET", Resource: "/items/{id}/parts/{part}", Controller: "parts", Action: "show"}))
	require.NoError(t, r.Add(Route{Method: "GET", Resource: "/files/{path+}", Controller: "files", Action: "show"}))

	tests := []struct {
		name     string
		method   string
		resource string
		path     string
		action   string
		params   map[string]string
		ok       bool
	}{
		{"resource template", "GET", "/items/{id}", "/items/42", "items#show", nil, true},
		{"collection path", "get", "", "/items/", "items#index", map[string]string{}, true},
		{"member path", "GET", "", "/items/42", "items#show", map[string]string{"id": "42"}, true},
		{"nested path", "GET", "", "/items/42/parts/7", "parts#show", map[string]string{"id": "42", "part": "7"}, true},
		{"greedy path", "GET", "", "/files/a/b/c.txt", "files#show", map[string]string{"path": "a/b/c.txt"}, true},
		{"greedy needs a segment", "GET", "", "/files", "", nil, false},
		{"wrong method", "POST", "", "/items", "", nil, false},
		{"too long", "GET", "", "/items/42/extra", "", nil, false},
		{"unknown resource falls back to path", "GET", "/other", "/items/1", "items#show", map[string]string{"id": "1"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route, params, ok := r.Match(tt.method, tt.resource, tt.path)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.action, route.Controller+"#"+route.Action)
			assert.Equal(t, tt.params, params)
		})
	}
}
