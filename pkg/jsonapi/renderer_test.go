package jsonapi

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lambda-jsonapi/pkg/apierror"
)

func newTestRenderer() *Renderer {
	return NewCatalogRenderer(testCatalog())
}

func TestRenderSingleResource(t *testing.T) {
	result := newTestRenderer().Render(&person{ID: "1", Name: "Ada", Email: "ada@example.com"}, Options{})

	assert.Equal(t, http.StatusOK, result.Status)
	assert.JSONEq(t, `{
		"data": {
			"type": "people",
			"id": "1",
			"attributes": {"name": "Ada", "email": "ada@example.com"},
			"relationships": {
				"addresses": {"data": []},
				"manager": {"data": null}
			}
		}
	}`, result.Document.String())
}

func TestRenderCollection(t *testing.T) {
	people := []person{{ID: "1", Name: "Ada"}, {ID: "2", Name: "Grace"}}
	result := newTestRenderer().Render(people, Options{Fields: map[string][]string{"people": {"name"}}})

	assert.Equal(t, http.StatusOK, result.Status)
	assert.JSONEq(t, `{
		"data": [
			{"type": "people", "id": "1", "attributes": {"name": "Ada"}},
			{"type": "people", "id": "2", "attributes": {"name": "Grace"}}
		]
	}`, result.Document.String())
}

func TestRenderEmptyCollection(t *testing.T) {
	var people []person
	result := newTestRenderer().Render(people, Options{})

	assert.Equal(t, http.StatusOK, result.Status)
	assert.JSONEq(t, `{"data": []}`, result.Document.String())
}

func TestRenderNil(t *testing.T) {
	result := newTestRenderer().Render(nil, Options{})
	assert.Equal(t, http.StatusOK, result.Status)
	assert.JSONEq(t, `{"data": {}}`, result.Document.String())

	var p *person
	result = newTestRenderer().Render(p, Options{Status: http.StatusAccepted})
	assert.Equal(t, http.StatusAccepted, result.Status)
	assert.JSONEq(t, `{"data": {}}`, result.Document.String())
}

func TestRenderTypedNilError(t *testing.T) {
	var missing *apierror.Error
	require.NotPanics(t, func() {
		result := newTestRenderer().Render(missing, Options{})
		assert.Equal(t, http.StatusOK, result.Status)
		assert.JSONEq(t, `{"data": {}}`, result.Document.String())
	})

	var bag AttributeErrors
	result := newTestRenderer().Render(bag, Options{})
	assert.Equal(t, http.StatusOK, result.Status)
}

func TestRenderExplicitStatusAndMeta(t *testing.T) {
	result := newTestRenderer().Render(address{ID: "a1", Street: "Main"}, Options{
		Status: http.StatusCreated,
		Meta:   map[string]any{"version": "1"},
	})

	assert.Equal(t, http.StatusCreated, result.Status)
	assert.JSONEq(t, `{
		"data": {"type": "addresses", "id": "a1", "attributes": {"street": "Main"}},
		"meta": {"version": "1"}
	}`, result.Document.String())
}

func TestRenderIncluded(t *testing.T) {
	boss := &person{ID: "9", Name: "Boss", Addresses: []address{{ID: "a9", Street: "Hill"}}}
	people := []person{
		{ID: "1", Name: "Ada", Addresses: []address{{ID: "a1", Street: "Main"}}, Manager: boss},
		{ID: "2", Name: "Grace", Manager: boss},
	}
	result := newTestRenderer().Render(people, Options{
		Include: []string{"addresses,manager.addresses"},
		Fields:  map[string][]string{"people": {"name", "addresses", "manager"}},
	})

	require.Equal(t, http.StatusOK, result.Status)
	assert.JSONEq(t, `{
		"data": [
			{
				"type": "people", "id": "1",
				"attributes": {"name": "Ada"},
				"relationships": {
					"addresses": {"data": [{"type": "addresses", "id": "a1"}]},
					"manager": {"data": {"type": "people", "id": "9"}}
				}
			},
			{
				"type": "people", "id": "2",
				"attributes": {"name": "Grace"},
				"relationships": {
					"addresses": {"data": []},
					"manager": {"data": {"type": "people", "id": "9"}}
				}
			}
		],
		"included": [
			{"type": "addresses", "id": "a1", "attributes": {"street": "Main"}},
			{
				"type": "people", "id": "9",
				"attributes": {"name": "Boss"},
				"relationships": {
					"addresses": {"data": [{"type": "addresses", "id": "a9"}]},
					"manager": {"data": null}
				}
			},
			{"type": "addresses", "id": "a9", "attributes": {"street": "Hill"}}
		]
	}`, result.Document.String())
}

func TestRenderIncludedSkipsPrimaryResources(t *testing.T) {
	ada := person{ID: "1", Name: "Ada"}
	grace := person{ID: "2", Name: "Grace", Manager: &ada}
	result := newTestRenderer().Render([]person{ada, grace}, Options{Include: []string{"manager"}})

	assert.Empty(t, result.Document.Included)
}

func TestRenderRelationshipIdentifiers(t *testing.T) {
	s := Typed(func(w widget) Object {
		return Object{
			Type: "widgets",
			ID:   "w1",
			Relationships: map[string]Related{
				"owner": {Data: ResourceIdentifier{Type: "people", ID: "1"}, Links: map[string]string{"related": "/people/1"}},
			},
		}
	})
	result := NewCatalogRenderer(NewCatalog().RegisterFor(widget{}, s)).Render(widget{}, Options{Include: []string{"owner"}})

	assert.JSONEq(t, `{
		"data": {
			"type": "widgets", "id": "w1",
			"relationships": {
				"owner": {"data": {"type": "people", "id": "1"}, "links": {"related": "/people/1"}}
			}
		}
	}`, result.Document.String())
}

func TestRenderClassesOverride(t *testing.T) {
	s := Typed(func(w widget) Object {
		return Object{Type: "widgets", ID: "w1"}
	})
	result := newTestRenderer().Render(widget{}, Options{Classes: map[string]Serializer{"widget": s}})

	assert.Equal(t, http.StatusOK, result.Status)
	assert.JSONEq(t, `{"data": {"type": "widgets", "id": "w1"}}`, result.Document.String())
}

func TestRenderUnrenderable(t *testing.T) {
	t.Run("single object", func(t *testing.T) {
		result := newTestRenderer().Render(widget{}, Options{Status: http.StatusCreated})

		assert.Equal(t, http.StatusInternalServerError, result.Status)
		assert.JSONEq(t, `{
			"errors": [{
				"status": "500",
				"title": "Internal Server Error",
				"detail": "Could not find serializer for: widget."
			}]
		}`, result.Document.String())
	})

	t.Run("one error per distinct type", func(t *testing.T) {
		items := []any{widget{}, &widget{}, gadget{}, person{ID: "1"}, widget{}}
		result := newTestRenderer().Render(items, Options{})

		require.Equal(t, http.StatusInternalServerError, result.Status)
		require.Len(t, result.Document.Errors, 2)
		assert.Equal(t, "Could not find serializer for: widget.", result.Document.Errors[0].Detail)
		assert.Equal(t, "Could not find serializer for: gadget.", result.Document.Errors[1].Detail)
	})
}

func TestRenderSerializerFailure(t *testing.T) {
	failing := SerializerFunc(func(any) (Object, error) {
		return Object{}, errors.New("boom")
	})
	result := NewCatalogRenderer(NewCatalog().RegisterFor(widget{}, failing)).Render(widget{}, Options{})

	assert.Equal(t, http.StatusInternalServerError, result.Status)
	require.Len(t, result.Document.Errors, 1)
	assert.Contains(t, result.Document.Errors[0].Detail, "boom")
}

func TestRenderErrors(t *testing.T) {
	t.Run("single error", func(t *testing.T) {
		err := apierror.New(http.StatusNotFound, "Customer 7 not found").WithID("e1").WithCode("missing")
		result := newTestRenderer().Render(err, Options{})

		assert.Equal(t, http.StatusNotFound, result.Status)
		assert.JSONEq(t, `{
			"errors": [{
				"id": "e1",
				"status": "404",
				"code": "missing",
				"title": "Not Found",
				"detail": "Customer 7 not found"
			}]
		}`, result.Document.String())
	})

	t.Run("explicit status wins", func(t *testing.T) {
		result := newTestRenderer().Render(apierror.New(http.StatusNotFound, "gone"), Options{Status: http.StatusGone})
		assert.Equal(t, http.StatusGone, result.Status)
	})

	t.Run("mixed statuses", func(t *testing.T) {
		client := newTestRenderer().RenderErrors(apierror.New(404, ""), apierror.New(409, ""))
		assert.Equal(t, http.StatusBadRequest, client.Status)

		server := newTestRenderer().RenderErrors(apierror.New(404, ""), apierror.New(503, ""))
		assert.Equal(t, http.StatusInternalServerError, server.Status)
	})

	t.Run("mixed array keeps only errors", func(t *testing.T) {
		items := []any{person{ID: "1"}, apierror.New(http.StatusConflict, "taken"), address{ID: "a1"}}
		result := newTestRenderer().Render(items, Options{})

		assert.Equal(t, http.StatusConflict, result.Status)
		assert.JSONEq(t, `{"errors": [{"status": "409", "title": "Conflict", "detail": "taken"}]}`, result.Document.String())
	})

	t.Run("wrapped errors", func(t *testing.T) {
		err := fmt.Errorf("lookup: %w", apierror.New(http.StatusForbidden, "nope"))
		result := newTestRenderer().Render(err, Options{})

		assert.Equal(t, http.StatusForbidden, result.Status)
		assert.Equal(t, "nope", result.Document.Errors[0].Detail)
	})
}

func TestRenderValidationErrors(t *testing.T) {
	bag := AttributeErrors{}
	bag.Add("name", "can't be blank")
	bag.Add("addresses[0].street", "is too short")

	result := newTestRenderer().Render(bag, Options{})

	assert.Equal(t, http.StatusUnprocessableEntity, result.Status)
	assert.JSONEq(t, `{
		"errors": [
			{
				"status": "422",
				"title": "Unprocessable Entity",
				"detail": "`+"`street' is too short"+`",
				"source": {"pointer": "/data/attributes/addresses/0/street"}
			},
			{
				"status": "422",
				"title": "Unprocessable Entity",
				"detail": "`+"`name' can't be blank"+`",
				"source": {"pointer": "/data/attributes/name"}
			}
		]
	}`, result.Document.String())
}

func TestOptionsMerge(t *testing.T) {
	base := Options{
		Classes: map[string]Serializer{"widget": addressSerializer},
		Include: []string{"manager"},
		Status:  http.StatusOK,
	}
	merged := base.Merge(Options{
		Classes: map[string]Serializer{"gadget": addressSerializer},
		Status:  http.StatusCreated,
		Fields:  map[string][]string{"people": {"name"}},
	})

	assert.Len(t, merged.Classes, 2)
	assert.Equal(t, []string{"manager"}, merged.Include)
	assert.Equal(t, http.StatusCreated, merged.Status)
	assert.Equal(t, []string{"name"}, merged.Fields["people"])
	assert.Len(t, base.Classes, 1)
}
