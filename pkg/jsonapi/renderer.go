package jsonapi

import (
	"fmt"
	"net/http"
	"reflect"
	"sort"

	"lambda-jsonapi/pkg/apierror"
)

// Options control a render call.
type Options struct {
	// Classes maps type names to serializers and takes precedence over
	// inference.
	Classes map[string]Serializer
	// Fields restricts the attributes and relationships rendered per resource
	// type.
	Fields map[string][]string
	// Include lists relationship paths, e.g. "author.comments".
	Include []string
	// Status overrides the document status.
	Status int
	Meta   map[string]any
}

// Merge returns o overlaid with the non-empty parts of explicit.
func (o Options) Merge(explicit Options) Options {
	result := o
	if len(explicit.Classes) > 0 {
		classes := make(map[string]Serializer, len(o.Classes)+len(explicit.Classes))
		for k, v := range o.Classes {
			classes[k] = v
		}
		for k, v := range explicit.Classes {
			classes[k] = v
		}
		result.Classes = classes
	}
	if explicit.Fields != nil {
		result.Fields = explicit.Fields
	}
	if explicit.Include != nil {
		result.Include = explicit.Include
	}
	if explicit.Status != 0 {
		result.Status = explicit.Status
	}
	if explicit.Meta != nil {
		result.Meta = explicit.Meta
	}
	return result
}

// Result is a rendered document and the status it should be sent with.
type Result struct {
	Document *Document
	Status   int
}

// Renderer builds JSON:API documents. It is safe for concurrent use; every
// Render call gets its own serializer registry.
type Renderer struct {
	strategy Strategy
}

func NewRenderer(strategy Strategy) *Renderer {
	return &Renderer{strategy: strategy}
}

// NewCatalogRenderer returns a renderer that infers serializers from catalog.
func NewCatalogRenderer(catalog *Catalog) *Renderer {
	return NewRenderer(ConventionStrategy(catalog))
}

// Render never fails: objects without a serializer and serializer failures
// become a 500 error document.
func (r *Renderer) Render(object any, opts Options) Result {
	if isNil(object) {
		return Result{Document: &Document{Meta: opts.Meta}, Status: statusOr(opts.Status, http.StatusOK)}
	}
	if errs, ok := ValidationErrors(object); ok {
		object = errs
	}

	registry := NewRegistry(r.strategy, opts.Classes)
	items, collection := elements(object)

	if missing := unrenderableTypes(registry, items); len(missing) > 0 {
		errs := make([]*apierror.Error, 0, len(missing))
		for _, name := range missing {
			errs = append(errs, apierror.Newf(500, "Could not find serializer for: %s.", name))
		}
		return r.renderErrors(errs, Options{Meta: opts.Meta, Status: http.StatusInternalServerError})
	}

	if errs := errorItems(items); len(errs) > 0 {
		return r.renderErrors(errs, opts)
	}

	doc, err := newBuilder(registry, opts).build(items, collection)
	if err != nil {
		return r.renderErrors([]*apierror.Error{apierror.Wrap(500, err)}, Options{Meta: opts.Meta, Status: http.StatusInternalServerError})
	}
	return Result{Document: doc, Status: statusOr(opts.Status, http.StatusOK)}
}

// RenderErrors renders errs as an error document.
func (r *Renderer) RenderErrors(errs ...*apierror.Error) Result {
	return r.renderErrors(errs, Options{})
}

func (r *Renderer) renderErrors(errs []*apierror.Error, opts Options) Result {
	doc := ErrorDocument(errs...)
	doc.Meta = opts.Meta
	return Result{Document: doc, Status: statusOr(opts.Status, documentStatus(errs))}
}

// documentStatus picks the status shared by all errors, or the generic status
// of the most severe class present.
func documentStatus(errs []*apierror.Error) int {
	if len(errs) == 0 {
		return http.StatusInternalServerError
	}
	status := errs[0].Status
	serverError := false
	for _, err := range errs {
		if err.Status >= 500 {
			serverError = true
		}
		if err.Status != status {
			status = 0
		}
	}
	switch {
	case status != 0:
		return status
	case serverError:
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

func statusOr(status, fallback int) int {
	if status != 0 {
		return status
	}
	return fallback
}

func isNil(object any) bool {
	if object == nil {
		return true
	}
	rv := reflect.ValueOf(object)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// elements returns the items of a slice or array, or object itself.
func elements(object any) ([]any, bool) {
	switch v := object.(type) {
	case []*apierror.Error:
		items := make([]any, len(v))
		for i, err := range v {
			items[i] = err
		}
		return items, true
	case []any:
		return v, true
	}
	rv := reflect.ValueOf(object)
	if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Type().Elem().Kind() != reflect.Uint8 {
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return items, true
	}
	return []any{object}, false
}

func asAPIError(item any) (*apierror.Error, bool) {
	err, ok := item.(error)
	if !ok {
		return nil, false
	}
	return apierror.As(err)
}

func unrenderableTypes(registry *Registry, items []any) []string {
	var missing []string
	seen := make(map[string]bool)
	for _, item := range items {
		if _, ok := asAPIError(item); ok {
			continue
		}
		if registry.SerializerFor(item) != nil {
			continue
		}
		name := TypeName(reflect.TypeOf(item))
		if !seen[name] {
			seen[name] = true
			missing = append(missing, name)
		}
	}
	return missing
}

func errorItems(items []any) []*apierror.Error {
	var errs []*apierror.Error
	for _, item := range items {
		if err, ok := asAPIError(item); ok {
			errs = append(errs, err)
		}
	}
	return errs
}

type builder struct {
	registry *Registry
	opts     Options
	include  IncludeTree
	fields   map[string]map[string]bool
	primary  map[ResourceIdentifier]bool
	included map[ResourceIdentifier]bool
	out      []Resource
}

func newBuilder(registry *Registry, opts Options) *builder {
	b := &builder{
		registry: registry,
		opts:     opts,
		include:  ParseInclude(opts.Include...),
		primary:  make(map[ResourceIdentifier]bool),
		included: make(map[ResourceIdentifier]bool),
	}
	if len(opts.Fields) > 0 {
		b.fields = make(map[string]map[string]bool, len(opts.Fields))
		for resourceType, names := range opts.Fields {
			set := make(map[string]bool, len(names))
			for _, name := range names {
				set[name] = true
			}
			b.fields[resourceType] = set
		}
	}
	return b
}

func (b *builder) build(items []any, collection bool) (*Document, error) {
	resources := make([]Resource, 0, len(items))
	objects := make([]Object, 0, len(items))
	for _, item := range items {
		obj, err := b.serialize(item)
		if err != nil {
			return nil, err
		}
		b.primary[ResourceIdentifier{Type: obj.Type, ID: obj.ID}] = true
		objects = append(objects, obj)
	}
	for _, obj := range objects {
		res, err := b.resource(obj)
		if err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}
	for _, obj := range objects {
		if err := b.includeRelated(obj, b.include); err != nil {
			return nil, err
		}
	}

	doc := &Document{Included: b.out, Meta: b.opts.Meta}
	if collection {
		doc.Data = resources
	} else {
		doc.Data = &resources[0]
	}
	return doc, nil
}

func (b *builder) serialize(item any) (Object, error) {
	s := b.registry.SerializerFor(item)
	if s == nil {
		return Object{}, fmt.Errorf("Could not find serializer for: %s.", TypeName(reflect.TypeOf(item)))
	}
	obj, err := s.Serialize(item)
	if err != nil {
		return Object{}, fmt.Errorf("serialize %s: %w", TypeName(reflect.TypeOf(item)), err)
	}
	return obj, nil
}

func (b *builder) allowed(resourceType, name string) bool {
	if b.fields == nil {
		return true
	}
	set, ok := b.fields[resourceType]
	return !ok || set[name]
}

func (b *builder) resource(obj Object) (Resource, error) {
	res := Resource{Type: obj.Type, ID: obj.ID, Links: obj.Links, Meta: obj.Meta}

	for name, value := range obj.Attributes {
		if !b.allowed(obj.Type, name) {
			continue
		}
		if res.Attributes == nil {
			res.Attributes = make(map[string]any, len(obj.Attributes))
		}
		res.Attributes[name] = value
	}

	for name, related := range obj.Relationships {
		if !b.allowed(obj.Type, name) {
			continue
		}
		data, err := b.linkage(related.Data)
		if err != nil {
			return Resource{}, err
		}
		if res.Relationships == nil {
			res.Relationships = make(map[string]Relationship, len(obj.Relationships))
		}
		res.Relationships[name] = Relationship{Data: data, Links: related.Links, Meta: related.Meta}
	}
	return res, nil
}

func (b *builder) identifier(item any) (ResourceIdentifier, error) {
	switch v := item.(type) {
	case ResourceIdentifier:
		return v, nil
	case *ResourceIdentifier:
		return *v, nil
	}
	obj, err := b.serialize(item)
	if err != nil {
		return ResourceIdentifier{}, err
	}
	return ResourceIdentifier{Type: obj.Type, ID: obj.ID}, nil
}

func (b *builder) linkage(data any) (any, error) {
	if isNil(data) {
		return nil, nil
	}
	items, collection := elements(data)
	ids := make([]ResourceIdentifier, 0, len(items))
	for _, item := range items {
		id, err := b.identifier(item)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if collection {
		return ids, nil
	}
	return &ids[0], nil
}

func (b *builder) includeRelated(obj Object, tree IncludeTree) error {
	names := make([]string, 0, len(tree))
	for name := range tree {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		subtree := tree[name]
		related, ok := obj.Relationships[name]
		if !ok || isNil(related.Data) {
			continue
		}
		items, _ := elements(related.Data)
		for _, item := range items {
			switch item.(type) {
			case ResourceIdentifier, *ResourceIdentifier:
				continue
			}
			child, err := b.serialize(item)
			if err != nil {
				return err
			}
			id := ResourceIdentifier{Type: child.Type, ID: child.ID}
			if !b.primary[id] && !b.included[id] {
				b.included[id] = true
				res, err := b.resource(child)
				if err != nil {
					return err
				}
				b.out = append(b.out, res)
			}
			if err := b.includeRelated(child, subtree); err != nil {
				return err
			}
		}
	}
	return nil
}
