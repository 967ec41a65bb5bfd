package jsonapi

import (
	"reflect"
)

// Strategy resolves a serializer for a type, or returns nil.
type Strategy func(t reflect.Type) Serializer

// ConventionStrategy walks t's ancestor chain from most to least specific and
// returns the first "<Name>Serializer" registered in catalog.
func ConventionStrategy(catalog *Catalog) Strategy {
	return func(t reflect.Type) Serializer {
		for _, ancestor := range Ancestors(t) {
			name := TypeName(ancestor)
			if name == "" {
				continue
			}
			if s, ok := catalog.Lookup(SerializerName(name)); ok {
				return s
			}
		}
		return nil
	}
}

// Ancestors returns t followed by the types it embeds, depth first in
// declaration order. Pointers are dereferenced and each type appears once.
func Ancestors(t reflect.Type) []reflect.Type {
	var result []reflect.Type
	seen := make(map[reflect.Type]bool)

	var walk func(reflect.Type)
	walk = func(t reflect.Type) {
		for t != nil && t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t == nil || seen[t] {
			return
		}
		seen[t] = true
		result = append(result, t)
		if t.Kind() != reflect.Struct {
			return
		}
		for i := 0; i < t.NumField(); i++ {
			if field := t.Field(i); field.Anonymous {
				walk(field.Type)
			}
		}
	}
	walk(t)
	return result
}

// TypeName returns the name of t with pointers removed, falling back to its
// string form for unnamed types.
func TypeName(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "nil"
	}
	if name := t.Name(); name != "" {
		return name
	}
	return t.String()
}

// Registry resolves serializers for one render call. Overrides keyed by type
// name bypass inference; inferred results are cached per queried type.
type Registry struct {
	strategy  Strategy
	overrides map[string]Serializer
	cache     map[reflect.Type]Serializer
}

func NewRegistry(strategy Strategy, overrides map[string]Serializer) *Registry {
	return &Registry{
		strategy:  strategy,
		overrides: overrides,
		cache:     make(map[reflect.Type]Serializer),
	}
}

// SerializerFor accepts a reflect.Type or an instance.
func (r *Registry) SerializerFor(typeOrInstance any) Serializer {
	t, ok := typeOrInstance.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(typeOrInstance)
	}
	if t == nil {
		return nil
	}
	if s, ok := r.overrides[TypeName(t)]; ok {
		return s
	}
	if s, ok := r.cache[t]; ok {
		return s
	}
	var s Serializer
	if r.strategy != nil {
		s = r.strategy(t)
	}
	r.cache[t] = s
	return s
}
