package jsonapi

import (
	"fmt"
	"reflect"
)

// Object is what a serializer produces for one domain object. Relationship
// data holds the related domain objects themselves; the renderer turns them
// into resource identifiers and, when requested, included resources.
type Object struct {
	Type          string
	ID            string
	Attributes    map[string]any
	Relationships map[string]Related
	Links         map[string]string
	Meta          map[string]any
}

// Related is a relationship of an Object. Data is a single related object, a
// slice of related objects, a ResourceIdentifier, or nil.
type Related struct {
	Data  any
	Links map[string]string
	Meta  map[string]any
}

// Serializer transforms one domain object into its resource representation.
type Serializer interface {
	Serialize(object any) (Object, error)
}

// SerializerFunc adapts a function to Serializer.
type SerializerFunc func(object any) (Object, error)

func (f SerializerFunc) Serialize(object any) (Object, error) {
	return f(object)
}

// Typed returns a Serializer for values of type T or *T.
func Typed[T any](fn func(T) Object) Serializer {
	return SerializerFunc(func(object any) (Object, error) {
		switch v := object.(type) {
		case T:
			return fn(v), nil
		case *T:
			if v == nil {
				return Object{}, fmt.Errorf("serialize nil %T", object)
			}
			return fn(*v), nil
		}
		return Object{}, fmt.Errorf("serializer for %s cannot serialize %T", reflect.TypeOf((*T)(nil)).Elem(), object)
	})
}

// Catalog holds serializers registered by conventional name, e.g.
// "CustomerSerializer". It is filled at start-up and read-only afterwards.
type Catalog struct {
	byName map[string]Serializer
}

func NewCatalog() *Catalog {
	return &Catalog{byName: make(map[string]Serializer)}
}

// Register stores s under name.
func (c *Catalog) Register(name string, s Serializer) *Catalog {
	c.byName[name] = s
	return c
}

// RegisterFor stores s under the conventional name of sample's type.
func (c *Catalog) RegisterFor(sample any, s Serializer) *Catalog {
	return c.Register(SerializerName(TypeName(reflect.TypeOf(sample))), s)
}

func (c *Catalog) Lookup(name string) (Serializer, bool) {
	if c == nil {
		return nil, false
	}
	s, ok := c.byName[name]
	return s, ok
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byName)
}

// SerializerName derives the conventional serializer name for a type name.
func SerializerName(typeName string) string {
	return typeName + "Serializer"
}
