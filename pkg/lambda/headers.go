package lambda

import (
	"strings"

	"github.com/spf13/cast"
)

// Headers is a case-insensitive header map. Keys are stored lower-cased and
// values are always strings.
type Headers struct {
	values map[string]string
}

// NewHeaders returns an empty header map.
func NewHeaders() *Headers {
	return &Headers{values: make(map[string]string)}
}

// HeadersFromMap copies m into a new header map.
func HeadersFromMap(m map[string]string) *Headers {
	h := NewHeaders()
	for key, value := range m {
		h.Set(key, value)
	}
	return h
}

func normalizedKey(key string) string {
	return strings.ToLower(key)
}

// Get returns the value for key, or "" when absent.
func (h *Headers) Get(key string) string {
	return h.values[normalizedKey(key)]
}

// Lookup returns the value for key and whether it is present.
func (h *Headers) Lookup(key string) (string, bool) {
	value, ok := h.values[normalizedKey(key)]
	return value, ok
}

// Set stores value under key. Non-string values are coerced to strings.
func (h *Headers) Set(key string, value any) {
	h.values[normalizedKey(key)] = cast.ToString(value)
}

func (h *Headers) Delete(key string) {
	delete(h.values, normalizedKey(key))
}

func (h *Headers) Has(key string) bool {
	_, ok := h.values[normalizedKey(key)]
	return ok
}

func (h *Headers) Len() int {
	return len(h.values)
}

// Map returns a copy of the normalized header map.
func (h *Headers) Map() map[string]string {
	result := make(map[string]string, len(h.values))
	for key, value := range h.values {
		result[key] = value
	}
	return result
}
