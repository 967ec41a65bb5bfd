package lambda

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// maxQueryDepth bounds the bracket nesting accepted by ParseNestedQuery.
const maxQueryDepth = 32

var (
	ErrQueryTooDeep      = errors.New("query parameters nested too deeply")
	ErrQueryTypeConflict = errors.New("query parameter type conflict")
)

// BuildQuery encodes multi-value query parameters into a query string. Keys are
// emitted in sorted order so the result is deterministic.
func BuildQuery(params map[string][]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var parts []string
	for _, key := range keys {
		escaped := url.QueryEscape(key)
		values := params[key]
		if len(values) == 0 {
			parts = append(parts, escaped)
			continue
		}
		for _, value := range values {
			parts = append(parts, escaped+"="+url.QueryEscape(value))
		}
	}
	return strings.Join(parts, "&")
}

// ParseNestedQuery decodes a query string with bracket semantics:
//
//	foo=a&foo=b          -> {foo: [a b]}
//	foo[]=1&foo[]=2      -> {foo: [1 2]}
//	top[nested][k]=v     -> {top: {nested: {k: v}}}
//	list[][id]=1         -> {list: [{id: 1}]}
//
// Lists are []any and nested objects are map[string]any.
func ParseNestedQuery(query string) (map[string]any, error) {
	params := make(map[string]any)
	if query == "" {
		return params, nil
	}

	for _, pair := range strings.FieldsFunc(query, func(r rune) bool { return r == '&' || r == ';' }) {
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, fmt.Errorf("invalid query key %q: %w", rawKey, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, fmt.Errorf("invalid query value for %q: %w", key, err)
		}
		if err := normalizeParam(params, key, value, 0); err != nil {
			return nil, err
		}
	}
	return params, nil
}

// splitParamName separates the leading key of a bracketed name from the rest,
// e.g. "top[nested][k]" -> ("top", "[nested][k]").
func splitParamName(name string) (string, string) {
	name = strings.TrimLeft(name, "[]")
	end := strings.IndexAny(name, "[]")
	if end < 0 {
		return name, ""
	}
	key := name[:end]
	rest := name[end:]
	if strings.HasPrefix(rest, "]") {
		rest = strings.TrimLeft(rest, "]")
	}
	return key, rest
}

func normalizeParam(params map[string]any, name string, value string, depth int) error {
	if depth >= maxQueryDepth {
		return ErrQueryTooDeep
	}

	key, after := splitParamName(name)
	if key == "" {
		return nil
	}

	switch {
	case after == "" || after == "[":
		assignParam(params, key, value)
	case after == "[]":
		list, err := listParam(params, key)
		if err != nil {
			return err
		}
		params[key] = append(list, value)
	case strings.HasPrefix(after, "[]"):
		childKey := strings.TrimPrefix(after, "[]")
		if strings.HasPrefix(childKey, "[") && strings.HasSuffix(childKey, "]") && !strings.ContainsAny(childKey[1:len(childKey)-1], "[]") {
			childKey = childKey[1 : len(childKey)-1]
		}
		list, err := listParam(params, key)
		if err != nil {
			return err
		}
		if n := len(list); n > 0 {
			if last, ok := list[n-1].(map[string]any); ok && !hasNestedKey(last, childKey) {
				return normalizeParam(last, childKey, value, depth+1)
			}
		}
		child := make(map[string]any)
		if err := normalizeParam(child, childKey, value, depth+1); err != nil {
			return err
		}
		params[key] = append(list, child)
	default:
		child, ok := params[key].(map[string]any)
		if !ok {
			if params[key] != nil {
				return fmt.Errorf("%w: expected object for %q", ErrQueryTypeConflict, key)
			}
			child = make(map[string]any)
			params[key] = child
		}
		return normalizeParam(child, after, value, depth+1)
	}
	return nil
}

// assignParam stores a plain value. Repeated plain keys collect into a list
// instead of overwriting each other.
func assignParam(params map[string]any, key, value string) {
	switch existing := params[key].(type) {
	case nil:
		params[key] = value
	case []any:
		params[key] = append(existing, value)
	case string:
		params[key] = []any{existing, value}
	default:
		params[key] = value
	}
}

func listParam(params map[string]any, key string) ([]any, error) {
	switch existing := params[key].(type) {
	case nil:
		return nil, nil
	case []any:
		return existing, nil
	default:
		return nil, fmt.Errorf("%w: expected list for %q", ErrQueryTypeConflict, key)
	}
}

func hasNestedKey(m map[string]any, key string) bool {
	if strings.Contains(key, "[]") {
		return false
	}
	parts := strings.FieldsFunc(key, func(r rune) bool { return r == '[' || r == ']' })
	var current any = m
	for _, part := range parts {
		obj, ok := current.(map[string]any)
		if !ok {
			return false
		}
		next, ok := obj[part]
		if !ok {
			return false
		}
		current = next
	}
	return len(parts) > 0
}
