package jsonapi

import (
	"sort"
	"strings"
)

// IncludeTree is a parsed include directive: "author.comments,tags" becomes
// {author: {comments: {}}, tags: {}}.
type IncludeTree map[string]IncludeTree

// ParseInclude parses comma-separated dotted include paths.
func ParseInclude(paths ...string) IncludeTree {
	tree := IncludeTree{}
	for _, list := range paths {
		for _, path := range strings.Split(list, ",") {
			path = strings.TrimSpace(path)
			if path == "" {
				continue
			}
			node := tree
			for _, name := range strings.Split(path, ".") {
				if name == "" {
					break
				}
				child, ok := node[name]
				if !ok {
					child = IncludeTree{}
					node[name] = child
				}
				node = child
			}
		}
	}
	return tree
}

// Paths returns the tree as sorted dotted paths, leaves only.
func (t IncludeTree) Paths() []string {
	var result []string
	var walk func(prefix string, node IncludeTree)
	walk = func(prefix string, node IncludeTree) {
		for name, child := range node {
			path := name
			if prefix != "" {
				path = prefix + "." + name
			}
			if len(child) == 0 {
				result = append(result, path)
				continue
			}
			walk(path, child)
		}
	}
	walk("", t)
	sort.Strings(result)
	return result
}

// ParseParams reads the JSON:API "fields[type]=a,b" and "include=a.b,c" query
// parameters into render options.
func ParseParams(query map[string]any) Options {
	var opts Options

	if fields, ok := query["fields"].(map[string]any); ok {
		opts.Fields = make(map[string][]string, len(fields))
		for resourceType, raw := range fields {
			opts.Fields[resourceType] = splitList(raw)
		}
	}
	opts.Include = splitList(query["include"])

	return opts
}

func splitList(raw any) []string {
	var values []string
	switch v := raw.(type) {
	case string:
		values = []string{v}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				values = append(values, s)
			}
		}
	}

	var result []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				result = append(result, part)
			}
		}
	}
	return result
}
