package jsonapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInclude(t *testing.T) {
	tree := ParseInclude("author.comments, tags", "author.avatar,,")

	assert.Equal(t, IncludeTree{
		"author": {"comments": {}, "avatar": {}},
		"tags":   {},
	}, tree)
	assert.Equal(t, []string{"author.avatar", "author.comments", "tags"}, tree.Paths())
	assert.Empty(t, ParseInclude().Paths())
}

func TestParseParams(t *testing.T) {
	query := map[string]any{
		"fields": map[string]any{
			"people":    "name, email",
			"addresses": []any{"street", "city"},
		},
		"include": "addresses,manager.addresses",
		"page":    "2",
	}

	opts := ParseParams(query)

	assert.Equal(t, map[string][]string{
		"people":    {"name", "email"},
		"addresses": {"street", "city"},
	}, opts.Fields)
	assert.Equal(t, []string{"addresses", "manager.addresses"}, opts.Include)
}

func TestParseParamsEmpty(t *testing.T) {
	opts := ParseParams(map[string]any{"fields": "name"})

	assert.Nil(t, opts.Fields)
	assert.Nil(t, opts.Include)
}
