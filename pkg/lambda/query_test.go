package lambda

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuery(t *testing.T) {
	query := BuildQuery(map[string][]string{
		"foo":       {"a", "b"},
		"nested[k]": {"v w"},
		"flag":      {},
	})

	assert.Equal(t, "flag&foo=a&foo=b&nested%5Bk%5D=v+w", query)
	assert.Equal(t, "", BuildQuery(nil))
}

func TestParseNestedQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  map[string]any
	}{
		{name: "empty", query: "", want: map[string]any{}},
		{name: "plain", query: "a=1&b=2", want: map[string]any{"a": "1", "b": "2"}},
		{name: "repeated plain key", query: "foo=a&foo=b&foo=c", want: map[string]any{"foo": []any{"a", "b", "c"}}},
		{name: "list", query: "foo[]=1&foo[]=2", want: map[string]any{"foo": []any{"1", "2"}}},
		{
			name:  "nested",
			query: "top[nested][k]=v&top[other]=w",
			want:  map[string]any{"top": map[string]any{"nested": map[string]any{"k": "v"}, "other": "w"}},
		},
		{
			name:  "list of objects",
			query: "items[][id]=1&items[][name]=a&items[][id]=2",
			want: map[string]any{"items": []any{
				map[string]any{"id": "1", "name": "a"},
				map[string]any{"id": "2"},
			}},
		},
		{name: "escaped", query: "q=hello+world&path=%2Fa%2Fb", want: map[string]any{"q": "hello world", "path": "/a/b"}},
		{name: "key without value", query: "flag", want: map[string]any{"flag": ""}},
		{name: "blank key ignored", query: "=x&a=1", want: map[string]any{"a": "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNestedQuery(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseNestedQueryRoundTripsMultiValueParameters(t *testing.T) {
	got, err := ParseNestedQuery(BuildQuery(map[string][]string{
		"foo":       {"a", "b"},
		"nested[k]": {"v"},
	}))

	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"foo":    []any{"a", "b"},
		"nested": map[string]any{"k": "v"},
	}, got)
}

func TestParseNestedQueryErrors(t *testing.T) {
	_, err := ParseNestedQuery("foo=1&foo[bar]=2")
	assert.ErrorIs(t, err, ErrQueryTypeConflict)

	_, err = ParseNestedQuery("foo[bar]=1&foo[]=2")
	assert.ErrorIs(t, err, ErrQueryTypeConflict)

	deep := "a"
	for i := 0; i < maxQueryDepth+1; i++ {
		deep += "[x]"
	}
	_, err = ParseNestedQuery(deep + "=1")
	assert.ErrorIs(t, err, ErrQueryTooDeep)

	_, err = ParseNestedQuery("a=%zz")
	assert.Error(t, err)
}
