package jsonnav_test

import (
	"encoding/json"
	"testing"

	"github.com/liss-h/embedbot/jsonnav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var doc any
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return doc
}

func TestGet(t *testing.T) {
	doc := decode(t, `[{"data": {"children": [{"data": {"title": "hi", "over_18": true, "score": 12}}]}}]`)

	title, err := jsonnav.String(doc, 0, "data", "children", 0, "data", "title")
	require.NoError(t, err)
	assert.Equal(t, "hi", title)

	nsfw, err := jsonnav.Bool(doc, 0, "data", "children", 0, "data", "over_18")
	require.NoError(t, err)
	assert.True(t, nsfw)

	score, err := jsonnav.Float(doc, 0, "data", "children", 0, "data", "score")
	require.NoError(t, err)
	assert.Equal(t, 12.0, score)
}

func TestErrorsNameFailingSegment(t *testing.T) {
	doc := decode(t, `{"data": {"children": []}}`)

	tests := []struct {
		name string
		path []any
		want string
	}{
		{"missing key", []any{"data", "post"}, "post"},
		{"index out of range", []any{"data", "children", 0}, "0"},
		{"object where array expected", []any{"data", 3}, "array"},
		{"array index into object", []any{0}, "array"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := jsonnav.Get(doc, tt.path...)
			require.Error(t, err)

			var navErr *jsonnav.NavError
			require.ErrorAs(t, err, &navErr)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestShapeMismatch(t *testing.T) {
	doc := decode(t, `{"title": 42}`)

	_, err := jsonnav.String(doc, "title")
	var navErr *jsonnav.NavError
	require.ErrorAs(t, err, &navErr)
	assert.Equal(t, "string", navErr.Expected)
}

func TestEmptyPathReturnsDocument(t *testing.T) {
	doc := decode(t, `{"a": 1}`)

	v, err := jsonnav.Get(doc)
	require.NoError(t, err)
	assert.Equal(t, doc, v)
}
