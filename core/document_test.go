package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentSetCreatesIntermediateObjects(t *testing.T) {
	doc := NewDocument(nil)
	require.NoError(t, doc.Set("a.b.c", "v"))

	v, ok := doc.Get("a.b.c")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	obj, ok := doc.Get("a.b")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"c": "v"}, obj)
}

func TestDocumentSetRejectsInvalidPath(t *testing.T) {
	doc := NewDocument(nil)
	for _, path := range []string{"", "a..b", ".a", "a."} {
		err := doc.Set(path, 1)
		assert.True(t, errors.Is(err, ErrInvalidPath), "path %q", path)
	}
	assert.Empty(t, doc.Snapshot())
}

func TestDocumentSetConflictLeavesDocumentUnchanged(t *testing.T) {
	doc := NewDocument(map[string]any{"a": "scalar"})

	err := doc.Set("a.b.c", 1)
	assert.True(t, errors.Is(err, ErrPathConflict))
	assert.Equal(t, map[string]any{"a": "scalar"}, doc.Snapshot())
}

func TestDocumentNormalizesValues(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	doc := NewDocument(nil)
	require.NoError(t, doc.Set("n", 3))
	require.NoError(t, doc.Set("p", payload{Name: "x", Count: 2}))
	require.NoError(t, doc.Set("list", []Profile{{"id": "1"}}))

	n, _ := doc.Get("n")
	assert.Equal(t, float64(3), n)

	p, _ := doc.Get("p")
	assert.Equal(t, map[string]any{"name": "x", "count": float64(2)}, p)

	list, _ := doc.Get("list")
	assert.Equal(t, []any{map[string]any{"id": "1"}}, list)
}

func TestDocumentDelete(t *testing.T) {
	doc := NewDocument(map[string]any{"a": map[string]any{"b": 1.0, "c": 2.0}})

	assert.True(t, doc.Delete("a.b"))
	assert.False(t, doc.Delete("a.b"))
	assert.False(t, doc.Delete("x.y"))
	assert.Equal(t, map[string]any{"a": map[string]any{"c": 2.0}}, doc.Snapshot())
}

func TestDocumentSnapshotIsDeepCopy(t *testing.T) {
	doc := NewDocument(map[string]any{"a": map[string]any{"b": []any{"x"}}})

	snap := doc.Snapshot()
	snap["a"].(map[string]any)["b"].([]any)[0] = "changed"

	v, _ := doc.Get("a.b")
	assert.Equal(t, []any{"x"}, v)
}

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"picBed":{"current":"smms"},"unknown":{"k":true}}`))
	require.NoError(t, err)

	v, ok := doc.Get("unknown.k")
	require.True(t, ok)
	assert.Equal(t, true, v)

	empty, err := ParseDocument([]byte("  "))
	require.NoError(t, err)
	assert.Empty(t, empty.Snapshot())

	_, err = ParseDocument([]byte("{"))
	assert.Error(t, err)
}
