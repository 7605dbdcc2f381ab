package picgo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", CacheFileName)

	c := NewCache(path)
	_, ok := c.Get("k")
	assert.False(t, ok)
	require.NoError(t, c.Put("k", "https://x/1.png"))

	reopened := NewCache(path)
	url, ok := reopened.Get("k")
	require.True(t, ok)
	assert.Equal(t, "https://x/1.png", url)
	assert.Equal(t, 1, reopened.Len())

	require.NoError(t, reopened.Clear())
	assert.Equal(t, 0, reopened.Len())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestCacheIgnoresCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), CacheFileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	c := NewCache(path)
	assert.Equal(t, 0, c.Len())
	require.NoError(t, c.Put("k", "v"))
	assert.Equal(t, 1, NewCache(path).Len())
}

func TestFileKeyDependsOnContent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	require.NoError(t, os.WriteFile(a, []byte("same"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("same"), 0o644))

	ka, err := FileKey(a)
	require.NoError(t, err)
	kb, err := FileKey(b)
	require.NoError(t, err)
	assert.Equal(t, ka, kb)
	assert.Len(t, ka, 40)

	_, err = FileKey(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
