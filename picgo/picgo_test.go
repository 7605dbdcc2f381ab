package picgo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractURL(t *testing.T) {
	output := `[PicGo INFO]: Before transform
[PicGo SUCCESS]:
https://img.example.com/2024/a.png`
	assert.Equal(t, "https://img.example.com/2024/a.png", extractURL(output))

	assert.Equal(t, "https://b.example.com/2.png",
		extractURL("https://a.example.com/1.png\nhttps://b.example.com/2.png"))
	assert.Empty(t, extractURL("[PicGo ERROR]: upload failed"))
}

func TestNewCLIDefaultsToPicgo(t *testing.T) {
	assert.Equal(t, "picgo", NewCLI("").Bin())
	assert.Equal(t, "/opt/picgo", NewCLI("/opt/picgo").Bin())
}

func TestMissingBinaryFails(t *testing.T) {
	cli := NewCLI(filepath.Join(t.TempDir(), "no-such-picgo"))
	assert.False(t, cli.IsAvailable())

	_, err := cli.Upload(context.Background(), "a.png")
	assert.Error(t, err)
}

func TestBatchUploadUsesCache(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "a.png")
	require.NoError(t, os.WriteFile(img, []byte("png-bytes"), 0o644))

	key, err := FileKey(img)
	require.NoError(t, err)
	cache := NewCache(filepath.Join(dir, CacheFileName))
	require.NoError(t, cache.Put(key, "https://cdn.example.com/a.png"))

	// picgo 不存在，只有命中缓存的文件会成功
	cli := NewCLI(filepath.Join(dir, "no-such-picgo"))
	results := cli.BatchUpload(context.Background(), []string{img, filepath.Join(dir, "missing.png")}, cache)

	require.Len(t, results, 2)
	assert.True(t, results[0].Cached)
	assert.Equal(t, "https://cdn.example.com/a.png", results[0].URL)
	assert.NoError(t, results[0].Error)
	assert.Error(t, results[1].Error)
	assert.Equal(t, filepath.Join(dir, "missing.png"), results[1].LocalPath)
}

func TestBatchUploadEmpty(t *testing.T) {
	assert.Empty(t, NewCLI("").BatchUpload(context.Background(), nil, nil))
}
