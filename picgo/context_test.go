package picgo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Wsine/picgo-helper/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePackageJSON(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(content), 0o644))
}

func TestInstalledPlugins(t *testing.T) {
	dir := t.TempDir()
	names, err := InstalledPlugins(dir)
	require.NoError(t, err)
	assert.Empty(t, names)

	writePackageJSON(t, dir, `{"dependencies":{
		"picgo-plugin-s3":"^1.3.0",
		"lodash":"^4.0.0",
		"@scope/picgo-plugin-private":"1.0.0",
		"picgo-plugin-gitee-uploader":"1.0.0"
	}}`)
	names, err = InstalledPlugins(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"@scope/picgo-plugin-private", "picgo-plugin-gitee-uploader", "picgo-plugin-s3"}, names)

	writePackageJSON(t, dir, `{`)
	_, err = InstalledPlugins(dir)
	assert.Error(t, err)
}

func TestNewCLIContextRegistersInstalledPlugins(t *testing.T) {
	dir := t.TempDir()
	writePackageJSON(t, dir, `{"dependencies":{"picgo-plugin-s3":"^1.3.0"}}`)

	c, err := NewCLIContext(NewCLI(""), dir)
	require.NoError(t, err)
	assert.Equal(t, dir, c.BaseDir())

	ids := c.Uploaders().IDList()
	assert.Equal(t, "smms", ids[0])
	assert.Contains(t, ids, "aws-s3")

	s3, ok := c.Uploaders().Get("aws-s3")
	require.True(t, ok)
	assert.Equal(t, "picgo-plugin-s3", s3.Plugin)
	assert.Equal(t, "Amazon S3", s3.DisplayName())

	_, ok = c.Transformers().Get("path")
	assert.True(t, ok)
}

func TestCLIContextWorksWithStore(t *testing.T) {
	c, err := NewCLIContext(NewCLI(""), t.TempDir())
	require.NoError(t, err)
	c.RegisterPlugin("picgo-plugin-watermark", KnownPlugins["picgo-plugin-watermark"]...)

	store, err := core.NewStore(c, core.NewDocument(nil), nil)
	require.NoError(t, err)

	list := store.ListBackendTypes()
	assert.Equal(t, "github", list[0].Type)
	assert.Len(t, list, len(builtinUploaders))

	m := core.NewPluginManager(store, nil)
	_, transformers := m.Provided("picgo-plugin-watermark")
	assert.Equal(t, []string{"watermark"}, transformers)
}

func TestUnregisterPlugin(t *testing.T) {
	c, err := NewCLIContext(NewCLI(""), t.TempDir())
	require.NoError(t, err)
	c.RegisterPlugin("picgo-plugin-s3", KnownPlugins["picgo-plugin-s3"]...)
	require.Contains(t, c.Uploaders().IDList(), "aws-s3")

	c.uploaders.unregisterPlugin("picgo-plugin-s3")
	assert.NotContains(t, c.Uploaders().IDList(), "aws-s3")
	assert.Len(t, c.Uploaders().IDList(), len(builtinUploaders))
}

func TestPluginOpWithMissingBinary(t *testing.T) {
	c, err := NewCLIContext(NewCLI(filepath.Join(t.TempDir(), "no-such-picgo")), t.TempDir())
	require.NoError(t, err)

	res := c.Install(context.Background(), []string{"s3"})
	assert.False(t, res.Success)
	assert.Error(t, res.Err)
	assert.Equal(t, []string{"picgo-plugin-s3"}, res.Body)
	assert.NotContains(t, c.Uploaders().IDList(), "aws-s3")

	res = c.Update(context.Background(), []string{" "})
	assert.False(t, res.Success)
	assert.Error(t, res.Err)
}

func TestFullPluginName(t *testing.T) {
	assert.Equal(t, "picgo-plugin-s3", FullPluginName("s3"))
	assert.Equal(t, "picgo-plugin-s3", FullPluginName("picgo-plugin-s3"))
	assert.Equal(t, "@scope/picgo-plugin-x", FullPluginName("@scope/picgo-plugin-x"))
}
