package core

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDocumentMissingFileIsEmpty(t *testing.T) {
	doc, err := LoadDocument(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	assert.Empty(t, doc.Snapshot())
}

func TestFilePersisterWritesOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	store, _ := newTestStore(t, nil)
	p := NewFilePersister(path, store, nil)

	require.NoError(t, store.Save(Patch{{Path: "pictureBed.current", Value: "tcyun"}}))

	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(path)
		if err != nil {
			return false
		}
		var root map[string]any
		if json.Unmarshal(data, &root) != nil {
			return false
		}
		bed, _ := root["pictureBed"].(map[string]any)
		return bed["current"] == "tcyun"
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, p.Close())
	assert.Equal(t, 0, store.Bus().ListenerCount(EventConfigChange))
}

func TestFilePersisterCloseFlushesPendingChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	store, _ := newTestStore(t, nil)
	p := NewFilePersister(path, store, nil)

	_, err := store.UpsertProfile("smms", "", map[string]any{"token": "t"})
	require.NoError(t, err)
	require.NoError(t, p.Close())

	doc, err := LoadDocument(path)
	require.NoError(t, err)
	reloaded, err := NewStore(newFakePicGo(), doc, nil)
	require.NoError(t, err)

	cfg, err := reloaded.Profiles("smms")
	require.NoError(t, err)
	assert.Len(t, cfg.ConfigList, 2)
	p2, ok := cfg.Default()
	require.True(t, ok)
	assert.Equal(t, "t", p2.String("token"))
}

func TestFilePersisterCloseWithoutChangesWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	store, _ := newTestStore(t, nil)
	p := NewFilePersister(path, store, nil)

	require.NoError(t, p.Close())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
