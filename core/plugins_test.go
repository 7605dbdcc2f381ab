package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventLog struct {
	topics   []string
	payloads []any
}

func recordEvents(bus *EventBus) *eventLog {
	log := &eventLog{}
	for _, topic := range Topics {
		topic := topic
		if topic == EventConfigChange {
			continue
		}
		bus.On(topic, func(p any) {
			log.topics = append(log.topics, topic)
			log.payloads = append(log.payloads, p)
		})
	}
	return log
}

func TestPluginInstallPublishesLifecycle(t *testing.T) {
	store, picgo := newTestStore(t, nil)
	events := recordEvents(store.Bus())
	m := NewPluginManager(store, nil)

	res := m.Install(context.Background(), []string{"picgo-plugin-s3"})

	assert.True(t, res.Success)
	assert.Equal(t, []string{"picgo-plugin-s3"}, res.Body)
	assert.Equal(t, []string{EventPluginHandling, EventPluginInstall, EventPluginDone}, events.topics)
	assert.Equal(t, res, events.payloads[1])
	assert.Equal(t, []string{"install [picgo-plugin-s3]"}, picgo.calls)
	assert.Equal(t, true, store.Get("pluginsEnabled", nil).(map[string]any)["picgo-plugin-s3"])
}

func TestPluginFailureIsPublishedNotReturned(t *testing.T) {
	store, picgo := newTestStore(t, nil)
	picgo.result = OperationResult{Err: errors.New("npm ERR! 404")}
	events := recordEvents(store.Bus())
	m := NewPluginManager(store, nil)

	res := m.Update(context.Background(), []string{"picgo-plugin-nope"})

	assert.False(t, res.Success)
	assert.Equal(t, "npm ERR! 404", res.ErrMsg)
	assert.Equal(t, []string{"picgo-plugin-nope"}, res.Body)
	assert.Equal(t, []string{EventPluginHandling, EventPluginUpdate, EventPluginDone}, events.topics)
}

func TestPluginFailureWithoutErrorGetsUnknownMessage(t *testing.T) {
	store, picgo := newTestStore(t, nil)
	picgo.result = OperationResult{}
	m := NewPluginManager(store, nil)

	res := m.Install(context.Background(), []string{"x"})
	assert.False(t, res.Success)
	assert.Equal(t, "unknown error", res.ErrMsg)
}

func TestPluginUninstallRestoresDefaults(t *testing.T) {
	store, picgo := newTestStore(t, nil)
	require.NoError(t, store.SetActiveBackendType("aws-s3"))
	require.NoError(t, store.SetPluginEnabled("picgo-plugin-s3", true))
	m := NewPluginManager(store, nil)

	res := m.Uninstall(context.Background(), []string{"picgo-plugin-s3"})

	require.True(t, res.Success)
	assert.Equal(t, FallbackUploader, store.ActiveBackendType())
	assert.Equal(t, []string{"uninstall [picgo-plugin-s3]"}, picgo.calls)
	assert.NotContains(t, store.Get("pluginsEnabled", nil), "picgo-plugin-s3")
	assert.NotContains(t, picgo.Uploaders().IDList(), "aws-s3")
}

func TestPluginUninstallFailureKeepsActiveBackend(t *testing.T) {
	store, picgo := newTestStore(t, nil)
	require.NoError(t, store.SetActiveBackendType("aws-s3"))
	require.NoError(t, store.SetActiveTransformer("watermark"))
	require.NoError(t, store.SetPluginEnabled("picgo-plugin-s3", true))
	picgo.result = OperationResult{Err: errors.New("npm failed")}
	m := NewPluginManager(store, nil)

	res := m.Uninstall(context.Background(), []string{"picgo-plugin-s3", "picgo-plugin-watermark"})

	assert.False(t, res.Success)
	assert.Equal(t, "npm failed", res.ErrMsg)
	assert.Equal(t, "aws-s3", store.ActiveBackendType())
	assert.Equal(t, "watermark", store.ActiveTransformer())
	assert.True(t, store.PluginEnabled("picgo-plugin-s3"))
	assert.Contains(t, store.Get("pluginsEnabled", nil), "picgo-plugin-s3")
}

func TestPluginToggle(t *testing.T) {
	store, _ := newTestStore(t, nil)
	require.NoError(t, store.SetActiveTransformer("watermark"))
	events := recordEvents(store.Bus())
	m := NewPluginManager(store, nil)

	require.NoError(t, m.Toggle("picgo-plugin-watermark", false))
	assert.Equal(t, FallbackTransformer, store.ActiveTransformer())
	assert.False(t, store.PluginEnabled("picgo-plugin-watermark"))
	assert.Equal(t, []string{EventPluginToggle}, events.topics)
	assert.Equal(t, PluginToggle{Name: "picgo-plugin-watermark", Enabled: false}, events.payloads[0])

	require.NoError(t, m.Toggle("picgo-plugin-watermark", true))
	assert.True(t, store.PluginEnabled("picgo-plugin-watermark"))
	assert.Equal(t, FallbackTransformer, store.ActiveTransformer())
}

func TestPluginProvided(t *testing.T) {
	store, _ := newTestStore(t, nil)
	m := NewPluginManager(store, nil)

	uploaders, transformers := m.Provided("picgo-plugin-s3")
	assert.Equal(t, []string{"aws-s3"}, uploaders)
	assert.Empty(t, transformers)
}
