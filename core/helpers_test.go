package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeRegistry 内存注册表
type fakeRegistry struct {
	order []string
	items map[string]Component
}

func newFakeRegistry(items ...Component) *fakeRegistry {
	r := &fakeRegistry{items: make(map[string]Component)}
	for _, c := range items {
		r.order = append(r.order, c.ID)
		r.items[c.ID] = c
	}
	return r
}

func (r *fakeRegistry) Get(id string) (Component, bool) {
	c, ok := r.items[id]
	return c, ok
}

func (r *fakeRegistry) IDList() []string { return append([]string(nil), r.order...) }

func (r *fakeRegistry) removePlugin(plugin string) {
	kept := r.order[:0]
	for _, id := range r.order {
		if r.items[id].Plugin == plugin {
			delete(r.items, id)
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
}

// fakePicGo 记录插件操作调用
type fakePicGo struct {
	uploaders    *fakeRegistry
	transformers *fakeRegistry

	mu       sync.Mutex
	calls    []string
	result   OperationResult
	useNames bool // 结果 Body 使用入参
}

func newFakePicGo() *fakePicGo {
	return &fakePicGo{
		uploaders: newFakeRegistry(
			Component{ID: "smms", Name: "SM.MS"},
			Component{ID: "tcyun", Name: "腾讯云COS"},
			Component{ID: "github", Name: "GitHub"},
			Component{ID: "aliyun", Name: "阿里云OSS"},
			Component{ID: "aws-s3", Name: "Amazon S3", Plugin: "picgo-plugin-s3"},
		),
		transformers: newFakeRegistry(
			Component{ID: "path"},
			Component{ID: "watermark", Plugin: "picgo-plugin-watermark"},
		),
		result:   OperationResult{Success: true},
		useNames: true,
	}
}

func (f *fakePicGo) Uploaders() Registry    { return f.uploaders }
func (f *fakePicGo) Transformers() Registry { return f.transformers }
func (f *fakePicGo) BaseDir() string        { return "/tmp/picgo" }

func (f *fakePicGo) op(name string, names []string) OperationResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("%s %v", name, names))
	res := f.result
	if f.useNames && res.Body == nil {
		res.Body = names
	}
	return res
}

func (f *fakePicGo) Install(_ context.Context, names []string) OperationResult {
	return f.op("install", names)
}

// Uninstall 成功时像真实上下文一样移除插件注册的组件
func (f *fakePicGo) Uninstall(_ context.Context, names []string) OperationResult {
	res := f.op("uninstall", names)
	if res.Success {
		for _, name := range res.Body {
			f.uploaders.removePlugin(name)
			f.transformers.removePlugin(name)
		}
	}
	return res
}

func (f *fakePicGo) Update(_ context.Context, names []string) OperationResult {
	return f.op("update", names)
}

// newTestStore 创建固定时钟与顺序 ID 的存储
func newTestStore(t *testing.T, root map[string]any) (*Store, *fakePicGo) {
	t.Helper()
	picgo := newFakePicGo()
	store, err := NewStore(picgo, NewDocument(root), nil)
	require.NoError(t, err)

	var n int
	store.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	clock := time.UnixMilli(1700000000000)
	store.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return store, picgo
}

// recordChanges 记录 CONFIG_CHANGE 事件
func recordChanges(store *Store) *[]ConfigChange {
	var mu sync.Mutex
	changes := &[]ConfigChange{}
	store.Bus().On(EventConfigChange, func(payload any) {
		mu.Lock()
		defer mu.Unlock()
		*changes = append(*changes, payload.(ConfigChange))
	})
	return changes
}

func changedPaths(changes []ConfigChange) []string {
	out := make([]string, len(changes))
	for i, c := range changes {
		out[i] = c.ConfigName
	}
	return out
}
