package core

import "sync"

// 事件名称
const (
	EventConfigChange    = "CONFIG_CHANGE"
	EventPluginHandling  = "PICGO_HANDLE_PLUGIN_ING"
	EventPluginDone      = "PICGO_HANDLE_PLUGIN_DONE"
	EventPluginInstall   = "PICGO_INSTALL_PLUGIN"
	EventPluginUninstall = "PICGO_UNINSTALL_PLUGIN"
	EventPluginUpdate    = "PICGO_UPDATE_PLUGIN"
	EventPluginToggle    = "PICGO_TOGGLE_PLUGIN"
)

// Topics 所有已知的事件名称，供需要转发全部事件的订阅方使用
var Topics = []string{
	EventConfigChange,
	EventPluginHandling,
	EventPluginDone,
	EventPluginInstall,
	EventPluginUninstall,
	EventPluginUpdate,
	EventPluginToggle,
}

// ConfigChange CONFIG_CHANGE 事件的负载
type ConfigChange struct {
	ConfigName string `json:"configName"` // 发生变化的点分路径
	Value      any    `json:"value"`      // 新值，删除时为 nil
}

// PluginResult 插件安装/卸载/更新结果事件的负载
type PluginResult struct {
	Success bool     `json:"success"`
	Body    []string `json:"body"`
	ErrMsg  string   `json:"errMsg,omitempty"`
}

// PluginToggle PICGO_TOGGLE_PLUGIN 事件的负载
type PluginToggle struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// Handler 事件处理函数
type Handler func(payload any)

// Subscription 订阅句柄，用于 Off 取消订阅
type Subscription struct {
	topic string
	id    uint64
}

type subscriber struct {
	id      uint64
	handler Handler
}

// EventBus 进程内发布/订阅通道
// 同一主题内按订阅顺序同步投递，不同主题之间不保证顺序
type EventBus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string][]subscriber
}

// NewEventBus 创建事件总线
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[string][]subscriber)}
}

// On 订阅主题
func (b *EventBus) On(topic string, h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subs[topic] = append(b.subs[topic], subscriber{id: b.nextID, handler: h})
	return Subscription{topic: topic, id: b.nextID}
}

// Off 取消订阅，重复调用无副作用
func (b *EventBus) Off(s Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.subs[s.topic]
	for i, sub := range list {
		if sub.id == s.id {
			b.subs[s.topic] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(b.subs[s.topic]) == 0 {
		delete(b.subs, s.topic)
	}
}

// Emit 发布事件
// 处理函数在锁外调用，可以在其中再次订阅或发布
func (b *EventBus) Emit(topic string, payload any) {
	b.mu.RLock()
	list := make([]subscriber, len(b.subs[topic]))
	copy(list, b.subs[topic])
	b.mu.RUnlock()

	for _, sub := range list {
		sub.handler(payload)
	}
}

// ListenerCount 返回主题当前的订阅数
func (b *EventBus) ListenerCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}
