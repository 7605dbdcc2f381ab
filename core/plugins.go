package core

import (
	"context"
	"log/slog"
)

// PluginManager 插件生命周期门面
// 安装、卸载、更新交给外部上传库执行，结果统一以事件形式发布，不向上抛出
type PluginManager struct {
	store  *Store
	logger *slog.Logger
}

// NewPluginManager 创建插件管理器
func NewPluginManager(store *Store, logger *slog.Logger) *PluginManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &PluginManager{store: store, logger: logger}
}

// Install 安装插件，成功后记录为启用
func (m *PluginManager) Install(ctx context.Context, names []string) PluginResult {
	return m.handle(EventPluginInstall, names, func() OperationResult {
		res := m.store.picgo.Install(ctx, names)
		if res.Success {
			for _, name := range res.Body {
				if err := m.store.SetPluginEnabled(name, true); err != nil {
					m.logger.Warn("记录插件启用状态失败", "plugin", name, "error", err)
				}
			}
		}
		return res
	})
}

// Uninstall 卸载插件
// 组件列表在卸载前取得（卸载成功后注册表中已没有它们），只有卸载成功才回退引用这些组件的上传器/转换器
func (m *PluginManager) Uninstall(ctx context.Context, names []string) PluginResult {
	return m.handle(EventPluginUninstall, names, func() OperationResult {
		provided := make(map[string][2][]string, len(names))
		for _, name := range names {
			uploaders, transformers := m.Provided(name)
			provided[name] = [2][]string{uploaders, transformers}
		}
		res := m.store.picgo.Uninstall(ctx, names)
		if !res.Success {
			return res
		}
		for _, name := range res.Body {
			if p, ok := provided[name]; ok {
				m.restore(p[0], p[1])
			}
			if err := m.store.ForgetPlugin(name); err != nil {
				m.logger.Warn("清理插件启用状态失败", "plugin", name, "error", err)
			}
		}
		return res
	})
}

// Update 更新插件
func (m *PluginManager) Update(ctx context.Context, names []string) PluginResult {
	return m.handle(EventPluginUpdate, names, func() OperationResult {
		return m.store.picgo.Update(ctx, names)
	})
}

// Toggle 启用或禁用插件，禁用时回退它提供的上传器/转换器
func (m *PluginManager) Toggle(name string, enabled bool) error {
	if !enabled {
		m.restoreFor(name)
	}
	if err := m.store.SetPluginEnabled(name, enabled); err != nil {
		return err
	}
	m.store.bus.Emit(EventPluginToggle, PluginToggle{Name: name, Enabled: enabled})
	return nil
}

// Provided 返回插件提供的上传器与转换器 ID
func (m *PluginManager) Provided(name string) (uploaders, transformers []string) {
	return providedBy(m.store.picgo.Uploaders(), name), providedBy(m.store.picgo.Transformers(), name)
}

func (m *PluginManager) handle(event string, names []string, op func() OperationResult) PluginResult {
	bus := m.store.bus
	bus.Emit(EventPluginHandling, true)
	defer bus.Emit(EventPluginDone, true)

	res := op()
	result := PluginResult{Success: res.Success, Body: res.Body}
	if result.Body == nil {
		result.Body = names
	}
	if !res.Success {
		if res.Err != nil {
			result.ErrMsg = res.Err.Error()
		} else {
			result.ErrMsg = "unknown error"
		}
		m.logger.Error("插件操作失败", "event", event, "plugins", names, "error", result.ErrMsg)
	} else {
		m.logger.Info("插件操作完成", "event", event, "plugins", result.Body)
	}
	bus.Emit(event, result)
	return result
}

func (m *PluginManager) restoreFor(name string) {
	m.restore(m.Provided(name))
}

func (m *PluginManager) restore(uploaders, transformers []string) {
	for _, id := range uploaders {
		if _, err := m.store.RestoreDefaultBackend(RoleUploader, id); err != nil {
			m.logger.Warn("回退默认上传器失败", "uploader", id, "error", err)
		}
	}
	for _, id := range transformers {
		if _, err := m.store.RestoreDefaultBackend(RoleTransformer, id); err != nil {
			m.logger.Warn("回退默认转换器失败", "transformer", id, "error", err)
		}
	}
}

func providedBy(reg Registry, plugin string) []string {
	var out []string
	for _, id := range reg.IDList() {
		if c, ok := reg.Get(id); ok && c.Plugin == plugin {
			out = append(out, id)
		}
	}
	return out
}
