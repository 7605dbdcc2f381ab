package core

import (
	"sort"
)

// 文档中 pictureBed 下的固定字段
const (
	pathCurrent     = KeyPictureBed + ".current"
	pathActive      = KeyPictureBed + ".uploader"
	pathTransformer = KeyPictureBed + ".transformer"
	pathVisibleList = KeyPictureBed + ".list"
)

// Role RestoreDefaultBackend 的目标角色
type Role string

const (
	RoleUploader    Role = "uploader"
	RoleTransformer Role = "transformer"
)

// BackendType 图床类型及其可见性
type BackendType struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
}

// smmsFallback 可见列表为空时的兜底项
var smmsFallback = BackendType{Type: DefaultBackendType, Name: "SM.MS", Visible: true}

// ListBackendTypes 列出注册表中的全部上传器，并附带持久化的可见性（默认可见）
// github 固定排在最前，其余保持注册表顺序
func (s *Store) ListBackendTypes() []BackendType {
	s.mu.RLock()
	visibility := s.visibilityLocked()
	s.mu.RUnlock()
	return s.backendTypes(visibility)
}

func (s *Store) backendTypes(visibility map[string]bool) []BackendType {
	reg := s.picgo.Uploaders()
	ids := reg.IDList()
	out := make([]BackendType, 0, len(ids))
	for _, id := range ids {
		name := id
		if c, ok := reg.Get(id); ok {
			name = c.DisplayName()
		}
		visible, ok := visibility[id]
		if !ok {
			visible = true
		}
		out = append(out, BackendType{Type: id, Name: name, Visible: visible})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Type == FallbackUploader && out[j].Type != FallbackUploader
	})
	return out
}

// ListVisibleBackendTypes 只返回可见的图床类型，结果为空时返回 SM.MS 兜底项
func (s *Store) ListVisibleBackendTypes() []BackendType {
	var out []BackendType
	for _, b := range s.ListBackendTypes() {
		if b.Visible {
			out = append(out, b)
		}
	}
	if len(out) == 0 {
		out = append(out, smmsFallback)
	}
	return out
}

// SetBackendVisible 修改某个图床类型的可见性并持久化整张列表
func (s *Store) SetBackendVisible(backend string, visible bool) error {
	s.mu.Lock()
	list := s.backendTypes(s.visibilityLocked())
	found := false
	for i := range list {
		if list[i].Type == backend {
			list[i].Visible = visible
			found = true
		}
	}
	if !found {
		s.mu.Unlock()
		return ErrUnknownBackend
	}
	changes, err := s.applyLocked(Patch{{Path: pathVisibleList, Value: list}})
	s.unlockAndPublish(changes)
	return err
}

func (s *Store) visibilityLocked() map[string]bool {
	out := make(map[string]bool)
	raw, _ := s.doc.Get(pathVisibleList)
	list, ok := raw.([]any)
	if !ok {
		return out
	}
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		t, _ := obj["type"].(string)
		visible, ok := obj["visible"].(bool)
		if t != "" && ok {
			out[t] = visible
		}
	}
	return out
}

// ActiveBackendType 当前生效的图床类型：pictureBed.uploader > pictureBed.current > smms
func (s *Store) ActiveBackendType() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeBackendLocked()
}

func (s *Store) activeBackendLocked() string {
	if v := s.stringLocked(pathActive); v != "" {
		return v
	}
	if v := s.stringLocked(pathCurrent); v != "" {
		return v
	}
	return DefaultBackendType
}

// SetActiveBackendType 同时设置 pictureBed.current 与 pictureBed.uploader
func (s *Store) SetActiveBackendType(backend string) error {
	if backend == "" {
		return ErrUnknownBackend
	}
	return s.Save(activeBackendPatch(backend))
}

func activeBackendPatch(backend string) Patch {
	return Patch{
		{Path: pathCurrent, Value: backend},
		{Path: pathActive, Value: backend},
	}
}

// ActiveTransformer 当前生效的转换器，默认 path
func (s *Store) ActiveTransformer() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeTransformerLocked()
}

func (s *Store) activeTransformerLocked() string {
	if v := s.stringLocked(pathTransformer); v != "" {
		return v
	}
	return FallbackTransformer
}

// SetActiveTransformer 设置当前转换器
func (s *Store) SetActiveTransformer(name string) error {
	return s.Save(Patch{{Path: pathTransformer, Value: name}})
}

// RestoreDefaultBackend 当前使用的上传器/转换器正是 name 时，回退到内置默认值
// 用于禁用或卸载提供 name 的插件，返回是否发生了回退；比较与写入在同一把锁内完成
func (s *Store) RestoreDefaultBackend(role Role, name string) (bool, error) {
	var patch Patch
	s.mu.Lock()
	switch role {
	case RoleUploader:
		if s.activeBackendLocked() == name {
			patch = activeBackendPatch(FallbackUploader)
		}
	case RoleTransformer:
		if s.activeTransformerLocked() == name {
			patch = Patch{{Path: pathTransformer, Value: FallbackTransformer}}
		}
	default:
		s.mu.Unlock()
		return false, ErrUnknownRole
	}
	if len(patch) == 0 {
		s.mu.Unlock()
		return false, nil
	}
	changes, err := s.applyLocked(patch)
	s.unlockAndPublish(changes)
	return true, err
}

// PluginEnabled 插件是否启用，未记录时视为启用
func (s *Store) PluginEnabled(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	enabled, ok := s.pluginsEnabledLocked()[name]
	return !ok || enabled
}

// SetPluginEnabled 记录插件启用状态
func (s *Store) SetPluginEnabled(name string, enabled bool) error {
	s.mu.Lock()
	plugins := s.pluginsEnabledLocked()
	plugins[name] = enabled
	// 插件名可能含有点号，整体写回 pluginsEnabled 而不是拼接路径
	changes, err := s.applyLocked(Patch{{Path: KeyPluginsEnabled, Value: plugins}})
	s.unlockAndPublish(changes)
	return err
}

// ForgetPlugin 删除插件的启用记录
func (s *Store) ForgetPlugin(name string) error {
	s.mu.Lock()
	plugins := s.pluginsEnabledLocked()
	if _, ok := plugins[name]; !ok {
		s.mu.Unlock()
		return nil
	}
	delete(plugins, name)
	changes, err := s.applyLocked(Patch{{Path: KeyPluginsEnabled, Value: plugins}})
	s.unlockAndPublish(changes)
	return err
}

func (s *Store) pluginsEnabledLocked() map[string]bool {
	out := make(map[string]bool)
	raw, _ := s.doc.Get(KeyPluginsEnabled)
	obj, _ := raw.(map[string]any)
	for k, v := range obj {
		if b, ok := v.(bool); ok {
			out[k] = b
		}
	}
	return out
}

func (s *Store) stringLocked(path string) string {
	v, _ := s.doc.Get(path)
	str, _ := v.(string)
	return str
}
