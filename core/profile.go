package core

import (
	"strings"
)

// 文档中的顶层键
const (
	KeyPictureBed     = "pictureBed"
	KeyUploader       = "uploader"
	KeyPluginsEnabled = "pluginsEnabled"
)

// 配置项字段名
const (
	FieldID         = "id"
	FieldConfigName = "configName"
	FieldCreatedAt  = "createdAt"
	FieldUpdatedAt  = "updatedAt"

	fieldConfigList = "configList"
	fieldDefaultID  = "defaultId"
)

// 默认值
const (
	DefaultConfigName   = "Default"
	DefaultBackendType  = "smms"
	FallbackUploader    = "github"
	FallbackTransformer = "path"
)

// Profile 某个图床的一组已保存配置（凭据、存储桶、路径、自定义域名等）
// 除元数据字段外，其余字段对存储层不透明
type Profile map[string]any

// ID 配置唯一标识
func (p Profile) ID() string { return p.String(FieldID) }

// ConfigName 配置名称，未设置时为 Default
func (p Profile) ConfigName() string {
	if name := p.String(FieldConfigName); name != "" {
		return name
	}
	return DefaultConfigName
}

// CreatedAt 创建时间（毫秒时间戳）
func (p Profile) CreatedAt() int64 { return toInt64(p[FieldCreatedAt]) }

// UpdatedAt 更新时间（毫秒时间戳）
func (p Profile) UpdatedAt() int64 { return toInt64(p[FieldUpdatedAt]) }

// String 读取字符串字段，类型不符时返回空串
func (p Profile) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Bool 读取布尔字段，兼容 "true"/"false" 字符串
func (p Profile) Bool(key string) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	}
	return false
}

// Clone 浅拷贝
func (p Profile) Clone() Profile {
	out := make(Profile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// UploaderTypeConfig 某个图床类型下的全部配置
type UploaderTypeConfig struct {
	ConfigList []Profile `json:"configList"`
	DefaultID  string    `json:"defaultId"`
}

// Find 按 ID 查找配置，返回下标，找不到时为 -1
func (c UploaderTypeConfig) Find(id string) int {
	if id == "" {
		return -1
	}
	for i, p := range c.ConfigList {
		if p.ID() == id {
			return i
		}
	}
	return -1
}

// Default 返回默认配置
func (c UploaderTypeConfig) Default() (Profile, bool) {
	if i := c.Find(c.DefaultID); i >= 0 {
		return c.ConfigList[i], true
	}
	return nil, false
}

// parseUploaderTypeConfig 从文档节点解析配置列表
// defaultId 失效时回退到第一项，保证列表非空时总能定位默认配置
func parseUploaderTypeConfig(list []any, defaultID string) UploaderTypeConfig {
	cfg := UploaderTypeConfig{ConfigList: make([]Profile, 0, len(list)), DefaultID: defaultID}
	for _, item := range list {
		if obj, ok := item.(map[string]any); ok {
			cfg.ConfigList = append(cfg.ConfigList, Profile(deepCopy(obj).(map[string]any)))
		}
	}
	if len(cfg.ConfigList) > 0 && cfg.Find(cfg.DefaultID) < 0 {
		cfg.DefaultID = cfg.ConfigList[0].ID()
	}
	return cfg
}

// trimValues 去掉字符串字段两端的空白
func trimValues(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if s, ok := v.(string); ok {
			out[k] = strings.TrimSpace(s)
			continue
		}
		out[k] = v
	}
	return out
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	}
	return 0
}

func profilesPath(backend string) string   { return KeyUploader + "." + backend + "." + fieldConfigList }
func defaultIDPath(backend string) string  { return KeyUploader + "." + backend + "." + fieldDefaultID }
func pictureBedPath(backend string) string { return KeyPictureBed + "." + backend }
