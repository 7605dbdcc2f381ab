// Package core 提供 picgo-helper 的配置文档、事件总线与上传器配置存储
// 此文件实现以点分路径访问的 JSON 配置文档
package core

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidPath 表示点分路径为空或包含空段
var ErrInvalidPath = errors.New("invalid config path")

// ErrPathConflict 表示路径中间节点不是对象，无法继续下钻
var ErrPathConflict = errors.New("config path conflicts with a non-object value")

// Document 配置文档
// 本质是一棵 JSON 对象树，未知键原样保留；本身不加锁，由 Store 负责串行化写入
type Document struct {
	root map[string]any
}

// NewDocument 用已有的对象树创建文档，root 为 nil 时创建空文档
func NewDocument(root map[string]any) *Document {
	if root == nil {
		root = make(map[string]any)
	}
	return &Document{root: root}
}

// ParseDocument 从 JSON 字节解析配置文档
func ParseDocument(data []byte) (*Document, error) {
	root := make(map[string]any)
	if len(strings.TrimSpace(string(data))) == 0 {
		return NewDocument(root), nil
	}
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("解析配置文档失败: %w", err)
	}
	return NewDocument(root), nil
}

// MarshalJSON 序列化整个文档
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.root)
}

// Get 按点分路径读取节点，返回的是内部引用，调用方不得修改
func (d *Document) Get(path string) (any, bool) {
	if path == "" {
		return d.root, true
	}
	keys, err := splitPath(path)
	if err != nil {
		return nil, false
	}
	var cur any = d.root
	for _, key := range keys {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Set 按点分路径写入值，缺失的中间对象会自动创建
// 写入前先完成校验，失败时文档保持不变
func (d *Document) Set(path string, value any) error {
	keys, err := splitPath(path)
	if err != nil {
		return err
	}
	normalized, err := normalizeValue(value)
	if err != nil {
		return err
	}

	// 先只读遍历一次，确认中间节点都是对象或缺失
	var cur any = d.root
	for _, key := range keys[:len(keys)-1] {
		obj, ok := cur.(map[string]any)
		if !ok {
			return errors.Wrapf(ErrPathConflict, "%s", path)
		}
		next, exists := obj[key]
		if !exists {
			break
		}
		if _, ok := next.(map[string]any); !ok {
			return errors.Wrapf(ErrPathConflict, "%s", path)
		}
		cur = next
	}

	obj := d.root
	for _, key := range keys[:len(keys)-1] {
		next, ok := obj[key].(map[string]any)
		if !ok {
			next = make(map[string]any)
			obj[key] = next
		}
		obj = next
	}
	obj[keys[len(keys)-1]] = normalized
	return nil
}

// Delete 删除路径上的节点，节点不存在时返回 false
func (d *Document) Delete(path string) bool {
	keys, err := splitPath(path)
	if err != nil {
		return false
	}
	parent := d.root
	if len(keys) > 1 {
		v, ok := d.Get(strings.Join(keys[:len(keys)-1], "."))
		if !ok {
			return false
		}
		if parent, ok = v.(map[string]any); !ok {
			return false
		}
	}
	last := keys[len(keys)-1]
	if _, ok := parent[last]; !ok {
		return false
	}
	delete(parent, last)
	return true
}

// Snapshot 返回整棵树的深拷贝
func (d *Document) Snapshot() map[string]any {
	return deepCopy(d.root).(map[string]any)
}

func splitPath(path string) ([]string, error) {
	if path == "" {
		return nil, ErrInvalidPath
	}
	keys := strings.Split(path, ".")
	for _, k := range keys {
		if k == "" {
			return nil, errors.Wrapf(ErrInvalidPath, "%q", path)
		}
	}
	return keys, nil
}

// normalizeValue 把任意值转换为 JSON 原生类型（map[string]any / []any / float64 / string / bool / nil）
// 保证文档落盘与重新加载后的形态一致
func normalizeValue(value any) (any, error) {
	switch v := value.(type) {
	case nil, string, bool, float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("配置值无法序列化: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("配置值无法反序列化: %w", err)
	}
	return out, nil
}

// deepCopy 复制 JSON 形态的值，保证读出的数据不会被外部修改回文档
func deepCopy(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = deepCopy(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = deepCopy(item)
		}
		return out
	default:
		return v
	}
}
