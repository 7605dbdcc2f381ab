package core

import "context"

// Component 注册表中的一个上传器或转换器
type Component struct {
	ID     string `json:"id"`
	Name   string `json:"name"`             // 展示名称，为空时使用 ID
	Plugin string `json:"plugin,omitempty"` // 提供该组件的插件，内置组件为空
}

// DisplayName 返回展示名称
func (c Component) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

// Registry 上传器/转换器注册表
type Registry interface {
	Get(id string) (Component, bool)
	IDList() []string
}

// OperationResult 外部插件操作的执行结果
type OperationResult struct {
	Success bool
	Body    []string // 本次操作涉及的插件名
	Err     error
}

// PicGo 外部上传库的上下文
// 插件加载、npm 安装等都由外部库完成，这里只描述调用接口
type PicGo interface {
	Uploaders() Registry
	Transformers() Registry
	Install(ctx context.Context, names []string) OperationResult
	Uninstall(ctx context.Context, names []string) OperationResult
	Update(ctx context.Context, names []string) OperationResult
	BaseDir() string
}
