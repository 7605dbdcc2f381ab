// Package imgbed 提供图床凭据探测
// 在保存配置前用各云厂商 SDK 检查 bucket 是否可访问，不做实际上传
package imgbed

import "context"

// Prober 图床凭据探测接口
type Prober interface {
	// Name 图床展示名称
	Name() string

	// Probe 检查凭据与 bucket 是否可用
	Probe(ctx context.Context) error

	// BaseURL 上传后图片链接的前缀（自定义域名优先）
	BaseURL() string
}

// ProbeResult 单次探测结果
type ProbeResult struct {
	Backend string `json:"backend"`
	Name    string `json:"name,omitempty"`
	OK      bool   `json:"ok"`
	BaseURL string `json:"baseUrl,omitempty"`
	Error   string `json:"error,omitempty"`
}
