package picgo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Wsine/picgo-helper/core"
)

// builtinUploaders PicGo 内置上传器，顺序即展示顺序
var builtinUploaders = []core.Component{
	{ID: "smms", Name: "SM.MS"},
	{ID: "tcyun", Name: "腾讯云COS"},
	{ID: "github", Name: "GitHub"},
	{ID: "qiniu", Name: "七牛图床"},
	{ID: "imgur", Name: "Imgur"},
	{ID: "aliyun", Name: "阿里云OSS"},
	{ID: "upyun", Name: "又拍云"},
}

var builtinTransformers = []core.Component{
	{ID: "path", Name: "path"},
	{ID: "base64", Name: "base64"},
}

// KnownPlugins 常用插件及其提供的组件
// 已安装插件只有出现在这里才能知道它注册了哪个上传器/转换器
var KnownPlugins = map[string][]PluginComponent{
	"picgo-plugin-s3": {
		{Kind: KindUploader, Component: core.Component{ID: "aws-s3", Name: "Amazon S3"}},
	},
	"picgo-plugin-gitee-uploader": {
		{Kind: KindUploader, Component: core.Component{ID: "gitee", Name: "Gitee"}},
	},
	"picgo-plugin-minio": {
		{Kind: KindUploader, Component: core.Component{ID: "minio", Name: "MinIO"}},
	},
	"picgo-plugin-watermark": {
		{Kind: KindTransformer, Component: core.Component{ID: "watermark", Name: "watermark"}},
	},
}

// Kind 组件类型
type Kind string

const (
	KindUploader    Kind = "uploader"
	KindTransformer Kind = "transformer"
)

// PluginComponent 插件注册的一个组件
type PluginComponent struct {
	Kind      Kind
	Component core.Component
}

// registry 有序注册表
type registry struct {
	mu    sync.RWMutex
	order []string
	items map[string]core.Component
}

func newRegistry(items []core.Component) *registry {
	r := &registry{items: make(map[string]core.Component)}
	for _, c := range items {
		r.register(c)
	}
	return r
}

func (r *registry) register(c core.Component) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[c.ID]; !ok {
		r.order = append(r.order, c.ID)
	}
	r.items[c.ID] = c
}

func (r *registry) unregisterPlugin(plugin string) {
	r.mu.Lock()
	defer r.mu.Unlock()
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

func (r *registry) Get(id string) (core.Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items[id]
	return c, ok
}

func (r *registry) IDList() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

var _ core.PicGo = (*CLIContext)(nil)

// CLIContext 基于 picgo 命令行的外部上下文实现
type CLIContext struct {
	cli          *CLI
	baseDir      string
	uploaders    *registry
	transformers *registry
}

// NewCLIContext 创建上下文，并扫描 baseDir/package.json 中已安装的插件
func NewCLIContext(cli *CLI, baseDir string) (*CLIContext, error) {
	c := &CLIContext{
		cli:          cli,
		baseDir:      baseDir,
		uploaders:    newRegistry(builtinUploaders),
		transformers: newRegistry(builtinTransformers),
	}
	plugins, err := InstalledPlugins(baseDir)
	if err != nil {
		return nil, err
	}
	for _, name := range plugins {
		c.RegisterPlugin(name, KnownPlugins[name]...)
	}
	return c, nil
}

// RegisterPlugin 登记插件提供的组件
func (c *CLIContext) RegisterPlugin(plugin string, components ...PluginComponent) {
	for _, pc := range components {
		comp := pc.Component
		comp.Plugin = plugin
		switch pc.Kind {
		case KindUploader:
			c.uploaders.register(comp)
		case KindTransformer:
			c.transformers.register(comp)
		}
	}
}

func (c *CLIContext) Uploaders() core.Registry    { return c.uploaders }
func (c *CLIContext) Transformers() core.Registry { return c.transformers }
func (c *CLIContext) BaseDir() string             { return c.baseDir }

// Install 通过 picgo install 安装插件，成功后登记已知组件
func (c *CLIContext) Install(ctx context.Context, names []string) core.OperationResult {
	res := c.pluginOp(ctx, "install", names)
	if res.Success {
		for _, name := range res.Body {
			c.RegisterPlugin(name, KnownPlugins[name]...)
		}
	}
	return res
}

// Uninstall 通过 picgo uninstall 卸载插件，成功后移除其组件
func (c *CLIContext) Uninstall(ctx context.Context, names []string) core.OperationResult {
	res := c.pluginOp(ctx, "uninstall", names)
	if res.Success {
		for _, name := range res.Body {
			c.uploaders.unregisterPlugin(name)
			c.transformers.unregisterPlugin(name)
		}
	}
	return res
}

// Update 通过 picgo update 更新插件
func (c *CLIContext) Update(ctx context.Context, names []string) core.OperationResult {
	return c.pluginOp(ctx, "update", names)
}

func (c *CLIContext) pluginOp(ctx context.Context, op string, names []string) core.OperationResult {
	full := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			full = append(full, FullPluginName(name))
		}
	}
	if len(full) == 0 {
		return core.OperationResult{Err: fmt.Errorf("未指定插件")}
	}
	args := append([]string{op}, full...)
	if _, err := c.cli.run(ctx, PluginTimeout, args...); err != nil {
		return core.OperationResult{Body: full, Err: err}
	}
	return core.OperationResult{Success: true, Body: full}
}

// FullPluginName 补全插件名：gitee-uploader -> picgo-plugin-gitee-uploader
// 带 scope 的包名保持不变
func FullPluginName(name string) string {
	if strings.HasPrefix(name, "@") || strings.HasPrefix(name, "picgo-plugin-") {
		return name
	}
	return "picgo-plugin-" + name
}

// InstalledPlugins 读取 baseDir/package.json 中以 picgo-plugin- 开头的依赖
func InstalledPlugins(baseDir string) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, "package.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("读取插件清单失败: %w", err)
	}
	var pkg struct {
		Dependencies map[string]string `json:"dependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("解析插件清单失败: %w", err)
	}
	var out []string
	for name := range pkg.Dependencies {
		base := name
		if i := strings.LastIndex(name, "/"); i >= 0 {
			base = name[i+1:]
		}
		if strings.HasPrefix(base, "picgo-plugin-") {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}
