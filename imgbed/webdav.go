package imgbed

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Wsine/picgo-helper/core"
	"github.com/pkg/errors"
	"github.com/studio-b12/gowebdav"
)

// WebDAVConfig picgo-plugin-webdav-uploader (webdavplist) 的配置字段
type WebDAVConfig struct {
	Host      string
	Username  string
	Password  string
	Path      string
	CustomURL string
}

// WebDAVConfigFrom 从配置项读取 webdav 字段
func WebDAVConfigFrom(p core.Profile) WebDAVConfig {
	return WebDAVConfig{
		Host:      p.String("host"),
		Username:  p.String("username"),
		Password:  p.String("password"),
		Path:      p.String("path"),
		CustomURL: p.String("customUrl"),
	}
}

// WebDAVProber WebDAV 图床
type WebDAVProber struct {
	config WebDAVConfig
	client *gowebdav.Client
}

// NewWebDAVProber 创建 WebDAV 探测器
func NewWebDAVProber(cfg WebDAVConfig) (*WebDAVProber, error) {
	if cfg.Host == "" {
		return nil, errors.Wrap(ErrIncompleteConfig, "webdav 需要 host")
	}
	host := cfg.Host
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	cfg.Host = host
	return &WebDAVProber{config: cfg, client: gowebdav.NewClient(host, cfg.Username, cfg.Password)}, nil
}

func (p *WebDAVProber) Name() string { return "WebDAV" }

// Probe 连接并确认上传目录存在
func (p *WebDAVProber) Probe(ctx context.Context) error {
	if err := p.client.Connect(); err != nil {
		if strings.Contains(err.Error(), fmt.Sprintf("%d", http.StatusUnauthorized)) {
			return fmt.Errorf("WebDAV 认证失败 (401 Unauthorized): 请检查用户名和密码: %w", err)
		}
		return fmt.Errorf("WebDAV 服务器连接失败 at %s: %w", p.config.Host, err)
	}
	if p.config.Path != "" {
		if _, err := p.client.Stat(p.config.Path); err != nil {
			return fmt.Errorf("WebDAV 目录 %s 不可访问: %w", p.config.Path, err)
		}
	}
	return ctx.Err()
}

// BaseURL 图片链接前缀
func (p *WebDAVProber) BaseURL() string {
	if p.config.CustomURL != "" {
		return joinURL(p.config.CustomURL, p.config.Path)
	}
	return joinURL(p.config.Host, p.config.Path)
}
