// Package imgbed - 腾讯云COS凭据探测
package imgbed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Wsine/picgo-helper/core"
	"github.com/pkg/errors"
	"github.com/tencentyun/cos-go-sdk-v5"
)

// COSConfig PicGo tcyun 上传器的配置字段
type COSConfig struct {
	SecretID  string
	SecretKey string
	Bucket    string // 带 appid，如 img-1250000000
	Area      string // 如 ap-guangzhou
	Path      string
	CustomURL string
}

// COSConfigFrom 从配置项读取 tcyun 字段
func COSConfigFrom(p core.Profile) COSConfig {
	return COSConfig{
		SecretID:  p.String("secretId"),
		SecretKey: p.String("secretKey"),
		Bucket:    p.String("bucket"),
		Area:      p.String("area"),
		Path:      p.String("path"),
		CustomURL: p.String("customUrl"),
	}
}

// COSProber 腾讯云COS
type COSProber struct {
	config    COSConfig
	bucketURL string
	client    *cos.Client
}

// NewCOSProber 创建腾讯云COS探测器
func NewCOSProber(cfg COSConfig) (*COSProber, error) {
	if cfg.SecretID == "" || cfg.SecretKey == "" || cfg.Bucket == "" || cfg.Area == "" {
		return nil, errors.Wrap(ErrIncompleteConfig, "tcyun 需要 secretId、secretKey、bucket、area")
	}

	bucketURL := fmt.Sprintf("https://%s.cos.%s.myqcloud.com", cfg.Bucket, cfg.Area)
	u, err := url.Parse(bucketURL)
	if err != nil {
		return nil, fmt.Errorf("解析Bucket URL失败: %w", err)
	}

	client := cos.NewClient(&cos.BaseURL{BucketURL: u}, &http.Client{
		Transport: &cos.AuthorizationTransport{
			SecretID:  cfg.SecretID,
			SecretKey: cfg.SecretKey,
		},
	})
	return &COSProber{config: cfg, bucketURL: bucketURL, client: client}, nil
}

func (p *COSProber) Name() string { return "腾讯云COS" }

// Probe HEAD bucket，404/403 都视为不可用
func (p *COSProber) Probe(ctx context.Context) error {
	if _, err := p.client.Bucket.Head(ctx); err != nil {
		return fmt.Errorf("访问COS失败: %w", err)
	}
	return nil
}

// BaseURL 图片链接前缀
func (p *COSProber) BaseURL() string {
	if p.config.CustomURL != "" {
		return joinURL(p.config.CustomURL, p.config.Path)
	}
	return joinURL(p.bucketURL, p.config.Path)
}
