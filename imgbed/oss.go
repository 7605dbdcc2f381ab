// Package imgbed - 阿里云OSS凭据探测
package imgbed

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Wsine/picgo-helper/core"
	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/pkg/errors"
)

// OSSConfig PicGo aliyun 上传器的配置字段
type OSSConfig struct {
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	Area            string // 如 oss-cn-beijing
	Path            string
	CustomURL       string
}

// OSSConfigFrom 从配置项读取 aliyun 字段
func OSSConfigFrom(p core.Profile) OSSConfig {
	return OSSConfig{
		AccessKeyID:     p.String("accessKeyId"),
		AccessKeySecret: p.String("accessKeySecret"),
		Bucket:          p.String("bucket"),
		Area:            p.String("area"),
		Path:            p.String("path"),
		CustomURL:       p.String("customUrl"),
	}
}

// OSSProber 阿里云OSS
type OSSProber struct {
	config OSSConfig
	client *oss.Client
}

// NewOSSProber 创建阿里云OSS探测器
func NewOSSProber(cfg OSSConfig) (*OSSProber, error) {
	if cfg.AccessKeyID == "" || cfg.AccessKeySecret == "" || cfg.Bucket == "" || cfg.Area == "" {
		return nil, errors.Wrap(ErrIncompleteConfig, "aliyun 需要 accessKeyId、accessKeySecret、bucket、area")
	}

	client, err := oss.New(ossEndpoint(cfg.Area), cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("创建OSS客户端失败: %w", err)
	}
	return &OSSProber{config: cfg, client: client}, nil
}

// ossEndpoint area 允许写成 cn-beijing 或 oss-cn-beijing
func ossEndpoint(area string) string {
	area = strings.TrimSpace(area)
	if !strings.HasPrefix(area, "oss-") {
		area = "oss-" + area
	}
	return fmt.Sprintf("https://%s.aliyuncs.com", area)
}

func (p *OSSProber) Name() string { return "阿里云OSS" }

// Probe 读取 bucket 信息，只需要 bucket 级别的权限
func (p *OSSProber) Probe(ctx context.Context) error {
	_, err := p.client.GetBucketInfo(p.config.Bucket, oss.WithContext(ctx))
	if err == nil {
		return nil
	}
	var serr oss.ServiceError
	if errors.As(err, &serr) && serr.StatusCode == http.StatusNotFound {
		return fmt.Errorf("bucket %s 不存在", p.config.Bucket)
	}
	return fmt.Errorf("访问OSS失败: %w", err)
}

// BaseURL 图片链接前缀
func (p *OSSProber) BaseURL() string {
	if p.config.CustomURL != "" {
		return joinURL(p.config.CustomURL, p.config.Path)
	}
	area := strings.TrimPrefix(p.config.Area, "oss-")
	return joinURL(fmt.Sprintf("https://%s.oss-%s.aliyuncs.com", p.config.Bucket, area), p.config.Path)
}
