// Package imgbed - 探测器工厂与限流检查
package imgbed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Wsine/picgo-helper/core"
	"github.com/pkg/errors"
)

var (
	// ErrUnsupportedBackend 该图床没有可用的探测实现
	ErrUnsupportedBackend = errors.New("unsupported backend")
	// ErrIncompleteConfig 必填字段缺失
	ErrIncompleteConfig = errors.New("incomplete config")
)

// ProbeTimeout 单次探测超时
const ProbeTimeout = 15 * time.Second

// Supported 支持探测的图床类型
func Supported() []string {
	return []string{"aliyun", "tcyun", "aws-s3", "webdav"}
}

// NewProber 根据图床类型与配置项创建探测器
func NewProber(ctx context.Context, backend string, p core.Profile) (Prober, error) {
	switch backend {
	case "aliyun":
		return NewOSSProber(OSSConfigFrom(p))
	case "tcyun":
		return NewCOSProber(COSConfigFrom(p))
	case "aws-s3":
		return NewS3Prober(ctx, S3ConfigFrom(p))
	case "webdav", "webdavplist":
		return NewWebDAVProber(WebDAVConfigFrom(p))
	default:
		return nil, errors.Wrapf(ErrUnsupportedBackend, "%s (支持: %s)", backend, strings.Join(Supported(), ", "))
	}
}

// Checker 带限流的凭据检查
type Checker struct {
	limiter *core.ProbeRateLimiter
	logger  *slog.Logger
}

// NewChecker 创建检查器
func NewChecker(limiter *core.ProbeRateLimiter, logger *slog.Logger) *Checker {
	if limiter == nil {
		limiter = core.NewProbeRateLimiter(1)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{limiter: limiter, logger: logger}
}

// Check 探测某个配置项，错误写入结果而不是返回
func (c *Checker) Check(ctx context.Context, backend string, p core.Profile) ProbeResult {
	res := ProbeResult{Backend: backend}

	prober, err := NewProber(ctx, backend, p)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Name = prober.Name()
	res.BaseURL = prober.BaseURL()

	if err := c.limiter.Wait(ctx); err != nil {
		res.Error = fmt.Sprintf("等待限流失败: %v", err)
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	start := time.Now()
	if err := prober.Probe(ctx); err != nil {
		c.logger.Warn("凭据探测失败", "backend", backend, "config", p.ConfigName(), "error", err)
		res.Error = err.Error()
		return res
	}
	c.logger.Info("凭据探测成功", "backend", backend, "config", p.ConfigName(), "elapsed", time.Since(start))
	res.OK = true
	return res
}

// joinURL 拼接域名与路径前缀
func joinURL(base, path string) string {
	base = strings.TrimSuffix(strings.TrimSpace(base), "/")
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	path = strings.Trim(strings.TrimSpace(path), "/")
	if path == "" {
		return base
	}
	return base + "/" + path
}
