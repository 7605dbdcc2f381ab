package core

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// ProbeRateLimiter 凭据探测限流器
// 同时限制每秒与每分钟的探测次数，避免频繁点击“测试连接”触发云厂商风控
type ProbeRateLimiter struct {
	perSecond *rate.Limiter
	perMinute *rate.Limiter
}

// NewProbeRateLimiter 创建限流器，perSecond <= 0 时按 1 次/秒处理
func NewProbeRateLimiter(perSecond int) *ProbeRateLimiter {
	if perSecond <= 0 {
		perSecond = 1
	}
	return &ProbeRateLimiter{
		perSecond: rate.NewLimiter(rate.Limit(perSecond), perSecond),

		// 每分钟上限为秒级的 30 倍，burst 与秒级一致
		perMinute: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perSecond*30)), perSecond),
	}
}

// Wait 等待直到可以执行一次探测
// 必须同时满足两个限流器的条件
func (l *ProbeRateLimiter) Wait(ctx context.Context) error {
	if err := l.perSecond.Wait(ctx); err != nil {
		return err
	}
	return l.perMinute.Wait(ctx)
}
