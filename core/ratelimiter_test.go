package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProbeRateLimiterBurst(t *testing.T) {
	l := NewProbeRateLimiter(2)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.NoError(t, l.Wait(ctx))
	assert.NoError(t, l.Wait(ctx))
	assert.Error(t, l.Wait(ctx))
}

func TestProbeRateLimiterZeroRate(t *testing.T) {
	l := NewProbeRateLimiter(0)
	assert.NoError(t, l.Wait(context.Background()))
}

func TestProbeRateLimiterWaitHonoursContext(t *testing.T) {
	l := NewProbeRateLimiter(1)
	assert.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx))
}

func TestNewLoggerLevels(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLevel("debug").String())
	assert.Equal(t, "WARN", parseLevel("warning").String())
	assert.Equal(t, "ERROR", parseLevel("ERROR").String())
	assert.Equal(t, "INFO", parseLevel("").String())
}
