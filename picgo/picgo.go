// Package picgo 提供 PicGo CLI 的 Go 封装
// 上传、插件安装/卸载/更新都通过调用 picgo 命令行工具完成
package picgo

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"
)

// 默认配置
const (
	DefaultTimeout   = 120 * time.Second // 单张图片上传超时
	PluginTimeout    = 5 * time.Minute   // 插件安装/更新超时（npm 可能较慢）
	BatchConcurrency = 10                // 批量上传并发数
)

// urlPattern 用于从 picgo 输出中提取 URL
var urlPattern = regexp.MustCompile(`https?://[^\s"'<>]+`)

// CLI picgo 命令行封装
type CLI struct {
	bin string
}

// NewCLI 创建封装，bin 为空时使用 PATH 中的 picgo
func NewCLI(bin string) *CLI {
	if bin == "" {
		bin = "picgo"
	}
	return &CLI{bin: bin}
}

// Bin 返回可执行文件名
func (c *CLI) Bin() string { return c.bin }

// IsAvailable 检测 picgo CLI 是否可用
func (c *CLI) IsAvailable() bool {
	_, err := exec.LookPath(c.bin)
	return err == nil
}

// Version 获取 picgo 版本信息
func (c *CLI) Version(ctx context.Context) (string, error) {
	out, err := c.run(ctx, 10*time.Second, "-v")
	if err != nil {
		return "", err
	}
	return out, nil
}

// run 执行 picgo 子命令，返回合并后的输出
func (c *CLI) run(ctx context.Context, timeout time.Duration, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.bin, args...)
	output, err := cmd.CombinedOutput()
	outputStr := strings.TrimSpace(string(output))
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return outputStr, fmt.Errorf("picgo %s 超时（%v）", args[0], timeout)
		}
		if outputStr != "" {
			return outputStr, fmt.Errorf("picgo %s 失败: %w\n输出: %s", args[0], err, outputStr)
		}
		return outputStr, fmt.Errorf("picgo %s 失败: %w", args[0], err)
	}
	return outputStr, nil
}

// Upload 上传单张图片，返回图床 URL
func (c *CLI) Upload(ctx context.Context, filePath string) (string, error) {
	// 不使用静默模式，以便获取完整输出
	output, err := c.run(ctx, DefaultTimeout, "u", filePath)
	if err != nil {
		return "", err
	}

	url := extractURL(output)
	if url == "" {
		if output == "" {
			return "", fmt.Errorf("picgo 无输出，请检查当前图床配置")
		}
		return "", fmt.Errorf("未能从输出中解析 URL，picgo 输出:\n%s", output)
	}
	return url, nil
}

// extractURL 从 picgo 输出中提取 URL
// 优先取最后一个 URL（通常是最终结果）
func extractURL(output string) string {
	matches := urlPattern.FindAllString(output, -1)
	if len(matches) == 0 {
		return ""
	}
	return matches[len(matches)-1]
}

// BatchUploadResult 批量上传中单个文件的结果
type BatchUploadResult struct {
	LocalPath string
	URL       string
	Cached    bool
	Error     error
}

// BatchUpload 并发上传多张图片
// cache 不为 nil 时先按文件内容查缓存，命中则跳过上传；结果顺序与输入一致
func (c *CLI) BatchUpload(ctx context.Context, filePaths []string, cache *Cache) []BatchUploadResult {
	results := make([]BatchUploadResult, len(filePaths))
	if len(filePaths) == 0 {
		return results
	}

	semaphore := make(chan struct{}, BatchConcurrency)
	var wg sync.WaitGroup

	for i, path := range filePaths {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(i int, filePath string) {
			defer func() {
				<-semaphore
				wg.Done()
			}()

			res := BatchUploadResult{LocalPath: filePath}
			var key string
			if cache != nil {
				if k, err := FileKey(filePath); err == nil {
					key = k
					if url, ok := cache.Get(key); ok {
						res.URL, res.Cached = url, true
						results[i] = res
						return
					}
				}
			}

			res.URL, res.Error = c.Upload(ctx, filePath)
			if res.Error == nil && key != "" {
				cache.Put(key, res.URL)
			}
			results[i] = res
		}(i, path)
	}

	wg.Wait()
	return results
}
