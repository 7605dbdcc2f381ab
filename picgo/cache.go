// Package picgo - 上传缓存管理
// 维护 文件内容摘要 -> URL 的映射，避免重复上传同一张图片
package picgo

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// CacheFileName 缓存文件名，位于 PicGo 数据目录下
const CacheFileName = "picgo-helper-upload-cache.json"

// Cache 上传缓存
type Cache struct {
	path    string
	mu      sync.RWMutex
	writeMu sync.Mutex // 串行化写文件
	entries map[string]string
	loaded  bool
}

// NewCache 创建缓存，path 为缓存 JSON 文件路径
func NewCache(path string) *Cache {
	return &Cache{path: path, entries: make(map[string]string)}
}

// load 从文件加载缓存（只加载一次）
func (c *Cache) load() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return
	}
	c.loaded = true

	data, err := os.ReadFile(c.path)
	if err != nil {
		// 文件不存在是正常的
		return
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		// JSON 解析失败，忽略
		c.entries = make(map[string]string)
	}
}

// Get 获取缓存的 URL
func (c *Cache) Get(key string) (string, bool) {
	c.load()

	c.mu.RLock()
	defer c.mu.RUnlock()
	url, ok := c.entries[key]
	return url, ok
}

// Put 写入缓存并立即持久化
func (c *Cache) Put(key, url string) error {
	c.load()

	c.mu.Lock()
	c.entries[key] = url
	c.mu.Unlock()

	return c.persist()
}

// Len 返回缓存条目数
func (c *Cache) Len() int {
	c.load()

	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear 清空缓存并删除缓存文件
func (c *Cache) Clear() error {
	c.mu.Lock()
	c.entries = make(map[string]string)
	c.loaded = true
	c.mu.Unlock()

	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (c *Cache) persist() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}

	c.mu.RLock()
	data, err := json.MarshalIndent(c.entries, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o644)
}

// FileKey 计算文件内容的 SHA1 作为缓存键
func FileKey(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
