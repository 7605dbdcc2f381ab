package core

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
)

// LoadDocument 从文件加载配置文档，文件不存在时返回空文档
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewDocument(nil), nil
		}
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	return ParseDocument(data)
}

// FilePersister 监听 CONFIG_CHANGE，把文档异步写回磁盘
// 对存储而言是“发出即忘”：写盘失败只记录日志
type FilePersister struct {
	path   string
	store  *Store
	logger *slog.Logger
	sub    Subscription

	dirty atomic.Bool
	kick  chan struct{}
	stop  chan struct{}
	wg   sync.WaitGroup
	mu   sync.Mutex // 串行化写文件
}

// NewFilePersister 创建并启动持久化器
func NewFilePersister(path string, store *Store, logger *slog.Logger) *FilePersister {
	if logger == nil {
		logger = slog.Default()
	}
	p := &FilePersister{
		path:   path,
		store:  store,
		logger: logger,
		kick:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
	}
	p.sub = store.Bus().On(EventConfigChange, func(any) {
		p.dirty.Store(true)
		// 合并连续的变更，只保留一次待写请求
		select {
		case p.kick <- struct{}{}:
		default:
		}
	})
	p.wg.Add(1)
	go p.loop()
	return p
}

func (p *FilePersister) loop() {
	defer p.wg.Done()
	for {
		select {
		case <-p.kick:
			if !p.dirty.Swap(false) {
				continue
			}
			if err := p.Flush(); err != nil {
				p.dirty.Store(true)
				p.logger.Warn("配置持久化失败", "path", p.path, "error", err)
			}
		case <-p.stop:
			return
		}
	}
}

// Flush 立即把当前文档写入磁盘（先写临时文件再重命名）
func (p *FilePersister) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := json.MarshalIndent(p.store.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("写入配置失败: %w", err)
	}
	return os.Rename(tmp, p.path)
}

// Close 取消订阅、停止后台写入；仍有未写入的变更时同步写盘一次
func (p *FilePersister) Close() error {
	p.store.Bus().Off(p.sub)
	close(p.stop)
	p.wg.Wait()
	if !p.dirty.Swap(false) {
		return nil
	}
	return p.Flush()
}
