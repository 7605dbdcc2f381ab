package core

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNoContext       = errors.New("picgo context is required")
	ErrNoDocument      = errors.New("config document is required")
	ErrLastProfile     = errors.New("cannot delete the last profile of a backend")
	ErrProfileNotFound = errors.New("profile not found")
	ErrUnknownBackend  = errors.New("unknown backend type")
	ErrUnknownRole     = errors.New("unknown role, expect uploader or transformer")
)

// Entry 一次写入：点分路径与新值
type Entry struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// Patch 有序写入集合，按顺序应用并按同样顺序发出变更事件
type Patch []Entry

// PatchOf 将无序的 map 转为按路径字典序排列的 Patch
func PatchOf(m map[string]any) Patch {
	patch := make(Patch, 0, len(m))
	for path, value := range m {
		patch = append(patch, Entry{Path: path, Value: value})
	}
	sort.Slice(patch, func(i, j int) bool { return patch[i].Path < patch[j].Path })
	return patch
}

// Store 上传器配置存储
// 文档的唯一写入方，所有修改都经由这里并发出 CONFIG_CHANGE 事件
type Store struct {
	picgo PicGo
	doc   *Document
	bus   *EventBus
	mu    sync.RWMutex

	// 变更事件在持有 mu 时入队，锁外按入队顺序投递
	pubMu      sync.Mutex
	pending    []ConfigChange
	publishing bool

	now   func() time.Time
	newID func() string
}

// NewStore 创建配置存储，picgo 与 doc 缺一不可
// bus 为 nil 时创建独立的事件总线
func NewStore(picgo PicGo, doc *Document, bus *EventBus) (*Store, error) {
	if picgo == nil {
		return nil, ErrNoContext
	}
	if doc == nil {
		return nil, ErrNoDocument
	}
	if bus == nil {
		bus = NewEventBus()
	}
	return &Store{
		picgo: picgo,
		doc:   doc,
		bus:   bus,
		now:   time.Now,
		newID: uuid.NewString,
	}, nil
}

// Bus 返回存储使用的事件总线
func (s *Store) Bus() *EventBus { return s.bus }

// PicGo 返回外部上传库上下文
func (s *Store) PicGo() PicGo { return s.picgo }

// Get 读取点分路径，不存在时返回 def；path 为空时返回整个文档
// 返回值是深拷贝，修改它不会影响文档
func (s *Store) Get(path string, def any) any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.doc.Get(path)
	if !ok {
		return def
	}
	return deepCopy(v)
}

// Snapshot 返回整个文档的深拷贝
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Snapshot()
}

// Save 按顺序写入每个路径并逐条发出变更事件
// 每个路径单独生效：失败的路径不影响已经写入的路径，失败信息合并返回
func (s *Store) Save(patch Patch) error {
	s.mu.Lock()
	changes, err := s.applyLocked(patch)
	s.unlockAndPublish(changes)
	return err
}

// Unset 删除路径，删除成功时发出值为 nil 的变更事件
func (s *Store) Unset(path string) bool {
	s.mu.Lock()
	var changes []ConfigChange
	ok := s.doc.Delete(path)
	if ok {
		changes = append(changes, ConfigChange{ConfigName: path})
	}
	s.unlockAndPublish(changes)
	return ok
}

func (s *Store) applyLocked(patch Patch) ([]ConfigChange, error) {
	changes := make([]ConfigChange, 0, len(patch))
	var errs []error
	for _, e := range patch {
		if err := s.doc.Set(e.Path, e.Value); err != nil {
			errs = append(errs, fmt.Errorf("保存 %s 失败: %w", e.Path, err))
			continue
		}
		v, _ := s.doc.Get(e.Path)
		changes = append(changes, ConfigChange{ConfigName: e.Path, Value: deepCopy(v)})
	}
	return changes, errors.Join(errs...)
}

// unlockAndPublish 释放写锁并发出本次写入的变更事件
// 入队发生在释放 mu 之前，因此事件顺序与写入顺序一致；
// 同一时刻只有一个 goroutine 负责投递，处理函数中再次写入产生的事件排在队尾
func (s *Store) unlockAndPublish(changes []ConfigChange) {
	s.pubMu.Lock()
	s.pending = append(s.pending, changes...)
	s.pubMu.Unlock()
	s.mu.Unlock()

	s.drain()
}

func (s *Store) drain() {
	s.pubMu.Lock()
	if s.publishing {
		s.pubMu.Unlock()
		return
	}
	s.publishing = true
	for len(s.pending) > 0 {
		batch := s.pending
		s.pending = nil
		s.pubMu.Unlock()
		for _, c := range batch {
			s.bus.Emit(EventConfigChange, c)
		}
		s.pubMu.Lock()
	}
	s.publishing = false
	s.pubMu.Unlock()
}

// Profiles 返回某个图床类型的配置列表与默认配置 ID
// 首次读取尚未迁移的旧版单配置时，会先迁移为列表格式并写回文档
func (s *Store) Profiles(backend string) (UploaderTypeConfig, error) {
	s.mu.Lock()
	cfg, changes, err := s.profilesLocked(backend)
	s.unlockAndPublish(changes)
	return cfg, err
}

func (s *Store) profilesLocked(backend string) (UploaderTypeConfig, []ConfigChange, error) {
	if raw, ok := s.doc.Get(profilesPath(backend)); ok {
		if list, ok := raw.([]any); ok {
			defaultID, _ := s.doc.Get(defaultIDPath(backend))
			id, _ := defaultID.(string)
			return parseUploaderTypeConfig(list, id), nil, nil
		}
	}
	return s.migrateLocked(backend)
}

// migrateLocked 把 pictureBed.<type> 下的旧版单配置迁移为一项配置列表
func (s *Store) migrateLocked(backend string) (UploaderTypeConfig, []ConfigChange, error) {
	profile := Profile{}
	if raw, ok := s.doc.Get(pictureBedPath(backend)); ok {
		if legacy, ok := raw.(map[string]any); ok {
			profile = Profile(deepCopy(legacy).(map[string]any))
		}
	}
	if profile.ID() == "" {
		now := s.now().UnixMilli()
		if profile.String(FieldConfigName) == "" {
			profile[FieldConfigName] = DefaultConfigName
		}
		profile[FieldID] = s.newID()
		profile[FieldCreatedAt] = now
		profile[FieldUpdatedAt] = now
	}

	cfg := UploaderTypeConfig{ConfigList: []Profile{profile}, DefaultID: profile.ID()}
	changes, err := s.applyLocked(Patch{
		{Path: profilesPath(backend), Value: cfg.ConfigList},
		{Path: defaultIDPath(backend), Value: cfg.DefaultID},
		{Path: pictureBedPath(backend), Value: profile},
	})
	if err != nil {
		return UploaderTypeConfig{}, changes, fmt.Errorf("迁移 %s 旧版配置失败: %w", backend, err)
	}
	// 以写入后的文档为准，数值字段统一为 JSON 形态
	raw, _ := s.doc.Get(profilesPath(backend))
	list, _ := raw.([]any)
	return parseUploaderTypeConfig(list, cfg.DefaultID), changes, nil
}

// SelectProfile 将指定配置设为该图床的默认配置并激活
// 找不到时返回 false，且不修改任何内容
func (s *Store) SelectProfile(backend, id string) (Profile, bool) {
	s.mu.Lock()
	cfg, changes, err := s.profilesLocked(backend)
	if err != nil {
		s.unlockAndPublish(changes)
		return nil, false
	}
	i := cfg.Find(id)
	if i < 0 {
		s.unlockAndPublish(changes)
		return nil, false
	}
	profile := cfg.ConfigList[i]
	more, err := s.applyLocked(Patch{
		{Path: defaultIDPath(backend), Value: id},
		{Path: pictureBedPath(backend), Value: profile},
	})
	s.unlockAndPublish(append(changes, more...))
	if err != nil {
		return nil, false
	}
	return profile.Clone(), true
}

// UpsertProfile 更新或新增配置
// id 命中已有配置时浅合并字段并刷新 updatedAt；否则创建新配置、追加到列表末尾并设为默认
// 两种情况都会把结果写入 pictureBed.<type> 作为当前生效配置
func (s *Store) UpsertProfile(backend, id string, fields map[string]any) (Profile, error) {
	s.mu.Lock()
	cfg, changes, err := s.profilesLocked(backend)
	if err != nil {
		s.unlockAndPublish(changes)
		return nil, err
	}

	now := s.now().UnixMilli()
	trimmed := trimValues(fields)
	var profile Profile
	if i := cfg.Find(id); i >= 0 {
		profile = cfg.ConfigList[i]
		for k, v := range trimmed {
			if k == FieldID || k == FieldCreatedAt {
				continue
			}
			profile[k] = v
		}
		profile[FieldUpdatedAt] = now
	} else {
		profile = Profile{FieldConfigName: DefaultConfigName}
		for k, v := range trimmed {
			profile[k] = v
		}
		profile[FieldID] = s.newID()
		profile[FieldCreatedAt] = now
		profile[FieldUpdatedAt] = now
		cfg.ConfigList = append(cfg.ConfigList, profile)
		cfg.DefaultID = profile.ID()
	}

	more, err := s.applyLocked(Patch{
		{Path: profilesPath(backend), Value: cfg.ConfigList},
		{Path: defaultIDPath(backend), Value: cfg.DefaultID},
		{Path: pictureBedPath(backend), Value: profile},
	})
	stored, _ := s.doc.Get(pictureBedPath(backend))
	obj, _ := deepCopy(stored).(map[string]any)
	s.unlockAndPublish(append(changes, more...))
	if err != nil {
		return nil, err
	}
	return Profile(obj), nil
}

// DeleteProfile 删除配置
// 列表只剩一项时拒绝删除；删除的是默认配置时，剩余的第一项成为新的默认配置并被激活
func (s *Store) DeleteProfile(backend, id string) (UploaderTypeConfig, error) {
	s.mu.Lock()
	cfg, changes, err := s.profilesLocked(backend)
	if err != nil {
		s.unlockAndPublish(changes)
		return UploaderTypeConfig{}, err
	}
	if len(cfg.ConfigList) <= 1 {
		s.unlockAndPublish(changes)
		return cfg, ErrLastProfile
	}
	i := cfg.Find(id)
	if i < 0 {
		s.unlockAndPublish(changes)
		return cfg, ErrProfileNotFound
	}

	cfg.ConfigList = append(cfg.ConfigList[:i:i], cfg.ConfigList[i+1:]...)
	patch := Patch{{Path: profilesPath(backend), Value: cfg.ConfigList}}
	if id == cfg.DefaultID {
		next := cfg.ConfigList[0]
		cfg.DefaultID = next.ID()
		patch = append(patch,
			Entry{Path: defaultIDPath(backend), Value: cfg.DefaultID},
			Entry{Path: pictureBedPath(backend), Value: next},
		)
	}
	more, err := s.applyLocked(patch)
	s.unlockAndPublish(append(changes, more...))
	return cfg, err
}
