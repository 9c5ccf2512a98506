package game

import (
	"fmt"
	"log"
	"time"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// SaveData 存档数据
type SaveData struct {
	HighScore      int       `yaml:"highScore"`      // 最高到达波次
	UnlockedDrones int       `yaml:"unlockedDrones"` // 已解锁无人机数量
	LastPlayDate   time.Time `yaml:"lastPlayDate"`   // 最后一次保存时间
}

// DefaultSaveData 返回新存档
func DefaultSaveData() *SaveData {
	return &SaveData{
		HighScore:      0,
		UnlockedDrones: 1,
		LastPlayDate:   time.Now(),
	}
}

// HighScoreStore 最高分存储，GameOver 状态进入时调用
type HighScoreStore interface {
	// UpdateHighScore 分数高于当前最高分时记录并保存，返回是否刷新了记录
	UpdateHighScore(score int) (bool, error)
}

// SaveManager 存档管理器
//
// 职责：
//   - 通过 gdata 跨平台存储加载和保存 SaveData（YAML 编码）
//   - 只在分数刷新时写盘
//
// gdataManager 为 nil 时进入降级模式：存档只保存在内存中。
type SaveManager struct {
	gdataManager *gdata.Manager
	data         *SaveData
	now          func() time.Time
}

// 存储路径常量
const (
	saveObject   = "save"
	saveProperty = "progress"
)

// NewSaveManager 创建存档管理器并尝试加载已有存档
//
// 参数：
//   - gdataManager: gdata 存储管理器，可为 nil（降级模式）
//
// 返回：
//   - *SaveManager: 存档管理器实例
//   - error: 始终为 nil；加载失败只记录警告并使用新存档
func NewSaveManager(gdataManager *gdata.Manager) (*SaveManager, error) {
	sm := &SaveManager{
		gdataManager: gdataManager,
		data:         DefaultSaveData(),
		now:          time.Now,
	}

	if err := sm.Load(); err != nil {
		log.Printf("[SaveManager] Warning: Failed to load save data: %v (starting fresh)", err)
	}

	return sm, nil
}

// OpenSaveManager 打开 appName 对应的 gdata 存储并创建存档管理器
//
// gdata 打开失败时退回降级模式。Android 上调用方需要先准备好存储目录
// （utils.EnsureStorageDir）。
func OpenSaveManager(appName string) *SaveManager {
	gm, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		log.Printf("[SaveManager] Warning: gdata unavailable: %v (save data kept in memory)", err)
		gm = nil
	}
	sm, _ := NewSaveManager(gm)
	return sm
}

// Load 从 gdata 加载存档；不存在时使用新存档
func (sm *SaveManager) Load() error {
	if sm.gdataManager == nil {
		sm.data = DefaultSaveData()
		return nil
	}

	if !sm.gdataManager.ObjectPropExists(saveObject, saveProperty) {
		sm.data = DefaultSaveData()
		return nil
	}

	raw, err := sm.gdataManager.LoadObjectProp(saveObject, saveProperty)
	if err != nil {
		sm.data = DefaultSaveData()
		return fmt.Errorf("failed to load save data: %w", err)
	}

	var loaded SaveData
	if err := yaml.Unmarshal(raw, &loaded); err != nil {
		sm.data = DefaultSaveData()
		return fmt.Errorf("failed to unmarshal save data: %w", err)
	}
	if loaded.UnlockedDrones < 1 {
		loaded.UnlockedDrones = 1
	}

	sm.data = &loaded
	log.Printf("[SaveManager] Save data loaded, high score %d", loaded.HighScore)
	return nil
}

// Save 写入存档并刷新 LastPlayDate；降级模式下不报错
func (sm *SaveManager) Save() error {
	sm.data.LastPlayDate = sm.now()

	if sm.gdataManager == nil {
		return nil
	}

	raw, err := yaml.Marshal(sm.data)
	if err != nil {
		return fmt.Errorf("failed to marshal save data: %w", err)
	}
	if err := sm.gdataManager.SaveObjectProp(saveObject, saveProperty, raw); err != nil {
		return fmt.Errorf("failed to save save data: %w", err)
	}

	log.Printf("[SaveManager] Save data written")
	return nil
}

// Data 返回存档副本
func (sm *SaveManager) Data() SaveData {
	return *sm.data
}

// HighScore 当前最高分
func (sm *SaveManager) HighScore() int {
	return sm.data.HighScore
}

// UnlockedDrones 已解锁的无人机数量，至少为 1
func (sm *SaveManager) UnlockedDrones() int {
	return max(1, sm.data.UnlockedDrones)
}

// UpdateHighScore 分数高于最高分时刷新并保存
func (sm *SaveManager) UpdateHighScore(score int) (bool, error) {
	if score <= sm.data.HighScore {
		return false, nil
	}
	sm.data.HighScore = score
	log.Printf("[SaveManager] New high score: %d", score)
	if err := sm.Save(); err != nil {
		return true, err
	}
	return true, nil
}
