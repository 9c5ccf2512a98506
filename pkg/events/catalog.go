package events

import (
	"github.com/gonewx/towerdefense/pkg/components"
	"github.com/gonewx/towerdefense/pkg/types"
)

// Kind 事件种类，EventBus 按种类分发
type Kind string

const (
	KindEntitySpawned    Kind = "EntitySpawned"
	KindEntityDied       Kind = "EntityDied"
	KindEntityDamaged    Kind = "EntityDamaged"
	KindAttackPerformed  Kind = "AttackPerformed"
	KindWaveStarted      Kind = "WaveStarted"
	KindWaveCompleted    Kind = "WaveCompleted"
	KindUpgradeCollected Kind = "UpgradeCollected"
	KindUpgradeSpawned   Kind = "UpgradeSpawned"
	KindGameStateChanged Kind = "GameStateChanged"
	KindGameOver         Kind = "GameOver"
)

// GameEvent 所有事件载荷的公共接口
//
// 事件均为值类型，发布后不会被修改。
type GameEvent interface {
	Kind() Kind
}

// Event 事件目录中的具体事件类型，用作 Subscribe 的类型约束
type Event interface {
	EntitySpawned | EntityDied | EntityDamaged | AttackPerformed | WaveStarted |
		WaveCompleted | UpgradeCollected | UpgradeSpawned | GameStateChanged | GameOver
	GameEvent
}

// EntitySpawned 实体生成
type EntitySpawned struct {
	Entity   components.Entity
	Position types.Vector2
}

// EntityDied 实体死亡，每个实体只会发布一次
type EntityDied struct {
	Entity   components.Entity
	Position types.Vector2
}

// EntityDamaged 实体受到伤害；Attacker 可能为 nil
type EntityDamaged struct {
	Victim   components.Entity
	Attacker components.Entity
	Damage   int
}

// AttackPerformed 近战/直接攻击已执行
type AttackPerformed struct {
	Attacker components.Entity
	Target   components.Entity
	Damage   int
}

// WaveStarted 新一波开始
type WaveStarted struct {
	WaveNumber int
	EnemyCount int
}

// WaveCompleted 当前波次的敌人已全部消灭
type WaveCompleted struct {
	WaveNumber int
}

// UpgradeCollected 玩家拾取升级道具
type UpgradeCollected struct {
	Collector   components.Entity
	UpgradeType types.UpgradeType
	Value       float64
}

// UpgradeSpawned 场上出现升级道具
type UpgradeSpawned struct {
	Position    types.Vector2
	UpgradeType types.UpgradeType
}

// GameStateChanged 顶层状态切换
type GameStateChanged struct {
	Previous types.GameState
	New      types.GameState
}

// GameOver 游戏结束
type GameOver struct {
	PlayerWon  bool
	WaveNumber int
}

func (EntitySpawned) Kind() Kind    { return KindEntitySpawned }
func (EntityDied) Kind() Kind       { return KindEntityDied }
func (EntityDamaged) Kind() Kind    { return KindEntityDamaged }
func (AttackPerformed) Kind() Kind  { return KindAttackPerformed }
func (WaveStarted) Kind() Kind      { return KindWaveStarted }
func (WaveCompleted) Kind() Kind    { return KindWaveCompleted }
func (UpgradeCollected) Kind() Kind { return KindUpgradeCollected }
func (UpgradeSpawned) Kind() Kind   { return KindUpgradeSpawned }
func (GameStateChanged) Kind() Kind { return KindGameStateChanged }
func (GameOver) Kind() Kind         { return KindGameOver }
