package components

import (
	"fmt"

	"github.com/gonewx/towerdefense/pkg/types"
)

// CombatStats 可攻击实体的基础属性
type CombatStats struct {
	AttackDamage   float64 `yaml:"attackDamage"`   // 单次攻击伤害
	AttackRange    float64 `yaml:"attackRange"`    // 攻击距离
	AttackCooldown float64 `yaml:"attackCooldown"` // 攻击冷却（秒）
	MoveSpeed      float64 `yaml:"moveSpeed"`      // 移动速度（单位/秒）
}

// Combatant 可以发起攻击的实体（玩家无人机与敌人）
//
// 攻击频率由实体自身负责：调用方在 CombatSystem.ProcessAttack 之前
// 必须先检查 CanAttack(now)，攻击后调用 RegisterAttack(now)。
type Combatant interface {
	Entity
	AttackDamage() float64
	AttackRange() float64
	AttackCooldown() float64
	MoveSpeed() float64
	LastAttackTime() float64
	CanAttack(now float64) bool
	RegisterAttack(now float64)
}

// attackClock 攻击冷却计时，供 EnemyEntity 与 PlayerEntity 共用
type attackClock struct {
	lastAttackTime float64
}

func (c *attackClock) ready(now, cooldown float64) bool {
	return now >= c.lastAttackTime+cooldown
}

// EnemyEntity 敌方无人机
type EnemyEntity struct {
	EntityBase
	attackClock
	stats CombatStats
}

// NewEnemyEntity 创建敌人实体；冷却在生成瞬间即已就绪
func NewEnemyEntity(id string, transform Transform, maxHealth int, stats CombatStats) *EnemyEntity {
	return &EnemyEntity{
		EntityBase:  NewEntityBase(id, types.TagEnemy, maxHealth, transform),
		attackClock: attackClock{lastAttackTime: -stats.AttackCooldown},
		stats:       stats,
	}
}

func (e *EnemyEntity) AttackDamage() float64   { return e.stats.AttackDamage }
func (e *EnemyEntity) AttackRange() float64    { return e.stats.AttackRange }
func (e *EnemyEntity) AttackCooldown() float64 { return e.stats.AttackCooldown }
func (e *EnemyEntity) MoveSpeed() float64      { return e.stats.MoveSpeed }
func (e *EnemyEntity) LastAttackTime() float64 { return e.lastAttackTime }

// CanAttack 冷却是否已结束
func (e *EnemyEntity) CanAttack(now float64) bool {
	return e.ready(now, e.stats.AttackCooldown)
}

// RegisterAttack 记录一次攻击的时间
func (e *EnemyEntity) RegisterAttack(now float64) {
	e.lastAttackTime = now
}

// UpgradeMultipliers 玩家无人机的四个升级系数
// 初始均为 1.0，每次升级相乘叠加，只有整局重置（重新生成无人机）才会恢复
type UpgradeMultipliers struct {
	AttackSpeed  float64 // 作用于攻击冷却
	AttackRange  float64
	AttackDamage float64
	MoveSpeed    float64
}

// PlayerEntity 玩家无人机
type PlayerEntity struct {
	EntityBase
	attackClock
	stats       CombatStats
	multipliers UpgradeMultipliers
}

// NewPlayerEntity 创建玩家无人机实体
func NewPlayerEntity(id string, transform Transform, maxHealth int, stats CombatStats) *PlayerEntity {
	return &PlayerEntity{
		EntityBase:  NewEntityBase(id, types.TagPlayer, maxHealth, transform),
		attackClock: attackClock{lastAttackTime: -stats.AttackCooldown},
		stats:       stats,
		multipliers: UpgradeMultipliers{AttackSpeed: 1, AttackRange: 1, AttackDamage: 1, MoveSpeed: 1},
	}
}

// 有效属性 = 基础属性 × 累计升级系数

func (p *PlayerEntity) AttackDamage() float64 {
	return p.stats.AttackDamage * p.multipliers.AttackDamage
}
func (p *PlayerEntity) AttackRange() float64 { return p.stats.AttackRange * p.multipliers.AttackRange }
func (p *PlayerEntity) AttackCooldown() float64 {
	return p.stats.AttackCooldown * p.multipliers.AttackSpeed
}
func (p *PlayerEntity) MoveSpeed() float64      { return p.stats.MoveSpeed * p.multipliers.MoveSpeed }
func (p *PlayerEntity) LastAttackTime() float64 { return p.lastAttackTime }

// CanAttack 冷却是否已结束（使用升级后的冷却时间）
func (p *PlayerEntity) CanAttack(now float64) bool {
	return p.ready(now, p.AttackCooldown())
}

// RegisterAttack 记录一次攻击的时间
func (p *PlayerEntity) RegisterAttack(now float64) {
	p.lastAttackTime = now
}

// Multipliers 返回当前升级系数的副本
func (p *PlayerEntity) Multipliers() UpgradeMultipliers {
	return p.multipliers
}

// ApplyUpgrade 将升级系数乘到对应属性上
//
// 参数：
//   - upgrade: 升级类型
//   - value: 乘法系数，必须大于 0
func (p *PlayerEntity) ApplyUpgrade(upgrade types.UpgradeType, value float64) error {
	if value <= 0 {
		return fmt.Errorf("upgrade %s: multiplier must be positive, got %f", upgrade, value)
	}
	switch upgrade {
	case types.UpgradeAttackSpeed:
		p.multipliers.AttackSpeed *= value
	case types.UpgradeAttackRange:
		p.multipliers.AttackRange *= value
	case types.UpgradeAttackDamage:
		p.multipliers.AttackDamage *= value
	case types.UpgradeMoveSpeed:
		p.multipliers.MoveSpeed *= value
	default:
		return fmt.Errorf("unknown upgrade type %d", upgrade)
	}
	return nil
}

// BaseEntity 玩家基地，不会攻击也不会移动
type BaseEntity struct {
	EntityBase
}

// NewBaseEntity 创建基地实体
func NewBaseEntity(id string, transform Transform, maxHealth int) *BaseEntity {
	return &BaseEntity{EntityBase: NewEntityBase(id, types.TagBase, maxHealth, transform)}
}
