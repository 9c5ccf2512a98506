package components

import (
	"errors"

	"github.com/gonewx/towerdefense/pkg/types"
)

// ErrNegativeAmount 伤害或治疗数值为负（数据完整性错误，不修改任何状态）
var ErrNegativeAmount = errors.New("amount must not be negative")

// Entity 作战实体的公共接口
//
// 实体由生成器创建并注册到 EntityRegistry；生命值降为 0 时被移除（仅一次）。
// 不变式：0 <= Health() <= MaxHealth()
type Entity interface {
	ID() string
	Tag() types.EntityTag
	Health() int
	MaxHealth() int
	IsDead() bool
	Transform() Transform

	// TakeDamage 扣除生命值（下限为 0），返回实际扣除量
	TakeDamage(amount int) (int, error)
	// Heal 恢复生命值（上限为 MaxHealth），返回实际恢复量；已死亡实体不会被治疗
	Heal(amount int) (int, error)
}

// EntityBase 实现 Entity 的公共部分，供具体实体嵌入
type EntityBase struct {
	id        string
	tag       types.EntityTag
	health    int
	maxHealth int
	transform Transform
}

// NewEntityBase 创建满血的实体基础数据
// maxHealth 小于 0 时按 0 处理
func NewEntityBase(id string, tag types.EntityTag, maxHealth int, transform Transform) EntityBase {
	if maxHealth < 0 {
		maxHealth = 0
	}
	if transform == nil {
		transform = &PointTransform{}
	}
	return EntityBase{
		id:        id,
		tag:       tag,
		health:    maxHealth,
		maxHealth: maxHealth,
		transform: transform,
	}
}

// ID 返回实体唯一标识
func (e *EntityBase) ID() string { return e.id }

// Tag 返回实体阵营标签
func (e *EntityBase) Tag() types.EntityTag { return e.tag }

// Health 返回当前生命值
func (e *EntityBase) Health() int { return e.health }

// MaxHealth 返回最大生命值
func (e *EntityBase) MaxHealth() int { return e.maxHealth }

// IsDead 生命值为 0 即视为死亡
func (e *EntityBase) IsDead() bool { return e.health <= 0 }

// Transform 返回空间变换句柄
func (e *EntityBase) Transform() Transform { return e.transform }

// TakeDamage 扣除生命值
func (e *EntityBase) TakeDamage(amount int) (int, error) {
	if amount < 0 {
		return 0, ErrNegativeAmount
	}
	applied := min(amount, e.health)
	e.health -= applied
	return applied, nil
}

// Heal 恢复生命值
func (e *EntityBase) Heal(amount int) (int, error) {
	if amount < 0 {
		return 0, ErrNegativeAmount
	}
	if e.IsDead() {
		return 0, nil
	}
	applied := min(amount, e.maxHealth-e.health)
	e.health += applied
	return applied, nil
}

// SetHealth 直接设置生命值，结果被限制在 [0, MaxHealth]
func (e *EntityBase) SetHealth(value int) {
	e.health = max(0, min(value, e.maxHealth))
}
