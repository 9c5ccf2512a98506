package systems

import (
	"errors"
	"fmt"
	"log"

	"github.com/gonewx/towerdefense/pkg/components"
	"github.com/gonewx/towerdefense/pkg/events"
	"github.com/gonewx/towerdefense/pkg/types"
)

// ErrNegativeDamage 伤害值为负
var ErrNegativeDamage = errors.New("damage must not be negative")

// ErrNilTarget 伤害目标为 nil
var ErrNilTarget = errors.New("damage target is nil")

// CombatSystem 战斗结算
//
// 职责：
//   - 判定攻击是否合法（双方存在且存活）与是否在射程内
//   - 扣除生命值并发布 AttackPerformed / EntityDamaged
//   - 本次伤害令目标死亡时发布且只发布一次 EntityDied
//
// 攻击频率限制由调用方通过实体的冷却门控负责。
type CombatSystem struct {
	bus *events.EventBus
}

// NewCombatSystem 创建战斗系统
func NewCombatSystem(bus *events.EventBus) *CombatSystem {
	return &CombatSystem{bus: bus}
}

// CanAttack 攻击者与目标都存在且存活
func (s *CombatSystem) CanAttack(attacker, target components.Entity) bool {
	return attacker != nil && target != nil && !attacker.IsDead() && !target.IsDead()
}

// IsInRange 目标是否在攻击者的有效射程内（欧氏距离）
func (s *CombatSystem) IsInRange(attacker components.Combatant, target components.Entity) bool {
	if attacker == nil || target == nil {
		return false
	}
	return types.Distance(attacker.Transform().Position(), target.Transform().Position()) <= attacker.AttackRange()
}

// ProcessAttack 结算一次直接攻击
//
// 有效伤害取整后施加；CanAttack 不成立时为无操作。
// 返回：
//   - int: 实际扣除的生命值
//   - error: 伤害为负时返回 ErrNegativeDamage，不修改任何状态
func (s *CombatSystem) ProcessAttack(attacker components.Combatant, target components.Entity) (int, error) {
	if attacker == nil || !s.CanAttack(attacker, target) {
		return 0, nil
	}

	damage := int(attacker.AttackDamage())
	if damage < 0 {
		log.Printf("[CombatSystem] ERROR: %s has negative attack damage %d", attacker.ID(), damage)
		return 0, fmt.Errorf("%s attacking %s: %w", attacker.ID(), target.ID(), ErrNegativeDamage)
	}

	s.bus.Publish(events.AttackPerformed{Attacker: attacker, Target: target, Damage: damage})
	return s.damage(attacker, target, damage), nil
}

// ApplyDamage 结算来自子弹等间接来源的伤害，不发布 AttackPerformed
//
// source 可为 nil（来源已被移除）；target 为 nil 时返回 ErrNilTarget，
// 目标已死亡时为无操作。
func (s *CombatSystem) ApplyDamage(source, target components.Entity, damage int) (int, error) {
	if target == nil {
		log.Printf("[CombatSystem] ERROR: ApplyDamage called with nil target (source %s)", entityID(source))
		return 0, ErrNilTarget
	}
	if damage < 0 {
		log.Printf("[CombatSystem] ERROR: negative damage %d against %s", damage, entityID(target))
		return 0, ErrNegativeDamage
	}
	if target.IsDead() {
		return 0, nil
	}
	return s.damage(source, target, damage), nil
}

func (s *CombatSystem) damage(source, target components.Entity, damage int) int {
	applied, _ := target.TakeDamage(damage)
	s.bus.Publish(events.EntityDamaged{Victim: target, Attacker: source, Damage: applied})

	if target.IsDead() {
		log.Printf("[CombatSystem] %s destroyed by %s", target.ID(), entityID(source))
		s.bus.Publish(events.EntityDied{Entity: target, Position: target.Transform().Position()})
	}
	return applied
}

func entityID(e components.Entity) string {
	if e == nil {
		return "<none>"
	}
	return e.ID()
}
