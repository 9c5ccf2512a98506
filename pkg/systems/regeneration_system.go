package systems

import (
	"github.com/gonewx/towerdefense/pkg/components"
	"github.com/gonewx/towerdefense/pkg/events"
)

// TimeSource 游戏时间来源；由 game.Clock 实现
type TimeSource interface {
	Now() float64
}

// RegenerationSystem 周期性生命恢复
//
// 以实体 id 为键记录最近受伤时间与最近恢复时间。
// 实体移除时必须调用 Forget，以免复用同一 id 的新实体继承旧时间戳。
type RegenerationSystem struct {
	clock      TimeSource
	lastDamage map[string]float64
	lastRegen  map[string]float64
	sub        events.Subscription
	bus        *events.EventBus
}

// NewRegenerationSystem 创建生命恢复系统并订阅 EntityDamaged
func NewRegenerationSystem(bus *events.EventBus, clock TimeSource) *RegenerationSystem {
	s := &RegenerationSystem{
		clock:      clock,
		lastDamage: make(map[string]float64),
		lastRegen:  make(map[string]float64),
		bus:        bus,
	}
	s.sub = events.Subscribe(bus, func(e events.EntityDamaged) {
		if e.Victim != nil {
			s.lastDamage[e.Victim.ID()] = s.clock.Now()
		}
	})
	return s
}

// Close 取消订阅
func (s *RegenerationSystem) Close() {
	s.bus.Unsubscribe(s.sub)
}

// Tick 尝试为实体恢复生命
//
// 参数：
//   - amount: 单次恢复量
//   - delay: 受伤后需要等待的时间（秒）
//   - rate: 两次恢复之间的最小间隔（秒）
//
// 返回本次是否恢复了生命。
func (s *RegenerationSystem) Tick(e components.Entity, amount int, delay, rate float64) bool {
	if e == nil || e.IsDead() || e.Health() >= e.MaxHealth() || amount <= 0 {
		return false
	}

	now := s.clock.Now()
	id := e.ID()
	if last, ok := s.lastDamage[id]; ok && now-last < delay {
		return false
	}
	if last, ok := s.lastRegen[id]; ok && now-last < rate {
		return false
	}

	if _, err := e.Heal(amount); err != nil {
		return false
	}
	s.lastRegen[id] = now
	return true
}

// Forget 清除实体的时间戳
func (s *RegenerationSystem) Forget(id string) {
	delete(s.lastDamage, id)
	delete(s.lastRegen, id)
}

// Tracked 是否记录了该 id 的时间戳
func (s *RegenerationSystem) Tracked(id string) bool {
	_, d := s.lastDamage[id]
	_, r := s.lastRegen[id]
	return d || r
}
