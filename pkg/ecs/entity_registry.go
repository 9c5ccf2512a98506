// Package ecs 维护当前存活的战斗实体集合。
package ecs

import (
	"errors"
	"fmt"
	"log"

	"github.com/gonewx/towerdefense/pkg/components"
	"github.com/gonewx/towerdefense/pkg/events"
	"github.com/gonewx/towerdefense/pkg/types"
)

var (
	// ErrNilEntity 注册 nil 实体
	ErrNilEntity = errors.New("entity is nil")
	// ErrDuplicateID 另一个实例已使用相同 id 注册
	ErrDuplicateID = errors.New("entity id already registered")
)

// EntityRegistry 存活实体的唯一持有者
//
// 职责：
//   - 按注册顺序保存实体，同一 id 同时只能注册一次
//   - 收到 EntityDied 时自动注销实体
//   - 实体被移除后依次通知 OnEntityRemoved 与 OnEntitiesChanged 监听者
type EntityRegistry struct {
	entities []components.Entity
	byID     map[string]components.Entity

	changedListeners []func()
	removedListeners []func(components.Entity)

	diedSub events.Subscription
	bus     *events.EventBus
}

// NewEntityRegistry 创建注册表并订阅 EntityDied
func NewEntityRegistry(bus *events.EventBus) *EntityRegistry {
	r := &EntityRegistry{
		entities: make([]components.Entity, 0, 64),
		byID:     make(map[string]components.Entity),
		bus:      bus,
	}
	if bus != nil {
		r.diedSub = events.Subscribe(bus, r.onEntityDied)
	}
	return r
}

// Close 取消对事件总线的订阅
func (r *EntityRegistry) Close() {
	if r.bus != nil {
		r.bus.Unsubscribe(r.diedSub)
		r.bus = nil
	}
}

// Register 注册实体
//
// 返回：
//   - ErrNilEntity: 实体为 nil
//   - ErrDuplicateID: 其他实例已使用该 id
//
// 同一实例重复注册会被静默忽略。
func (r *EntityRegistry) Register(e components.Entity) error {
	if e == nil {
		log.Printf("[EntityRegistry] ERROR: Register called with nil entity")
		return ErrNilEntity
	}
	if existing, ok := r.byID[e.ID()]; ok {
		if existing == e {
			return nil
		}
		log.Printf("[EntityRegistry] ERROR: id %q is already registered to another entity", e.ID())
		return fmt.Errorf("register %q: %w", e.ID(), ErrDuplicateID)
	}

	r.entities = append(r.entities, e)
	r.byID[e.ID()] = e
	return nil
}

// Unregister 注销实体
//
// 返回实体是否真的被移除；只有真正移除时才会通知监听者。
func (r *EntityRegistry) Unregister(e components.Entity) bool {
	if e == nil {
		return false
	}
	if existing, ok := r.byID[e.ID()]; !ok || existing != e {
		return false
	}

	delete(r.byID, e.ID())
	for i, item := range r.entities {
		if item == e {
			r.entities = append(r.entities[:i], r.entities[i+1:]...)
			break
		}
	}

	for _, fn := range append([]func(components.Entity){}, r.removedListeners...) {
		fn(e)
	}
	r.notifyChanged()
	return true
}

// GetAll 返回所有实体的快照（注册顺序）
func (r *EntityRegistry) GetAll() []components.Entity {
	return append([]components.Entity(nil), r.entities...)
}

// GetByID 按 id 查找实体，不存在时返回 nil
func (r *EntityRegistry) GetByID(id string) components.Entity {
	return r.byID[id]
}

// Len 已注册实体数量
func (r *EntityRegistry) Len() int {
	return len(r.entities)
}

// CountByTag 统计指定阵营的实体数量
func (r *EntityRegistry) CountByTag(tag types.EntityTag) int {
	n := 0
	for _, e := range r.entities {
		if e.Tag() == tag {
			n++
		}
	}
	return n
}

// ByTag 返回指定阵营的实体（注册顺序）
func (r *EntityRegistry) ByTag(tag types.EntityTag) []components.Entity {
	result := make([]components.Entity, 0)
	for _, e := range r.entities {
		if e.Tag() == tag {
			result = append(result, e)
		}
	}
	return result
}

// OnEntitiesChanged 注册"实体集合已变化"监听者，在注销后调用
func (r *EntityRegistry) OnEntitiesChanged(fn func()) {
	r.changedListeners = append(r.changedListeners, fn)
}

// OnEntityRemoved 注册实体移除监听者，参数为被移除的实体
func (r *EntityRegistry) OnEntityRemoved(fn func(components.Entity)) {
	r.removedListeners = append(r.removedListeners, fn)
}

func (r *EntityRegistry) notifyChanged() {
	for _, fn := range append([]func(){}, r.changedListeners...) {
		fn()
	}
}

func (r *EntityRegistry) onEntityDied(ev events.EntityDied) {
	r.Unregister(ev.Entity)
}

// GetByType 返回所有可断言为 T 的实体（注册顺序）
//
// 示例：
//
//	enemies := ecs.GetByType[*components.EnemyEntity](registry)
func GetByType[T any](r *EntityRegistry) []T {
	result := make([]T, 0)
	for _, e := range r.entities {
		if typed, ok := e.(T); ok {
			result = append(result, typed)
		}
	}
	return result
}
