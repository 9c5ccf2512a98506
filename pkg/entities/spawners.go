package entities

import (
	"fmt"
	"log"
	"math"

	"github.com/gonewx/towerdefense/pkg/components"
	"github.com/gonewx/towerdefense/pkg/config"
	"github.com/gonewx/towerdefense/pkg/ecs"
	"github.com/gonewx/towerdefense/pkg/events"
	"github.com/gonewx/towerdefense/pkg/pool"
	"github.com/gonewx/towerdefense/pkg/types"
)

// BaseID 基地实体的固定 id
const BaseID = "base"

// BindRecycling 实体从注册表移除时，将其 Body 归还到对象池
func BindRecycling(registry *ecs.EntityRegistry, objects *pool.ObjectPool) {
	registry.OnEntityRemoved(func(e components.Entity) {
		body, ok := e.Transform().(*Body)
		if !ok || !body.Active() {
			return
		}
		if err := objects.Return(body.Key, body); err != nil {
			log.Printf("[Spawner] Warning: failed to recycle body of %s: %v", e.ID(), err)
		}
	})
}

// BaseSpawner 创建基地
type BaseSpawner struct {
	registry *ecs.EntityRegistry
	bus      *events.EventBus
	cfg      config.BaseConfig
}

func NewBaseSpawner(registry *ecs.EntityRegistry, bus *events.EventBus, cfg config.BaseConfig) *BaseSpawner {
	return &BaseSpawner{registry: registry, bus: bus, cfg: cfg}
}

// Spawn 在配置坐标处创建满血基地并注册，替换已存在的基地
func (s *BaseSpawner) Spawn() (*components.BaseEntity, error) {
	if existing := s.registry.GetByID(BaseID); existing != nil {
		s.registry.Unregister(existing)
	}

	base := components.NewBaseEntity(BaseID, components.NewPointTransform(s.cfg.Position), s.cfg.MaxHealth)
	if err := s.registry.Register(base); err != nil {
		return nil, fmt.Errorf("spawn base: %w", err)
	}
	s.bus.Publish(events.EntitySpawned{Entity: base, Position: s.cfg.Position})
	return base, nil
}

// PlayerSpawner 创建玩家无人机，Body 来自 "Drone" 对象池
type PlayerSpawner struct {
	objects  *pool.ObjectPool
	registry *ecs.EntityRegistry
	bus      *events.EventBus
	cfg      config.PlayerConfig
	counter  int
}

func NewPlayerSpawner(objects *pool.ObjectPool, registry *ecs.EntityRegistry, bus *events.EventBus, cfg config.PlayerConfig) *PlayerSpawner {
	return &PlayerSpawner{objects: objects, registry: registry, bus: bus, cfg: cfg}
}

// Spawn 在指定位置创建一架无人机，id 形如 "player_N"
func (s *PlayerSpawner) Spawn(pos types.Vector2) (*components.PlayerEntity, error) {
	obj, err := s.objects.Get(config.PoolDrone, pool.Pose{Position: pos})
	if err != nil {
		return nil, fmt.Errorf("spawn player drone: %w", err)
	}
	body := obj.(*Body)

	id := fmt.Sprintf("player_%d", s.counter)
	s.counter++
	player := components.NewPlayerEntity(id, body, s.cfg.MaxHealth, s.cfg.CombatStats)
	if err := s.registry.Register(player); err != nil {
		_ = s.objects.Return(config.PoolDrone, body)
		return nil, fmt.Errorf("spawn player drone: %w", err)
	}
	s.bus.Publish(events.EntitySpawned{Entity: player, Position: pos})
	log.Printf("[PlayerSpawner] Spawned %s at (%.1f, %.1f)", id, pos.X, pos.Y)
	return player, nil
}

// DespawnAll 注销所有玩家无人机（不发布死亡事件）
func (s *PlayerSpawner) DespawnAll() int {
	return despawnTag(s.registry, types.TagPlayer)
}

// EnemySpawner 在基地周围的圆环上生成敌人，Body 来自 "Enemy" 对象池
type EnemySpawner struct {
	objects  *pool.ObjectPool
	registry *ecs.EntityRegistry
	bus      *events.EventBus
	cfg      config.EnemyConfig
	radius   float64
	rng      types.RandomSource
	counter  int
}

// NewEnemySpawner 创建敌人生成器
//
// 参数:
//   - radius: 生成环半径
//   - rng: 随机源，用于选择环上的角度
func NewEnemySpawner(objects *pool.ObjectPool, registry *ecs.EntityRegistry, bus *events.EventBus, cfg config.EnemyConfig, radius float64, rng types.RandomSource) *EnemySpawner {
	return &EnemySpawner{objects: objects, registry: registry, bus: bus, cfg: cfg, radius: radius, rng: rng}
}

// SpawnEnemies 在 center 周围生成 count 个敌人
//
// 单个敌人生成失败只记录错误，返回成功生成的敌人。
func (s *EnemySpawner) SpawnEnemies(count int, center types.Vector2) []*components.EnemyEntity {
	spawned := make([]*components.EnemyEntity, 0, count)
	for i := 0; i < count; i++ {
		angle := s.rng.Float64() * 2 * math.Pi
		pos := center.Add(types.Vector2{X: math.Cos(angle), Y: math.Sin(angle)}.Scale(s.radius))
		enemy, err := s.Spawn(pos)
		if err != nil {
			log.Printf("[EnemySpawner] ERROR: %v", err)
			continue
		}
		spawned = append(spawned, enemy)
	}
	return spawned
}

// Spawn 在指定位置生成一个敌人，id 形如 "enemy_N"
func (s *EnemySpawner) Spawn(pos types.Vector2) (*components.EnemyEntity, error) {
	obj, err := s.objects.Get(config.PoolEnemy, pool.Pose{Position: pos})
	if err != nil {
		return nil, fmt.Errorf("spawn enemy: %w", err)
	}
	body := obj.(*Body)

	id := fmt.Sprintf("enemy_%d", s.counter)
	s.counter++
	enemy := components.NewEnemyEntity(id, body, s.cfg.MaxHealth, s.cfg.CombatStats)
	if err := s.registry.Register(enemy); err != nil {
		_ = s.objects.Return(config.PoolEnemy, body)
		return nil, fmt.Errorf("spawn enemy: %w", err)
	}
	s.bus.Publish(events.EntitySpawned{Entity: enemy, Position: pos})
	return enemy, nil
}

// DespawnAll 注销所有敌人（不发布死亡事件），返回数量
func (s *EnemySpawner) DespawnAll() int {
	return despawnTag(s.registry, types.TagEnemy)
}

func despawnTag(registry *ecs.EntityRegistry, tag types.EntityTag) int {
	n := 0
	for _, e := range registry.ByTag(tag) {
		if registry.Unregister(e) {
			n++
		}
	}
	return n
}
