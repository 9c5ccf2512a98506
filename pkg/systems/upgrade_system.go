package systems

import (
	"log"

	"github.com/gonewx/towerdefense/pkg/components"
	"github.com/gonewx/towerdefense/pkg/config"
	"github.com/gonewx/towerdefense/pkg/ecs"
	"github.com/gonewx/towerdefense/pkg/entities"
	"github.com/gonewx/towerdefense/pkg/events"
	"github.com/gonewx/towerdefense/pkg/pool"
	"github.com/gonewx/towerdefense/pkg/types"
)

// Pickup 场上的升级道具
type Pickup struct {
	Body    *entities.Body
	Upgrade types.UpgradeType
	Value   float64
	Age     float64
}

// UpgradeSystem 升级道具的掉落、拾取与过期
//
// 敌人死亡时按 DropChance 掉落道具（"Upgrade" 对象池）；存活无人机进入
// PickupRadius 即拾取，系数乘到无人机属性上；超过 Lifetime 的道具被回收。
type UpgradeSystem struct {
	bus      *events.EventBus
	objects  *pool.ObjectPool
	registry *ecs.EntityRegistry
	rng      types.RandomSource
	cfg      *config.GameConfig
	kinds    []types.UpgradeType
	pickups  []*Pickup
	sub      events.Subscription
}

// NewUpgradeSystem 创建升级系统并订阅 EntityDied
func NewUpgradeSystem(bus *events.EventBus, objects *pool.ObjectPool, registry *ecs.EntityRegistry, rng types.RandomSource, cfg *config.GameConfig) *UpgradeSystem {
	s := &UpgradeSystem{
		bus:      bus,
		objects:  objects,
		registry: registry,
		rng:      rng,
		cfg:      cfg,
		kinds:    cfg.UpgradeTypes(),
	}
	s.sub = events.Subscribe(bus, s.onEntityDied)
	return s
}

// Close 取消订阅
func (s *UpgradeSystem) Close() {
	s.bus.Unsubscribe(s.sub)
}

func (s *UpgradeSystem) onEntityDied(e events.EntityDied) {
	if e.Entity == nil || e.Entity.Tag() != types.TagEnemy || len(s.kinds) == 0 {
		return
	}
	if s.rng.Float64() >= s.cfg.Upgrades.DropChance {
		return
	}
	s.Spawn(e.Position, s.kinds[s.rng.Intn(len(s.kinds))])
}

// Spawn 在指定位置放置一个升级道具
func (s *UpgradeSystem) Spawn(pos types.Vector2, upgrade types.UpgradeType) *Pickup {
	obj, err := s.objects.Get(config.PoolUpgrade, pool.Pose{Position: pos})
	if err != nil {
		log.Printf("[UpgradeSystem] ERROR: cannot spawn %s pickup: %v", upgrade, err)
		return nil
	}
	p := &Pickup{Body: obj.(*entities.Body), Upgrade: upgrade, Value: s.cfg.UpgradeValue(upgrade)}
	s.pickups = append(s.pickups, p)
	s.bus.Publish(events.UpgradeSpawned{Position: pos, UpgradeType: upgrade})
	return p
}

// Update 推进道具寿命并检测拾取
func (s *UpgradeSystem) Update(dt float64) {
	if dt <= 0 || len(s.pickups) == 0 {
		return
	}

	players := ecs.GetByType[*components.PlayerEntity](s.registry)
	remaining := s.pickups[:0]
	for _, p := range s.pickups {
		p.Age += dt
		if p.Age >= s.cfg.Upgrades.Lifetime {
			s.release(p)
			continue
		}
		if collector := s.collector(p, players); collector != nil {
			s.collect(p, collector)
			continue
		}
		remaining = append(remaining, p)
	}
	for i := len(remaining); i < len(s.pickups); i++ {
		s.pickups[i] = nil
	}
	s.pickups = remaining
}

func (s *UpgradeSystem) collector(p *Pickup, players []*components.PlayerEntity) *components.PlayerEntity {
	for _, player := range players {
		if player.IsDead() {
			continue
		}
		if types.Distance(player.Transform().Position(), p.Body.Position()) <= s.cfg.Upgrades.PickupRadius {
			return player
		}
	}
	return nil
}

func (s *UpgradeSystem) collect(p *Pickup, player *components.PlayerEntity) {
	if err := player.ApplyUpgrade(p.Upgrade, p.Value); err != nil {
		log.Printf("[UpgradeSystem] Warning: %v", err)
	} else {
		log.Printf("[UpgradeSystem] %s collected %s x%.2f", player.ID(), p.Upgrade, p.Value)
		s.bus.Publish(events.UpgradeCollected{Collector: player, UpgradeType: p.Upgrade, Value: p.Value})
	}
	s.release(p)
}

func (s *UpgradeSystem) release(p *Pickup) {
	if err := s.objects.Return(config.PoolUpgrade, p.Body); err != nil {
		log.Printf("[UpgradeSystem] Warning: failed to return pickup: %v", err)
	}
}

// HandleStateChange 进入 Pregame 时回收全部道具（从暂停恢复除外）
func (s *UpgradeSystem) HandleStateChange(previous, next types.GameState) {
	if next == types.StatePregame && previous != types.StatePause {
		s.Clear()
	}
}

// Clear 回收全部道具
func (s *UpgradeSystem) Clear() {
	for _, p := range s.pickups {
		s.release(p)
	}
	s.pickups = nil
}

// Active 场上道具的快照
func (s *UpgradeSystem) Active() []Pickup {
	result := make([]Pickup, 0, len(s.pickups))
	for _, p := range s.pickups {
		result = append(result, *p)
	}
	return result
}
