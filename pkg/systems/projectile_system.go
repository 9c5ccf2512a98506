package systems

import (
	"fmt"
	"log"
	"math"

	"github.com/gonewx/towerdefense/pkg/components"
	"github.com/gonewx/towerdefense/pkg/config"
	"github.com/gonewx/towerdefense/pkg/ecs"
	"github.com/gonewx/towerdefense/pkg/entities"
	"github.com/gonewx/towerdefense/pkg/pool"
	"github.com/gonewx/towerdefense/pkg/types"
)

// Projectile 飞行中的子弹
type Projectile struct {
	Body   *entities.Body
	Source components.Entity
	Target components.Entity
	Damage int
	Age    float64
}

// ProjectileSystem 子弹飞行与命中
//
// 子弹来自 "Bullet" 对象池，追踪目标飞行；到达命中半径时通过
// CombatSystem.ApplyDamage 结算伤害。目标消失或超过寿命时回收。
type ProjectileSystem struct {
	objects  *pool.ObjectPool
	combat   *CombatSystem
	registry *ecs.EntityRegistry
	cfg      config.BulletConfig
	active   []*Projectile
}

// NewProjectileSystem 创建子弹系统
func NewProjectileSystem(objects *pool.ObjectPool, combat *CombatSystem, registry *ecs.EntityRegistry, cfg config.BulletConfig) *ProjectileSystem {
	return &ProjectileSystem{objects: objects, combat: combat, registry: registry, cfg: cfg}
}

// Fire 从 source 位置向 target 发射一颗子弹
func (s *ProjectileSystem) Fire(source, target components.Entity, damage int) error {
	if source == nil || target == nil {
		return fmt.Errorf("fire: source and target are required")
	}
	if damage < 0 {
		return ErrNegativeDamage
	}

	from := source.Transform().Position()
	delta := target.Transform().Position().Sub(from)
	obj, err := s.objects.Get(config.PoolBullet, pool.Pose{Position: from, Rotation: math.Atan2(delta.Y, delta.X)})
	if err != nil {
		return fmt.Errorf("fire: %w", err)
	}

	s.active = append(s.active, &Projectile{
		Body:   obj.(*entities.Body),
		Source: source,
		Target: target,
		Damage: damage,
	})
	return nil
}

// Update 推进子弹；dt 为缩放后的游戏时间
func (s *ProjectileSystem) Update(dt float64) {
	if dt <= 0 || len(s.active) == 0 {
		return
	}

	remaining := s.active[:0]
	for _, p := range s.active {
		if s.step(p, dt) {
			remaining = append(remaining, p)
		} else {
			s.release(p)
		}
	}
	for i := len(remaining); i < len(s.active); i++ {
		s.active[i] = nil
	}
	s.active = remaining
}

// step 返回子弹是否继续飞行
func (s *ProjectileSystem) step(p *Projectile, dt float64) bool {
	p.Age += dt
	if p.Age >= s.cfg.Lifetime {
		return false
	}
	if p.Target.IsDead() || s.registry.GetByID(p.Target.ID()) != p.Target {
		return false
	}

	targetPos := p.Target.Transform().Position()
	next := types.MoveTowards(p.Body.Position(), targetPos, s.cfg.Speed*dt)
	p.Body.SetPosition(next)
	if types.Distance(next, targetPos) > s.cfg.HitRadius {
		return true
	}

	if _, err := s.combat.ApplyDamage(p.Source, p.Target, p.Damage); err != nil {
		log.Printf("[ProjectileSystem] Warning: hit on %s failed: %v", p.Target.ID(), err)
	}
	return false
}

func (s *ProjectileSystem) release(p *Projectile) {
	if err := s.objects.Return(config.PoolBullet, p.Body); err != nil {
		log.Printf("[ProjectileSystem] Warning: failed to return bullet: %v", err)
	}
}

// Clear 回收全部子弹
func (s *ProjectileSystem) Clear() {
	for _, p := range s.active {
		s.release(p)
	}
	s.active = nil
}

// Active 飞行中子弹的快照
func (s *ProjectileSystem) Active() []Projectile {
	result := make([]Projectile, 0, len(s.active))
	for _, p := range s.active {
		result = append(result, *p)
	}
	return result
}
