package systems

import (
	"math"

	"github.com/gonewx/towerdefense/pkg/components"
	"github.com/gonewx/towerdefense/pkg/ecs"
	"github.com/gonewx/towerdefense/pkg/entities"
	"github.com/gonewx/towerdefense/pkg/types"
)

// TargetingSystem 目标选择
//
// 所有查询只考虑存活实体；距离相同时按注册顺序取第一个。
type TargetingSystem struct {
	registry *ecs.EntityRegistry
	rng      types.RandomSource
}

// NewTargetingSystem 创建目标选择系统
func NewTargetingSystem(registry *ecs.EntityRegistry, rng types.RandomSource) *TargetingSystem {
	return &TargetingSystem{registry: registry, rng: rng}
}

// SelectHuntTarget 为敌人选择追猎目标
//
// 抽取一次 [0,1) 均匀随机数：小于 baseProbability 且基地存活时返回基地；
// 否则均匀选择一架存活的玩家无人机；没有无人机时退回基地；两者都不存在时返回 nil。
func (s *TargetingSystem) SelectHuntTarget(enemy components.Entity, baseProbability float64) components.Entity {
	roll := s.rng.Float64()

	var base components.Entity
	if b := s.registry.GetByID(entities.BaseID); b != nil && !b.IsDead() {
		base = b
	}
	if roll < baseProbability && base != nil {
		return base
	}

	players := s.live(types.TagPlayer)
	if len(players) > 0 {
		return players[s.rng.Intn(len(players))]
	}
	return base
}

// FindNearestOfTag 距离 seeker 最近的指定阵营存活实体（不含 seeker 自身）
func (s *TargetingSystem) FindNearestOfTag(seeker components.Entity, tag types.EntityTag) components.Entity {
	if seeker == nil {
		return nil
	}
	origin := seeker.Transform().Position()
	var nearest components.Entity
	best := math.Inf(1)
	for _, e := range s.registry.GetAll() {
		if e == seeker || e.Tag() != tag || e.IsDead() {
			continue
		}
		if d := types.Distance(origin, e.Transform().Position()); d < best {
			best = d
			nearest = e
		}
	}
	return nearest
}

// FindNearestEnemyForPlayer 距离玩家无人机最近的敌人
func (s *TargetingSystem) FindNearestEnemyForPlayer(player components.Entity) components.Entity {
	return s.FindNearestOfTag(player, types.TagEnemy)
}

// FindClosestEnemyInRange pos 周围 maxRange 内最近的敌人
func (s *TargetingSystem) FindClosestEnemyInRange(pos types.Vector2, maxRange float64) components.Entity {
	var nearest components.Entity
	best := math.Inf(1)
	for _, e := range s.registry.GetAll() {
		if e.Tag() != types.TagEnemy || e.IsDead() {
			continue
		}
		d := types.Distance(pos, e.Transform().Position())
		if d <= maxRange && d < best {
			best = d
			nearest = e
		}
	}
	return nearest
}

// FindEnemiesInRange pos 周围 r 内的所有敌人（注册顺序）
func (s *TargetingSystem) FindEnemiesInRange(pos types.Vector2, r float64) []components.Entity {
	result := make([]components.Entity, 0)
	for _, e := range s.registry.GetAll() {
		if e.Tag() == types.TagEnemy && !e.IsDead() && types.Distance(pos, e.Transform().Position()) <= r {
			result = append(result, e)
		}
	}
	return result
}

func (s *TargetingSystem) live(tag types.EntityTag) []components.Entity {
	result := make([]components.Entity, 0)
	for _, e := range s.registry.GetAll() {
		if e.Tag() == tag && !e.IsDead() {
			result = append(result, e)
		}
	}
	return result
}
