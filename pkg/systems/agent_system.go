package systems

import (
	"log"

	"github.com/gonewx/towerdefense/pkg/components"
	"github.com/gonewx/towerdefense/pkg/config"
	"github.com/gonewx/towerdefense/pkg/ecs"
	"github.com/gonewx/towerdefense/pkg/entities"
	"github.com/gonewx/towerdefense/pkg/types"
)

// BulletLauncher 发射子弹；由 ProjectileSystem 实现
type BulletLauncher interface {
	Fire(source, target components.Entity, damage int) error
}

// AgentSystem 每帧驱动敌人与玩家无人机的行为
//
// 敌人：保持一个追猎目标（目标死亡或移除后重新选择），移动到攻击距离内，冷却就绪时攻击。
// 无人机：按指令移动，生命恢复，冷却就绪时向射程内最近的敌人开火。
// 基地：按配置恢复生命。
type AgentSystem struct {
	registry  *ecs.EntityRegistry
	combat    *CombatSystem
	targeting *TargetingSystem
	regen     *RegenerationSystem
	clock     TimeSource
	mover     Mover
	launcher  BulletLauncher
	cfg       *config.GameConfig

	hunts        map[string]components.Entity
	destinations map[string]types.Vector2
}

// NewAgentSystem 创建行为系统；移除实体时自动清理其行为状态
func NewAgentSystem(registry *ecs.EntityRegistry, combat *CombatSystem, targeting *TargetingSystem, regen *RegenerationSystem,
	clock TimeSource, mover Mover, launcher BulletLauncher, cfg *config.GameConfig) *AgentSystem {
	s := &AgentSystem{
		registry:     registry,
		combat:       combat,
		targeting:    targeting,
		regen:        regen,
		clock:        clock,
		mover:        mover,
		launcher:     launcher,
		cfg:          cfg,
		hunts:        make(map[string]components.Entity),
		destinations: make(map[string]types.Vector2),
	}
	registry.OnEntityRemoved(func(e components.Entity) { s.Forget(e.ID()) })
	return s
}

// Update 推进一帧；dt 为缩放后的游戏时间
func (s *AgentSystem) Update(dt float64) {
	if dt <= 0 {
		return
	}
	now := s.clock.Now()

	for _, enemy := range ecs.GetByType[*components.EnemyEntity](s.registry) {
		if !enemy.IsDead() {
			s.updateEnemy(enemy, now, dt)
		}
	}
	for _, player := range ecs.GetByType[*components.PlayerEntity](s.registry) {
		if !player.IsDead() {
			s.updatePlayer(player, now, dt)
		}
	}
	if base := s.registry.GetByID(entities.BaseID); base != nil {
		r := s.cfg.Base.RegenConfig
		s.regen.Tick(base, r.RegenAmount, r.RegenDelay, r.RegenRate)
	}
}

func (s *AgentSystem) updateEnemy(enemy *components.EnemyEntity, now, dt float64) {
	target := s.hunts[enemy.ID()]
	if target == nil || target.IsDead() || s.registry.GetByID(target.ID()) != target {
		target = s.targeting.SelectHuntTarget(enemy, s.cfg.Targeting.HuntBaseProbability)
		if target == nil {
			delete(s.hunts, enemy.ID())
			return
		}
		s.hunts[enemy.ID()] = target
	}

	if !s.combat.IsInRange(enemy, target) {
		s.mover.Move(enemy.Transform(), target.Transform().Position(), enemy.MoveSpeed(), enemy.AttackRange(), dt)
		return
	}
	if enemy.CanAttack(now) {
		if _, err := s.combat.ProcessAttack(enemy, target); err != nil {
			log.Printf("[AgentSystem] Warning: attack by %s failed: %v", enemy.ID(), err)
		}
		enemy.RegisterAttack(now)
	}
}

func (s *AgentSystem) updatePlayer(player *components.PlayerEntity, now, dt float64) {
	if dest, ok := s.destinations[player.ID()]; ok {
		if s.mover.Move(player.Transform(), dest, player.MoveSpeed(), 0, dt) {
			delete(s.destinations, player.ID())
		}
	}

	r := s.cfg.Player.RegenConfig
	s.regen.Tick(player, r.RegenAmount, r.RegenDelay, r.RegenRate)

	if !player.CanAttack(now) || s.launcher == nil {
		return
	}
	target := s.targeting.FindClosestEnemyInRange(player.Transform().Position(), player.AttackRange())
	if target == nil {
		return
	}
	if err := s.launcher.Fire(player, target, int(player.AttackDamage())); err != nil {
		log.Printf("[AgentSystem] Warning: %s failed to fire: %v", player.ID(), err)
		return
	}
	player.RegisterAttack(now)
}

// CommandMove 命令无人机移动到 dest；id 不是存活无人机时返回 false
func (s *AgentSystem) CommandMove(playerID string, dest types.Vector2) bool {
	player, ok := s.registry.GetByID(playerID).(*components.PlayerEntity)
	if !ok || player.IsDead() {
		return false
	}
	s.destinations[playerID] = dest
	return true
}

// HuntTarget 敌人当前的追猎目标
func (s *AgentSystem) HuntTarget(enemyID string) components.Entity {
	return s.hunts[enemyID]
}

// Destination 无人机当前的移动目标
func (s *AgentSystem) Destination(playerID string) (types.Vector2, bool) {
	d, ok := s.destinations[playerID]
	return d, ok
}

// Forget 清除实体的行为状态
func (s *AgentSystem) Forget(id string) {
	delete(s.hunts, id)
	delete(s.destinations, id)
}
