package systems

import (
	"log"
	"math"

	"github.com/gonewx/towerdefense/pkg/components"
	"github.com/gonewx/towerdefense/pkg/config"
	"github.com/gonewx/towerdefense/pkg/ecs"
	"github.com/gonewx/towerdefense/pkg/entities"
	"github.com/gonewx/towerdefense/pkg/events"
	"github.com/gonewx/towerdefense/pkg/types"
)

// StateReader 查询当前游戏状态；由 game.StateMachine 实现
type StateReader interface {
	IsInState(state types.GameState) bool
}

// EnemyWaveSpawner 按数量生成敌人；由 entities.EnemySpawner 实现
type EnemyWaveSpawner interface {
	SpawnEnemies(count int, center types.Vector2) []*components.EnemyEntity
}

// WaveSystem 波次导演
//
// 职责：
//   - 开始新波次：计算敌人数量，在基地周围生成，发布 WaveStarted
//   - 处于 Wave 状态且注册表中不再有敌人时发布 WaveCompleted，
//     达到最大波数时改为发布 GameOver(胜利)
//   - 基地死亡时立即发布 GameOver(失败)
//
// 数量公式：round(BaseEnemiesPerWave × EnemiesCountMultiplier^(wave-1))
type WaveSystem struct {
	bus      *events.EventBus
	registry *ecs.EntityRegistry
	spawner  EnemyWaveSpawner
	state    StateReader
	cfg      config.WaveConfig
	basePos  types.Vector2

	currentWave   int
	completedWave int
	gameOver      bool

	diedSub events.Subscription
}

// NewWaveSystem 创建波次系统
//
// 参数：
//   - basePos: 基地不存在时使用的生成中心
func NewWaveSystem(bus *events.EventBus, registry *ecs.EntityRegistry, spawner EnemyWaveSpawner, state StateReader, cfg config.WaveConfig, basePos types.Vector2) *WaveSystem {
	s := &WaveSystem{
		bus:      bus,
		registry: registry,
		spawner:  spawner,
		state:    state,
		cfg:      cfg,
		basePos:  basePos,
	}
	registry.OnEntitiesChanged(s.checkWaveCompletion)
	s.diedSub = events.Subscribe(bus, s.onEntityDied)
	return s
}

// Close 取消事件订阅
func (s *WaveSystem) Close() {
	s.bus.Unsubscribe(s.diedSub)
}

// CurrentWave 当前波次（尚未开始时为 0）
func (s *WaveSystem) CurrentWave() int { return s.currentWave }

// Reset 波次归零，开始新的一局
func (s *WaveSystem) Reset() {
	s.currentWave = 0
	s.completedWave = 0
	s.gameOver = false
}

// EnemyCount 指定波次的敌人数量
func (s *WaveSystem) EnemyCount(wave int) int {
	if wave < 1 {
		return 0
	}
	n := float64(s.cfg.BaseEnemiesPerWave) * math.Pow(s.cfg.EnemiesCountMultiplier, float64(wave-1))
	return int(math.Round(n))
}

// StartWave 开始下一波
func (s *WaveSystem) StartWave() {
	s.currentWave++
	s.spawnWave()
}

// StartWaveAt 从指定波次开始（n 从 1 开始）
func (s *WaveSystem) StartWaveAt(n int) {
	if n < 1 {
		n = 1
	}
	s.currentWave = n - 1
	s.StartWave()
}

func (s *WaveSystem) spawnWave() {
	count := s.EnemyCount(s.currentWave)
	center := s.basePos
	if base := s.registry.GetByID(entities.BaseID); base != nil {
		center = base.Transform().Position()
	}

	log.Printf("[WaveSystem] Starting wave %d with %d enemies", s.currentWave, count)
	spawned := s.spawner.SpawnEnemies(count, center)
	s.bus.Publish(events.WaveStarted{WaveNumber: s.currentWave, EnemyCount: len(spawned)})

	s.checkWaveCompletion()
}

func (s *WaveSystem) checkWaveCompletion() {
	if s.gameOver || s.currentWave == 0 || s.completedWave == s.currentWave {
		return
	}
	if s.state != nil && !s.state.IsInState(types.StateWave) {
		return
	}
	if s.registry.CountByTag(types.TagEnemy) > 0 {
		return
	}

	s.completedWave = s.currentWave
	if s.cfg.MaxWaves > 0 && s.currentWave >= s.cfg.MaxWaves {
		log.Printf("[WaveSystem] Final wave %d cleared, player wins", s.currentWave)
		s.gameOver = true
		s.bus.Publish(events.GameOver{PlayerWon: true, WaveNumber: s.currentWave})
		return
	}
	log.Printf("[WaveSystem] Wave %d completed", s.currentWave)
	s.bus.Publish(events.WaveCompleted{WaveNumber: s.currentWave})
}

func (s *WaveSystem) onEntityDied(e events.EntityDied) {
	if e.Entity == nil || e.Entity.Tag() != types.TagBase || s.gameOver {
		return
	}
	log.Printf("[WaveSystem] Base destroyed on wave %d", s.currentWave)
	s.gameOver = true
	s.bus.Publish(events.GameOver{PlayerWon: false, WaveNumber: s.currentWave})
}
