// Package sim 组装无界面的模拟世界，桌面端、命令行模拟与测试共用
package sim

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/gonewx/towerdefense/pkg/components"
	"github.com/gonewx/towerdefense/pkg/config"
	"github.com/gonewx/towerdefense/pkg/ecs"
	"github.com/gonewx/towerdefense/pkg/entities"
	"github.com/gonewx/towerdefense/pkg/events"
	"github.com/gonewx/towerdefense/pkg/game"
	"github.com/gonewx/towerdefense/pkg/pool"
	"github.com/gonewx/towerdefense/pkg/systems"
	"github.com/gonewx/towerdefense/pkg/types"
)

// WorldOptions 定义模拟世界的构建参数
type WorldOptions struct {
	// Config 游戏配置，为 nil 时使用内置默认配置
	Config *config.GameConfig
	// Seed 随机数种子，相同种子与相同输入得到相同的模拟
	Seed int64
	// Store 最高分存储，可为 nil
	Store game.HighScoreStore
	// Drones 已解锁的无人机数量（来自存档），开局无人机数取它与配置值中的较大者
	Drones int
}

// World 是模拟核心的组装根
//
// 职责：
//   - 按依赖顺序创建事件总线、对象池、注册表、状态机与各系统
//   - 实现 SessionResetter：进入 Pregame 时清场并重建基地与无人机
//   - 每帧推进时钟并按固定顺序更新各系统
//
// World 不依赖任何渲染或输入，桌面端、命令行模拟与测试共用同一份组装逻辑。
type World struct {
	cfg     *config.GameConfig
	bus     *events.EventBus
	clock   *game.Clock
	objects *pool.ObjectPool

	registry     *ecs.EntityRegistry
	stateMachine *game.StateMachine
	postwave     *game.PostwaveState

	combat      *systems.CombatSystem
	targeting   *systems.TargetingSystem
	regen       *systems.RegenerationSystem
	waves       *systems.WaveSystem
	agents      *systems.AgentSystem
	projectiles *systems.ProjectileSystem
	upgrades    *systems.UpgradeSystem

	baseSpawner   *entities.BaseSpawner
	playerSpawner *entities.PlayerSpawner
	enemySpawner  *entities.EnemySpawner

	drones   int
	selected string
}

// NewWorld 创建模拟世界，状态机尚未启动；调用 Start 进入 Pregame
func NewWorld(opts WorldOptions) (*World, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultGameConfig()
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	w := &World{
		cfg:     cfg,
		bus:     events.NewEventBus(),
		clock:   game.NewClock(),
		objects: pool.NewObjectPool(),
		drones:  max(cfg.Player.InitialDrones, opts.Drones),
	}

	for _, key := range []string{config.PoolEnemy, config.PoolBullet, config.PoolDrone, config.PoolUpgrade} {
		if err := w.objects.CreatePool(key, entities.NewBodyFactory(key), cfg.PoolSize(key)); err != nil {
			return nil, fmt.Errorf("创建对象池 %s 失败: %w", key, err)
		}
	}

	w.registry = ecs.NewEntityRegistry(w.bus)
	entities.BindRecycling(w.registry, w.objects)

	w.baseSpawner = entities.NewBaseSpawner(w.registry, w.bus, cfg.Base)
	w.playerSpawner = entities.NewPlayerSpawner(w.objects, w.registry, w.bus, cfg.Player)
	w.enemySpawner = entities.NewEnemySpawner(w.objects, w.registry, w.bus, cfg.Enemy, cfg.Wave.SpawnRadius, rng)

	w.stateMachine = game.NewStateMachine(w.bus, w.clock)

	w.combat = systems.NewCombatSystem(w.bus)
	w.targeting = systems.NewTargetingSystem(w.registry, rng)
	w.regen = systems.NewRegenerationSystem(w.bus, w.clock)
	w.waves = systems.NewWaveSystem(w.bus, w.registry, w.enemySpawner, w.stateMachine, cfg.Wave, cfg.Base.Position)
	w.projectiles = systems.NewProjectileSystem(w.objects, w.combat, w.registry, cfg.Bullets)
	w.agents = systems.NewAgentSystem(w.registry, w.combat, w.targeting, w.regen, w.clock, systems.LinearMover{}, w.projectiles, cfg)
	w.upgrades = systems.NewUpgradeSystem(w.bus, w.objects, w.registry, rng, cfg)

	w.registry.OnEntityRemoved(func(e components.Entity) {
		w.regen.Forget(e.ID())
		if e.ID() == w.selected {
			w.selected = ""
		}
	})

	w.postwave = game.NewPostwaveState(w.stateMachine, w.clock, cfg.Wave.TimeBetweenWaves)
	w.stateMachine.Register(types.StatePregame, game.NewPregameState(w))
	w.stateMachine.Register(types.StateWave, game.NewWaveState(w.waves))
	w.stateMachine.Register(types.StatePostwave, w.postwave)
	w.stateMachine.Register(types.StateGameOver, game.NewGameOverState(opts.Store, w.waves))
	w.stateMachine.OnStateChanged(w.upgrades.HandleStateChange)

	return w, nil
}

// Start 进入初始 Pregame 状态
func (w *World) Start() error {
	return w.stateMachine.Start()
}

// Close 释放事件订阅
func (w *World) Close() {
	w.upgrades.Close()
	w.waves.Close()
	w.regen.Close()
	w.stateMachine.Close()
	w.registry.Close()
}

// ResetSession 清场并按配置重建基地与初始无人机
func (w *World) ResetSession() {
	w.enemySpawner.DespawnAll()
	w.playerSpawner.DespawnAll()
	w.projectiles.Clear()
	w.upgrades.Clear()
	w.waves.Reset()

	base, err := w.baseSpawner.Spawn()
	if err != nil {
		log.Printf("[World] ERROR: failed to spawn base: %v", err)
		return
	}
	origin := base.Transform().Position()
	for i := 0; i < w.drones; i++ {
		pos := origin.Add(w.cfg.Player.SpawnOffset.Scale(float64(i + 1)))
		drone, err := w.playerSpawner.Spawn(pos)
		if err != nil {
			log.Printf("[World] ERROR: failed to spawn drone %d: %v", i, err)
			continue
		}
		if w.selected == "" {
			w.selected = drone.ID()
		}
	}
	log.Printf("[World] Session reset: base at %v, %d drones", origin, w.drones)
}

// Update 推进一帧
//
// 参数：
//   - dt: 真实经过的时间（秒），按当前状态的时间缩放换算为游戏时间
func (w *World) Update(dt float64) {
	scaled := w.clock.Advance(dt)
	w.stateMachine.Update(scaled)
	w.agents.Update(scaled)
	w.projectiles.Update(scaled)
	w.upgrades.Update(scaled)
}

// StartGame 从 Pregame 开始第一波
func (w *World) StartGame() error {
	return w.stateMachine.SwitchState(types.StateWave)
}

// TogglePause 暂停或恢复
func (w *World) TogglePause() error {
	return w.stateMachine.TogglePause()
}

// Restart 回到 Pregame 开始新的一局
func (w *World) Restart() error {
	return w.stateMachine.SwitchState(types.StatePregame)
}

// SelectDroneAt 选中距离 pos 最近、且在 radius 以内的存活无人机
//
// 返回是否选中了无人机；没有命中时保持原有选择。
func (w *World) SelectDroneAt(pos types.Vector2, radius float64) bool {
	var picked components.Entity
	best := radius
	for _, p := range w.registry.ByTag(types.TagPlayer) {
		if p.IsDead() {
			continue
		}
		if d := types.Distance(pos, p.Transform().Position()); d <= best {
			best = d
			picked = p
		}
	}
	if picked == nil {
		return false
	}
	w.selected = picked.ID()
	log.Printf("[World] Drone %s selected", w.selected)
	return true
}

// SelectedDrone 当前选中的无人机
//
// 选中的无人机被移除后，自动改选第一架存活的无人机；没有无人机时返回 nil。
func (w *World) SelectedDrone() components.Entity {
	if e := w.registry.GetByID(w.selected); e != nil && !e.IsDead() {
		return e
	}
	w.selected = ""
	for _, p := range w.registry.ByTag(types.TagPlayer) {
		if !p.IsDead() {
			w.selected = p.ID()
			return p
		}
	}
	return nil
}

// CommandSelectedDrone 命令选中的无人机移动到 dest；没有可用无人机时返回 false
func (w *World) CommandSelectedDrone(dest types.Vector2) bool {
	drone := w.SelectedDrone()
	if drone == nil {
		log.Printf("[World] Warning: no drone selected")
		return false
	}
	return w.agents.CommandMove(drone.ID(), dest)
}

// Bus 事件总线
func (w *World) Bus() *events.EventBus { return w.bus }

// Registry 实体注册表
func (w *World) Registry() *ecs.EntityRegistry { return w.registry }

// Clock 游戏时钟
func (w *World) Clock() *game.Clock { return w.clock }

// Config 当前配置
func (w *World) Config() *config.GameConfig { return w.cfg }

// State 当前游戏状态
func (w *World) State() types.GameState { return w.stateMachine.CurrentState() }

// CurrentWave 当前波次
func (w *World) CurrentWave() int { return w.waves.CurrentWave() }

// NextWaveIn 波次间隙剩余时间；不在 Postwave 时为 0
func (w *World) NextWaveIn() float64 {
	if !w.stateMachine.IsInState(types.StatePostwave) {
		return 0
	}
	return w.postwave.Remaining()
}

// Projectiles 飞行中的子弹
func (w *World) Projectiles() []systems.Projectile { return w.projectiles.Active() }

// Pickups 场上的升级道具
func (w *World) Pickups() []systems.Pickup { return w.upgrades.Active() }

// PoolStats 对象池统计
func (w *World) PoolStats(key string) (pool.Stats, bool) { return w.objects.Stats(key) }
