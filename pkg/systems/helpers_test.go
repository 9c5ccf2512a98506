package systems

import (
	"testing"

	"github.com/gonewx/towerdefense/pkg/components"
	"github.com/gonewx/towerdefense/pkg/config"
	"github.com/gonewx/towerdefense/pkg/ecs"
	"github.com/gonewx/towerdefense/pkg/entities"
	"github.com/gonewx/towerdefense/pkg/events"
	"github.com/gonewx/towerdefense/pkg/pool"
	"github.com/gonewx/towerdefense/pkg/types"
)

// scriptedRandom 按顺序返回预设值的随机源
type scriptedRandom struct {
	values []float64
	i      int
}

func (r *scriptedRandom) Float64() float64 {
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[r.i%len(r.values)]
	r.i++
	return v
}

func (r *scriptedRandom) Intn(n int) int { return int(r.Float64() * float64(n)) }

// fakeClock 手动推进的时间源
type fakeClock struct {
	now float64
}

func (c *fakeClock) Now() float64 { return c.now }

// fakeState 固定状态的 StateReader
type fakeState struct {
	state types.GameState
}

func (s *fakeState) IsInState(state types.GameState) bool { return s.state == state }

// eventLog 记录总线上的所有事件
type eventLog struct {
	events []events.GameEvent
}

func recordEvents(bus *events.EventBus) *eventLog {
	l := &eventLog{}
	bus.SubscribeAll(func(e events.GameEvent) { l.events = append(l.events, e) })
	return l
}

func (l *eventLog) count(kind events.Kind) int {
	n := 0
	for _, e := range l.events {
		if e.Kind() == kind {
			n++
		}
	}
	return n
}

// world 系统测试用的最小装配
type world struct {
	bus      *events.EventBus
	registry *ecs.EntityRegistry
	objects  *pool.ObjectPool
	cfg      *config.GameConfig
	clock    *fakeClock
	log      *eventLog
}

func newWorld(t *testing.T) *world {
	t.Helper()
	w := &world{
		bus:     events.NewEventBus(),
		objects: pool.NewObjectPool(),
		cfg:     config.DefaultGameConfig(),
		clock:   &fakeClock{},
	}
	w.registry = ecs.NewEntityRegistry(w.bus)
	w.log = recordEvents(w.bus)
	for _, key := range []string{config.PoolEnemy, config.PoolBullet, config.PoolDrone, config.PoolUpgrade} {
		if err := w.objects.CreatePool(key, entities.NewBodyFactory(key), 4); err != nil {
			t.Fatalf("CreatePool failed: %v", err)
		}
	}
	entities.BindRecycling(w.registry, w.objects)
	return w
}

func (w *world) addBase(t *testing.T, pos types.Vector2) *components.BaseEntity {
	t.Helper()
	base := components.NewBaseEntity(entities.BaseID, components.NewPointTransform(pos), 200)
	if err := w.registry.Register(base); err != nil {
		t.Fatalf("Register base failed: %v", err)
	}
	return base
}

func (w *world) addPlayer(t *testing.T, id string, pos types.Vector2, stats components.CombatStats) *components.PlayerEntity {
	t.Helper()
	p := components.NewPlayerEntity(id, components.NewPointTransform(pos), 100, stats)
	if err := w.registry.Register(p); err != nil {
		t.Fatalf("Register player failed: %v", err)
	}
	return p
}

func (w *world) addEnemy(t *testing.T, id string, pos types.Vector2, stats components.CombatStats) *components.EnemyEntity {
	t.Helper()
	e := components.NewEnemyEntity(id, components.NewPointTransform(pos), 50, stats)
	if err := w.registry.Register(e); err != nil {
		t.Fatalf("Register enemy failed: %v", err)
	}
	return e
}
