package systems

import (
	"testing"

	"github.com/gonewx/towerdefense/pkg/components"
	"github.com/gonewx/towerdefense/pkg/types"
)

// recordingLauncher 记录开火请求
type recordingLauncher struct {
	shots []components.Entity
}

func (l *recordingLauncher) Fire(source, target components.Entity, damage int) error {
	l.shots = append(l.shots, target)
	return nil
}

func newAgentFixture(t *testing.T, rolls ...float64) (*world, *AgentSystem, *recordingLauncher) {
	t.Helper()
	w := newWorld(t)
	combat := NewCombatSystem(w.bus)
	targeting := NewTargetingSystem(w.registry, &scriptedRandom{values: rolls})
	regen := NewRegenerationSystem(w.bus, w.clock)
	launcher := &recordingLauncher{}
	agents := NewAgentSystem(w.registry, combat, targeting, regen, w.clock, LinearMover{}, launcher, w.cfg)
	return w, agents, launcher
}

func TestEnemyApproachesAndAttacks(t *testing.T) {
	w, agents, _ := newAgentFixture(t, 0.0)
	base := w.addBase(t, types.Vector2{})
	enemy := w.addEnemy(t, "enemy_0", types.Vector2{X: 8}, components.CombatStats{
		AttackDamage: 10, AttackRange: 2, AttackCooldown: 1.5, MoveSpeed: 4,
	})

	w.clock.now = 1
	agents.Update(1)
	if got := enemy.Transform().Position().X; got != 4 {
		t.Fatalf("敌人应移动 4 个单位，实际位置 %v", got)
	}
	if agents.HuntTarget("enemy_0") != base {
		t.Fatal("没有玩家时应追猎基地")
	}

	w.clock.now = 2
	agents.Update(1)
	if got := enemy.Transform().Position().X; got != 2 {
		t.Fatalf("敌人应停在射程边缘，实际位置 %v", got)
	}

	w.clock.now = 3
	agents.Update(1)
	if base.Health() != 190 {
		t.Fatalf("射程内应攻击一次，基地生命 %d", base.Health())
	}

	w.clock.now = 4
	agents.Update(1)
	if base.Health() != 190 {
		t.Fatalf("冷却期间不应攻击，基地生命 %d", base.Health())
	}

	w.clock.now = 4.5
	agents.Update(0.5)
	if base.Health() != 180 {
		t.Fatalf("冷却结束应再次攻击，基地生命 %d", base.Health())
	}
}

func TestEnemyRetargetsWhenTargetRemoved(t *testing.T) {
	w, agents, _ := newAgentFixture(t, 0.9)
	w.addBase(t, types.Vector2{})
	player := w.addPlayer(t, "player_0", types.Vector2{X: 5}, components.CombatStats{})
	w.addEnemy(t, "enemy_0", types.Vector2{X: 20}, components.CombatStats{MoveSpeed: 1, AttackRange: 1})

	w.clock.now = 1
	agents.Update(0.1)
	if agents.HuntTarget("enemy_0") != player {
		t.Fatal("随机值高于概率时应追猎玩家")
	}

	w.registry.Unregister(player)
	agents.Update(0.1)
	if got := agents.HuntTarget("enemy_0"); got == nil || got.Tag() != types.TagBase {
		t.Fatalf("玩家移除后应改为追猎基地，实际 %v", got)
	}
}

func TestPlayerMovesAndFires(t *testing.T) {
	w, agents, launcher := newAgentFixture(t)
	player := w.addPlayer(t, "player_0", types.Vector2{}, components.CombatStats{
		AttackDamage: 20, AttackRange: 8, AttackCooldown: 0.5, MoveSpeed: 5,
	})

	if !agents.CommandMove("player_0", types.Vector2{Y: 5}) {
		t.Fatal("CommandMove 应接受存活的无人机")
	}
	if agents.CommandMove("enemy_0", types.Vector2{}) {
		t.Error("CommandMove 不应接受不存在的无人机")
	}

	w.clock.now = 1
	agents.Update(1)
	if player.Transform().Position() != (types.Vector2{Y: 5}) {
		t.Fatalf("无人机应到达目的地，实际 %v", player.Transform().Position())
	}
	if _, ok := agents.Destination("player_0"); ok {
		t.Error("到达后应清除目的地")
	}
	if len(launcher.shots) != 0 {
		t.Fatal("没有敌人时不应开火")
	}

	enemy := w.addEnemy(t, "enemy_0", types.Vector2{Y: 10}, components.CombatStats{})
	w.clock.now = 2
	agents.Update(0.1)
	if len(launcher.shots) != 1 || launcher.shots[0] != enemy {
		t.Fatalf("射程内有敌人时应开火，实际 %d 次", len(launcher.shots))
	}

	w.clock.now = 2.2
	agents.Update(0.1)
	if len(launcher.shots) != 1 {
		t.Error("冷却期间不应再次开火")
	}
}

func TestAgentUpdateIgnoresZeroDelta(t *testing.T) {
	w, agents, _ := newAgentFixture(t, 0.0)
	w.addBase(t, types.Vector2{})
	enemy := w.addEnemy(t, "enemy_0", types.Vector2{X: 10}, components.CombatStats{MoveSpeed: 4, AttackRange: 1})

	agents.Update(0)
	if enemy.Transform().Position().X != 10 {
		t.Error("暂停时实体不应移动")
	}
}
