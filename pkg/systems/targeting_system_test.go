package systems

import (
	"testing"

	"github.com/gonewx/towerdefense/pkg/components"
	"github.com/gonewx/towerdefense/pkg/entities"
	"github.com/gonewx/towerdefense/pkg/types"
)

func TestSelectHuntTargetProbabilityExtremes(t *testing.T) {
	w := newWorld(t)
	w.addBase(t, types.Vector2{})
	w.addPlayer(t, "player_0", types.Vector2{X: 5}, components.CombatStats{})
	w.addPlayer(t, "player_1", types.Vector2{X: -5}, components.CombatStats{})
	enemy := w.addEnemy(t, "enemy_0", types.Vector2{X: 10}, components.CombatStats{})

	rolls := []float64{0, 0.1, 0.5, 0.9, 0.999}

	t.Run("概率 1 总是选择基地", func(t *testing.T) {
		ts := NewTargetingSystem(w.registry, &scriptedRandom{values: rolls})
		for i := 0; i < 20; i++ {
			if got := ts.SelectHuntTarget(enemy, 1.0); got == nil || got.ID() != entities.BaseID {
				t.Fatalf("第 %d 次应选择基地，实际 %v", i, got)
			}
		}
	})

	t.Run("概率 0 从不选择基地", func(t *testing.T) {
		ts := NewTargetingSystem(w.registry, &scriptedRandom{values: rolls})
		for i := 0; i < 20; i++ {
			got := ts.SelectHuntTarget(enemy, 0)
			if got == nil || got.Tag() != types.TagPlayer {
				t.Fatalf("第 %d 次应选择玩家，实际 %v", i, got)
			}
		}
	})
}

func TestSelectHuntTargetFallbacks(t *testing.T) {
	w := newWorld(t)
	enemy := w.addEnemy(t, "enemy_0", types.Vector2{}, components.CombatStats{})
	ts := NewTargetingSystem(w.registry, &scriptedRandom{values: []float64{0.9}})

	if got := ts.SelectHuntTarget(enemy, 0.5); got != nil {
		t.Errorf("没有基地和玩家时应返回 nil，实际 %v", got.ID())
	}

	w.addBase(t, types.Vector2{})
	if got := ts.SelectHuntTarget(enemy, 0.5); got == nil || got.ID() != entities.BaseID {
		t.Errorf("没有玩家时应退回基地，实际 %v", got)
	}

	p := w.addPlayer(t, "player_0", types.Vector2{}, components.CombatStats{})
	_, _ = p.TakeDamage(100)
	if got := ts.SelectHuntTarget(enemy, 0.5); got == nil || got.ID() != entities.BaseID {
		t.Errorf("死亡的玩家不应被选中，实际 %v", got)
	}
}

func TestFindNearest(t *testing.T) {
	w := newWorld(t)
	player := w.addPlayer(t, "player_0", types.Vector2{}, components.CombatStats{})
	first := w.addEnemy(t, "enemy_0", types.Vector2{X: 3}, components.CombatStats{})
	w.addEnemy(t, "enemy_1", types.Vector2{X: -3}, components.CombatStats{})
	w.addEnemy(t, "enemy_2", types.Vector2{X: 7}, components.CombatStats{})
	ts := NewTargetingSystem(w.registry, &scriptedRandom{})

	if got := ts.FindNearestEnemyForPlayer(player); got != first {
		t.Errorf("距离相同时应返回注册顺序第一个，实际 %v", got.ID())
	}

	_, _ = first.TakeDamage(50)
	if got := ts.FindNearestOfTag(player, types.TagEnemy); got == nil || got.ID() != "enemy_1" {
		t.Errorf("死亡实体应被跳过，实际 %v", got)
	}

	if got := ts.FindNearestOfTag(player, types.TagBase); got != nil {
		t.Errorf("没有基地时应返回 nil")
	}
}

func TestFindEnemiesInRange(t *testing.T) {
	w := newWorld(t)
	w.addEnemy(t, "enemy_0", types.Vector2{X: 1}, components.CombatStats{})
	w.addEnemy(t, "enemy_1", types.Vector2{X: 4}, components.CombatStats{})
	w.addEnemy(t, "enemy_2", types.Vector2{X: 9}, components.CombatStats{})
	ts := NewTargetingSystem(w.registry, &scriptedRandom{})

	inRange := ts.FindEnemiesInRange(types.Vector2{}, 5)
	if len(inRange) != 2 || inRange[0].ID() != "enemy_0" || inRange[1].ID() != "enemy_1" {
		t.Errorf("期望 enemy_0 与 enemy_1，实际 %d 个", len(inRange))
	}

	if got := ts.FindClosestEnemyInRange(types.Vector2{X: 5}, 2); got == nil || got.ID() != "enemy_1" {
		t.Errorf("期望 enemy_1，实际 %v", got)
	}
	if got := ts.FindClosestEnemyInRange(types.Vector2{X: 20}, 2); got != nil {
		t.Error("射程内没有敌人时应返回 nil")
	}
}
