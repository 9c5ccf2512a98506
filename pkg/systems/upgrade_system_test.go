package systems

import (
	"testing"

	"github.com/gonewx/towerdefense/pkg/components"
	"github.com/gonewx/towerdefense/pkg/config"
	"github.com/gonewx/towerdefense/pkg/events"
	"github.com/gonewx/towerdefense/pkg/types"
)

func TestUpgradeDropOnEnemyDeath(t *testing.T) {
	t.Run("随机值低于掉落率时掉落", func(t *testing.T) {
		w := newWorld(t)
		// 第一次判定掉落，第二次选择类型：0.5 × 4 = 2 -> AttackDamage
		us := NewUpgradeSystem(w.bus, w.objects, w.registry, &scriptedRandom{values: []float64{0.1, 0.5}}, w.cfg)
		enemy := w.addEnemy(t, "enemy_0", types.Vector2{X: 3}, components.CombatStats{})

		_, _ = NewCombatSystem(w.bus).ApplyDamage(nil, enemy, 100)
		active := us.Active()
		if len(active) != 1 {
			t.Fatalf("期望掉落 1 个道具，实际 %d", len(active))
		}
		if active[0].Upgrade != types.UpgradeAttackDamage || active[0].Body.Position() != (types.Vector2{X: 3}) {
			t.Errorf("道具类型或位置错误: %v at %v", active[0].Upgrade, active[0].Body.Position())
		}
		if w.log.count(events.KindUpgradeSpawned) != 1 {
			t.Error("应发布 UpgradeSpawned")
		}
	})

	t.Run("随机值高于掉落率时不掉落", func(t *testing.T) {
		w := newWorld(t)
		us := NewUpgradeSystem(w.bus, w.objects, w.registry, &scriptedRandom{values: []float64{0.9}}, w.cfg)
		enemy := w.addEnemy(t, "enemy_0", types.Vector2{}, components.CombatStats{})
		_, _ = NewCombatSystem(w.bus).ApplyDamage(nil, enemy, 100)
		if len(us.Active()) != 0 {
			t.Error("不应掉落道具")
		}
	})

	t.Run("玩家死亡不掉落", func(t *testing.T) {
		w := newWorld(t)
		us := NewUpgradeSystem(w.bus, w.objects, w.registry, &scriptedRandom{values: []float64{0}}, w.cfg)
		player := w.addPlayer(t, "player_0", types.Vector2{}, components.CombatStats{})
		_, _ = NewCombatSystem(w.bus).ApplyDamage(nil, player, 100)
		if len(us.Active()) != 0 {
			t.Error("只有敌人死亡才掉落道具")
		}
	})
}

func TestUpgradePickup(t *testing.T) {
	w := newWorld(t)
	us := NewUpgradeSystem(w.bus, w.objects, w.registry, &scriptedRandom{}, w.cfg)
	player := w.addPlayer(t, "player_0", types.Vector2{}, components.CombatStats{AttackDamage: 20})
	var collected []events.UpgradeCollected
	events.Subscribe(w.bus, func(e events.UpgradeCollected) { collected = append(collected, e) })

	us.Spawn(types.Vector2{X: 5}, types.UpgradeAttackDamage)
	us.Update(0.1)
	if len(collected) != 0 {
		t.Fatal("超出拾取半径时不应拾取")
	}

	player.Transform().SetPosition(types.Vector2{X: 4})
	us.Update(0.1)
	if len(collected) != 1 || collected[0].Collector != player {
		t.Fatalf("进入拾取半径应拾取，实际 %v", collected)
	}
	if player.AttackDamage() != 24 {
		t.Errorf("伤害应乘以 1.2，实际 %v", player.AttackDamage())
	}
	if len(us.Active()) != 0 {
		t.Error("拾取后道具应被回收")
	}
	if stats, _ := w.objects.Stats(config.PoolUpgrade); stats.Active != 0 {
		t.Errorf("道具应归还对象池，active=%d", stats.Active)
	}
}

func TestUpgradeExpiresAndClears(t *testing.T) {
	w := newWorld(t)
	us := NewUpgradeSystem(w.bus, w.objects, w.registry, &scriptedRandom{}, w.cfg)

	us.Spawn(types.Vector2{}, types.UpgradeMoveSpeed)
	us.Update(w.cfg.Upgrades.Lifetime)
	if len(us.Active()) != 0 {
		t.Fatal("超过寿命的道具应被回收")
	}

	us.Spawn(types.Vector2{}, types.UpgradeMoveSpeed)
	us.HandleStateChange(types.StatePause, types.StatePregame)
	if len(us.Active()) != 1 {
		t.Fatal("从暂停恢复时不应清除道具")
	}
	us.HandleStateChange(types.StateGameOver, types.StatePregame)
	if len(us.Active()) != 0 {
		t.Error("进入新一局时应清除道具")
	}
}
