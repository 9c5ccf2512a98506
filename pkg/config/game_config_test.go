package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gonewx/towerdefense/pkg/types"
)

func TestDefaultGameConfig(t *testing.T) {
	cfg := DefaultGameConfig()

	if cfg.Wave.BaseEnemiesPerWave != 5 || cfg.Wave.EnemiesCountMultiplier != 1.3 || cfg.Wave.TimeBetweenWaves != 10 {
		t.Errorf("波次默认值错误: %+v", cfg.Wave)
	}
	if cfg.Wave.SpawnRadius != 15 {
		t.Errorf("生成半径默认值应为 15，实际 %f", cfg.Wave.SpawnRadius)
	}
	if cfg.Base.MaxHealth != 200 || cfg.Player.MaxHealth != 100 || cfg.Enemy.MaxHealth != 50 {
		t.Errorf("生命值默认值错误: base=%d player=%d enemy=%d", cfg.Base.MaxHealth, cfg.Player.MaxHealth, cfg.Enemy.MaxHealth)
	}
	if cfg.Enemy.AttackDamage != 10 || cfg.Enemy.AttackRange != 2 || cfg.Enemy.AttackCooldown != 1.5 || cfg.Enemy.MoveSpeed != 3 {
		t.Errorf("敌人属性默认值错误: %+v", cfg.Enemy.CombatStats)
	}
	if cfg.Player.MoveSpeed != 5 {
		t.Errorf("玩家速度默认值应为 5，实际 %f", cfg.Player.MoveSpeed)
	}
	for key, want := range map[string]int{PoolEnemy: 50, PoolBullet: 50, PoolDrone: 5, PoolUpgrade: 10} {
		if got := cfg.PoolSize(key); got != want {
			t.Errorf("对象池 %s 默认大小应为 %d，实际 %d", key, want, got)
		}
	}
	if len(cfg.UpgradeTypes()) != 4 {
		t.Errorf("默认应配置 4 种升级，实际 %d", len(cfg.UpgradeTypes()))
	}
}

func TestLoadGameConfig(t *testing.T) {
	tempDir := t.TempDir()

	t.Run("部分覆盖保留默认值", func(t *testing.T) {
		content := `
wave:
  maxWaves: 10
  timeBetweenWaves: 4
upgrades:
  values:
    AttackDamage: 1.5
pools:
  Enemy: 8
`
		path := filepath.Join(tempDir, "partial.yaml")
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write test config: %v", err)
		}

		cfg, err := LoadGameConfig(path)
		if err != nil {
			t.Fatalf("LoadGameConfig failed: %v", err)
		}
		if cfg.Wave.MaxWaves != 10 || cfg.Wave.TimeBetweenWaves != 4 {
			t.Errorf("覆盖值未生效: %+v", cfg.Wave)
		}
		if cfg.Wave.BaseEnemiesPerWave != 5 {
			t.Errorf("未覆盖字段应保留默认值，实际 %d", cfg.Wave.BaseEnemiesPerWave)
		}
		if cfg.UpgradeValue(types.UpgradeAttackDamage) != 1.5 {
			t.Errorf("升级系数覆盖未生效，实际 %f", cfg.UpgradeValue(types.UpgradeAttackDamage))
		}
		if cfg.UpgradeValue(types.UpgradeMoveSpeed) != 1.1 {
			t.Errorf("未覆盖的升级系数应保留默认值，实际 %f", cfg.UpgradeValue(types.UpgradeMoveSpeed))
		}
		if cfg.PoolSize(PoolEnemy) != 8 || cfg.PoolSize(PoolBullet) != 50 {
			t.Errorf("对象池配置合并错误: %v", cfg.Pools)
		}
	})

	t.Run("文件不存在", func(t *testing.T) {
		_, err := LoadGameConfig(filepath.Join(tempDir, "missing.yaml"))
		if err == nil {
			t.Error("期望返回错误")
		}
	})

	t.Run("YAML 格式错误", func(t *testing.T) {
		path := filepath.Join(tempDir, "broken.yaml")
		_ = os.WriteFile(path, []byte("wave: [unclosed"), 0644)
		if _, err := LoadGameConfig(path); err == nil {
			t.Error("期望解析错误")
		}
	})
}

func TestValidateGameConfig(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"倍率为 0", "wave: {enemiesCountMultiplier: 0}", "enemiesCountMultiplier"},
		{"概率越界", "targeting: {huntBaseProbability: 1.5}", "huntBaseProbability"},
		{"负的最大波数", "wave: {maxWaves: -1}", "maxWaves"},
		{"基地生命值为 0", "base: {maxHealth: 0}", "base.maxHealth"},
		{"负的攻击力", "enemy: {attackDamage: -1}", "enemy"},
		{"未知升级类型", "upgrades: {values: {Shield: 2}}", "unknown upgrade type"},
		{"升级系数非正", "upgrades: {values: {MoveSpeed: 0}}", "MoveSpeed"},
		{"负的对象池大小", "pools: {Bullet: -3}", "pools.Bullet"},
		{"掉落概率越界", "upgrades: {dropChance: 2}", "dropChance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseGameConfig([]byte(tt.yaml))
			if err == nil {
				t.Fatalf("期望校验错误包含 %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("错误信息应包含 %q，实际 %v", tt.wantErr, err)
			}
		})
	}
}
