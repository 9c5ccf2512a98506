package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/gonewx/towerdefense/pkg/components"
	"github.com/gonewx/towerdefense/pkg/types"
	"gopkg.in/yaml.v3"
)

//go:embed default_game.yaml
var defaultGameYAML []byte

// 对象池键
const (
	PoolEnemy   = "Enemy"
	PoolBullet  = "Bullet"
	PoolDrone   = "Drone"
	PoolUpgrade = "Upgrade"
)

// WaveConfig 波次参数
type WaveConfig struct {
	BaseEnemiesPerWave     int     `yaml:"baseEnemiesPerWave"`     // 第一波敌人数量
	EnemiesCountMultiplier float64 `yaml:"enemiesCountMultiplier"` // 每波数量倍率
	TimeBetweenWaves       float64 `yaml:"timeBetweenWaves"`       // 波次间隔（秒）
	MaxWaves               int     `yaml:"maxWaves"`               // 通关波数，0 为无尽
	SpawnRadius            float64 `yaml:"spawnRadius"`            // 敌人生成环半径
}

// TargetingConfig 目标选择参数
type TargetingConfig struct {
	HuntBaseProbability float64 `yaml:"huntBaseProbability"` // 敌人优先攻击基地的概率
}

// RegenConfig 生命恢复参数
type RegenConfig struct {
	RegenAmount int     `yaml:"regenAmount"` // 每次恢复量
	RegenDelay  float64 `yaml:"regenDelay"`  // 受伤后多久开始恢复（秒）
	RegenRate   float64 `yaml:"regenRate"`   // 两次恢复的最小间隔（秒）
}

// BaseConfig 基地参数
type BaseConfig struct {
	MaxHealth   int           `yaml:"maxHealth"`
	Position    types.Vector2 `yaml:"position"`
	RegenConfig `yaml:",inline"`
}

// PlayerConfig 玩家无人机参数
type PlayerConfig struct {
	MaxHealth              int           `yaml:"maxHealth"`
	InitialDrones          int           `yaml:"initialDrones"`
	SpawnOffset            types.Vector2 `yaml:"spawnOffset"` // 相对基地的生成偏移
	components.CombatStats `yaml:",inline"`
	RegenConfig            `yaml:",inline"`
}

// EnemyConfig 敌人参数
type EnemyConfig struct {
	MaxHealth              int `yaml:"maxHealth"`
	components.CombatStats `yaml:",inline"`
}

// BulletConfig 子弹参数
type BulletConfig struct {
	Speed     float64 `yaml:"speed"`
	Lifetime  float64 `yaml:"lifetime"`
	HitRadius float64 `yaml:"hitRadius"`
}

// UpgradeConfig 升级道具参数
type UpgradeConfig struct {
	DropChance   float64            `yaml:"dropChance"`
	Lifetime     float64            `yaml:"lifetime"`
	PickupRadius float64            `yaml:"pickupRadius"`
	Values       map[string]float64 `yaml:"values"` // 升级类型名 -> 乘法系数
}

// GameConfig 整局游戏配置
type GameConfig struct {
	Wave      WaveConfig      `yaml:"wave"`
	Targeting TargetingConfig `yaml:"targeting"`
	Base      BaseConfig      `yaml:"base"`
	Player    PlayerConfig    `yaml:"player"`
	Enemy     EnemyConfig     `yaml:"enemy"`
	Bullets   BulletConfig    `yaml:"bullets"`
	Upgrades  UpgradeConfig   `yaml:"upgrades"`
	Pools     map[string]int  `yaml:"pools"` // 对象池键 -> 预创建数量
}

// DefaultGameConfig 返回内置默认配置
func DefaultGameConfig() *GameConfig {
	cfg, err := ParseGameConfig(defaultGameYAML)
	if err != nil {
		// 内置配置由测试保证有效
		panic(fmt.Sprintf("embedded default game config is invalid: %v", err))
	}
	return cfg
}

// LoadGameConfig 从 YAML 文件加载游戏配置
//
// 文件中未出现的字段保留默认值。
// 参数：
//
//	path - 配置文件路径
//
// 返回：
//
//	*GameConfig - 解析并校验后的配置
//	error - 文件读取、解析或校验失败
func LoadGameConfig(path string) (*GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read game config file %s: %w", path, err)
	}
	cfg, err := ParseGameConfig(data)
	if err != nil {
		return nil, fmt.Errorf("game config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseGameConfig 在默认配置之上解析 YAML 数据并校验
func ParseGameConfig(data []byte) (*GameConfig, error) {
	var cfg GameConfig
	if err := yaml.Unmarshal(defaultGameYAML, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse default game config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse game config YAML: %w", err)
	}
	if err := validateGameConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}
	return &cfg, nil
}

// validateGameConfig 校验配置的完整性与合法性
func validateGameConfig(cfg *GameConfig) error {
	if cfg.Wave.BaseEnemiesPerWave < 0 {
		return fmt.Errorf("wave.baseEnemiesPerWave cannot be negative, got %d", cfg.Wave.BaseEnemiesPerWave)
	}
	if cfg.Wave.EnemiesCountMultiplier <= 0 {
		return fmt.Errorf("wave.enemiesCountMultiplier must be positive, got %f", cfg.Wave.EnemiesCountMultiplier)
	}
	if cfg.Wave.TimeBetweenWaves < 0 {
		return fmt.Errorf("wave.timeBetweenWaves cannot be negative, got %f", cfg.Wave.TimeBetweenWaves)
	}
	if cfg.Wave.MaxWaves < 0 {
		return fmt.Errorf("wave.maxWaves cannot be negative, got %d", cfg.Wave.MaxWaves)
	}
	if p := cfg.Targeting.HuntBaseProbability; p < 0 || p > 1 {
		return fmt.Errorf("targeting.huntBaseProbability must be in [0, 1], got %f", p)
	}
	if cfg.Base.MaxHealth <= 0 {
		return fmt.Errorf("base.maxHealth must be positive, got %d", cfg.Base.MaxHealth)
	}
	if cfg.Player.MaxHealth <= 0 {
		return fmt.Errorf("player.maxHealth must be positive, got %d", cfg.Player.MaxHealth)
	}
	if cfg.Player.InitialDrones < 0 {
		return fmt.Errorf("player.initialDrones cannot be negative, got %d", cfg.Player.InitialDrones)
	}
	if cfg.Enemy.MaxHealth <= 0 {
		return fmt.Errorf("enemy.maxHealth must be positive, got %d", cfg.Enemy.MaxHealth)
	}
	for name, stats := range map[string]components.CombatStats{"player": cfg.Player.CombatStats, "enemy": cfg.Enemy.CombatStats} {
		if stats.AttackDamage < 0 || stats.AttackRange < 0 || stats.AttackCooldown < 0 || stats.MoveSpeed < 0 {
			return fmt.Errorf("%s: combat stats cannot be negative: %+v", name, stats)
		}
	}
	for name, regen := range map[string]RegenConfig{"base": cfg.Base.RegenConfig, "player": cfg.Player.RegenConfig} {
		if regen.RegenAmount < 0 || regen.RegenDelay < 0 || regen.RegenRate < 0 {
			return fmt.Errorf("%s: regeneration settings cannot be negative: %+v", name, regen)
		}
	}
	if cfg.Bullets.Speed <= 0 {
		return fmt.Errorf("bullets.speed must be positive, got %f", cfg.Bullets.Speed)
	}
	if c := cfg.Upgrades.DropChance; c < 0 || c > 1 {
		return fmt.Errorf("upgrades.dropChance must be in [0, 1], got %f", c)
	}
	for name, value := range cfg.Upgrades.Values {
		if _, err := types.ParseUpgradeType(name); err != nil {
			return fmt.Errorf("upgrades.values: %w", err)
		}
		if value <= 0 {
			return fmt.Errorf("upgrades.values.%s must be positive, got %f", name, value)
		}
	}
	for key, size := range cfg.Pools {
		if size < 0 {
			return fmt.Errorf("pools.%s cannot be negative, got %d", key, size)
		}
	}
	return nil
}

// UpgradeTypes 返回已配置的升级类型（按类型顺序）
func (c *GameConfig) UpgradeTypes() []types.UpgradeType {
	result := make([]types.UpgradeType, 0, len(c.Upgrades.Values))
	for _, u := range []types.UpgradeType{types.UpgradeAttackSpeed, types.UpgradeAttackRange, types.UpgradeAttackDamage, types.UpgradeMoveSpeed} {
		if _, ok := c.Upgrades.Values[u.String()]; ok {
			result = append(result, u)
		}
	}
	return result
}

// UpgradeValue 返回升级类型的系数，未配置时为 1
func (c *GameConfig) UpgradeValue(u types.UpgradeType) float64 {
	if v, ok := c.Upgrades.Values[u.String()]; ok {
		return v
	}
	return 1
}

// PoolSize 返回对象池预创建数量，未配置时为 0
func (c *GameConfig) PoolSize(key string) int {
	return c.Pools[key]
}
