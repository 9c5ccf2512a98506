// Package types 定义共享的基础类型
package types

import "fmt"

// UpgradeType 定义升级道具的类型
// 每种升级对应玩家无人机的一个乘法系数
type UpgradeType int

const (
	// UpgradeAttackSpeed 攻击速度（作用于攻击冷却系数）
	UpgradeAttackSpeed UpgradeType = iota
	// UpgradeAttackRange 攻击范围
	UpgradeAttackRange
	// UpgradeAttackDamage 攻击伤害
	UpgradeAttackDamage
	// UpgradeMoveSpeed 移动速度
	UpgradeMoveSpeed
)

// String 返回升级类型的字符串表示（与配置文件中的名称一致）
func (u UpgradeType) String() string {
	switch u {
	case UpgradeAttackSpeed:
		return "AttackSpeed"
	case UpgradeAttackRange:
		return "AttackRange"
	case UpgradeAttackDamage:
		return "AttackDamage"
	case UpgradeMoveSpeed:
		return "MoveSpeed"
	default:
		return "Unknown"
	}
}

// ParseUpgradeType 将配置中的名称解析为 UpgradeType
func ParseUpgradeType(name string) (UpgradeType, error) {
	switch name {
	case "AttackSpeed":
		return UpgradeAttackSpeed, nil
	case "AttackRange":
		return UpgradeAttackRange, nil
	case "AttackDamage":
		return UpgradeAttackDamage, nil
	case "MoveSpeed":
		return UpgradeMoveSpeed, nil
	default:
		return 0, fmt.Errorf("unknown upgrade type %q", name)
	}
}
