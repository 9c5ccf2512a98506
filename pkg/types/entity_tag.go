// Package types 定义共享的基础类型
// 这个包不依赖任何其他业务包，用于解决循环引用问题
package types

// EntityTag 定义作战实体的阵营标签
type EntityTag int

const (
	// TagBase 玩家基地
	TagBase EntityTag = iota
	// TagPlayer 玩家无人机
	TagPlayer
	// TagEnemy 敌方无人机
	TagEnemy
)

// String 返回标签的字符串表示
func (t EntityTag) String() string {
	switch t {
	case TagBase:
		return "Base"
	case TagPlayer:
		return "Player"
	case TagEnemy:
		return "Enemy"
	default:
		return "Unknown"
	}
}
