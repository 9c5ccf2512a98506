package components

import "github.com/gonewx/towerdefense/pkg/types"

// Transform 外部空间变换句柄
// 核心逻辑只读写位置，不拥有变换本身（由对象池中的展示对象持有）
type Transform interface {
	Position() types.Vector2
	SetPosition(pos types.Vector2)
}

// PointTransform 最简单的 Transform 实现，仅保存一个坐标
// 用于测试以及不需要展示对象的实体（例如无头模拟中的基地）
type PointTransform struct {
	Pos types.Vector2
}

// NewPointTransform 创建位于指定坐标的变换
func NewPointTransform(pos types.Vector2) *PointTransform {
	return &PointTransform{Pos: pos}
}

// Position 返回当前坐标
func (p *PointTransform) Position() types.Vector2 {
	return p.Pos
}

// SetPosition 设置当前坐标
func (p *PointTransform) SetPosition(pos types.Vector2) {
	p.Pos = pos
}
