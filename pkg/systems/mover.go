package systems

import (
	"github.com/gonewx/towerdefense/pkg/components"
	"github.com/gonewx/towerdefense/pkg/types"
)

// Mover 移动执行器
type Mover interface {
	// Move 将 t 朝 target 移动最多 speed×dt，停在距离目标 stopDistance 处；
	// 返回是否已到达停止距离内
	Move(t components.Transform, target types.Vector2, speed, stopDistance, dt float64) bool
}

// LinearMover 匀速直线移动
type LinearMover struct{}

func (LinearMover) Move(t components.Transform, target types.Vector2, speed, stopDistance, dt float64) bool {
	pos := t.Position()
	dist := types.Distance(pos, target)
	if dist <= stopDistance {
		return true
	}
	step := min(speed*dt, dist-stopDistance)
	t.SetPosition(types.MoveTowards(pos, target, step))
	return dist-step <= stopDistance
}
