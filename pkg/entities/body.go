package entities

import (
	"github.com/gonewx/towerdefense/pkg/pool"
	"github.com/gonewx/towerdefense/pkg/types"
)

// Body 场景中的可回收表现对象
//
// 同时实现 pool.Poolable 与 components.Transform：实体的位置就存放在它的 Body 上，
// 实体移除时 Body 归还到 Key 对应的对象池。
type Body struct {
	Key       string
	pos       types.Vector2
	rotation  float64
	active    bool
	discarded bool
}

// NewBodyFactory 返回创建指定池键 Body 的工厂函数
func NewBodyFactory(key string) pool.Factory {
	return func() pool.Poolable {
		return &Body{Key: key}
	}
}

func (b *Body) SetActive(active bool) { b.active = active }

func (b *Body) Place(pose pool.Pose) {
	b.pos = pose.Position
	b.rotation = pose.Rotation
}

// Discard 对象池不再管理该对象
func (b *Body) Discard() { b.discarded = true }

func (b *Body) Position() types.Vector2       { return b.pos }
func (b *Body) SetPosition(pos types.Vector2) { b.pos = pos }
func (b *Body) Rotation() float64             { return b.rotation }
func (b *Body) SetRotation(rotation float64)  { b.rotation = rotation }
func (b *Body) Active() bool                  { return b.active }
func (b *Body) Discarded() bool               { return b.discarded }
