package types

import "math"

// Vector2 地面平面上的坐标（世界坐标系）
type Vector2 struct {
	X float64 `yaml:"x" json:"x" msgpack:"x"`
	Y float64 `yaml:"y" json:"y" msgpack:"y"`
}

// Add 返回两个向量之和
func (v Vector2) Add(o Vector2) Vector2 {
	return Vector2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub 返回 v - o
func (v Vector2) Sub(o Vector2) Vector2 {
	return Vector2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale 返回按系数缩放后的向量
func (v Vector2) Scale(f float64) Vector2 {
	return Vector2{X: v.X * f, Y: v.Y * f}
}

// Length 返回向量长度
func (v Vector2) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// Distance 返回两点之间的欧氏距离
func Distance(a, b Vector2) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// MoveTowards 从 from 向 to 移动最多 maxStep 的距离，不会越过目标点
func MoveTowards(from, to Vector2, maxStep float64) Vector2 {
	delta := to.Sub(from)
	dist := delta.Length()
	if dist <= maxStep || dist == 0 {
		return to
	}
	return from.Add(delta.Scale(maxStep / dist))
}
