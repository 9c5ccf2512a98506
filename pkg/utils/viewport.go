// Package utils 提供坐标换算、平台检测、存储目录与日志开关等通用工具
//
// 本包不依赖 ebiten，无界面模拟与测试可以直接使用。
package utils

import "github.com/gonewx/towerdefense/pkg/types"

// Viewport 世界坐标与屏幕坐标之间的换算
//
// 世界原点映射到屏幕上的 (OriginX, OriginY)，世界 Y 轴向上，屏幕 Y 轴向下。
type Viewport struct {
	OriginX, OriginY float64
	// Scale 每个世界单位对应的像素数
	Scale float64
}

// NewCenteredViewport 创建原点位于屏幕中心的视口
func NewCenteredViewport(width, height int, scale float64) Viewport {
	return Viewport{OriginX: float64(width) / 2, OriginY: float64(height) / 2, Scale: scale}
}

// WorldToScreen 世界坐标转屏幕坐标
func (v Viewport) WorldToScreen(p types.Vector2) (float64, float64) {
	return v.OriginX + p.X*v.Scale, v.OriginY - p.Y*v.Scale
}

// ScreenToWorld 屏幕坐标转世界坐标；Scale 为 0 时返回世界原点
func (v Viewport) ScreenToWorld(x, y float64) types.Vector2 {
	if v.Scale == 0 {
		return types.Vector2{}
	}
	return types.Vector2{X: (x - v.OriginX) / v.Scale, Y: (v.OriginY - y) / v.Scale}
}

// WorldLength 世界长度转像素长度
func (v Viewport) WorldLength(d float64) float64 {
	return d * v.Scale
}
