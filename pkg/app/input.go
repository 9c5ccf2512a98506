package app

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// justTouchedOrClicked 检查是否刚刚发生点击或触摸
// 优先检测触摸，返回是否点击以及点击位置
func justTouchedOrClicked() (bool, int, int) {
	if touchIDs := inpututil.AppendJustPressedTouchIDs(nil); len(touchIDs) > 0 {
		x, y := ebiten.TouchPosition(touchIDs[0])
		return true, x, y
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		return true, x, y
	}
	return false, 0, 0
}

// multiTouchJustStarted 第二根手指刚刚按下（移动端用作暂停手势）
func multiTouchJustStarted() bool {
	return len(inpututil.AppendJustPressedTouchIDs(nil)) > 0 && len(ebiten.AppendTouchIDs(nil)) >= 2
}
