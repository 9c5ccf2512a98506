package app

import (
	"fmt"
	"image/color"

	"github.com/gonewx/towerdefense/pkg/components"
	"github.com/gonewx/towerdefense/pkg/sim"
	"github.com/gonewx/towerdefense/pkg/types"
	"github.com/gonewx/towerdefense/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

var (
	backgroundColor = color.RGBA{R: 24, G: 28, B: 36, A: 255}
	baseColor       = color.RGBA{R: 90, G: 160, B: 255, A: 255}
	playerColor     = color.RGBA{R: 80, G: 220, B: 140, A: 255}
	enemyColor      = color.RGBA{R: 235, G: 80, B: 70, A: 255}
	bulletColor     = color.RGBA{R: 255, G: 230, B: 120, A: 255}
	pickupColor     = color.RGBA{R: 200, G: 120, B: 255, A: 255}
	healthBackColor = color.RGBA{R: 60, G: 60, B: 60, A: 255}
	healthFillColor = color.RGBA{R: 120, G: 230, B: 90, A: 255}
	rangeColor      = color.RGBA{R: 80, G: 220, B: 140, A: 60}
	selectColor     = color.RGBA{R: 255, G: 255, B: 255, A: 200}
	hudColor        = color.White
)

const (
	healthBarWidth  = 28
	healthBarHeight = 4
	hudLineHeight   = 16
)

// renderer 以几何图元绘制模拟世界与 HUD
type renderer struct {
	face     text.Face
	viewport utils.Viewport
	touch    bool
}

func newRenderer(viewport utils.Viewport, touch bool) *renderer {
	return &renderer{face: text.NewGoXFace(basicfont.Face7x13), viewport: viewport, touch: touch}
}

func (r *renderer) draw(screen *ebiten.Image, w *sim.World, highScore int) {
	screen.Fill(backgroundColor)

	for _, e := range w.Registry().GetAll() {
		r.drawEntity(screen, e)
	}
	if d := w.SelectedDrone(); d != nil {
		x, y := r.viewport.WorldToScreen(d.Transform().Position())
		vector.StrokeCircle(screen, float32(x), float32(y), 11, 2, selectColor, true)
	}
	for _, p := range w.Pickups() {
		x, y := r.viewport.WorldToScreen(p.Body.Position())
		vector.DrawFilledRect(screen, float32(x-4), float32(y-4), 8, 8, pickupColor, false)
	}
	for _, p := range w.Projectiles() {
		x, y := r.viewport.WorldToScreen(p.Body.Position())
		vector.DrawFilledCircle(screen, float32(x), float32(y), 2, bulletColor, true)
	}

	r.drawHUD(screen, w, highScore)
}

func (r *renderer) drawEntity(screen *ebiten.Image, e components.Entity) {
	x, y := r.viewport.WorldToScreen(e.Transform().Position())
	switch e.Tag() {
	case types.TagBase:
		vector.DrawFilledRect(screen, float32(x-14), float32(y-14), 28, 28, baseColor, false)
	case types.TagPlayer:
		if c, ok := e.(components.Combatant); ok {
			vector.StrokeCircle(screen, float32(x), float32(y), float32(r.viewport.WorldLength(c.AttackRange())), 1, rangeColor, true)
		}
		vector.DrawFilledCircle(screen, float32(x), float32(y), 8, playerColor, true)
	case types.TagEnemy:
		vector.DrawFilledCircle(screen, float32(x), float32(y), 6, enemyColor, true)
	}
	r.drawHealthBar(screen, x, y-18, e)
}

func (r *renderer) drawHealthBar(screen *ebiten.Image, cx, top float64, e components.Entity) {
	if e.MaxHealth() <= 0 {
		return
	}
	left := float32(cx - healthBarWidth/2)
	ratio := float32(e.Health()) / float32(e.MaxHealth())
	vector.DrawFilledRect(screen, left, float32(top), healthBarWidth, healthBarHeight, healthBackColor, false)
	vector.DrawFilledRect(screen, left, float32(top), healthBarWidth*ratio, healthBarHeight, healthFillColor, false)
}

func (r *renderer) drawHUD(screen *ebiten.Image, w *sim.World, highScore int) {
	lines := []string{
		fmt.Sprintf("State: %s", w.State()),
		fmt.Sprintf("Wave: %d   Enemies: %d", w.CurrentWave(), w.Registry().CountByTag(types.TagEnemy)),
		fmt.Sprintf("Best wave: %d", highScore),
	}
	switch w.State() {
	case types.StatePregame:
		if r.touch {
			lines = append(lines, "Tap to start, tap a drone to select it")
		} else {
			lines = append(lines, "SPACE to start, click a drone to select, click ground to move")
		}
	case types.StatePostwave:
		lines = append(lines, fmt.Sprintf("Next wave in %.1fs", w.NextWaveIn()))
	case types.StatePause:
		lines = append(lines, "Paused")
	case types.StateGameOver:
		lines = append(lines, "Game over")
	}

	for i, line := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(10, float64(10+i*hudLineHeight))
		op.ColorScale.ScaleWithColor(hudColor)
		text.Draw(screen, line, r.face, op)
	}
}
