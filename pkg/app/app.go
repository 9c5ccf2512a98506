// Package app 提供游戏应用的核心包装器
//
// App 将 sim.World 包装为 ebiten.Game，负责输入、全屏切换与绘制。
package app

import (
	"fmt"
	"image/color"
	"log"

	"github.com/gonewx/towerdefense/pkg/config"
	"github.com/gonewx/towerdefense/pkg/game"
	"github.com/gonewx/towerdefense/pkg/sim"
	"github.com/gonewx/towerdefense/pkg/types"
	"github.com/gonewx/towerdefense/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	// ScreenWidth 逻辑屏幕宽度
	ScreenWidth = 960
	// ScreenHeight 逻辑屏幕高度
	ScreenHeight = 720
	// PixelsPerUnit 世界坐标到像素的缩放
	PixelsPerUnit = 20.0
	// SelectRadius 点击选中无人机的判定半径（世界单位）
	SelectRadius = 1.0
)

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// Game 游戏配置，为 nil 时使用内置默认配置
	Game *config.GameConfig
	// Seed 随机数种子
	Seed int64
	// Save 存档管理器，可为 nil（不记录最高分）
	Save *game.SaveManager
}

// App 是游戏应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	world                    *sim.World
	save                     *game.SaveManager
	renderer                 *renderer
	viewport                 utils.Viewport
	verbose                  bool
	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化游戏应用，进入 Pregame 等待开始
func NewApp(cfg Config) (*App, error) {
	utils.ConfigureLogging(cfg.Verbose)

	opts := sim.WorldOptions{Config: cfg.Game, Seed: cfg.Seed}
	if cfg.Save != nil {
		opts.Store = cfg.Save
		opts.Drones = cfg.Save.UnlockedDrones()
	}
	world, err := sim.NewWorld(opts)
	if err != nil {
		return nil, fmt.Errorf("创建模拟世界失败: %w", err)
	}
	if err := world.Start(); err != nil {
		return nil, fmt.Errorf("启动状态机失败: %w", err)
	}
	log.Printf("[App] World started in %s", world.State())

	viewport := utils.NewCenteredViewport(ScreenWidth, ScreenHeight, PixelsPerUnit)
	return &App{
		world:    world,
		save:     cfg.Save,
		renderer: newRenderer(viewport, utils.IsMobile()),
		viewport: viewport,
		verbose:  cfg.Verbose,
	}, nil
}

// Update 更新游戏逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		if ebiten.IsFullscreen() {
			ebiten.SetFullscreen(false)
			if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
				ebiten.RestoreWindow()
			}
			a.pendingWindowSizeReset = true
			a.windowSizeResetCountdown = 3
		} else {
			ebiten.SetFullscreen(true)
		}
	}

	a.handleInput()

	deltaTime := 1.0 / float64(ebiten.TPS())
	a.world.Update(deltaTime)
	return nil
}

func (a *App) handleInput() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		a.advance()
	case inpututil.IsKeyJustPressed(ebiten.KeyP), inpututil.IsKeyJustPressed(ebiten.KeyEscape), multiTouchJustStarted():
		if err := a.world.TogglePause(); err != nil {
			log.Printf("[App] Warning: cannot toggle pause: %v", err)
		}
		return
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		if err := a.world.Restart(); err != nil {
			log.Printf("[App] Warning: cannot restart: %v", err)
		}
	}

	pressed, x, y := justTouchedOrClicked()
	if !pressed {
		return
	}
	// 触屏没有键盘，开局与重开由点击触发
	if utils.IsMobile() && a.world.State() != types.StateWave && a.world.State() != types.StatePostwave {
		a.advance()
		return
	}
	pos := a.viewport.ScreenToWorld(float64(x), float64(y))
	if a.world.SelectDroneAt(pos, SelectRadius) {
		return
	}
	a.world.CommandSelectedDrone(pos)
}

// advance Pregame 开始第一波，GameOver 回到 Pregame
func (a *App) advance() {
	var err error
	switch a.world.State() {
	case types.StatePregame:
		err = a.world.StartGame()
	case types.StateGameOver:
		err = a.world.Restart()
	}
	if err != nil {
		log.Printf("[App] Warning: %v", err)
	}
}

// Draw 绘制游戏画面
func (a *App) Draw(screen *ebiten.Image) {
	highScore := 0
	if a.save != nil {
		highScore = a.save.HighScore()
	}
	a.renderer.draw(screen, a.world, highScore)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回游戏的逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}

// World 返回模拟世界
func (a *App) World() *sim.World {
	return a.world
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
