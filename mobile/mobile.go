//go:build mobile

// Package mobile 提供 ebitenmobile 绑定入口
//
// 此文件仅在使用 -tags mobile 构建时编译：
//
//	# Android
//	ebitenmobile bind -target android -tags mobile -androidapi 23 -javapkg com.gonewx.towerdefense -o build/android/towerdefense.aar ./mobile
//
//	# iOS (仅 macOS)
//	ebitenmobile bind -target ios -tags mobile -o build/ios/TowerDefense.xcframework ./mobile
package mobile

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2/mobile"

	"github.com/gonewx/towerdefense/pkg/app"
	"github.com/gonewx/towerdefense/pkg/game"
	"github.com/gonewx/towerdefense/pkg/utils"
)

func init() {
	if err := utils.EnsureStorageDir(); err != nil {
		log.Printf("[mobile] Warning: storage directory unavailable: %v", err)
	}
	gameApp, err := app.NewApp(app.Config{
		Verbose: true,
		Seed:    1,
		Save:    game.OpenSaveManager("towerdefense"),
	})
	if err != nil {
		log.Fatalf("游戏初始化失败: %v", err)
	}

	mobile.SetGame(gameApp)
}

// Dummy 是一个空导出函数，确保包被 ebitenmobile 正确识别
func Dummy() {}
