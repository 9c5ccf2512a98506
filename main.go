package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gonewx/towerdefense/pkg/app"
	"github.com/gonewx/towerdefense/pkg/config"
	"github.com/gonewx/towerdefense/pkg/game"
	"github.com/gonewx/towerdefense/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "towerdefense",
		Usage: "defend the base against waves of enemy drones",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "game config YAML (defaults to the built-in config)"},
			&cli.IntFlag{Name: "seed", Value: 1, Usage: "random seed"},
			&cli.BoolFlag{Name: "verbose", Usage: "enable verbose logging"},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "towerdefense: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	utils.ConfigureLogging(cmd.Bool("verbose"))

	cfg := config.DefaultGameConfig()
	if path := cmd.String("config"); path != "" {
		loaded, err := config.LoadGameConfig(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if err := utils.EnsureStorageDir(); err != nil {
		log.Printf("[main] Warning: storage directory unavailable: %v", err)
	}
	save := game.OpenSaveManager("towerdefense")
	gameApp, err := app.NewApp(app.Config{
		Verbose: cmd.Bool("verbose"),
		Game:    cfg,
		Seed:    int64(cmd.Int("seed")),
		Save:    save,
	})
	if err != nil {
		return err
	}
	defer gameApp.World().Close()

	ebiten.SetWindowSize(app.ScreenWidth, app.ScreenHeight)
	ebiten.SetWindowTitle("Tower Defense")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(gameApp); err != nil {
		log.Printf("[main] ERROR: %v", err)
		return err
	}
	return nil
}
