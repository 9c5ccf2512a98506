// tdsim 无界面运行塔防模拟，可选记录事件日志或通过 WebSocket 广播事件
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gonewx/towerdefense/pkg/config"
	"github.com/gonewx/towerdefense/pkg/events"
	"github.com/gonewx/towerdefense/pkg/feed"
	"github.com/gonewx/towerdefense/pkg/game"
	"github.com/gonewx/towerdefense/pkg/journal"
	"github.com/gonewx/towerdefense/pkg/sim"
	"github.com/gonewx/towerdefense/pkg/types"
	"github.com/gonewx/towerdefense/pkg/utils"
	"github.com/urfave/cli/v3"
)

// summary 模拟结束时的统计
type summary struct {
	Ticks    int
	GameTime float64
	Wave     int
	State    types.GameState
	Won      bool
	Over     bool
	Kills    int
}

func main() {
	cmd := &cli.Command{
		Name:  "tdsim",
		Usage: "run the tower defense simulation without a window",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "game config YAML (defaults to the built-in config)"},
			&cli.IntFlag{Name: "seed", Value: 1, Usage: "random seed"},
			&cli.IntFlag{Name: "waves", Usage: "number of waves to win, 0 keeps the configured value"},
			&cli.IntFlag{Name: "ticks", Value: 60 * 60 * 10, Usage: "maximum number of simulation ticks"},
			&cli.IntFlag{Name: "tps", Value: 60, Usage: "simulation ticks per second"},
			&cli.StringFlag{Name: "journal", Usage: "write a msgpack event journal to this file"},
			&cli.StringFlag{Name: "serve", Usage: "serve the live event feed over WebSocket on this address, e.g. :8080"},
			&cli.BoolFlag{Name: "save", Usage: "record the high score in the user data directory"},
			&cli.BoolFlag{Name: "verbose", Usage: "enable verbose logging"},
		},
		Action: run,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "tdsim: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	utils.ConfigureLogging(cmd.Bool("verbose"))

	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	if waves := int(cmd.Int("waves")); waves > 0 {
		cfg.Wave.MaxWaves = waves
	}
	tps := int(cmd.Int("tps"))
	if tps <= 0 {
		return fmt.Errorf("tps must be positive, got %d", tps)
	}

	opts := sim.WorldOptions{Config: cfg, Seed: int64(cmd.Int("seed"))}
	var save *game.SaveManager
	if cmd.Bool("save") {
		if err := utils.EnsureStorageDir(); err != nil {
			log.Printf("[tdsim] Warning: storage directory unavailable: %v", err)
		}
		save = game.OpenSaveManager("towerdefense")
		opts.Store = save
		opts.Drones = save.UnlockedDrones()
	}

	world, err := sim.NewWorld(opts)
	if err != nil {
		return err
	}
	defer world.Close()

	if path := cmd.String("journal"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create journal: %w", err)
		}
		defer f.Close()
		w := journal.NewWriter(f, world.Clock())
		w.Attach(world.Bus())
		defer func() {
			if err := w.Flush(); err != nil {
				log.Printf("[tdsim] ERROR: %v", err)
			}
			fmt.Printf("journal: %d events written to %s\n", w.Count(), path)
		}()
	}

	realtime := false
	if addr := cmd.String("serve"); addr != "" {
		stopFeed, err := serveFeed(ctx, addr, world.Bus())
		if err != nil {
			return err
		}
		defer stopFeed()
		realtime = true
		fmt.Printf("event feed listening on ws://%s\n", addr)
	}

	result, err := simulate(ctx, world, int(cmd.Int("ticks")), tps, realtime)
	if err != nil {
		return err
	}

	outcome := "unfinished"
	if result.Over {
		outcome = "lost"
		if result.Won {
			outcome = "won"
		}
	}
	fmt.Printf("result: %s at wave %d (%s) after %d ticks, %.1fs game time, %d enemies destroyed\n",
		outcome, result.Wave, result.State, result.Ticks, result.GameTime, result.Kills)
	if save != nil {
		fmt.Printf("best wave: %d\n", save.HighScore())
	}
	return nil
}

func loadConfig(path string) (*config.GameConfig, error) {
	if path == "" {
		return config.DefaultGameConfig(), nil
	}
	cfg, err := config.LoadGameConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// simulate 开始第一波并推进到游戏结束、达到 maxTicks 或 ctx 取消
func simulate(ctx context.Context, world *sim.World, maxTicks, tps int, realtime bool) (summary, error) {
	var result summary
	events.Subscribe(world.Bus(), func(e events.GameOver) {
		result.Over = true
		result.Won = e.PlayerWon
	})
	events.Subscribe(world.Bus(), func(e events.EntityDied) {
		if e.Entity != nil && e.Entity.Tag() == types.TagEnemy {
			result.Kills++
		}
	})

	if err := world.Start(); err != nil {
		return result, err
	}
	if err := world.StartGame(); err != nil {
		return result, err
	}

	dt := 1.0 / float64(tps)
	var ticker *time.Ticker
	if realtime {
		ticker = time.NewTicker(time.Second / time.Duration(tps))
		defer ticker.Stop()
	}

	for result.Ticks < maxTicks && !result.Over {
		if ticker != nil {
			select {
			case <-ctx.Done():
				return finish(result, world), nil
			case <-ticker.C:
			}
		} else if ctx.Err() != nil {
			break
		}
		world.Update(dt)
		result.Ticks++
	}
	return finish(result, world), nil
}

func finish(result summary, world *sim.World) summary {
	result.GameTime = world.Clock().Now()
	result.Wave = world.CurrentWave()
	result.State = world.State()
	return result
}

// serveFeed 启动事件广播服务，返回停止函数
func serveFeed(ctx context.Context, addr string, bus *events.EventBus) (func(), error) {
	hub := feed.NewHub()
	hubCtx, cancel := context.WithCancel(ctx)
	go hub.Run(hubCtx)
	sub := hub.Attach(bus)

	mux := http.NewServeMux()
	mux.Handle("/events", hub)
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()

	select {
	case err := <-errCh:
		cancel()
		return nil, fmt.Errorf("serve feed: %w", err)
	case <-time.After(50 * time.Millisecond):
	}

	return func() {
		bus.Unsubscribe(sub)
		shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
		defer done()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[tdsim] Warning: feed shutdown: %v", err)
		}
		cancel()
	}, nil
}
