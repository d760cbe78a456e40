package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Carmen-Shannon/oxy-ecs/engine"
	"github.com/Carmen-Shannon/oxy-ecs/engine/clock"
	"github.com/Carmen-Shannon/oxy-ecs/engine/ecs"
	"github.com/Carmen-Shannon/oxy-ecs/engine/game_object"
	"github.com/Carmen-Shannon/oxy-ecs/engine/profiler"
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer"
	"github.com/Carmen-Shannon/oxy-ecs/engine/system"
	"github.com/Carmen-Shannon/oxy-ecs/engine/window"
	"github.com/Carmen-Shannon/oxy-ecs/internal/config"
	"github.com/Carmen-Shannon/oxy-ecs/internal/logger"
	"go.uber.org/zap"
)

const defaultConfigPath = "oxy.toml"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
		window.WithSizeLimits(320, 240, 0, 0),
		window.WithLogger(log.Named("window")),
	)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}

	presentMode := renderer.PresentModeUncapped
	if cfg.Render.VSync {
		presentMode = renderer.PresentModeVSync
	}
	width, height := win.Size()
	device, err := renderer.NewWGPUDevice(win.SurfaceDescriptor(), width, height,
		renderer.WithDeviceLogger(log.Named("device")),
		renderer.WithPresentMode(presentMode),
		renderer.WithMSAA(renderer.MSAASampleCount(cfg.Render.MSAA)),
	)
	if err != nil {
		_ = win.Close()
		return fmt.Errorf("create device: %w", err)
	}
	defer device.Release()

	c := clock.New(
		clock.WithFixedDeltaTime(cfg.Clock.FixedDeltaTime),
		clock.WithMaxFixedSubSteps(cfg.Clock.MaxFixedSubSteps),
		clock.WithTimeScale(cfg.Clock.TimeScale),
		clock.WithFrameRate(cfg.Clock.FrameRate),
	)
	ctx := ecs.NewContext(ecs.WithLogger(log.Named("ecs")), ecs.WithDebug(cfg.Systems.Debug))
	manager := system.NewManager(
		system.WithLogger(log.Named("systems")),
		system.WithDebug(cfg.Systems.Debug),
		system.WithClock(c),
	)

	services := renderer.NewServices(ctx.Registry(), device, log, renderer.WithDebug(cfg.Render.Debug))
	manager.Register(game_object.NewBehaviourSystem(), ctx, system.OrderUpdate, nil)
	services.RegisterSystems(manager, ctx)

	demo, err := buildDemo(ctx, services, cfg)
	if err != nil {
		return fmt.Errorf("build demo scene: %w", err)
	}
	prewarmed := services.Renderer.Prewarm(demo.lambert, demo.scene, cfg.Render.PrewarmWorkers)
	log.Info("programs prewarmed", zap.Int("count", prewarmed))

	prof := profiler.NewProfiler(
		profiler.WithLogger(log.Named("profiler")),
		profiler.WithCounter("drawCalls", services.Renderer.LastFrameDrawCalls),
		profiler.WithCounter("queued", services.DrawCalls.Len),
		profiler.WithCounter("lights", func() int { return len(services.CameraLights.Lights()) }),
	)

	eng := engine.NewEngine(
		engine.WithLogger(log.Named("engine")),
		engine.WithContext(ctx),
		engine.WithManager(manager),
		engine.WithClock(c),
		engine.WithWindow(win),
		engine.WithProfiler(prof),
		engine.WithProfiling(cfg.Render.Debug),
		engine.WithResizeCallback(func(w, h int) {
			if err := device.Resize(w, h); err != nil {
				log.Warn("resize failed", zap.Int("width", w), zap.Int("height", h), zap.Error(err))
			}
		}),
		engine.WithFrameCallback(func(delta float64) {
			demo.handleInput(win.Input(), delta)
		}),
	)
	eng.Run()
	return nil
}

// loadConfig reads OXY_CONFIG, or oxy.toml when present, falling back to the defaults.
func loadConfig() (*config.Config, error) {
	path := os.Getenv("OXY_CONFIG")
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); errors.Is(err, fs.ErrNotExist) {
			return config.Defaults(), nil
		}
		path = defaultConfigPath
	}
	return config.Load(path)
}
