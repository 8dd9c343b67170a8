package main

import (
	"errors"
	"flag"
	"image/color"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/constellation/config"
	"github.com/pthm-cable/constellation/engine"
	"github.com/pthm-cable/constellation/game"
	"github.com/pthm-cable/constellation/host/headless"
	"github.com/pthm-cable/constellation/host/raylibhost"
	"github.com/pthm-cable/constellation/theme"
	"github.com/pthm-cable/constellation/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headlessMode := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output frame and perf stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxFrames := flag.Int("max-frames", 0, "Stop after N refreshes (0 = until the preloader hides)")
	themeName := flag.String("theme", "", "Initial theme (empty = use config)")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	opts := game.Options{
		Seed:      rngSeed,
		LogStats:  *logStats,
		OutputDir: *outputDir,
		Theme:     *themeName,
	}
	s, err := game.NewSession(cfg, opts)
	if err != nil {
		slog.Error("failed to create session", "error", err)
		os.Exit(1)
	}

	if *headlessMode {
		// Headless mode - recorded draw calls, no raylib window
		slog.Info("starting headless run",
			"seed", rngSeed,
			"width", cfg.Screen.Width,
			"height", cfg.Screen.Height,
			"max_frames", *maxFrames,
		)
		h := headless.New(float64(cfg.Screen.Width), float64(cfg.Screen.Height))
		res, err := game.RunHeadless(s, h, game.DefaultOrbit(), cfg.Screen.TargetFPS, *maxFrames)
		if err != nil {
			slog.Error("headless run failed", "error", err)
			os.Exit(1)
		}
		slog.Info("headless run finished",
			"frames", res.Frames,
			"elapsed", res.Elapsed,
			"hidden", res.Hidden,
			"windows", res.Windows,
			"draw_calls", h.Surface.Calls(),
		)
		return
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), cfg.Screen.Title)
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	h := raylibhost.New(func() color.NRGBA {
		c, err := s.Themes().Color(theme.PropBackground)
		if err != nil {
			return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		}
		return c
	})
	if err := s.Start(h); err != nil {
		if !errors.Is(err, engine.ErrNoSurface) {
			slog.Error("failed to start engine", "error", err)
			os.Exit(1)
		}
		slog.Warn("animation unavailable, continuing without it", "error", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			slog.Error("failed to close session", "error", err)
		}
	}()

	overlay := ui.NewOverlay()
	perfPanel := ui.NewPerfPanel(10, 10)
	showPerf := false
	refreshes := 0

	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeyL) {
			s.Loaded()
		}
		if rl.IsKeyPressed(rl.KeyE) {
			s.Fail("simulated load failure")
		}
		if rl.IsKeyPressed(rl.KeyF1) {
			showPerf = !showPerf
		}

		var action ui.OverlayAction
		h.Frame(func() {
			pre := s.Preloader()
			action = overlay.Draw(ui.OverlayData{
				Title:        cfg.Preloader.Title,
				Status:       pre.Status(),
				Failure:      pre.Failure(),
				Hidden:       pre.Hidden(),
				ThemeName:    s.Themes().Current(),
				ScreenWidth:  int32(rl.GetScreenWidth()),
				ScreenHeight: int32(rl.GetScreenHeight()),
			}, s.Themes())
			if showPerf {
				perfPanel.Draw(ui.PerfPanelData{
					Stats:     s.PerfStats(),
					Particles: s.Loop().Field().Len(),
					Edges:     s.Loop().Edges(),
				}, s.Themes())
			}
		})

		switch action {
		case ui.ActionToggleTheme:
			s.ToggleTheme()
		case ui.ActionReplay:
			if err := s.Replay(); err != nil && !errors.Is(err, engine.ErrNoSurface) {
				slog.Error("failed to replay", "error", err)
			}
		}

		s.Advance(time.Duration(rl.GetFrameTime() * float32(time.Second)))

		refreshes++
		if *maxFrames > 0 && refreshes >= *maxFrames {
			break
		}
	}
}
