// Field tuner - live particle field with sliders for the physics parameters.
//
// Usage: go run ./cmd/fieldtuner [-config path] [-out tuned.yaml]
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"math/rand"
	"os"
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/constellation/config"
	"github.com/pthm-cable/constellation/engine"
	"github.com/pthm-cable/constellation/host/raylibhost"
	"github.com/pthm-cable/constellation/theme"
)

const (
	windowWidth  = 1280
	windowHeight = 720
	panelWidth   = 360
)

// slider binds one float parameter to a raygui SliderBar.
type slider struct {
	label    string
	min, max float32
	format   string
	value    *float64
}

// tuned is the subset of config the tuner edits, in config.yaml layout.
type tuned struct {
	Field   config.FieldConfig   `yaml:"field"`
	Pointer config.PointerConfig `yaml:"pointer"`
	Links   config.LinksConfig   `yaml:"links"`
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outPath := flag.String("out", "tuned.yaml", "File written by the S key")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	th, err := theme.New(cfg.Theme.Palettes, cfg.Theme.Initial)
	if err != nil {
		slog.Error("failed to create themes", "error", err)
		os.Exit(1)
	}
	defaults := *cfg

	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(windowWidth, windowHeight, "Field Tuner")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	h := raylibhost.New(func() color.NRGBA {
		c, err := th.Color(theme.PropBackground)
		if err != nil {
			return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		}
		return c
	})

	var seed int64 = 12345
	var loop *engine.Loop
	restart := func() {
		if loop != nil {
			loop.Stop()
		}
		loop = engine.New(cfg, th, engine.WithRand(rand.New(rand.NewSource(seed))))
		if err := loop.Start(h); err != nil {
			slog.Error("failed to start engine", "error", err)
			os.Exit(1)
		}
	}
	restart()
	defer func() { loop.Stop() }()

	sliders := []slider{
		{"Max drift (px/frame)", 0, 2, "%.2f", &cfg.Field.MaxDrift},
		{"Min reactivity", 0, 50, "%.1f", &cfg.Field.MinReactivity},
		{"Max reactivity", 0, 50, "%.1f", &cfg.Field.MaxReactivity},
		{"Min radius", 0.5, 10, "%.1f", &cfg.Field.MinRadius},
		{"Max radius", 0.5, 10, "%.1f", &cfg.Field.MaxRadius},
		{"Area per particle (px²)", 2000, 40000, "%.0f", &cfg.Field.AreaPerParticle},
		{"Influence radius", 10, 300, "%.0f", &cfg.Pointer.InfluenceRadius},
		{"Strength", 0.01, 1, "%.2f", &cfg.Pointer.Strength},
		{"Link distance", 10, 200, "%.0f", &cfg.Links.Distance},
		{"Link max opacity", 0, 1, "%.2f", &cfg.Links.MaxOpacity},
		{"Line width", 0.5, 4, "%.1f", &cfg.Links.LineWidth},
	}

	for !rl.WindowShouldClose() {
		changed := false

		h.Frame(func() {
			panelX := float32(rl.GetScreenWidth() - panelWidth)
			panelY := float32(10)
			rl.DrawRectangle(int32(panelX)-10, 0, panelWidth+10, int32(rl.GetScreenHeight()), rl.Fade(rl.RayWhite, 0.9))

			rl.DrawText("Field Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
			panelY += 35

			for _, s := range sliders {
				rl.DrawText(s.label, int32(panelX), int32(panelY), 14, rl.Gray)
				panelY += 18
				v := gui.SliderBar(
					rl.Rectangle{X: panelX, Y: panelY, Width: panelWidth - 90, Height: 20},
					"", "",
					float32(*s.value), s.min, s.max,
				)
				rl.DrawText(fmt.Sprintf(s.format, *s.value), int32(panelX+panelWidth-80), int32(panelY+2), 16, rl.DarkGray)
				if v != float32(*s.value) {
					*s.value = float64(v)
					changed = true
				}
				panelY += 30
			}

			panelY += 10
			if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 110, Height: 30}, "Random Seed") {
				seed = int64(rl.GetRandomValue(0, 99999))
				changed = true
			}
			if gui.Button(rl.Rectangle{X: panelX + 120, Y: panelY, Width: 110, Height: 30}, "Reset All") {
				*cfg = defaults
				changed = true
			}
			if gui.Button(rl.Rectangle{X: panelX + 240, Y: panelY, Width: 100, Height: 30}, th.Current()) {
				th.Toggle()
			}
			panelY += 45

			rl.DrawText(fmt.Sprintf("Particles: %d  Edges: %d  FPS: %d", loop.Field().Len(), loop.Edges(), rl.GetFPS()),
				int32(panelX), int32(panelY), 14, rl.DarkGray)

			rl.DrawText("C: copy YAML   S: save YAML", int32(panelX), int32(rl.GetScreenHeight()-30), 12, rl.Gray)
		})

		// Keep ranges ordered while dragging either end.
		if cfg.Field.MaxReactivity < cfg.Field.MinReactivity {
			cfg.Field.MaxReactivity = cfg.Field.MinReactivity
		}
		if cfg.Field.MaxRadius < cfg.Field.MinRadius {
			cfg.Field.MaxRadius = cfg.Field.MinRadius
		}
		if changed {
			restart()
		}

		if rl.IsKeyPressed(rl.KeyC) || rl.IsKeyPressed(rl.KeyS) {
			out, err := tunedYAML(cfg)
			if err != nil {
				slog.Error("failed to encode yaml", "error", err)
				continue
			}
			if rl.IsKeyPressed(rl.KeyC) {
				rl.SetClipboardText(out)
			} else if err := os.WriteFile(*outPath, []byte(out), 0644); err != nil {
				slog.Error("failed to write yaml", "path", *outPath, "error", err)
			} else {
				slog.Info("wrote tuned config", "path", *outPath)
			}
		}
	}
}

func tunedYAML(cfg *config.Config) (string, error) {
	var b strings.Builder
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(tuned{Field: cfg.Field, Pointer: cfg.Pointer, Links: cfg.Links}); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return b.String(), nil
}
