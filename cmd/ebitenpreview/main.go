// Command ebitenpreview runs the preloader in an ebiten window.
//
// Keys: L marks loading done, T toggles the theme, R replays, Esc quits.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/pthm-cable/constellation/config"
	"github.com/pthm-cable/constellation/engine"
	"github.com/pthm-cable/constellation/game"
	"github.com/pthm-cable/constellation/host/ebitenhost"
	"github.com/pthm-cable/constellation/theme"
)

type preview struct {
	s *game.Session
	h *ebitenhost.Host
}

func (p *preview) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeyL):
		p.s.Loaded()
	case inpututil.IsKeyJustPressed(ebiten.KeyT):
		p.s.ToggleTheme()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		if err := p.s.Replay(); err != nil && !errors.Is(err, engine.ErrNoSurface) {
			return err
		}
	}

	p.h.Poll()
	p.s.Advance(time.Second / time.Duration(ebiten.TPS()))
	return nil
}

func (p *preview) Draw(screen *ebiten.Image) {
	p.h.Draw(screen)

	pre := p.s.Preloader()
	status := pre.Status()
	if pre.Hidden() {
		status = "Ready (R to replay)"
	}
	ebitenutil.DebugPrintAt(screen, status, 12, 12)
	if msg := pre.Failure(); msg != "" {
		ebitenutil.DebugPrintAt(screen, msg, 12, 28)
	}
	ebitenutil.DebugPrintAt(screen,
		fmt.Sprintf("%s | %d particles | %.0f fps", p.s.Themes().Current(), p.s.Loop().Field().Len(), ebiten.ActualFPS()),
		12, screen.Bounds().Dy()-20)
}

func (p *preview) Layout(outsideWidth, outsideHeight int) (int, int) {
	return p.h.Layout(outsideWidth, outsideHeight)
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	themeName := flag.String("theme", "", "Initial theme (empty = use config)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	s, err := game.NewSession(cfg, game.Options{Seed: *seed, Theme: *themeName})
	if err != nil {
		slog.Error("failed to create session", "error", err)
		os.Exit(1)
	}
	defer s.Close()

	h := ebitenhost.New(cfg.Screen.Width, cfg.Screen.Height, func() color.NRGBA {
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

	ebiten.SetWindowSize(cfg.Screen.Width, cfg.Screen.Height)
	ebiten.SetWindowTitle(cfg.Screen.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.Screen.TargetFPS)

	if err := ebiten.RunGame(&preview{s: s, h: h}); err != nil && !errors.Is(err, ebiten.Termination) {
		slog.Error("ebiten exited", "error", err)
		os.Exit(1)
	}
}
