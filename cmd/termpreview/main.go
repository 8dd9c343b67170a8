// Command termpreview runs the preloader in a terminal.
//
// Keys: l marks loading done, t toggles the theme, r replays, q or Esc quits.
// Mouse motion repels particles; dragging acts as a touch.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/constellation/config"
	"github.com/pthm-cable/constellation/engine"
	"github.com/pthm-cable/constellation/game"
	"github.com/pthm-cable/constellation/host/termhost"
	"github.com/pthm-cable/constellation/renderer"
	"github.com/pthm-cable/constellation/theme"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	themeName := flag.String("theme", "", "Initial theme (empty = use config)")
	logPath := flag.String("log", "", "Write JSON logs to this file (empty = discard)")
	flag.Parse()

	// The terminal owns stdout, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logOut, nil)))

	if err := config.Init(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	s, err := game.NewSession(cfg, game.Options{Seed: *seed, Theme: *themeName})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create session: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()
	screen.EnableMouse()

	bg := func() color.NRGBA {
		c, err := s.Themes().Color(theme.PropBackground)
		if err != nil {
			return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		}
		return c
	}
	h := termhost.New(screen, bg)
	if err := s.Start(h); err != nil {
		if !errors.Is(err, engine.ErrNoSurface) {
			slog.Error("failed to start engine", "error", err)
			return
		}
		slog.Warn("animation unavailable, continuing without it", "error", err)
	}

	run(screen, h, s, cfg.Screen.TargetFPS, bg)
}

func run(screen tcell.Screen, h *termhost.Host, s *game.Session, fps int, bg termhost.Background) {
	if fps <= 0 {
		fps = 60
	}
	interval := time.Second / time.Duration(fps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	done := make(chan struct{})
	defer close(done)
	eventChan := termhost.PollEvents(screen, done)

	for {
		select {
		case ev, ok := <-eventChan:
			if !ok {
				return
			}
			if key, ok := ev.(*tcell.EventKey); ok {
				if !handleKey(key, s) {
					return
				}
				continue
			}
			h.HandleEvent(ev)

		case <-ticker.C:
			h.Frame(func(scr tcell.Screen) { drawOverlay(scr, s, bg) })
			s.Advance(interval)
		}
	}
}

// handleKey returns false to quit.
func handleKey(ev *tcell.EventKey, s *game.Session) bool {
	if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
		return false
	}
	if ev.Key() != tcell.KeyRune {
		return true
	}
	switch ev.Rune() {
	case 'q':
		return false
	case 'l':
		s.Loaded()
	case 't':
		s.ToggleTheme()
	case 'r':
		if err := s.Replay(); err != nil && !errors.Is(err, engine.ErrNoSurface) {
			slog.Error("failed to replay", "error", err)
		}
	}
	return true
}

func drawOverlay(screen tcell.Screen, s *game.Session, bg termhost.Background) {
	text, err := s.Themes().Color(theme.PropTextColor)
	if err != nil {
		text = color.NRGBA{A: 255}
	}
	back := bg()
	style := tcell.StyleDefault.
		Background(tcell.NewRGBColor(int32(back.R), int32(back.G), int32(back.B))).
		Foreground(tcell.NewRGBColor(int32(text.R), int32(text.G), int32(text.B)))

	pre := s.Preloader()
	status := pre.Status()
	if pre.Hidden() {
		status = "Ready (r to replay)"
	}
	cols, rows := screen.Size()
	termhost.DrawText(screen, (cols-len(status))/2, rows/2, status, style)

	if msg := pre.Failure(); msg != "" {
		failStyle := style.Foreground(tcell.NewRGBColor(200, 40, 40))
		termhost.DrawText(screen, 1, rows-2, msg, failStyle)
	}
	termhost.DrawText(screen, 1, rows-1,
		fmt.Sprintf("%s | %s", s.Themes().Current(), renderer.FormatRGBA(back)), style)
}
