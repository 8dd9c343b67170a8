package termhost

import (
	"image/color"
	"math/rand"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/constellation/config"
	"github.com/pthm-cable/constellation/engine"
	"github.com/pthm-cable/constellation/theme"
)

var white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

func newScreen(t *testing.T, cols, rows int) tcell.Screen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	screen.SetSize(cols, rows)
	t.Cleanup(screen.Fini)
	return screen
}

func TestViewportSize(t *testing.T) {
	h := New(newScreen(t, 80, 24), func() color.NRGBA { return white })
	w, ht := h.ViewportSize()
	if w != 640 || ht != 384 {
		t.Errorf("ViewportSize = %v, %v; want 640, 384", w, ht)
	}
}

func TestSurfaceRaster(t *testing.T) {
	s := newSurface(func() color.NRGBA { return white })
	s.Resize(80, 32) // 10 x 2 cells

	s.FillCircle(12, 20, 2, color.NRGBA{A: 255})
	if got := s.glyph[1*10+1]; got != '•' {
		t.Errorf("glyph = %q, want •", got)
	}
	if got := s.fg[1*10+1]; got != (color.NRGBA{A: 255}) {
		t.Errorf("fg = %v, want black", got)
	}

	s.FillCircle(-1, 5, 2, color.NRGBA{A: 255})
	s.FillCircle(500, 5, 2, color.NRGBA{A: 255})

	s.StrokeLine(4, 8, 76, 8, 1, color.NRGBA{A: 128})
	for x := 0; x < 10; x++ {
		if s.bg[x] == white {
			t.Errorf("cell %d not tinted by line", x)
		}
		if s.bg[10+x] != white {
			t.Errorf("cell %d on row 1 tinted", 10+x)
		}
	}

	s.Clear()
	for i, g := range s.glyph {
		if g != ' ' || s.bg[i] != white {
			t.Fatalf("cell %d not cleared", i)
		}
	}
}

func TestMouseEvents(t *testing.T) {
	cfg := config.Default()
	th, err := theme.New(cfg.Theme.Palettes, cfg.Theme.Initial)
	if err != nil {
		t.Fatal(err)
	}
	screen := newScreen(t, 80, 24)
	h := New(screen, func() color.NRGBA { return white })
	l := engine.New(cfg, th, engine.WithRand(rand.New(rand.NewSource(3))))
	if err := l.Start(h); err != nil {
		t.Fatal(err)
	}
	defer l.Stop()

	h.HandleEvent(tcell.NewEventMouse(10, 5, tcell.ButtonNone, tcell.ModNone))
	p := l.Context().Pointer()
	if !p.Active || p.Pos.X != 84 || p.Pos.Y != 88 {
		t.Errorf("pointer = %+v, want active at 84, 88", p)
	}

	h.HandleEvent(tcell.NewEventMouse(2, 2, tcell.Button1, tcell.ModNone))
	if p := l.Context().Pointer(); !p.Active || p.Pos.X != 20 {
		t.Errorf("drag pointer = %+v", p)
	}

	// Release ends the touch, then the motion sets the pointer again.
	h.HandleEvent(tcell.NewEventMouse(3, 3, tcell.ButtonNone, tcell.ModNone))
	if p := l.Context().Pointer(); !p.Active || p.Pos.X != 28 {
		t.Errorf("pointer after release = %+v", p)
	}
}

func TestFrameDraws(t *testing.T) {
	cfg := config.Default()
	th, err := theme.New(cfg.Theme.Palettes, cfg.Theme.Initial)
	if err != nil {
		t.Fatal(err)
	}
	screen := newScreen(t, 80, 24)
	h := New(screen, func() color.NRGBA { return white })
	l := engine.New(cfg, th, engine.WithRand(rand.New(rand.NewSource(3))))
	if err := l.Start(h); err != nil {
		t.Fatal(err)
	}

	if n := h.Frame(func(s tcell.Screen) { DrawText(s, 0, 0, "Loading", tcell.StyleDefault) }); n != 1 {
		t.Errorf("Frame ran %d callbacks, want 1", n)
	}

	dots := 0
	for y := 0; y < 24; y++ {
		for x := 0; x < 80; x++ {
			r, _, _, _ := screen.GetContent(x, y)
			if r == '•' || r == '·' {
				dots++
			}
		}
	}
	if dots == 0 {
		t.Error("no particles drawn")
	}
	if r, _, _, _ := screen.GetContent(0, 0); r != 'L' {
		t.Errorf("overlay cell = %q, want L", r)
	}

	l.Stop()
	if n := h.Frame(nil); n != 0 {
		t.Errorf("Frame after Stop ran %d callbacks", n)
	}
}

func TestPollEventsClosesAfterFini(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	done := make(chan struct{})
	defer close(done)
	events := PollEvents(screen, done)

	screen.InjectKey(tcell.KeyRune, 'l', tcell.ModNone)
	select {
	case ev := <-events:
		if key, ok := ev.(*tcell.EventKey); !ok || key.Rune() != 'l' {
			t.Errorf("event = %#v, want key l", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("injected key not delivered")
	}

	screen.Fini()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("event channel still open after Fini")
		}
	}
}
