// Package termhost runs the engine in a terminal through tcell. Each cell
// stands for a CellWidth x CellHeight block of virtual pixels.
package termhost

import (
	"image/color"
	"log/slog"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/constellation/host"
	"github.com/pthm-cable/constellation/renderer"
)

// Virtual pixels per terminal cell.
const (
	CellWidth  = 8
	CellHeight = 16
)

// Background supplies the clear color.
type Background func() color.NRGBA

// Surface rasterizes onto a cell grid. Terminals have no alpha, so every
// paint is blended over what the cell already holds.
type Surface struct {
	w, h       float64
	cols, rows int
	background Background

	bg    []color.NRGBA
	fg    []color.NRGBA
	glyph []rune
}

func newSurface(bg Background) *Surface {
	return &Surface{background: bg}
}

// Size implements renderer.Surface.
func (s *Surface) Size() (float64, float64) { return s.w, s.h }

// Resize implements renderer.Surface.
func (s *Surface) Resize(w, h float64) {
	s.w, s.h = w, h
	s.cols, s.rows = int(w)/CellWidth, int(h)/CellHeight
	n := s.cols * s.rows
	if cap(s.bg) < n {
		s.bg = make([]color.NRGBA, n)
		s.fg = make([]color.NRGBA, n)
		s.glyph = make([]rune, n)
	}
	s.bg, s.fg, s.glyph = s.bg[:n], s.fg[:n], s.glyph[:n]
	s.Clear()
}

// Clear implements renderer.Surface.
func (s *Surface) Clear() {
	bg := s.background()
	for i := range s.bg {
		s.bg[i] = bg
		s.fg[i] = bg
		s.glyph[i] = ' '
	}
}

func (s *Surface) cell(x, y float64) (int, bool) {
	if x < 0 || y < 0 {
		return 0, false
	}
	cx, cy := int(x)/CellWidth, int(y)/CellHeight
	if cx >= s.cols || cy >= s.rows {
		return 0, false
	}
	return cy*s.cols + cx, true
}

// FillCircle implements renderer.Surface. A circle marks the cell its
// center falls in.
func (s *Surface) FillCircle(x, y, r float64, c color.NRGBA) {
	i, ok := s.cell(x, y)
	if !ok {
		return
	}
	s.glyph[i] = '·'
	if r >= 1.5 {
		s.glyph[i] = '•'
	}
	s.fg[i] = renderer.Blend(s.bg[i], c)
}

// StrokeLine implements renderer.Surface. Lines tint cell backgrounds along
// a Bresenham walk; width is ignored.
func (s *Surface) StrokeLine(x0, y0, x1, y1, width float64, c color.NRGBA) {
	ax, ay := int(x0)/CellWidth, int(y0)/CellHeight
	bx, by := int(x1)/CellWidth, int(y1)/CellHeight

	dx, dy := abs(bx-ax), -abs(by-ay)
	sx, sy := 1, 1
	if ax > bx {
		sx = -1
	}
	if ay > by {
		sy = -1
	}
	e := dx + dy
	for {
		if ax >= 0 && ay >= 0 && ax < s.cols && ay < s.rows {
			i := ay*s.cols + ax
			s.bg[i] = renderer.Blend(s.bg[i], c)
		}
		if ax == bx && ay == by {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			ax += sx
		}
		if e2 <= dx {
			e += dx
			ay += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func toTcell(c color.NRGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// flush copies the grid to screen.
func (s *Surface) flush(screen tcell.Screen) {
	for y := 0; y < s.rows; y++ {
		for x := 0; x < s.cols; x++ {
			i := y*s.cols + x
			style := tcell.StyleDefault.Background(toTcell(s.bg[i])).Foreground(toTcell(s.fg[i]))
			screen.SetContent(x, y, s.glyph[i], nil, style)
		}
	}
}

// Host implements engine.Host on a tcell screen.
type Host struct {
	host.Events
	host.Scheduler

	screen   tcell.Screen
	surface  *Surface
	touching bool
}

// New wraps an initialized screen.
func New(screen tcell.Screen, bg Background) *Host {
	return &Host{screen: screen, surface: newSurface(bg)}
}

// Context2D implements engine.Canvas.
func (h *Host) Context2D() (renderer.Surface, error) {
	return h.surface, nil
}

// ViewportSize implements engine.Viewport.
func (h *Host) ViewportSize() (w, ht float64) {
	cols, rows := h.screen.Size()
	return float64(cols * CellWidth), float64(rows * CellHeight)
}

// HandleEvent translates a tcell event into engine events. Holding the
// primary button counts as a touch; releasing it ends the touch.
func (h *Host) HandleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		h.screen.Sync()
		cols, rows := ev.Size()
		slog.Debug("terminal resized", "cols", cols, "rows", rows)
		h.EmitResize()

	case *tcell.EventMouse:
		cx, cy := ev.Position()
		x := float64(cx*CellWidth + CellWidth/2)
		y := float64(cy*CellHeight + CellHeight/2)
		if ev.Buttons()&tcell.Button1 != 0 {
			h.touching = true
			h.EmitTouchMove(x, y)
			return
		}
		if h.touching {
			h.touching = false
			h.EmitTouchEnd()
		}
		h.EmitPointerMove(x, y)
	}
}

// Frame runs queued frame callbacks, then the overlay, and shows the result.
// The grid is cleared to the background when no callback ran.
func (h *Host) Frame(overlay func(screen tcell.Screen)) int {
	n := h.RunFrame()
	if n == 0 {
		h.surface.Clear()
	}
	h.surface.flush(h.screen)
	if overlay != nil {
		overlay(h.screen)
	}
	h.screen.Show()
	return n
}

// DrawText writes s starting at cell (x, y).
func DrawText(screen tcell.Screen, x, y int, s string, style tcell.Style) {
	for _, r := range s {
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// PollEvents reads screen events on a goroutine and delivers them on the
// returned channel. The channel is closed when the screen is finalized or
// done is closed.
func PollEvents(screen tcell.Screen, done <-chan struct{}) <-chan tcell.Event {
	events := make(chan tcell.Event, 100)
	go func() {
		defer close(events)
		for {
			// PollEvent returns nil once the screen is finalized.
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()
	return events
}
