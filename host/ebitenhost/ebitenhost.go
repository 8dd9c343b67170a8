// Package ebitenhost runs the engine inside an ebiten game loop.
package ebitenhost

import (
	"image/color"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/pthm-cable/constellation/host"
	"github.com/pthm-cable/constellation/renderer"
)

// Background supplies the clear color.
type Background func() color.NRGBA

// Surface paints onto the screen image handed to Draw. Calls outside Draw
// are dropped.
type Surface struct {
	target     *ebiten.Image
	w, h       float64
	background Background
}

// Size implements renderer.Surface.
func (s *Surface) Size() (float64, float64) { return s.w, s.h }

// Resize implements renderer.Surface. Layout owns the screen size.
func (s *Surface) Resize(w, h float64) { s.w, s.h = w, h }

// Clear implements renderer.Surface.
func (s *Surface) Clear() {
	if s.target == nil {
		return
	}
	s.target.Fill(s.background())
}

// FillCircle implements renderer.Surface.
func (s *Surface) FillCircle(x, y, r float64, c color.NRGBA) {
	if s.target == nil {
		return
	}
	vector.DrawFilledCircle(s.target, float32(x), float32(y), float32(r), c, true)
}

// StrokeLine implements renderer.Surface.
func (s *Surface) StrokeLine(x0, y0, x1, y1, width float64, c color.NRGBA) {
	if s.target == nil {
		return
	}
	vector.StrokeLine(s.target, float32(x0), float32(y0), float32(x1), float32(y1), float32(width), c, true)
}

// Host implements engine.Host for ebiten. Call Poll from Update, Draw from
// Draw and Layout from Layout.
type Host struct {
	host.Events
	host.Scheduler

	surface *Surface
	width   int
	height  int

	cursorX, cursorY int
	touches          []ebiten.TouchID
	released         []ebiten.TouchID
}

// New creates a host with the window's initial logical size.
func New(w, h int, bg Background) *Host {
	return &Host{
		surface: &Surface{background: bg},
		width:   w,
		height:  h,
		cursorX: -1,
		cursorY: -1,
	}
}

// Context2D implements engine.Canvas.
func (h *Host) Context2D() (renderer.Surface, error) {
	return h.surface, nil
}

// ViewportSize implements engine.Viewport.
func (h *Host) ViewportSize() (w, ht float64) {
	return float64(h.width), float64(h.height)
}

// Poll translates this tick's input into engine events. A touch takes
// precedence over the cursor while any finger is down.
func (h *Host) Poll() {
	h.touches = ebiten.AppendTouchIDs(h.touches[:0])
	if len(h.touches) > 0 {
		x, y := ebiten.TouchPosition(h.touches[0])
		h.EmitTouchMove(float64(x), float64(y))
		return
	}
	h.released = inpututil.AppendJustReleasedTouchIDs(h.released[:0])
	if len(h.released) > 0 {
		h.EmitTouchEnd()
	}

	x, y := ebiten.CursorPosition()
	if x != h.cursorX || y != h.cursorY {
		h.cursorX, h.cursorY = x, y
		h.EmitPointerMove(float64(x), float64(y))
	}
}

// Draw runs queued frame callbacks against screen and returns how many ran.
// The screen is cleared to the background when none did.
func (h *Host) Draw(screen *ebiten.Image) int {
	h.surface.target = screen
	defer func() { h.surface.target = nil }()

	n := h.RunFrame()
	if n == 0 {
		h.surface.Clear()
	}
	return n
}

// Layout keeps the logical screen at the outside size and fires a resize
// event when it changes.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != h.width || outsideHeight != h.height {
		h.width, h.height = outsideWidth, outsideHeight
		slog.Debug("layout changed", "width", outsideWidth, "height", outsideHeight)
		h.EmitResize()
	}
	return h.width, h.height
}
