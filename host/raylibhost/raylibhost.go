// Package raylibhost runs the engine in a raylib window.
package raylibhost

import (
	"errors"
	"image/color"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/constellation/host"
	"github.com/pthm-cable/constellation/renderer"
)

// ErrNoWindow is returned by Context2D before InitWindow.
var ErrNoWindow = errors.New("raylibhost: window not initialized")

// Background supplies the clear color. It is called on every Clear.
type Background func() color.NRGBA

// Surface draws with raylib immediate-mode calls. It must be used between
// rl.BeginDrawing and rl.EndDrawing.
type Surface struct {
	w, h       float64
	background Background
}

// Size implements renderer.Surface.
func (s *Surface) Size() (float64, float64) { return s.w, s.h }

// Resize implements renderer.Surface. The window owns the framebuffer, so
// only the logical size is recorded.
func (s *Surface) Resize(w, h float64) {
	s.w, s.h = w, h
}

// Clear implements renderer.Surface.
func (s *Surface) Clear() {
	rl.ClearBackground(toRL(s.background()))
}

// FillCircle implements renderer.Surface.
func (s *Surface) FillCircle(x, y, r float64, c color.NRGBA) {
	rl.DrawCircleV(rl.Vector2{X: float32(x), Y: float32(y)}, float32(r), toRL(c))
}

// StrokeLine implements renderer.Surface.
func (s *Surface) StrokeLine(x0, y0, x1, y1, width float64, c color.NRGBA) {
	rl.DrawLineEx(
		rl.Vector2{X: float32(x0), Y: float32(y0)},
		rl.Vector2{X: float32(x1), Y: float32(y1)},
		float32(width),
		toRL(c),
	)
}

func toRL(c color.NRGBA) rl.Color {
	return rl.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Host implements engine.Host on the current raylib window.
type Host struct {
	host.Events
	host.Scheduler

	surface  *Surface
	lastPos  rl.Vector2
	touching bool
}

// New creates a host. InitWindow must be called before the engine starts.
func New(bg Background) *Host {
	return &Host{surface: &Surface{background: bg}}
}

// Context2D implements engine.Canvas.
func (h *Host) Context2D() (renderer.Surface, error) {
	if !rl.IsWindowReady() {
		return nil, ErrNoWindow
	}
	return h.surface, nil
}

// ViewportSize implements engine.Viewport.
func (h *Host) ViewportSize() (w, ht float64) {
	return float64(rl.GetScreenWidth()), float64(rl.GetScreenHeight())
}

// Poll translates this frame's window input into engine events.
//
// On desktop raylib reports the left mouse button as touch point 0, so a
// click behaves like a touch: the pointer is cleared on release until the
// mouse moves again.
func (h *Host) Poll() {
	if rl.IsWindowResized() {
		slog.Debug("window resized", "width", rl.GetScreenWidth(), "height", rl.GetScreenHeight())
		h.EmitResize()
	}

	if rl.GetTouchPointCount() > 0 {
		p := rl.GetTouchPosition(0)
		h.touching = true
		h.lastPos = p
		h.EmitTouchMove(float64(p.X), float64(p.Y))
		return
	}
	if h.touching {
		h.touching = false
		h.EmitTouchEnd()
	}

	p := rl.GetMousePosition()
	if p != h.lastPos {
		h.lastPos = p
		h.EmitPointerMove(float64(p.X), float64(p.Y))
	}
}

// Frame runs one display refresh: input, queued frame callbacks, then
// overlay, all inside a single BeginDrawing/EndDrawing pair. When no frame
// callback ran the window is still cleared to the background.
func (h *Host) Frame(overlay func()) {
	h.Poll()

	rl.BeginDrawing()
	if h.RunFrame() == 0 {
		h.surface.Clear()
	}
	if overlay != nil {
		overlay()
	}
	rl.EndDrawing()
}
