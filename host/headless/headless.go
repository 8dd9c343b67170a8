// Package headless is an in-memory host: a recording surface, a settable
// viewport and a manually stepped frame scheduler. It backs the -headless
// run mode and the engine tests.
package headless

import (
	"errors"

	"github.com/pthm-cable/constellation/host"
	"github.com/pthm-cable/constellation/renderer"
)

// ErrNoContext is returned by Context2D when the host was built WithoutContext.
var ErrNoContext = errors.New("headless: 2d context unavailable")

// Host implements engine.Host without a window.
type Host struct {
	host.Events
	host.Scheduler

	Surface *renderer.Recorder

	width, height float64
	noContext     bool
}

// Option configures a Host.
type Option func(*Host)

// WithoutContext makes Context2D fail, like a canvas with no 2D support.
func WithoutContext() Option {
	return func(h *Host) { h.noContext = true }
}

// New creates a host with a w x h viewport.
func New(w, h float64, opts ...Option) *Host {
	hh := &Host{
		Surface: renderer.NewRecorder(w, h),
		width:   w,
		height:  h,
	}
	for _, opt := range opts {
		opt(hh)
	}
	return hh
}

// Context2D implements engine.Canvas.
func (h *Host) Context2D() (renderer.Surface, error) {
	if h.noContext {
		return nil, ErrNoContext
	}
	return h.Surface, nil
}

// ViewportSize implements engine.Viewport.
func (h *Host) ViewportSize() (w, ht float64) {
	return h.width, h.height
}

// Tick runs one display refresh and reports how many frame callbacks ran.
func (h *Host) Tick() int {
	return h.RunFrame()
}

// MovePointer simulates a mouse move.
func (h *Host) MovePointer(x, y float64) {
	h.EmitPointerMove(x, y)
}

// TouchMove simulates a touch move and reports whether scrolling was suppressed.
func (h *Host) TouchMove(x, y float64) bool {
	return h.EmitTouchMove(x, y)
}

// TouchEnd simulates lifting the last finger.
func (h *Host) TouchEnd() {
	h.EmitTouchEnd()
}

// ResizeViewport changes the viewport size and fires the resize event.
func (h *Host) ResizeViewport(w, ht float64) {
	h.width, h.height = w, ht
	h.EmitResize()
}
