package engine

import "github.com/pthm-cable/constellation/renderer"

// FrameID identifies a pending frame request.
type FrameID uint64

// Canvas hands out the 2D drawing context.
type Canvas interface {
	Context2D() (renderer.Surface, error)
}

// Viewport reports the visible area the canvas is sized to.
type Viewport interface {
	ViewportSize() (w, h float64)
	OnResize(fn func()) (unsubscribe func())
}

// PointerSource delivers pointer and touch input in surface pixels.
type PointerSource interface {
	OnPointerMove(fn func(x, y float64)) (unsubscribe func())
	// OnTouchMove handlers return true to suppress the host's default
	// touch behavior (scrolling).
	OnTouchMove(fn func(x, y float64) bool) (unsubscribe func())
	OnTouchEnd(fn func()) (unsubscribe func())
}

// FrameScheduler runs a callback once on the next display refresh.
// Callbacks run one at a time on the host's loop; none overlap.
type FrameScheduler interface {
	RequestFrame(fn func()) FrameID
	CancelFrame(id FrameID)
}

// Host is everything the render loop needs from its platform.
type Host interface {
	Canvas
	Viewport
	PointerSource
	FrameScheduler
}
