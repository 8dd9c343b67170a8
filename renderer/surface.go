// Package renderer defines the drawing surface the engine paints on and
// helpers for the themed colors it paints with.
package renderer

import "image/color"

// Surface is a 2D paint context addressable in pixel units.
// Platform adapters implement it; the engine never touches a window directly.
type Surface interface {
	// Size returns the current pixel dimensions.
	Size() (w, h float64)
	// Resize sets the pixel dimensions, typically from the viewport.
	Resize(w, h float64)
	// Clear erases the full surface.
	Clear()
	// FillCircle paints a filled circle centered at (x, y).
	FillCircle(x, y, r float64, c color.NRGBA)
	// StrokeLine paints a line segment of the given width.
	StrokeLine(x0, y0, x1, y1, width float64, c color.NRGBA)
}
