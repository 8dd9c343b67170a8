// Package systems implements the particle simulation: particles, the field
// that owns them, pointer repulsion and proximity linking.
package systems

import (
	"image/color"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/constellation/renderer"
)

// Theme resolves custom color properties. Lookups happen at draw time and
// are never cached, so a theme switch shows up on the next frame.
type Theme interface {
	Property(name string) string
}

// Bounds is the size of the surface the field lives on.
type Bounds struct {
	Width, Height float64
}

// Area returns Width*Height.
func (b Bounds) Area() float64 {
	return b.Width * b.Height
}

// PointerState is the pointer as seen by the simulation.
// When Active is false no repulsion is applied.
type PointerState struct {
	Pos             r2.Vec
	Active          bool
	InfluenceRadius float64
}

// SimulationContext is the mutable state shared between event handlers and
// frames. It is owned by the render loop and only changed through its setters.
type SimulationContext struct {
	pointer PointerState
	theme   Theme
}

// NewSimulationContext creates a context with an inactive pointer.
func NewSimulationContext(theme Theme, influenceRadius float64) *SimulationContext {
	return &SimulationContext{
		pointer: PointerState{InfluenceRadius: influenceRadius},
		theme:   theme,
	}
}

// SetPointer records a pointer or touch position in surface pixels.
func (c *SimulationContext) SetPointer(x, y float64) {
	c.pointer.Pos = r2.Vec{X: x, Y: y}
	c.pointer.Active = true
}

// ClearPointer disables repulsion until the next SetPointer.
func (c *SimulationContext) ClearPointer() {
	c.pointer.Pos = r2.Vec{}
	c.pointer.Active = false
}

// Pointer returns the current pointer state.
func (c *SimulationContext) Pointer() PointerState {
	return c.pointer
}

// Color resolves and parses a theme property.
func (c *SimulationContext) Color(prop string) (color.NRGBA, error) {
	return renderer.ParseColor(c.theme.Property(prop))
}
