package systems

import (
	"image/color"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/constellation/renderer"
)

// Particle is a single drifting point.
// Vel, Radius and Reactivity are fixed at creation.
type Particle struct {
	Pos        r2.Vec
	Vel        r2.Vec  // Drift per frame
	Radius     float64 // Visual size
	Reactivity float64 // Scales pointer repulsion ("density")
}

// Update applies repulsion, then drift, then wrap-around.
func (p *Particle) Update(m ForceModel, ptr PointerState, b Bounds) {
	p.Pos = r2.Add(p.Pos, m.Displacement(p.Pos, p.Reactivity, ptr))
	p.Pos = r2.Add(p.Pos, p.Vel)
	p.Pos.X = wrap(p.Pos.X, p.Radius, b.Width)
	p.Pos.Y = wrap(p.Pos.Y, p.Radius, b.Height)
}

// Draw paints the particle as a filled circle.
func (p *Particle) Draw(s renderer.Surface, c color.NRGBA) {
	s.FillCircle(p.Pos.X, p.Pos.Y, p.Radius, c)
}

// wrap maps a coordinate that left [-r, size+r] to the opposite edge.
func wrap(v, r, size float64) float64 {
	if v < -r {
		return size + r
	}
	if v > size+r {
		return -r
	}
	return v
}
