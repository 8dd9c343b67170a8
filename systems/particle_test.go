package systems

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/constellation/config"
)

func testForce() ForceModel {
	return NewForceModel(config.PointerConfig{InfluenceRadius: 80, Epsilon: 0.1, Strength: 0.1})
}

func TestForceFalloff(t *testing.T) {
	m := testForce()
	tests := []struct {
		d    float64
		want float64
	}{
		{0, (80 - 0.1) / 80},
		{0.05, (80 - 0.1) / 80},
		{20, 0.75},
		{40, 0.5},
		{79, 1.0 / 80},
		{80, 0},
		{100, 0},
	}
	for _, tt := range tests {
		got := m.Force(tt.d, 80)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Force(%v) = %v, want %v", tt.d, got, tt.want)
		}
	}
}

func TestDisplacement(t *testing.T) {
	m := testForce()
	ptr := PointerState{Pos: r2.Vec{X: 100, Y: 100}, Active: true, InfluenceRadius: 80}

	t.Run("pushes away from pointer", func(t *testing.T) {
		// d = 40, force = 0.5, magnitude = 0.5 * 10 * 0.1
		got := m.Displacement(r2.Vec{X: 140, Y: 100}, 10, ptr)
		if math.Abs(got.X-0.5) > 1e-12 || got.Y != 0 {
			t.Errorf("Displacement = %v, want {0.5 0}", got)
		}
	})

	t.Run("zero at influence radius", func(t *testing.T) {
		got := m.Displacement(r2.Vec{X: 100, Y: 180}, 25, ptr)
		if got != (r2.Vec{}) {
			t.Errorf("Displacement = %v, want zero", got)
		}
	})

	t.Run("inactive pointer", func(t *testing.T) {
		inactive := ptr
		inactive.Active = false
		got := m.Displacement(r2.Vec{X: 110, Y: 100}, 25, inactive)
		if got != (r2.Vec{}) {
			t.Errorf("Displacement = %v, want zero", got)
		}
	})

	t.Run("finite on top of pointer", func(t *testing.T) {
		for _, pos := range []r2.Vec{{X: 100, Y: 100}, {X: 100.01, Y: 100}} {
			got := m.Displacement(pos, 25, ptr)
			if math.IsNaN(got.X) || math.IsNaN(got.Y) || math.IsInf(got.X, 0) || math.IsInf(got.Y, 0) {
				t.Errorf("Displacement(%v) = %v, want finite", pos, got)
			}
		}
	})
}

func TestParticleDriftOnly(t *testing.T) {
	p := Particle{
		Pos:        r2.Vec{X: 50, Y: 50},
		Vel:        r2.Vec{X: 0.2, Y: -0.1},
		Radius:     3,
		Reactivity: 20,
	}
	b := Bounds{Width: 200, Height: 200}

	for i := 0; i < 10; i++ {
		p.Update(testForce(), PointerState{}, b)
	}

	if math.Abs(p.Pos.X-52) > 1e-9 || math.Abs(p.Pos.Y-49) > 1e-9 {
		t.Errorf("Pos = %v, want {52 49}", p.Pos)
	}
}

func TestParticleRepelledThenDrifts(t *testing.T) {
	p := Particle{Pos: r2.Vec{X: 140, Y: 100}, Vel: r2.Vec{X: 0.1}, Radius: 2, Reactivity: 10}
	ptr := PointerState{Pos: r2.Vec{X: 100, Y: 100}, Active: true, InfluenceRadius: 80}

	p.Update(testForce(), ptr, Bounds{Width: 400, Height: 400})

	// 0.5 repulsion + 0.1 drift
	if math.Abs(p.Pos.X-140.6) > 1e-9 || p.Pos.Y != 100 {
		t.Errorf("Pos = %v, want {140.6 100}", p.Pos)
	}
}

func TestParticleWrap(t *testing.T) {
	b := Bounds{Width: 100, Height: 50}
	tests := []struct {
		name string
		pos  r2.Vec
		vel  r2.Vec
		want r2.Vec
	}{
		{"left edge", r2.Vec{X: -2, Y: 10}, r2.Vec{X: -0.25}, r2.Vec{X: 102, Y: 10}},
		{"right edge", r2.Vec{X: 102, Y: 10}, r2.Vec{X: 0.25}, r2.Vec{X: -2, Y: 10}},
		{"top edge", r2.Vec{X: 10, Y: -2}, r2.Vec{Y: -0.25}, r2.Vec{X: 10, Y: 52}},
		{"bottom edge", r2.Vec{X: 10, Y: 52}, r2.Vec{Y: 0.25}, r2.Vec{X: 10, Y: -2}},
		{"inside margin", r2.Vec{X: -1.9, Y: 51.9}, r2.Vec{}, r2.Vec{X: -1.9, Y: 51.9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Particle{Pos: tt.pos, Vel: tt.vel, Radius: 2}
			p.Update(testForce(), PointerState{}, b)
			if math.Abs(p.Pos.X-tt.want.X) > 1e-9 || math.Abs(p.Pos.Y-tt.want.Y) > 1e-9 {
				t.Errorf("Pos = %v, want %v", p.Pos, tt.want)
			}
		})
	}
}
