package systems

import (
	"log/slog"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/constellation/config"
	"github.com/pthm-cable/constellation/renderer"
	"github.com/pthm-cable/constellation/theme"
)

// Field owns the particles of one simulation epoch. The sequence is replaced
// wholesale on every Initialize; its order drives the pairwise link pass.
type Field struct {
	cfg       config.FieldConfig
	force     ForceModel
	rng       *rand.Rand
	particles []Particle
}

// NewField creates an empty field. Call Initialize before use.
func NewField(cfg config.FieldConfig, force ForceModel, rng *rand.Rand) *Field {
	return &Field{
		cfg:       cfg,
		force:     force,
		rng:       rng,
		particles: make([]Particle, 0, cfg.MaxParticles),
	}
}

// ParticleCount returns the population for the given bounds:
// min(MaxParticles, floor(area/AreaPerParticle)).
func ParticleCount(cfg config.FieldConfig, b Bounds) int {
	if b.Width <= 0 || b.Height <= 0 {
		return 0
	}
	n := int(math.Floor(b.Area() / cfg.AreaPerParticle))
	return min(n, cfg.MaxParticles)
}

// Initialize discards every particle and creates a fresh batch sized for b.
func (f *Field) Initialize(b Bounds) {
	count := ParticleCount(f.cfg, b)

	f.particles = f.particles[:0]
	for i := 0; i < count; i++ {
		f.particles = append(f.particles, f.newParticle(b))
	}

	slog.Debug("field initialized", "width", b.Width, "height", b.Height, "particles", count)
}

func (f *Field) newParticle(b Bounds) Particle {
	return Particle{
		Pos: r2.Vec{
			X: f.rng.Float64() * b.Width,
			Y: f.rng.Float64() * b.Height,
		},
		Vel: r2.Vec{
			X: (f.rng.Float64()*2 - 1) * f.cfg.MaxDrift,
			Y: (f.rng.Float64()*2 - 1) * f.cfg.MaxDrift,
		},
		Radius:     f.uniform(f.cfg.MinRadius, f.cfg.MaxRadius),
		Reactivity: f.uniform(f.cfg.MinReactivity, f.cfg.MaxReactivity),
	}
}

func (f *Field) uniform(lo, hi float64) float64 {
	return lo + f.rng.Float64()*(hi-lo)
}

// Update advances every particle in sequence order.
func (f *Field) Update(ctx *SimulationContext, b Bounds) {
	ptr := ctx.Pointer()
	for i := range f.particles {
		f.particles[i].Update(f.force, ptr, b)
	}
}

// Draw paints every particle in sequence order and returns how many were drawn.
// The particle color is resolved from the theme on every call.
func (f *Field) Draw(s renderer.Surface, ctx *SimulationContext) int {
	if len(f.particles) == 0 {
		return 0
	}
	c, err := ctx.Color(theme.PropParticleColor)
	if err != nil {
		slog.Debug("skipping particle draw", "error", err)
		return 0
	}
	for i := range f.particles {
		f.particles[i].Draw(s, c)
	}
	return len(f.particles)
}

// Particles returns the current sequence. Callers must not retain it across
// Initialize.
func (f *Field) Particles() []Particle {
	return f.particles
}

// Len returns the number of particles.
func (f *Field) Len() int {
	return len(f.particles)
}
