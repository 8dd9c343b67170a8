package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/constellation/config"
)

// ForceModel computes pointer repulsion. Force falls off linearly from 1 at
// the pointer to 0 at the influence radius.
type ForceModel struct {
	Epsilon  float64 // Distances below this are floored to it
	Strength float64 // Displacement scale per unit of force*reactivity
}

// NewForceModel builds a force model from pointer config.
func NewForceModel(cfg config.PointerConfig) ForceModel {
	return ForceModel{Epsilon: cfg.Epsilon, Strength: cfg.Strength}
}

// Force returns the repulsion force at distance d for the given influence radius.
// The result is in [0, 1).
func (m ForceModel) Force(d, radius float64) float64 {
	d = math.Max(d, m.Epsilon)
	return math.Max((radius-d)/radius, 0)
}

// Displacement returns how far a particle at pos with the given reactivity
// is pushed away from the pointer this frame.
func (m ForceModel) Displacement(pos r2.Vec, reactivity float64, ptr PointerState) r2.Vec {
	if !ptr.Active {
		return r2.Vec{}
	}

	away := r2.Sub(pos, ptr.Pos)
	d := math.Max(r2.Norm(away), m.Epsilon)
	force := m.Force(d, ptr.InfluenceRadius)
	if force == 0 {
		return r2.Vec{}
	}

	// away/d is the unit vector (shorter when d was floored)
	return r2.Scale(force*reactivity*m.Strength/d, away)
}
