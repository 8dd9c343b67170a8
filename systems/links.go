package systems

import (
	"cmp"
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/constellation/config"
	"github.com/pthm-cable/constellation/renderer"
	"github.com/pthm-cable/constellation/theme"
)

// Edge is a proximity connection between particles A < B for one frame.
type Edge struct {
	A, B     int
	Distance float64
	Opacity  float64
}

// Linker finds the edges between particles closer than a threshold.
// Implementations append to dst in (A, B) order and report how many pairs
// they examined.
type Linker interface {
	Link(dst []Edge, ps []Particle, b Bounds) (edges []Edge, checks int)
}

// ProximityLinker compares every unordered pair. With at most 150 particles
// that is 11,175 distance checks per frame, the dominant per-frame cost.
// Use GridLinker beyond that.
type ProximityLinker struct {
	Distance   float64 // Edges exist for d < Distance
	MaxOpacity float64 // Opacity at d = 0
}

// NewLinker returns the linker selected by cfg.Strategy.
func NewLinker(cfg config.LinksConfig) Linker {
	pl := ProximityLinker{Distance: cfg.Distance, MaxOpacity: cfg.MaxOpacity}
	if cfg.Strategy == config.StrategyGrid {
		return &GridLinker{ProximityLinker: pl}
	}
	return &pl
}

// Opacity returns the edge opacity at distance d: (1 - d/Distance) * MaxOpacity.
func (l *ProximityLinker) Opacity(d float64) float64 {
	return (1 - d/l.Distance) * l.MaxOpacity
}

// edge returns the edge between a and b if they are close enough.
func (l *ProximityLinker) edge(ps []Particle, a, b int) (Edge, bool) {
	d := r2.Norm(r2.Sub(ps[a].Pos, ps[b].Pos))
	if d >= l.Distance {
		return Edge{}, false
	}
	return Edge{A: a, B: b, Distance: d, Opacity: l.Opacity(d)}, true
}

// Link implements Linker.
func (l *ProximityLinker) Link(dst []Edge, ps []Particle, _ Bounds) ([]Edge, int) {
	checks := 0
	for a := 0; a < len(ps); a++ {
		for b := a + 1; b < len(ps); b++ {
			checks++
			if e, ok := l.edge(ps, a, b); ok {
				dst = append(dst, e)
			}
		}
	}
	return dst, checks
}

// GridLinker buckets particles by floor(pos/Distance) and only compares
// particles in adjacent cells. Its edges match ProximityLinker exactly.
type GridLinker struct {
	ProximityLinker

	grid       *SpatialGrid
	candidates []int
}

// Link implements Linker.
func (l *GridLinker) Link(dst []Edge, ps []Particle, b Bounds) ([]Edge, int) {
	if l.grid == nil || !l.grid.Covers(b.Width, b.Height, l.Distance) {
		l.grid = NewSpatialGrid(b.Width, b.Height, l.Distance)
	}
	l.grid.Clear()
	for i := range ps {
		l.grid.Insert(i, ps[i].Pos.X, ps[i].Pos.Y)
	}

	start := len(dst)
	checks := 0
	for a := range ps {
		l.candidates = l.grid.Neighbors(l.candidates[:0], a)
		for _, b := range l.candidates {
			checks++
			if e, ok := l.edge(ps, a, b); ok {
				dst = append(dst, e)
			}
		}
	}

	// Cell order is not index order
	slices.SortFunc(dst[start:], func(x, y Edge) int {
		if c := cmp.Compare(x.A, y.A); c != 0 {
			return c
		}
		return cmp.Compare(x.B, y.B)
	})
	return dst, checks
}

// DrawEdges strokes every edge with the theme line color, replacing only its
// alpha with the edge opacity. The color is resolved on every call.
// Returns the number of lines drawn.
func DrawEdges(s renderer.Surface, ctx *SimulationContext, ps []Particle, edges []Edge, width float64) int {
	if len(edges) == 0 {
		return 0
	}
	base, err := ctx.Color(theme.PropLineColor)
	if err != nil {
		slog.Debug("skipping edge draw", "error", err)
		return 0
	}
	for _, e := range edges {
		a, b := ps[e.A].Pos, ps[e.B].Pos
		s.StrokeLine(a.X, a.Y, b.X, b.Y, width, renderer.WithAlpha(base, e.Opacity))
	}
	return len(edges)
}
