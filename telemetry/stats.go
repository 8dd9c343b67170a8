package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// FrameSample summarizes one completed animation frame.
type FrameSample struct {
	Frame      uint64
	Particles  int
	Edges      int
	PairChecks int
	Circles    int  // Circles drawn
	Lines      int  // Lines drawn
	Pointer    bool // Pointer repulsion active
}

// WindowStats holds aggregated statistics for a window of frames.
type WindowStats struct {
	WindowStart uint64 `csv:"-"`
	WindowEnd   uint64 `csv:"window_end"`
	Frames      int    `csv:"frames"`

	// Population at window end
	Particles int `csv:"particles"`

	// Edge distribution across the window
	EdgesMean float64 `csv:"edges_mean"`
	EdgesStd  float64 `csv:"edges_std"`
	EdgesP10  float64 `csv:"edges_p10"`
	EdgesP50  float64 `csv:"edges_p50"`
	EdgesP90  float64 `csv:"edges_p90"`

	// Pair checks per frame; equals n(n-1)/2 for brute-force linking
	PairChecksMean float64 `csv:"pair_checks_mean"`

	// Fraction of frames with an active pointer
	PointerFrac float64 `csv:"pointer_frac"`
}

// LogValue implements slog.LogValuer.
func (w WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_end", w.WindowEnd),
		slog.Int("particles", w.Particles),
		slog.Float64("edges_mean", w.EdgesMean),
		slog.Float64("edges_p90", w.EdgesP90),
		slog.Float64("pair_checks_mean", w.PairChecksMean),
		slog.Float64("pointer_frac", w.PointerFrac),
	)
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistribution returns mean, sample standard deviation and the
// 10th/50th/90th percentiles of values.
func ComputeDistribution(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	mean, std = stat.MeanStdDev(values, nil)
	if n < 2 {
		std = 0
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}
