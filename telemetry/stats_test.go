package telemetry

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeDistribution(t *testing.T) {
	values := []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	mean, std, p10, p50, p90 := ComputeDistribution(values)

	if math.Abs(mean-5.5) > 0.001 {
		t.Errorf("mean = %v, want 5.5", mean)
	}
	// Sample standard deviation of 1..10
	if math.Abs(std-3.0277) > 0.001 {
		t.Errorf("std = %v, want ~3.0277", std)
	}
	if math.Abs(p10-1.9) > 0.01 {
		t.Errorf("p10 = %v, want ~1.9", p10)
	}
	if math.Abs(p50-5.5) > 0.01 {
		t.Errorf("p50 = %v, want ~5.5", p50)
	}
	if math.Abs(p90-9.1) > 0.01 {
		t.Errorf("p90 = %v, want ~9.1", p90)
	}

	// Input is not reordered
	if values[0] != 10 {
		t.Errorf("ComputeDistribution sorted its input: %v", values)
	}
}

func TestComputeDistributionEdgeCases(t *testing.T) {
	mean, std, p10, p50, p90 := ComputeDistribution(nil)
	if mean != 0 || std != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}

	mean, std, _, p50, _ = ComputeDistribution([]float64{4})
	if mean != 4 || std != 0 || p50 != 4 {
		t.Errorf("single value: mean=%v std=%v p50=%v, want 4, 0, 4", mean, std, p50)
	}
}

func TestCollectorWindows(t *testing.T) {
	c := NewCollector(4)

	for f := uint64(1); f <= 10; f++ {
		c.ObserveFrame(FrameSample{
			Frame:      f,
			Particles:  80,
			Edges:      int(f),
			PairChecks: 3160,
			Pointer:    f%2 == 0,
		})
	}

	windows := c.Drain()
	if len(windows) != 2 {
		t.Fatalf("got %d complete windows, want 2", len(windows))
	}

	w := windows[0]
	if w.WindowStart != 1 || w.WindowEnd != 4 || w.Frames != 4 {
		t.Errorf("first window = [%d, %d] x%d, want [1, 4] x4", w.WindowStart, w.WindowEnd, w.Frames)
	}
	if w.EdgesMean != 2.5 {
		t.Errorf("EdgesMean = %v, want 2.5", w.EdgesMean)
	}
	if w.PairChecksMean != 3160 {
		t.Errorf("PairChecksMean = %v, want 3160", w.PairChecksMean)
	}
	if w.PointerFrac != 0.5 {
		t.Errorf("PointerFrac = %v, want 0.5", w.PointerFrac)
	}

	if got := c.Drain(); len(got) != 0 {
		t.Errorf("second Drain returned %d windows, want 0", len(got))
	}

	// Frames 9 and 10 remain in the partial window
	c.Flush()
	rest := c.Drain()
	if len(rest) != 1 || rest[0].Frames != 2 || rest[0].WindowStart != 9 {
		t.Errorf("flushed window = %+v, want 2 frames from 9", rest)
	}

	c.Flush()
	if got := c.Drain(); len(got) != 0 {
		t.Errorf("Flush on empty window produced %d windows", len(got))
	}
}
