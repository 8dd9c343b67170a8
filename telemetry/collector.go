package telemetry

// Collector accumulates frame samples and produces WindowStats every
// windowFrames frames.
type Collector struct {
	windowFrames int
	windowStart  uint64

	edges       []float64
	checksSum   float64
	pointerHits int
	last        FrameSample

	// completed windows not yet drained
	ready []WindowStats
}

// NewCollector creates a collector with the given window length in frames.
func NewCollector(windowFrames int) *Collector {
	if windowFrames < 1 {
		windowFrames = 1
	}
	return &Collector{
		windowFrames: windowFrames,
		edges:        make([]float64, 0, windowFrames),
	}
}

// ObserveFrame records one frame. It satisfies engine.FrameObserver.
func (c *Collector) ObserveFrame(s FrameSample) {
	if len(c.edges) == 0 {
		c.windowStart = s.Frame
	}
	c.edges = append(c.edges, float64(s.Edges))
	c.checksSum += float64(s.PairChecks)
	if s.Pointer {
		c.pointerHits++
	}
	c.last = s

	if len(c.edges) >= c.windowFrames {
		c.ready = append(c.ready, c.flush())
	}
}

// Flush closes the current partial window, if it has any frames.
func (c *Collector) Flush() {
	if len(c.edges) > 0 {
		c.ready = append(c.ready, c.flush())
	}
}

// Drain returns completed windows and forgets them.
func (c *Collector) Drain() []WindowStats {
	out := c.ready
	c.ready = nil
	return out
}

func (c *Collector) flush() WindowStats {
	n := len(c.edges)
	mean, std, p10, p50, p90 := ComputeDistribution(c.edges)
	w := WindowStats{
		WindowStart:    c.windowStart,
		WindowEnd:      c.last.Frame,
		Frames:         n,
		Particles:      c.last.Particles,
		EdgesMean:      mean,
		EdgesStd:       std,
		EdgesP10:       p10,
		EdgesP50:       p50,
		EdgesP90:       p90,
		PairChecksMean: c.checksSum / float64(n),
		PointerFrac:    float64(c.pointerHits) / float64(n),
	}

	c.edges = c.edges[:0]
	c.checksSum = 0
	c.pointerHits = 0
	return w
}
