package telemetry

import (
	"log/slog"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase names for one animation frame, in execution order.
const (
	PhaseClear  = "clear"
	PhaseUpdate = "update"
	PhaseDraw   = "draw"
	PhaseLinks  = "links"
)

// Phases lists every frame phase in execution order.
var Phases = []string{PhaseClear, PhaseUpdate, PhaseDraw, PhaseLinks}

// PerfSample holds timing data for a single frame callback.
type PerfSample struct {
	Cost   time.Duration // Time spent inside the callback
	Phases map[string]time.Duration
}

// PerfCollector tracks frame callback cost over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	frameStart    time.Time
	phaseStart    time.Time
	lastPhase     string

	// Wall time between display refreshes
	lastRefresh     time.Time
	refreshInterval time.Duration

	now func() time.Time
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of frames to aggregate over (e.g., 60 for 1 second at 60fps).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
		now:           time.Now,
	}
}

// StartTick begins timing a new frame callback.
func (p *PerfCollector) StartTick() {
	p.frameStart = p.now()
	p.currentPhases = make(map[string]time.Duration, len(Phases))
	p.lastPhase = ""
}

// StartPhase ends the running phase, if any, and starts timing the named one.
func (p *PerfCollector) StartPhase(phase string) {
	now := p.now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndTick finishes the frame callback and records the sample.
func (p *PerfCollector) EndTick() {
	now := p.now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
		p.lastPhase = ""
	}

	p.samples[p.writeIndex] = PerfSample{
		Cost:   now.Sub(p.frameStart),
		Phases: p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// RecordRefresh records a display refresh. Hosts call it once per loop
// iteration, whether or not a frame callback ran.
func (p *PerfCollector) RecordRefresh() {
	now := p.now()
	if !p.lastRefresh.IsZero() {
		p.refreshInterval = now.Sub(p.lastRefresh)
	}
	p.lastRefresh = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	Frames int

	// Callback cost
	AvgCost time.Duration
	MinCost time.Duration
	MaxCost time.Duration
	StdCost time.Duration
	P95Cost time.Duration

	// Phase breakdown (average durations and share of callback cost)
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	// Frames the engine could run per second at the average cost
	Headroom float64

	// Display refresh
	RefreshInterval time.Duration
	FPS             float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	var fps float64
	if p.refreshInterval > 0 {
		fps = float64(time.Second) / float64(p.refreshInterval)
	}

	out := PerfStats{
		Frames:          p.sampleCount,
		PhaseAvg:        make(map[string]time.Duration),
		PhasePct:        make(map[string]float64),
		RefreshInterval: p.refreshInterval,
		FPS:             fps,
	}
	if p.sampleCount == 0 {
		return out
	}

	costs := make([]float64, p.sampleCount)
	phaseSum := make(map[string]time.Duration)
	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		costs[i] = float64(s.Cost)
		for phase, d := range s.Phases {
			phaseSum[phase] += d
		}
	}

	mean, std := stat.MeanStdDev(costs, nil)
	if p.sampleCount < 2 {
		std = 0
	}
	slices.Sort(costs)
	out.AvgCost = time.Duration(mean)
	out.StdCost = time.Duration(std)
	out.MinCost = time.Duration(costs[0])
	out.MaxCost = time.Duration(costs[len(costs)-1])
	out.P95Cost = time.Duration(stat.Quantile(0.95, stat.Empirical, costs, nil))

	for phase, sum := range phaseSum {
		avg := sum / time.Duration(p.sampleCount)
		out.PhaseAvg[phase] = avg
		if out.AvgCost > 0 {
			out.PhasePct[phase] = float64(avg) / float64(out.AvgCost) * 100
		}
	}

	if out.AvgCost > 0 {
		out.Headroom = float64(time.Second) / float64(out.AvgCost)
	}
	return out
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("frames", s.Frames),
		slog.Int64("avg_cost_us", s.AvgCost.Microseconds()),
		slog.Int64("p95_cost_us", s.P95Cost.Microseconds()),
		slog.Int64("max_cost_us", s.MaxCost.Microseconds()),
		slog.Float64("headroom_fps", s.Headroom),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd   uint64  `csv:"window_end"`
	Frames      int     `csv:"frames"`
	AvgCostUS   int64   `csv:"avg_cost_us"`
	MinCostUS   int64   `csv:"min_cost_us"`
	MaxCostUS   int64   `csv:"max_cost_us"`
	StdCostUS   int64   `csv:"std_cost_us"`
	P95CostUS   int64   `csv:"p95_cost_us"`
	HeadroomFPS float64 `csv:"headroom_fps"`
	FPS         float64 `csv:"fps"`
	ClearPct    float64 `csv:"clear_pct"`
	UpdatePct   float64 `csv:"update_pct"`
	DrawPct     float64 `csv:"draw_pct"`
	LinksPct    float64 `csv:"links_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd uint64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:   windowEnd,
		Frames:      s.Frames,
		AvgCostUS:   s.AvgCost.Microseconds(),
		MinCostUS:   s.MinCost.Microseconds(),
		MaxCostUS:   s.MaxCost.Microseconds(),
		StdCostUS:   s.StdCost.Microseconds(),
		P95CostUS:   s.P95Cost.Microseconds(),
		HeadroomFPS: s.Headroom,
		FPS:         s.FPS,
		ClearPct:    s.PhasePct[PhaseClear],
		UpdatePct:   s.PhasePct[PhaseUpdate],
		DrawPct:     s.PhasePct[PhaseDraw],
		LinksPct:    s.PhasePct[PhaseLinks],
	}
}
