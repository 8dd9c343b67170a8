package engine_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/pthm-cable/constellation/config"
	"github.com/pthm-cable/constellation/engine"
	"github.com/pthm-cable/constellation/host/headless"
	"github.com/pthm-cable/constellation/systems"
	"github.com/pthm-cable/constellation/telemetry"
	"github.com/pthm-cable/constellation/theme"
)

func newLoop(t *testing.T, mutate func(*config.Config), opts ...engine.Option) (*engine.Loop, *theme.Themes) {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	th, err := theme.New(cfg.Theme.Palettes, cfg.Theme.Initial)
	if err != nil {
		t.Fatal(err)
	}
	opts = append([]engine.Option{engine.WithRand(rand.New(rand.NewSource(7)))}, opts...)
	return engine.New(cfg, th, opts...), th
}

func TestStartStop(t *testing.T) {
	l, _ := newLoop(t, nil)
	h := headless.New(1000, 800)

	if err := l.Start(h); err != nil {
		t.Fatal(err)
	}
	if l.State() != engine.Running {
		t.Fatalf("State() = %v, want running", l.State())
	}
	if l.Field().Len() != 80 {
		t.Errorf("particles = %d, want 80", l.Field().Len())
	}
	if h.ListenerCount() != 4 {
		t.Errorf("listeners = %d, want 4", h.ListenerCount())
	}
	if h.Pending() != 1 {
		t.Errorf("pending frames = %d, want 1", h.Pending())
	}

	if err := l.Start(h); !errors.Is(err, engine.ErrRunning) {
		t.Errorf("second Start = %v, want ErrRunning", err)
	}

	l.Stop()
	if l.State() != engine.Stopped {
		t.Errorf("State() = %v, want stopped", l.State())
	}
	if h.ListenerCount() != 0 {
		t.Errorf("listeners after Stop = %d, want 0", h.ListenerCount())
	}
	if h.Pending() != 0 {
		t.Errorf("pending frames after Stop = %d, want 0", h.Pending())
	}

	// Stop is idempotent
	l.Stop()
}

func TestStartWithoutContext(t *testing.T) {
	l, _ := newLoop(t, nil)
	h := headless.New(1000, 800, headless.WithoutContext())

	err := l.Start(h)
	if !errors.Is(err, engine.ErrNoSurface) {
		t.Fatalf("Start = %v, want ErrNoSurface", err)
	}
	if !errors.Is(err, headless.ErrNoContext) {
		t.Errorf("Start = %v, want wrapped host error", err)
	}
	if l.State() != engine.Stopped || h.ListenerCount() != 0 || h.Pending() != 0 {
		t.Error("failed Start left the loop partially started")
	}
}

func TestFrameOrder(t *testing.T) {
	l, _ := newLoop(t, nil)
	h := headless.New(300, 300)
	if err := l.Start(h); err != nil {
		t.Fatal(err)
	}
	defer l.Stop()

	if ran := h.Tick(); ran != 1 {
		t.Fatalf("Tick ran %d callbacks, want 1", ran)
	}
	rec := h.Surface
	if rec.Clears != 1 {
		t.Errorf("Clears = %d, want 1", rec.Clears)
	}
	if len(rec.Circles) != 9 {
		t.Errorf("circles = %d, want 9", len(rec.Circles))
	}
	if h.Pending() != 1 {
		t.Errorf("next frame not requested")
	}

	for i := 0; i < 9; i++ {
		h.Tick()
	}
	if l.Frames() != 10 || rec.Clears != 10 {
		t.Errorf("frames = %d, clears = %d; want 10", l.Frames(), rec.Clears)
	}
	// Each frame shows only its own draw calls
	if len(rec.Circles) != 9 {
		t.Errorf("circles after 10 frames = %d, want 9", len(rec.Circles))
	}
}

func TestNoDrawAfterStop(t *testing.T) {
	l, _ := newLoop(t, nil)
	h := headless.New(1000, 800)
	if err := l.Start(h); err != nil {
		t.Fatal(err)
	}
	h.Tick()
	l.Stop()

	before := snapshot(l.Field().Particles())
	calls := h.Surface.Calls()

	for i := 0; i < 5; i++ {
		h.Tick()
	}
	h.MovePointer(10, 10)
	h.ResizeViewport(200, 200)

	if got := snapshot(l.Field().Particles()); !equalPositions(got, before) {
		t.Error("particles moved after Stop")
	}
	if h.Surface.Calls() != calls {
		t.Errorf("draw calls after Stop: %d -> %d", calls, h.Surface.Calls())
	}
	if l.Context().Pointer().Active {
		t.Error("pointer set after Stop")
	}
}

func TestStaleFrameDropped(t *testing.T) {
	l, _ := newLoop(t, nil)
	h := headless.New(400, 400)
	if err := l.Start(h); err != nil {
		t.Fatal(err)
	}

	// Stop then restart within the same refresh: only the new loop's frame runs
	l.Stop()
	if err := l.Start(h); err != nil {
		t.Fatal(err)
	}
	h.Tick()
	if l.Frames() != 1 {
		t.Errorf("frames = %d, want 1", l.Frames())
	}
	if h.ListenerCount() != 4 {
		t.Errorf("listeners after restart = %d, want 4", h.ListenerCount())
	}
	l.Stop()
}

func TestPointerEvents(t *testing.T) {
	l, _ := newLoop(t, nil)
	h := headless.New(400, 400)
	if err := l.Start(h); err != nil {
		t.Fatal(err)
	}
	defer l.Stop()

	h.MovePointer(120, 80)
	ptr := l.Context().Pointer()
	if !ptr.Active || ptr.Pos.X != 120 || ptr.Pos.Y != 80 {
		t.Errorf("pointer = %+v after move", ptr)
	}
	if ptr.InfluenceRadius != 80 {
		t.Errorf("InfluenceRadius = %v, want 80", ptr.InfluenceRadius)
	}

	if !h.TouchMove(10, 20) {
		t.Error("touch move did not suppress scrolling")
	}
	if p := l.Context().Pointer(); p.Pos.X != 10 || p.Pos.Y != 20 {
		t.Errorf("pointer = %+v after touch", p)
	}

	h.TouchEnd()
	if l.Context().Pointer().Active {
		t.Error("pointer still active after touch end")
	}
}

func TestPointerRepelsDuringFrame(t *testing.T) {
	l, _ := newLoop(t, nil)
	h := headless.New(400, 400)
	if err := l.Start(h); err != nil {
		t.Fatal(err)
	}
	defer l.Stop()

	// Pick a particle clear of the wrap margin
	idx := -1
	for i, p := range l.Field().Particles() {
		if p.Pos.X > 50 && p.Pos.X < 350 {
			idx = i
			break
		}
	}
	if idx < 0 {
		t.Fatal("no particle away from the edges")
	}
	p := l.Field().Particles()[idx]
	h.MovePointer(p.Pos.X+1, p.Pos.Y)
	h.Tick()

	// Repulsion of at least 0.49 beats drift of at most 0.25
	moved := l.Field().Particles()[idx].Pos.X - p.Pos.X
	if moved >= 0 {
		t.Errorf("particle moved %v along x, want repelled to the left", moved)
	}
}

func TestResizeReinitializes(t *testing.T) {
	l, _ := newLoop(t, nil)
	h := headless.New(1000, 800)
	if err := l.Start(h); err != nil {
		t.Fatal(err)
	}
	defer l.Stop()

	h.ResizeViewport(500, 400)
	if l.Field().Len() != 20 {
		t.Errorf("particles after resize = %d, want 20", l.Field().Len())
	}
	if b := l.Bounds(); b != (systems.Bounds{Width: 500, Height: 400}) {
		t.Errorf("Bounds() = %v", b)
	}
	if w, ht := h.Surface.Size(); w != 500 || ht != 400 {
		t.Errorf("surface = %vx%v, want 500x400", w, ht)
	}
}

func TestResizeCoalesced(t *testing.T) {
	l, _ := newLoop(t, func(c *config.Config) { c.Field.CoalesceResize = true })
	h := headless.New(1000, 800)
	if err := l.Start(h); err != nil {
		t.Fatal(err)
	}
	defer l.Stop()

	h.ResizeViewport(500, 400)
	h.ResizeViewport(600, 500)
	if l.Field().Len() != 80 {
		t.Errorf("field changed before the next frame: %d particles", l.Field().Len())
	}

	h.Tick()
	if l.Field().Len() != 30 {
		t.Errorf("particles after coalesced resize = %d, want 30", l.Field().Len())
	}
}

func TestMouseLeaveKeepsPointer(t *testing.T) {
	l, _ := newLoop(t, nil)
	h := headless.New(400, 400)
	if err := l.Start(h); err != nil {
		t.Fatal(err)
	}
	defer l.Stop()

	// There is no leave event; the last mouse position keeps repelling
	h.MovePointer(50, 50)
	for i := 0; i < 3; i++ {
		h.Tick()
	}
	if !l.Context().Pointer().Active {
		t.Error("pointer cleared without a touch end")
	}
}

func TestRestartClearsPointer(t *testing.T) {
	l, _ := newLoop(t, nil)
	h := headless.New(400, 400)
	if err := l.Start(h); err != nil {
		t.Fatal(err)
	}
	h.MovePointer(50, 50)
	l.Stop()
	if err := l.Start(h); err != nil {
		t.Fatal(err)
	}
	defer l.Stop()
	if l.Context().Pointer().Active {
		t.Error("pointer survived restart")
	}
}

func TestThemeSwitchNextFrame(t *testing.T) {
	l, th := newLoop(t, nil)
	h := headless.New(300, 300)
	if err := l.Start(h); err != nil {
		t.Fatal(err)
	}
	defer l.Stop()

	h.Tick()
	light := h.Surface.Circles[0].Color
	th.Toggle()
	h.Tick()
	if h.Surface.Circles[0].Color == light {
		t.Error("circle color unchanged after theme toggle")
	}
}

type countingTimer struct {
	ticks  int
	phases []string
}

func (c *countingTimer) StartTick() {
	c.ticks++
	c.phases = c.phases[:0]
}

func (c *countingTimer) StartPhase(p string) { c.phases = append(c.phases, p) }

func (c *countingTimer) EndTick() {}

func TestTelemetryHooks(t *testing.T) {
	timer := &countingTimer{}
	collector := telemetry.NewCollector(5)
	l, _ := newLoop(t, nil, engine.WithPhaseTimer(timer), engine.WithObserver(collector))
	h := headless.New(1000, 800)
	if err := l.Start(h); err != nil {
		t.Fatal(err)
	}
	defer l.Stop()

	for i := 0; i < 5; i++ {
		h.Tick()
	}

	if timer.ticks != 5 {
		t.Errorf("timer ticks = %d, want 5", timer.ticks)
	}
	want := telemetry.Phases
	if len(timer.phases) != len(want) {
		t.Fatalf("phases = %v, want %v", timer.phases, want)
	}
	for i := range want {
		if timer.phases[i] != want[i] {
			t.Errorf("phase %d = %q, want %q", i, timer.phases[i], want[i])
		}
	}

	windows := collector.Drain()
	if len(windows) != 1 {
		t.Fatalf("windows = %d, want 1", len(windows))
	}
	if windows[0].Particles != 80 || windows[0].PairChecksMean != 80*79/2 {
		t.Errorf("window = %+v", windows[0])
	}
}

func snapshot(ps []systems.Particle) []systems.Particle {
	return append([]systems.Particle(nil), ps...)
}

func equalPositions(a, b []systems.Particle) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Pos != b[i].Pos {
			return false
		}
	}
	return true
}

func TestWithLinkerGridMatchesBrute(t *testing.T) {
	brute, _ := newLoop(t, nil)
	grid, _ := newLoop(t, nil, engine.WithLinker(&systems.GridLinker{
		ProximityLinker: systems.ProximityLinker{Distance: 70, MaxOpacity: 0.5},
	}))
	hb, hg := headless.New(1000, 800), headless.New(1000, 800)
	if err := brute.Start(hb); err != nil {
		t.Fatal(err)
	}
	if err := grid.Start(hg); err != nil {
		t.Fatal(err)
	}
	defer brute.Stop()
	defer grid.Stop()

	for i := 0; i < 30; i++ {
		hb.Tick()
		hg.Tick()
		if brute.Edges() != grid.Edges() {
			t.Fatalf("frame %d: brute %d edges, grid %d", i, brute.Edges(), grid.Edges())
		}
	}
	if hb.Surface.TotalLines != hg.Surface.TotalLines {
		t.Errorf("lines drawn: brute %d, grid %d", hb.Surface.TotalLines, hg.Surface.TotalLines)
	}
}

// stopObserver stops the loop from inside the frame it observes.
type stopObserver struct {
	l      *engine.Loop
	frames int
}

func (o *stopObserver) ObserveFrame(telemetry.FrameSample) {
	o.frames++
	o.l.Stop()
}

func TestObserverStopsLoop(t *testing.T) {
	obs := &stopObserver{}
	l, _ := newLoop(t, nil, engine.WithObserver(obs))
	obs.l = l
	h := headless.New(400, 300)
	if err := l.Start(h); err != nil {
		t.Fatal(err)
	}

	if n := h.Tick(); n != 1 {
		t.Fatalf("Tick ran %d frames, want 1", n)
	}
	if l.State() != engine.Stopped {
		t.Errorf("State() = %v, want stopped", l.State())
	}
	if h.Pending() != 0 || h.ListenerCount() != 0 {
		t.Errorf("host left with %d frames, %d listeners", h.Pending(), h.ListenerCount())
	}
	h.Tick()
	if obs.frames != 1 || l.Frames() != 1 {
		t.Errorf("observed %d frames, loop ran %d; want 1", obs.frames, l.Frames())
	}
}
