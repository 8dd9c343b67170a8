// Package engine drives the particle field: it owns the render loop
// lifecycle, the event subscriptions and the per-frame update/draw order.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/constellation/config"
	"github.com/pthm-cable/constellation/renderer"
	"github.com/pthm-cable/constellation/systems"
	"github.com/pthm-cable/constellation/telemetry"
)

var (
	// ErrNoSurface is returned by Start when the canvas has no drawing context.
	ErrNoSurface = errors.New("engine: drawing context unavailable")
	// ErrRunning is returned by Start when the loop is already running.
	ErrRunning = errors.New("engine: already running")
)

// State is the loop lifecycle state.
type State uint8

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// PhaseTimer receives per-frame phase boundaries.
// telemetry.PerfCollector implements it.
type PhaseTimer interface {
	StartTick()
	StartPhase(name string)
	EndTick()
}

// FrameObserver receives a summary of every completed frame.
type FrameObserver interface {
	ObserveFrame(telemetry.FrameSample)
}

// Option configures a Loop.
type Option func(*Loop)

// WithRand sets the random source used to create particles.
func WithRand(rng *rand.Rand) Option {
	return func(l *Loop) { l.rng = rng }
}

// WithLinker overrides the linker chosen by config.
func WithLinker(lk systems.Linker) Option {
	return func(l *Loop) { l.linker = lk }
}

// WithPhaseTimer attaches a phase timer.
func WithPhaseTimer(pt PhaseTimer) Option {
	return func(l *Loop) { l.timer = pt }
}

// WithObserver attaches a frame observer.
func WithObserver(o FrameObserver) Option {
	return func(l *Loop) { l.observer = o }
}

// Loop is the render loop. All methods must be called from the host's loop
// goroutine; it holds no locks.
type Loop struct {
	cfg      *config.Config
	rng      *rand.Rand
	field    *systems.Field
	linker   systems.Linker
	ctx      *systems.SimulationContext
	timer    PhaseTimer
	observer FrameObserver

	state   State
	host    Host
	surface renderer.Surface
	bounds  systems.Bounds
	unsubs  []func()

	frameID       FrameID
	framePending  bool
	epoch         uint64 // bumped on Start and Stop; stale callbacks compare against it
	resizePending bool

	frame uint64
	edges []systems.Edge
}

// New creates a stopped loop. th supplies the live theme colors.
func New(cfg *config.Config, th systems.Theme, opts ...Option) *Loop {
	l := &Loop{cfg: cfg}
	for _, opt := range opts {
		opt(l)
	}
	if l.rng == nil {
		l.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if l.linker == nil {
		l.linker = systems.NewLinker(cfg.Links)
	}
	l.field = systems.NewField(cfg.Field, systems.NewForceModel(cfg.Pointer), l.rng)
	l.ctx = systems.NewSimulationContext(th, cfg.Pointer.InfluenceRadius)
	l.edges = make([]systems.Edge, 0, 256)
	return l
}

// Start acquires the drawing context, populates the field, subscribes to
// host events and requests the first frame. If the context cannot be
// acquired the loop stays stopped and the error wraps ErrNoSurface.
func (l *Loop) Start(h Host) error {
	if l.state == Running {
		return ErrRunning
	}

	s, err := h.Context2D()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoSurface, err)
	}
	if s == nil {
		return ErrNoSurface
	}

	l.host = h
	l.surface = s
	l.resizePending = false
	l.ctx.ClearPointer()
	l.fitViewport()
	l.field.Initialize(l.bounds)

	l.unsubs = append(l.unsubs[:0],
		h.OnPointerMove(l.handlePointerMove),
		h.OnTouchMove(l.handleTouchMove),
		h.OnTouchEnd(l.handleTouchEnd),
		h.OnResize(l.handleResize),
	)

	l.state = Running
	l.epoch++
	l.requestFrame()

	slog.Info("engine started",
		"width", l.bounds.Width,
		"height", l.bounds.Height,
		"particles", l.field.Len(),
	)
	return nil
}

// Stop cancels the pending frame and removes every subscription. No frame
// runs after Stop returns, even one the host had already dequeued.
func (l *Loop) Stop() {
	if l.state != Running {
		return
	}

	if l.framePending {
		l.host.CancelFrame(l.frameID)
		l.framePending = false
	}
	for _, unsub := range l.unsubs {
		unsub()
	}
	l.unsubs = l.unsubs[:0]

	l.state = Stopped
	l.epoch++
	l.host = nil
	l.surface = nil

	slog.Info("engine stopped", "frames", l.frame)
}

// State returns the lifecycle state.
func (l *Loop) State() State { return l.state }

// Field returns the particle field.
func (l *Loop) Field() *systems.Field { return l.field }

// Context returns the simulation context shared with event handlers.
func (l *Loop) Context() *systems.SimulationContext { return l.ctx }

// Bounds returns the current surface bounds.
func (l *Loop) Bounds() systems.Bounds { return l.bounds }

// Frames returns the number of frames run since creation.
func (l *Loop) Frames() uint64 { return l.frame }

// Edges returns the edges drawn by the last frame.
func (l *Loop) Edges() int { return len(l.edges) }

func (l *Loop) requestFrame() {
	epoch := l.epoch
	l.frameID = l.host.RequestFrame(func() { l.runFrame(epoch) })
	l.framePending = true
}

// runFrame executes one frame: clear, update, draw, links, request next.
func (l *Loop) runFrame(epoch uint64) {
	if l.state != Running || epoch != l.epoch {
		return
	}
	l.framePending = false

	if l.resizePending {
		l.resizePending = false
		l.reset()
	}

	if l.timer != nil {
		l.timer.StartTick()
	}

	l.phase(telemetry.PhaseClear)
	l.surface.Clear()

	l.phase(telemetry.PhaseUpdate)
	l.field.Update(l.ctx, l.bounds)

	l.phase(telemetry.PhaseDraw)
	circles := l.field.Draw(l.surface, l.ctx)

	l.phase(telemetry.PhaseLinks)
	ps := l.field.Particles()
	var checks int
	l.edges, checks = l.linker.Link(l.edges[:0], ps, l.bounds)
	lines := systems.DrawEdges(l.surface, l.ctx, ps, l.edges, l.cfg.Links.LineWidth)

	if l.timer != nil {
		l.timer.EndTick()
	}

	l.frame++
	if l.observer != nil {
		l.observer.ObserveFrame(telemetry.FrameSample{
			Frame:      l.frame,
			Particles:  len(ps),
			Edges:      len(l.edges),
			PairChecks: checks,
			Circles:    circles,
			Lines:      lines,
			Pointer:    l.ctx.Pointer().Active,
		})
		// The observer may have stopped or restarted the loop.
		if l.state != Running || epoch != l.epoch {
			return
		}
	}

	l.requestFrame()
}

func (l *Loop) phase(name string) {
	if l.timer != nil {
		l.timer.StartPhase(name)
	}
}

// fitViewport sizes the surface to the viewport and records the bounds.
func (l *Loop) fitViewport() {
	w, h := l.host.ViewportSize()
	l.surface.Resize(w, h)
	l.bounds = systems.Bounds{Width: w, Height: h}
}

// reset is the hard reset performed on resize: the old field is discarded.
func (l *Loop) reset() {
	l.fitViewport()
	l.field.Initialize(l.bounds)
	slog.Debug("field reset", "width", l.bounds.Width, "height", l.bounds.Height, "particles", l.field.Len())
}

func (l *Loop) handlePointerMove(x, y float64) {
	if l.state != Running {
		return
	}
	l.ctx.SetPointer(x, y)
}

func (l *Loop) handleTouchMove(x, y float64) bool {
	if l.state != Running {
		return false
	}
	l.ctx.SetPointer(x, y)
	return true
}

// handleTouchEnd clears the pointer. Mouse-leave has no equivalent: a mouse
// pointer keeps repelling at its last position.
func (l *Loop) handleTouchEnd() {
	if l.state != Running {
		return
	}
	l.ctx.ClearPointer()
}

func (l *Loop) handleResize() {
	if l.state != Running {
		return
	}
	if l.cfg.Field.CoalesceResize {
		l.resizePending = true
		return
	}
	l.reset()
}
