package game

import (
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/pthm-cable/constellation/engine"
	"github.com/pthm-cable/constellation/host/headless"
)

// Orbit is a synthetic pointer for headless runs. It circles the viewport
// center with the mouse, and every Period frames switches to touch input for
// TouchFrames frames before lifting the finger.
type Orbit struct {
	Radius      float64 // Fraction of the shorter viewport side
	Speed       float64 // Radians per frame
	Period      int
	TouchFrames int
}

// DefaultOrbit returns the orbit used by -headless.
func DefaultOrbit() Orbit {
	return Orbit{Radius: 0.3, Speed: 0.02, Period: 600, TouchFrames: 120}
}

// Position returns the pointer position at frame n.
func (o Orbit) Position(n uint64, w, h float64) (x, y float64) {
	r := o.Radius * math.Min(w, h)
	a := float64(n) * o.Speed
	return w/2 + r*math.Cos(a), h/2 + r*math.Sin(a)
}

// touching reports whether frame n falls in the touch segment of its period.
func (o Orbit) touching(n uint64) bool {
	if o.Period <= 0 || o.TouchFrames <= 0 {
		return false
	}
	return int(n%uint64(o.Period)) >= o.Period-o.TouchFrames
}

// Apply emits the input for frame n on h.
func (o Orbit) Apply(h *headless.Host, n uint64) {
	w, ht := h.ViewportSize()
	x, y := o.Position(n, w, ht)
	switch {
	case o.touching(n):
		h.TouchMove(x, y)
	case n > 0 && o.touching(n-1):
		h.TouchEnd()
		h.MovePointer(x, y)
	default:
		h.MovePointer(x, y)
	}
}

// HeadlessResult summarizes a headless run.
type HeadlessResult struct {
	Frames  uint64
	Elapsed time.Duration
	Hidden  bool // Preloader dismissed before maxFrames
	Windows int
}

// RunHeadless drives s on h at fps virtual frames per second until maxFrames
// refreshes have run (0 = until the preloader hides).
func RunHeadless(s *Session, h *headless.Host, orbit Orbit, fps, maxFrames int) (HeadlessResult, error) {
	if fps <= 0 {
		fps = 60
	}
	dt := time.Second / time.Duration(fps)

	if err := s.Start(h); err != nil {
		if !errors.Is(err, engine.ErrNoSurface) {
			return HeadlessResult{}, err
		}
		slog.Warn("animation unavailable, running preloader without it", "error", err)
	}

	var refresh uint64
	for maxFrames <= 0 || refresh < uint64(maxFrames) {
		orbit.Apply(h, refresh)
		h.Tick()
		refresh++
		s.Advance(dt)

		if s.Preloader().Hidden() {
			slog.Info("preloader hidden, ending headless run",
				"reason", string(s.Preloader().Reason()),
				"frames", s.Loop().Frames(),
			)
			break
		}
	}

	res := HeadlessResult{
		Frames:  s.Loop().Frames(),
		Elapsed: s.Elapsed(),
		Hidden:  s.Preloader().Hidden(),
	}
	err := s.Close()
	res.Windows = s.Windows()
	return res, err
}
