// Package game ties the engine, the preloader and telemetry into one
// session that any host can drive.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/constellation/config"
	"github.com/pthm-cable/constellation/engine"
	"github.com/pthm-cable/constellation/preloader"
	"github.com/pthm-cable/constellation/telemetry"
	"github.com/pthm-cable/constellation/theme"
)

// Options holds session settings that come from the command line.
type Options struct {
	Seed      int64
	LogStats  bool
	OutputDir string
	Theme     string // Initial theme; empty uses config
}

// Session is one preloader run on one host.
type Session struct {
	cfg  *config.Config
	opts Options

	themes    *theme.Themes
	loop      *engine.Loop
	preloader *preloader.Controller
	host      engine.Host

	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	output    *telemetry.OutputManager

	elapsed      time.Duration
	contentReady bool
	windows      int
	lastPerfLog  uint64
}

// NewSession builds a stopped session.
func NewSession(cfg *config.Config, opts Options) (*Session, error) {
	initial := cfg.Theme.Initial
	if opts.Theme != "" {
		initial = opts.Theme
	}
	th, err := theme.New(cfg.Theme.Palettes, initial)
	if err != nil {
		return nil, fmt.Errorf("creating themes: %w", err)
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, err
	}

	s := &Session{
		cfg:       cfg,
		opts:      opts,
		themes:    th,
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		collector: telemetry.NewCollector(cfg.Telemetry.PerfWindow),
		output:    output,
	}
	s.loop = engine.New(cfg, th,
		engine.WithRand(rand.New(rand.NewSource(opts.Seed))),
		engine.WithPhaseTimer(s.perf),
		engine.WithObserver(s.collector),
	)
	return s, nil
}

// Start arms a fresh preloader and starts the animation on h.
//
// If h has no drawing context the error wraps engine.ErrNoSurface, but the
// session is still usable: the overlay and its dismissal timers run without
// the animation. Any other error leaves the session unchanged.
func (s *Session) Start(h engine.Host) error {
	err := s.loop.Start(h)
	if err != nil && !errors.Is(err, engine.ErrNoSurface) {
		return err
	}
	s.host = h
	s.elapsed = 0
	s.contentReady = false
	s.preloader = preloader.New(s.cfg.Preloader, s.loop)
	s.preloader.OnHidden(func(r preloader.Reason) {
		s.flushTelemetry(true)
	})
	return err
}

// Animated reports whether the animation is running.
func (s *Session) Animated() bool {
	return s.loop.State() == engine.Running
}

// Replay restarts the preloader on the host from the last Start.
func (s *Session) Replay() error {
	if s.host == nil {
		return errors.New("game: replay before start")
	}
	s.loop.Stop()
	return s.Start(s.host)
}

// Advance moves the session clock by dt after a display refresh.
// The first refresh counts as the content becoming ready.
func (s *Session) Advance(dt time.Duration) {
	s.perf.RecordRefresh()
	if s.preloader == nil {
		return
	}
	if !s.contentReady {
		s.contentReady = true
		s.preloader.ContentReady()
	}
	s.elapsed += dt
	s.preloader.Advance(s.elapsed)
	s.flushTelemetry(false)
	s.logPerf()
}

// Loaded reports that loading finished.
func (s *Session) Loaded() {
	if s.preloader != nil {
		s.preloader.Loaded()
	}
}

// Fail reports a loading failure to show on the overlay.
func (s *Session) Fail(msg string) {
	if s.preloader != nil {
		s.preloader.Fail(msg)
	}
}

// ToggleTheme switches palette and returns the new theme name.
func (s *Session) ToggleTheme() string {
	name := s.themes.Toggle()
	slog.Info("theme changed", "theme", name)
	return name
}

// Themes returns the palettes.
func (s *Session) Themes() *theme.Themes { return s.themes }

// Loop returns the render loop.
func (s *Session) Loop() *engine.Loop { return s.loop }

// Preloader returns the current preloader, or nil before Start.
func (s *Session) Preloader() *preloader.Controller { return s.preloader }

// PerfStats returns timing over the current perf window.
func (s *Session) PerfStats() telemetry.PerfStats { return s.perf.Stats() }

// Elapsed returns time since the last Start.
func (s *Session) Elapsed() time.Duration { return s.elapsed }

// Windows returns how many telemetry windows have been emitted.
func (s *Session) Windows() int { return s.windows }

// Close stops the loop and flushes telemetry output.
func (s *Session) Close() error {
	s.loop.Stop()
	s.flushTelemetry(true)
	return s.output.Close()
}
