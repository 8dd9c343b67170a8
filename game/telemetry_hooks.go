package game

import "log/slog"

// flushTelemetry emits completed frame windows. With final set the partial
// window is closed first.
func (s *Session) flushTelemetry(final bool) {
	if final {
		s.collector.Flush()
	}

	windows := s.collector.Drain()
	if len(windows) == 0 {
		return
	}
	perfStats := s.perf.Stats()
	for _, w := range windows {
		s.windows++

		if s.opts.LogStats {
			slog.Info("frames", "stats", w)
		}
		if err := s.output.WriteWindow(w); err != nil {
			slog.Error("failed to write frames", "error", err)
		}
		if err := s.output.WritePerf(perfStats, w.WindowEnd); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// logPerf logs frame timing every LogInterval frames when stats logging is on.
func (s *Session) logPerf() {
	interval := uint64(s.cfg.Telemetry.LogInterval)
	if !s.opts.LogStats || interval == 0 {
		return
	}
	frames := s.loop.Frames()
	if frames-s.lastPerfLog < interval {
		return
	}
	s.lastPerfLog = frames
	slog.Info("perf", "frame", frames, "stats", s.perf.Stats())
}
