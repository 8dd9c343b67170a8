package host

import (
	"slices"

	"github.com/pthm-cable/constellation/engine"
)

type frameRequest struct {
	id engine.FrameID
	fn func()
}

// Scheduler queues frame callbacks until the host's next refresh.
// Callbacks requested while a refresh is running wait for the following one.
type Scheduler struct {
	next    engine.FrameID
	pending []frameRequest
	running []frameRequest
}

// RequestFrame implements engine.FrameScheduler.
func (s *Scheduler) RequestFrame(fn func()) engine.FrameID {
	s.next++
	s.pending = append(s.pending, frameRequest{id: s.next, fn: fn})
	return s.next
}

// CancelFrame implements engine.FrameScheduler. Unknown ids are ignored.
func (s *Scheduler) CancelFrame(id engine.FrameID) {
	s.pending = slices.DeleteFunc(s.pending, func(r frameRequest) bool { return r.id == id })
	for i := range s.running {
		if s.running[i].id == id {
			s.running[i].fn = nil
		}
	}
}

// RunFrame runs the callbacks queued before this call, in request order, and
// returns how many ran. A callback cancelled by an earlier one in the same
// batch is skipped.
func (s *Scheduler) RunFrame() int {
	s.running = s.pending
	s.pending = nil
	defer func() { s.running = nil }()

	ran := 0
	for i := range s.running {
		fn := s.running[i].fn
		if fn == nil {
			continue
		}
		s.running[i].fn = nil
		fn()
		ran++
	}
	return ran
}

// Pending returns the number of queued callbacks.
func (s *Scheduler) Pending() int {
	return len(s.pending)
}
