// Package host holds the plumbing shared by the platform adapters: listener
// registries for input events and a single-threaded frame scheduler.
package host

import "slices"

type entry[F any] struct {
	id uint64
	fn F
}

// Listeners is an ordered set of callbacks of type F.
type Listeners[F any] struct {
	entries []entry[F]
	next    uint64
}

// Add registers fn and returns a function that removes it. Removing twice is a no-op.
func (l *Listeners[F]) Add(fn F) func() {
	l.next++
	id := l.next
	l.entries = append(l.entries, entry[F]{id: id, fn: fn})
	return func() {
		l.entries = slices.DeleteFunc(l.entries, func(e entry[F]) bool { return e.id == id })
	}
}

// Each calls visit for every listener in registration order. Listeners
// added or removed during the walk take effect on the next walk.
func (l *Listeners[F]) Each(visit func(F)) {
	for _, e := range slices.Clone(l.entries) {
		visit(e.fn)
	}
}

// Len returns the number of registered listeners.
func (l *Listeners[F]) Len() int {
	return len(l.entries)
}

// Events is the input half of engine.Host: pointer, touch and resize
// subscriptions plus the Emit methods adapters call when the platform
// reports input.
type Events struct {
	pointerMove Listeners[func(x, y float64)]
	touchMove   Listeners[func(x, y float64) bool]
	touchEnd    Listeners[func()]
	resize      Listeners[func()]
}

// OnPointerMove implements engine.PointerSource.
func (e *Events) OnPointerMove(fn func(x, y float64)) func() { return e.pointerMove.Add(fn) }

// OnTouchMove implements engine.PointerSource.
func (e *Events) OnTouchMove(fn func(x, y float64) bool) func() { return e.touchMove.Add(fn) }

// OnTouchEnd implements engine.PointerSource.
func (e *Events) OnTouchEnd(fn func()) func() { return e.touchEnd.Add(fn) }

// OnResize implements engine.Viewport.
func (e *Events) OnResize(fn func()) func() { return e.resize.Add(fn) }

// EmitPointerMove dispatches a pointer move.
func (e *Events) EmitPointerMove(x, y float64) {
	e.pointerMove.Each(func(fn func(x, y float64)) { fn(x, y) })
}

// EmitTouchMove dispatches a touch move and reports whether any listener
// asked to suppress the default behavior.
func (e *Events) EmitTouchMove(x, y float64) (prevented bool) {
	e.touchMove.Each(func(fn func(x, y float64) bool) {
		if fn(x, y) {
			prevented = true
		}
	})
	return prevented
}

// EmitTouchEnd dispatches the end of a touch.
func (e *Events) EmitTouchEnd() {
	e.touchEnd.Each(func(fn func()) { fn() })
}

// EmitResize dispatches a viewport resize.
func (e *Events) EmitResize() {
	e.resize.Each(func(fn func()) { fn() })
}

// ListenerCount returns the total number of registered listeners.
func (e *Events) ListenerCount() int {
	return e.pointerMove.Len() + e.touchMove.Len() + e.touchEnd.Len() + e.resize.Len()
}
