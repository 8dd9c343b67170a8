// Package preloader decides when the loading overlay is dismissed.
//
// The overlay hides on whichever comes first: a fixed fallback deadline, a
// delay after the page reports it has loaded, or a delay after its content
// becomes ready. Once the fallback fires, later load signals are ignored.
// Hiding stops the animation.
package preloader

import (
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/pthm-cable/constellation/config"
)

// Animation is what the controller stops when the overlay hides.
// *engine.Loop implements it.
type Animation interface {
	Stop()
}

// Reason says what dismissed the overlay.
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonFallback     Reason = "fallback"
	ReasonLoaded       Reason = "loaded"
	ReasonContentReady Reason = "content_ready"
	ReasonError        Reason = "error"
)

type timer struct {
	at     time.Duration
	reason Reason
}

// Controller tracks the dismissal timers against a clock the host advances.
// It starts no goroutines; the host calls Advance once per frame.
type Controller struct {
	cfg  config.PreloaderConfig
	anim Animation

	now      time.Duration
	timers   []timer
	timedOut bool
	hidden   bool
	reason   Reason
	failure  string

	onHidden []func(Reason)
}

// New creates a controller at time zero with the fallback timer armed.
func New(cfg config.PreloaderConfig, anim Animation) *Controller {
	c := &Controller{cfg: cfg, anim: anim}
	c.schedule(cfg.Fallback, ReasonFallback)
	return c
}

// OnHidden registers fn to run once when the overlay hides.
func (c *Controller) OnHidden(fn func(Reason)) {
	c.onHidden = append(c.onHidden, fn)
}

// Advance moves the clock to now and fires every timer that is due,
// earliest first. Going backwards is ignored.
func (c *Controller) Advance(now time.Duration) {
	if now < c.now {
		return
	}
	c.now = now
	for !c.hidden && len(c.timers) > 0 && c.timers[0].at <= now {
		t := c.timers[0]
		c.timers = c.timers[1:]
		if t.reason == ReasonFallback {
			c.timedOut = true
			slog.Info("preloader fallback triggered", "after", t.at)
		}
		c.hide(t.reason)
	}
}

// Loaded reports that the page finished loading. Unless the fallback already
// fired, it cancels the fallback and hides after LoadDelay.
func (c *Controller) Loaded() {
	if c.timedOut || c.hidden {
		return
	}
	c.cancel(ReasonFallback)
	c.schedule(c.cfg.LoadDelay, ReasonLoaded)
}

// ContentReady reports that the page content is usable. Unless the fallback
// already fired, it hides after ContentReadyDelay. The fallback stays armed.
func (c *Controller) ContentReady() {
	if c.timedOut || c.hidden {
		return
	}
	c.schedule(c.cfg.ContentReadyDelay, ReasonContentReady)
}

// Fail records a failure message to show on the overlay and hides after
// ErrorDelay. Only the first message is kept.
func (c *Controller) Fail(msg string) {
	if c.hidden {
		return
	}
	if c.failure == "" {
		c.failure = msg
		slog.Warn("preloader failure reported", "message", msg)
	}
	c.schedule(c.cfg.ErrorDelay, ReasonError)
}

// Hidden reports whether the overlay has been dismissed.
func (c *Controller) Hidden() bool { return c.hidden }

// TimedOut reports whether the fallback fired.
func (c *Controller) TimedOut() bool { return c.timedOut }

// Reason returns what dismissed the overlay, or ReasonNone.
func (c *Controller) Reason() Reason { return c.reason }

// Failure returns the recorded failure message, if any.
func (c *Controller) Failure() string { return c.failure }

// Now returns the controller clock.
func (c *Controller) Now() time.Duration { return c.now }

// Status returns the overlay message with a loading ellipsis that grows by
// one dot every half second.
func (c *Controller) Status() string {
	dots := int(c.now/(500*time.Millisecond))%3 + 1
	return c.cfg.Message + " " + strings.Repeat(".", dots)
}

func (c *Controller) schedule(after time.Duration, reason Reason) {
	t := timer{at: c.now + after, reason: reason}
	i, _ := slices.BinarySearchFunc(c.timers, t, func(a, b timer) int {
		if a.at <= b.at {
			return -1
		}
		return 1
	})
	c.timers = slices.Insert(c.timers, i, t)
}

func (c *Controller) cancel(reason Reason) {
	c.timers = slices.DeleteFunc(c.timers, func(t timer) bool { return t.reason == reason })
}

func (c *Controller) hide(reason Reason) {
	if c.hidden {
		return
	}
	c.hidden = true
	c.reason = reason
	c.timers = nil
	if c.anim != nil {
		c.anim.Stop()
	}
	slog.Info("preloader hidden", "reason", string(reason), "at", c.now)
	for _, fn := range c.onHidden {
		fn(reason)
	}
}
