// Package interaction owns an entry's auto-dismiss timer and decides what
// taps, pans and raw touches do to it.
package interaction

import (
	"log/slog"
	"math"
	"time"

	"github.com/jmylchreest/toastkit/internal/attr"
	"github.com/jmylchreest/toastkit/internal/loop"
)

// Reason says why an entry left the screen.
type Reason string

const (
	ReasonTimeout      Reason = "timeout"
	ReasonTap          Reason = "tap"
	ReasonSwipe        Reason = "swipe"
	ReasonScreenTap    Reason = "screen_tap"
	ReasonProgrammatic Reason = "programmatic"
	ReasonPushedOut    Reason = "pushed_out"
)

// Swipe thresholds. A release dismisses when the entry was dragged past
// SwipeDistanceRatio of its height toward the off-screen side, or flung
// faster than SwipeVelocity in that direction.
const (
	SwipeDistanceRatio = 0.25
	SwipeVelocity      = 600.0 // units per second
	rubberBandCoeff    = 0.55
)

// PanState is the phase of a pan gesture.
type PanState int

const (
	PanBegan PanState = iota
	PanChanged
	PanEnded
	PanCancelled
	PanFailed
)

// String returns the state name.
func (s PanState) String() string {
	switch s {
	case PanBegan:
		return "began"
	case PanChanged:
		return "changed"
	case PanEnded:
		return "ended"
	case PanCancelled:
		return "cancelled"
	default:
		return "failed"
	}
}

// Host is the entry the controller acts on.
type Host interface {
	// Dismiss starts the exit for reason.
	Dismiss(reason Reason)
	// DragTo moves the entry by offset from its resting position.
	DragTo(offset float64)
	// PullBack returns a dragged entry to rest.
	PullBack()
	// Height is the entry height used for the swipe threshold.
	Height() float64
	// OutwardSign is -1 when the off-screen side is up, +1 when down.
	OutwardSign() float64
}

// Controller holds at most one pending auto-dismiss action.
type Controller struct {
	attrs  *attr.Attributes
	sched  loop.Scheduler
	host   Host
	logger *slog.Logger

	pending  *loop.Handle
	deadline time.Time
	disabled bool

	panning bool
	drag    float64
}

// New creates a Controller for one entry.
func New(attrs *attr.Attributes, sched loop.Scheduler, host Host, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		attrs:  attrs,
		sched:  sched,
		host:   host,
		logger: logger,
	}
}

// ScheduleAutoDismiss cancels any pending dismissal and arms a new one after
// the entrance duration plus override, or plus the display duration when
// override is nil. A Forever delay only cancels.
func (c *Controller) ScheduleAutoDismiss(override *time.Duration) {
	c.Cancel()
	if c.disabled {
		return
	}

	wait := c.attrs.DisplayDuration
	if override != nil {
		wait = *override
	}
	if wait == attr.Forever {
		return
	}

	delay := c.attrs.EntranceAnimation.TotalDuration() + wait
	c.deadline = c.sched.Now().Add(delay)
	c.pending = loop.Schedule(c.sched, delay, func() {
		c.pending = nil
		c.host.Dismiss(ReasonTimeout)
	})
	c.logger.Debug("auto dismiss scheduled", "entry", c.attrs.Name, "delay", delay)
}

// Cancel invalidates the pending dismissal, if any.
func (c *Controller) Cancel() {
	c.pending.Cancel()
	c.pending = nil
	c.deadline = time.Time{}
}

// Pending reports whether an auto dismissal is armed.
func (c *Controller) Pending() bool {
	return c.pending.Pending()
}

// Deadline returns when the armed dismissal fires, or zero.
func (c *Controller) Deadline() time.Time {
	return c.deadline
}

// Disable cancels the timer and ignores further input. Called once the entry
// starts leaving.
func (c *Controller) Disable() {
	c.Cancel()
	c.disabled = true
	c.panning = false
}

// Disabled reports whether Disable was called.
func (c *Controller) Disabled() bool {
	return c.disabled
}

// delayOnInteraction reports whether touching the entry holds it on screen.
func (c *Controller) delayOnInteraction() bool {
	return c.attrs.EntryInteraction.IsDelayExit() && c.attrs.HasFiniteDisplay()
}

// Tap applies the entry's default tap action, then fires every custom
// callback.
func (c *Controller) Tap() {
	if c.disabled {
		return
	}
	in := c.attrs.EntryInteraction
	switch in.Default {
	case attr.ActionDelayExit:
		if in.DelayExit > 0 {
			d := in.DelayExit
			c.ScheduleAutoDismiss(&d)
		} else {
			c.ScheduleAutoDismiss(nil)
		}
	case attr.ActionDismiss:
		c.host.Dismiss(ReasonTap)
	}
	for _, fn := range in.Custom {
		if fn != nil {
			fn()
		}
	}
}

// Pan handles a pan gesture. translation and velocity are vertical, in
// container units, positive downward.
func (c *Controller) Pan(state PanState, translation, velocity float64) {
	if c.disabled {
		return
	}
	scroll := c.attrs.Scroll.IsEnabled()

	switch state {
	case PanBegan:
		c.panning = true
		c.drag = 0
		if c.delayOnInteraction() {
			c.Cancel()
		}
	case PanChanged:
		if !c.panning || !scroll {
			return
		}
		c.drag = c.damp(translation)
		c.host.DragTo(c.drag)
	case PanEnded, PanCancelled, PanFailed:
		if !c.panning {
			return
		}
		c.panning = false
		if scroll {
			if state == PanEnded && c.shouldSwipe(translation, velocity) {
				c.logger.Debug("swipe dismiss", "entry", c.attrs.Name, "translation", translation, "velocity", velocity)
				c.host.Dismiss(ReasonSwipe)
				return
			}
			if c.drag != 0 {
				c.drag = 0
				c.host.PullBack()
			}
		}
		if c.delayOnInteraction() {
			c.ScheduleAutoDismiss(nil)
		}
	}
}

// damp keeps outward drags as-is and resists inward drags past rest.
func (c *Controller) damp(translation float64) float64 {
	sign := c.host.OutwardSign()
	if translation*sign >= 0 {
		return translation
	}
	if !c.attrs.Scroll.RubberBanding {
		return 0
	}
	return RubberBand(translation, c.host.Height())
}

func (c *Controller) shouldSwipe(translation, velocity float64) bool {
	if !c.attrs.Scroll.Swipeable {
		return false
	}
	sign := c.host.OutwardSign()
	outward := translation * sign
	if outward <= 0 {
		return false
	}
	return outward > c.host.Height()*SwipeDistanceRatio || velocity*sign > SwipeVelocity
}

// TouchBegan holds the entry while a finger rests on it.
func (c *Controller) TouchBegan() {
	if c.disabled || !c.delayOnInteraction() {
		return
	}
	c.Cancel()
}

// TouchEnded rearms the timer after TouchBegan.
func (c *Controller) TouchEnded() {
	if c.disabled || !c.delayOnInteraction() {
		return
	}
	c.ScheduleAutoDismiss(nil)
}

// Scroll is reserved for preventing drags across the container edge. It
// does nothing yet.
func (c *Controller) Scroll(offset float64) {
	c.logger.Debug("scroll ignored", "entry", c.attrs.Name, "offset", offset)
}

// RubberBand damps an overscroll of d against dimension limit. The result
// approaches limit but never reaches it.
func RubberBand(d, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	abs := math.Abs(d)
	damped := limit * (1 - 1/(abs*rubberBandCoeff/limit+1))
	return math.Copysign(damped, d)
}
