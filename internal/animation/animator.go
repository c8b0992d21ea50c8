// Package animation drives an entry's offset, alpha and scale over time.
//
// Each property has at most one track. Starting a new track on a property
// begins from the property's current value and supersedes the old track,
// which reports done(false). Tracks advance in frames scheduled on a
// loop.Scheduler, so they never run concurrently with the rest of the core.
package animation

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jmylchreest/toastkit/internal/loop"
)

// FrameInterval is the step between animation frames (about 60 fps).
const FrameInterval = 16 * time.Millisecond

// Property is an animatable value of a Target.
type Property int

const (
	PropertyOffset Property = iota // top y in container coordinates
	PropertyAlpha
	PropertyScale
)

// String returns the property name.
func (p Property) String() string {
	switch p {
	case PropertyOffset:
		return "offset"
	case PropertyAlpha:
		return "alpha"
	case PropertyScale:
		return "scale"
	default:
		return fmt.Sprintf("property(%d)", int(p))
	}
}

// Target is the object being animated.
type Target interface {
	Value(p Property) float64
	SetValue(p Property, v float64)
}

// EaseOut decelerates toward the end: 1-(1-t)^2.
func EaseOut(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return 1 - (1-t)*(1-t)
}

type track struct {
	prop     Property
	from     float64
	to       float64
	start    time.Time
	begun    bool
	duration time.Duration
	handle   *loop.Handle
	done     func(finished bool)
}

// Animator runs tracks against one Target.
type Animator struct {
	sched  loop.Scheduler
	target Target
	logger *slog.Logger
	tracks map[Property]*track
}

// New creates an Animator for target.
func New(sched loop.Scheduler, target Target, logger *slog.Logger) *Animator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Animator{
		sched:  sched,
		target: target,
		logger: logger,
		tracks: make(map[Property]*track),
	}
}

// Animate moves prop to the value to over duration after delay. done, if
// non-nil, is called once: with true when the value arrives, with false when
// another Animate or Set on the same property supersedes this one.
// A zero duration and delay applies the value and calls done synchronously.
func (a *Animator) Animate(prop Property, to float64, duration, delay time.Duration, done func(finished bool)) {
	a.supersede(prop)

	if duration <= 0 && delay <= 0 {
		a.target.SetValue(prop, to)
		if done != nil {
			done(true)
		}
		return
	}

	tr := &track{prop: prop, to: to, duration: duration, done: done}
	a.tracks[prop] = tr
	tr.handle = loop.Schedule(a.sched, delay, func() { a.begin(tr) })
}

// Set jumps prop to v, superseding any track on it.
func (a *Animator) Set(prop Property, v float64) {
	a.supersede(prop)
	a.target.SetValue(prop, v)
}

// Running reports whether prop has a live track.
func (a *Animator) Running(prop Property) bool {
	_, ok := a.tracks[prop]
	return ok
}

// Retarget points the live track on prop at a new final value. The track
// keeps its completion callback and finishes on its original schedule,
// easing from the current value over the time it has left. It reports
// false when prop has no live track.
func (a *Animator) Retarget(prop Property, to float64) bool {
	tr, ok := a.tracks[prop]
	if !ok {
		return false
	}
	if tr.begun {
		now := a.sched.Now()
		remaining := tr.duration - now.Sub(tr.start)
		if remaining < 0 {
			remaining = 0
		}
		tr.from = a.target.Value(prop)
		tr.start = now
		tr.duration = remaining
	}
	tr.to = to
	a.logger.Debug("animation retargeted", "property", prop, "to", to)
	return true
}

// Idle reports whether no track is running.
func (a *Animator) Idle() bool {
	return len(a.tracks) == 0
}

// StopAll cancels every track without reporting completion. Values stay
// where the last frame left them.
func (a *Animator) StopAll() {
	for prop, tr := range a.tracks {
		tr.handle.Cancel()
		delete(a.tracks, prop)
	}
}

func (a *Animator) supersede(prop Property) {
	tr, ok := a.tracks[prop]
	if !ok {
		return
	}
	tr.handle.Cancel()
	delete(a.tracks, prop)
	a.logger.Debug("animation superseded", "property", prop)
	if tr.done != nil {
		tr.done(false)
	}
}

func (a *Animator) begin(tr *track) {
	tr.from = a.target.Value(tr.prop)
	tr.start = a.sched.Now()
	tr.begun = true
	if tr.duration <= 0 {
		a.finish(tr)
		return
	}
	a.next(tr)
}

func (a *Animator) next(tr *track) {
	step := FrameInterval
	if remaining := tr.duration - a.sched.Now().Sub(tr.start); remaining < step {
		step = remaining
	}
	tr.handle = loop.Schedule(a.sched, step, func() { a.frame(tr) })
}

func (a *Animator) frame(tr *track) {
	elapsed := a.sched.Now().Sub(tr.start)
	if elapsed >= tr.duration {
		a.finish(tr)
		return
	}
	t := float64(elapsed) / float64(tr.duration)
	a.target.SetValue(tr.prop, tr.from+(tr.to-tr.from)*EaseOut(t))
	a.next(tr)
}

func (a *Animator) finish(tr *track) {
	a.target.SetValue(tr.prop, tr.to)
	if a.tracks[tr.prop] == tr {
		delete(a.tracks, tr.prop)
	}
	if tr.done != nil {
		tr.done(true)
	}
}
