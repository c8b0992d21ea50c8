// Package entry is the runtime instance of one presentation. It ties the
// computed geometry, the four positional relations, the animator and the
// interaction controller together and walks them through
// created -> ready -> active -> exiting -> removed.
package entry

import (
	"fmt"
	"log/slog"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/toastkit/internal/animation"
	"github.com/jmylchreest/toastkit/internal/attr"
	"github.com/jmylchreest/toastkit/internal/constraint"
	"github.com/jmylchreest/toastkit/internal/geometry"
	"github.com/jmylchreest/toastkit/internal/interaction"
	"github.com/jmylchreest/toastkit/internal/loop"
)

// State is the lifecycle state of an Entry.
type State int

const (
	StateCreated State = iota
	StateReady
	StateActive
	StateExiting
	StateRemoved
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateReady:
		return "ready"
	case StateActive:
		return "active"
	case StateExiting:
		return "exiting"
	case StateRemoved:
		return "removed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ExitReason says why an entry left.
type ExitReason = interaction.Reason

// Visual is what a surface shows for an entry.
type Visual struct {
	Frame geometry.Rect
	Alpha float64
	Scale float64
}

// Surface is the host view an entry draws into. The entry owns it
// exclusively between Attach and Detach.
type Surface interface {
	Attach()
	Apply(v Visual)
	Detach()
}

// Content is what the entry displays.
type Content interface {
	// PreferredSize is the content size when laid out at most maxWidth wide.
	PreferredSize(maxWidth float64) geometry.Size
}

// Bridge is the entry's non-owning handle back to whatever presents it.
type Bridge interface {
	Container() geometry.Size
	SafeArea() geometry.Insets
	SupportsSafeArea() bool

	// EntranceStarted is called once, right before the entrance animation.
	EntranceStarted(e *Entry)
	// ExitStarted is called once, for an entry that entered, before it
	// starts leaving and always before it is detached.
	ExitStarted(e *Entry)
	// Removed is called once after the surface is detached.
	Removed(e *Entry)
}

// Entry is one presentation.
type Entry struct {
	id      string
	attrs   *attr.Attributes
	content Content
	surface Surface
	bridge  Bridge
	sched   loop.Scheduler
	logger  *slog.Logger

	state      State
	reason     ExitReason
	activated  bool
	inactive   bool
	relations  *constraint.Set
	animator   *animation.Animator
	controller *interaction.Controller

	offset float64
	alpha  float64
	scale  float64
}

// New creates an entry. attrs is borrowed and never modified. It panics
// without attributes, a bridge, or a scheduler.
func New(attrs *attr.Attributes, content Content, surface Surface, bridge Bridge, sched loop.Scheduler, logger *slog.Logger) *Entry {
	if attrs == nil {
		panic("entry: nil attributes")
	}
	if bridge == nil {
		panic("entry: nil bridge")
	}
	if sched == nil {
		panic("entry: nil scheduler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	e := &Entry{
		id:      ulid.Make().String(),
		attrs:   attrs,
		content: content,
		surface: surface,
		bridge:  bridge,
		sched:   sched,
		alpha:   1,
		scale:   1,
	}
	e.logger = logger.With("entry_id", e.id)
	if attrs.Name != "" {
		e.logger = e.logger.With("entry", attrs.Name)
	}
	e.animator = animation.New(sched, target{e}, e.logger)
	e.controller = interaction.New(attrs, sched, host{e}, e.logger)
	return e
}

// ID returns the entry's ULID.
func (e *Entry) ID() string { return e.id }

// Attributes returns the borrowed attributes.
func (e *Entry) Attributes() *attr.Attributes { return e.attrs }

// Content returns the displayed content.
func (e *Entry) Content() Content { return e.content }

// State returns the lifecycle state.
func (e *Entry) State() State { return e.state }

// Reason returns why the entry exited, or "" while it has not.
func (e *Entry) Reason() ExitReason { return e.reason }

// Activated reports whether the entrance started.
func (e *Entry) Activated() bool { return e.activated }

// Relations returns the positional relations. Nil before Setup.
func (e *Entry) Relations() *constraint.Set { return e.relations }

// Interaction exposes the timer and gesture controller.
func (e *Entry) Interaction() *interaction.Controller { return e.controller }

// Visual returns the current frame, alpha and scale.
func (e *Entry) Visual() Visual {
	v := Visual{Alpha: e.alpha, Scale: e.scale}
	if e.relations != nil {
		v.Frame = e.relations.Layout().Frame(e.offset)
	}
	return v
}

// Setup lays the entry out off screen and attaches its surface. It panics
// when the container has no size or there is no surface to draw into.
func (e *Entry) Setup() {
	if e.state != StateCreated {
		return
	}
	if e.surface == nil {
		panic("entry: setup without a surface")
	}
	if e.bridge.Container().IsZero() {
		panic("entry: setup without a container")
	}

	layout := e.computeLayout()
	e.relations = constraint.Build(layout, e.attrs.PopBehavior, e.attrs.EntranceAnimation, e.attrs.ExitAnimation)
	e.offset = e.relations.ActiveY()

	e.surface.Attach()
	e.apply()
	e.state = StateReady
	e.logger.Debug("entry set up", "phase", e.relations.Phase(), "frame", e.Visual().Frame)
}

func (e *Entry) computeLayout() geometry.Layout {
	var measure func(float64) geometry.Size
	if e.content != nil {
		measure = e.content.PreferredSize
	}
	return geometry.Compute(geometry.Input{
		Position:          e.attrs.Position,
		Constraints:       e.attrs.PositionConstraints,
		Container:         e.bridge.Container(),
		SafeArea:          e.bridge.SafeArea(),
		SafeAreaSupported: e.bridge.SupportsSafeArea(),
		Measure:           measure,
	})
}

// Present starts the entrance: the bridge is told first, the relations flip
// to resting while the entrance plays, then auto dismiss is armed.
func (e *Entry) Present() {
	if e.state != StateReady {
		return
	}
	e.attrs.Lifecycle.FireWillAppear()

	e.activated = true
	e.state = StateActive
	e.bridge.EntranceStarted(e)
	if e.state != StateActive {
		// the bridge dismissed us synchronously
		return
	}

	restY := e.relations.Y(constraint.In)
	e.animator.Play(e.attrs.EntranceAnimation, restY, e.entered)
	e.relations.Activate(constraint.PhaseResting)
	e.controller.ScheduleAutoDismiss(nil)

	e.logger.Debug("entry presented", "phase", e.relations.Phase(), "auto_dismiss", e.controller.Deadline())
}

func (e *Entry) entered(finished bool) {
	if e.state != StateActive {
		return
	}
	e.logger.Debug("entrance finished", "finished", finished)
	e.attrs.Lifecycle.FireDidAppear()
}

// Dismiss starts the normal exit. Repeated calls are no-ops.
func (e *Entry) Dismiss(reason ExitReason) {
	e.exit(false, reason)
}

// PushOut starts the exit used when a newer entry replaces this one.
func (e *Entry) PushOut() {
	e.exit(true, interaction.ReasonPushedOut)
}

func (e *Entry) exit(pushOut bool, reason ExitReason) {
	switch e.state {
	case StateExiting, StateRemoved:
		return
	case StateCreated, StateReady:
		e.reason = reason
		e.RemoveFromSuperview()
		return
	}

	e.controller.Disable()
	e.state = StateExiting
	e.reason = reason
	e.attrs.Lifecycle.FireWillDisappear()
	e.notifyInactive()

	if pushOut {
		if !e.attrs.PopBehavior.IsAnimated() {
			e.logger.Debug("entry popped", "reason", reason)
			e.RemoveFromSuperview()
			return
		}
		e.relations.Activate(constraint.PhasePoppedOut)
		e.animator.Play(e.attrs.PopBehavior.Animation, e.relations.Y(constraint.PopOut), e.exited)
	} else {
		e.relations.Activate(constraint.PhaseExiting)
		e.animator.Play(e.attrs.ExitAnimation, e.relations.Y(constraint.ExitOut), e.exited)
	}
	e.logger.Debug("entry exiting", "reason", reason, "phase", e.relations.Phase())
}

func (e *Entry) exited(bool) {
	e.RemoveFromSuperview()
}

func (e *Entry) notifyInactive() {
	if !e.activated || e.inactive {
		return
	}
	e.inactive = true
	e.bridge.ExitStarted(e)
}

// RemoveFromSuperview detaches the entry and releases its timer and
// animations. It is idempotent.
func (e *Entry) RemoveFromSuperview() {
	if e.state == StateRemoved {
		return
	}
	presented := e.activated
	attached := e.state != StateCreated

	e.state = StateRemoved
	e.controller.Disable()
	e.animator.StopAll()
	e.notifyInactive()

	if attached {
		e.surface.Detach()
	}
	if presented {
		e.attrs.Lifecycle.FireDidDisappear()
	}
	e.logger.Debug("entry removed", "reason", e.reason)
	e.bridge.Removed(e)
}

// Relayout recomputes the geometry after the container changed and moves
// the entry to its current phase's position. A running offset animation is
// redirected there instead.
func (e *Entry) Relayout() {
	if e.relations == nil || e.state == StateRemoved {
		return
	}
	e.relations.Rebuild(e.computeLayout())
	if !e.animator.Retarget(animation.PropertyOffset, e.relations.ActiveY()) {
		e.offset = e.relations.ActiveY()
	}
	e.apply()
}

// Tap forwards a tap on the entry.
func (e *Entry) Tap() {
	if e.state != StateActive {
		return
	}
	e.controller.Tap()
}

// Pan forwards a vertical pan gesture.
func (e *Entry) Pan(state interaction.PanState, translation, velocity float64) {
	if e.state != StateActive {
		return
	}
	e.controller.Pan(state, translation, velocity)
}

// TouchBegan forwards a raw touch down.
func (e *Entry) TouchBegan() {
	if e.state == StateActive {
		e.controller.TouchBegan()
	}
}

// TouchEnded forwards a raw touch up.
func (e *Entry) TouchEnded() {
	if e.state == StateActive {
		e.controller.TouchEnded()
	}
}

// Scroll forwards a scroll of the entry's content.
func (e *Entry) Scroll(offset float64) {
	if e.state == StateActive {
		e.controller.Scroll(offset)
	}
}

// Contains reports whether the point lies inside the entry's frame.
func (e *Entry) Contains(x, y float64) bool {
	f := e.Visual().Frame
	return x >= f.X && x < f.X+f.Width && y >= f.Y && y < f.Y+f.Height
}

func (e *Entry) apply() {
	if e.state == StateRemoved || e.surface == nil {
		return
	}
	e.surface.Apply(e.Visual())
}

// target adapts the entry to animation.Target.
type target struct{ e *Entry }

func (t target) Value(p animation.Property) float64 {
	switch p {
	case animation.PropertyAlpha:
		return t.e.alpha
	case animation.PropertyScale:
		return t.e.scale
	default:
		return t.e.offset
	}
}

func (t target) SetValue(p animation.Property, v float64) {
	switch p {
	case animation.PropertyAlpha:
		t.e.alpha = v
	case animation.PropertyScale:
		t.e.scale = v
	default:
		t.e.offset = v
	}
	t.e.apply()
}

// host adapts the entry to interaction.Host.
type host struct{ e *Entry }

func (h host) Dismiss(reason interaction.Reason) { h.e.Dismiss(reason) }

func (h host) DragTo(offset float64) {
	h.e.animator.Set(animation.PropertyOffset, h.e.relations.Y(constraint.In)+offset)
}

func (h host) PullBack() {
	rest := h.e.relations.Y(constraint.In)
	pb := h.e.attrs.Scroll.Pullback
	if pb.Duration <= 0 && pb.Delay <= 0 {
		h.e.animator.Set(animation.PropertyOffset, rest)
		return
	}
	h.e.animator.Animate(animation.PropertyOffset, rest, pb.Duration, pb.Delay, nil)
}

func (h host) Height() float64 { return h.e.relations.Layout().Height }

func (h host) OutwardSign() float64 { return h.e.relations.Layout().OutwardSign() }
