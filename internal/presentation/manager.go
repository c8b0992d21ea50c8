// Package presentation owns the entries on screen: it presents new ones,
// pushes out the one they replace, tells a delegate which entry is active,
// counts active entries, and releases the host window when the last one is
// gone.
//
// A Manager is not safe for concurrent use. All calls, and the scheduler
// callbacks it arms, must happen on one goroutine.
package presentation

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jmylchreest/toastkit/internal/attr"
	"github.com/jmylchreest/toastkit/internal/entry"
	"github.com/jmylchreest/toastkit/internal/geometry"
	"github.com/jmylchreest/toastkit/internal/interaction"
	"github.com/jmylchreest/toastkit/internal/loop"
	"github.com/jmylchreest/toastkit/internal/window"
)

// ErrLowerPriority is returned when a newcomer would replace a displayed
// entry of higher priority.
var ErrLowerPriority = errors.New("a higher priority entry is displayed")

// Delegate observes which entry is active.
type Delegate interface {
	ChangeToActive(a *attr.Attributes)
	ChangeToInactive(a *attr.Attributes)
}

// DelegateFuncs adapts plain functions to Delegate. Nil fields are skipped.
type DelegateFuncs struct {
	OnActive   func(a *attr.Attributes)
	OnInactive func(a *attr.Attributes)
}

// ChangeToActive implements Delegate.
func (d DelegateFuncs) ChangeToActive(a *attr.Attributes) {
	if d.OnActive != nil {
		d.OnActive(a)
	}
}

// ChangeToInactive implements Delegate.
func (d DelegateFuncs) ChangeToInactive(a *attr.Attributes) {
	if d.OnInactive != nil {
		d.OnInactive(a)
	}
}

// Haptics emits feedback once per entrance. Implementations must not block.
type Haptics interface {
	Emit(h attr.Haptic)
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithHaptics sets the haptics emitter.
func WithHaptics(h Haptics) Option {
	return func(m *Manager) { m.haptics = h }
}

// Manager presents entries inside one host window.
type Manager struct {
	provider window.Provider
	delegate Delegate
	sched    loop.Scheduler
	haptics  Haptics
	logger   *slog.Logger

	current *entry.Entry
	entries map[string]*entry.Entry
	counted map[string]bool

	active   int
	inFlight int

	onRemoved func(*entry.Entry)
}

// NewManager creates a Manager. It panics without a provider, delegate or
// scheduler.
func NewManager(provider window.Provider, delegate Delegate, sched loop.Scheduler, opts ...Option) *Manager {
	if provider == nil {
		panic("presentation: nil window provider")
	}
	if delegate == nil {
		panic("presentation: nil delegate")
	}
	if sched == nil {
		panic("presentation: nil scheduler")
	}

	m := &Manager{
		provider: provider,
		delegate: delegate,
		sched:    sched,
		entries:  make(map[string]*entry.Entry),
		counted:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

// SetRemovedHook sets a callback run after an entry is detached.
func (m *Manager) SetRemovedHook(fn func(*entry.Entry)) {
	m.onRemoved = fn
}

// Display presents content with attrs on surface, pushing out the current
// entry. A newcomer with lower priority than the displayed entry is
// rejected with ErrLowerPriority.
func (m *Manager) Display(attrs *attr.Attributes, content entry.Content, surface entry.Surface) (*entry.Entry, error) {
	if attrs == nil {
		attrs = attr.Default()
	}
	if err := attrs.Validate(); err != nil {
		return nil, fmt.Errorf("invalid attributes: %w", err)
	}
	if cur := m.displayed(); cur != nil && attrs.Priority < cur.Attributes().Priority {
		return nil, fmt.Errorf("%w: %d < %d", ErrLowerPriority, attrs.Priority, cur.Attributes().Priority)
	}

	m.provider.SetState(window.StateOverlay)
	m.inFlight++

	e := entry.New(attrs, content, surface, bridge{m}, m.sched, m.logger)
	e.Setup()
	m.entries[e.ID()] = e

	prev := m.current
	m.current = e
	if prev != nil {
		prev.PushOut()
	}

	m.inFlight--
	e.Present()

	m.logger.Info("entry displayed",
		"entry_id", e.ID(),
		"name", attrs.Name,
		"position", attrs.Position,
		"active_count", m.active,
	)
	return e, nil
}

// displayed returns the current entry unless it is already leaving.
func (m *Manager) displayed() *entry.Entry {
	if m.current == nil {
		return nil
	}
	switch m.current.State() {
	case entry.StateExiting, entry.StateRemoved:
		return nil
	}
	return m.current
}

// Dismiss starts the exit of the current entry. It reports whether there
// was one.
func (m *Manager) Dismiss() bool {
	cur := m.displayed()
	if cur == nil {
		return false
	}
	cur.Dismiss(interaction.ReasonProgrammatic)
	return true
}

// DismissEntry starts the exit of the entry with id.
func (m *Manager) DismissEntry(id string) bool {
	e, ok := m.entries[id]
	if !ok {
		return false
	}
	e.Dismiss(interaction.ReasonProgrammatic)
	return true
}

// DismissAll starts the exit of every entry.
func (m *Manager) DismissAll() {
	for _, e := range m.Entries() {
		e.Dismiss(interaction.ReasonProgrammatic)
	}
}

// IsDisplaying reports whether an entry is on screen. A non-empty name
// restricts the check to entries with that name.
func (m *Manager) IsDisplaying(name string) bool {
	cur := m.displayed()
	if cur == nil {
		return false
	}
	return name == "" || cur.Attributes().Name == name
}

// Current returns the most recent entry that has not been removed.
func (m *Manager) Current() *entry.Entry {
	return m.current
}

// Entry returns the live entry with id.
func (m *Manager) Entry(id string) (*entry.Entry, bool) {
	e, ok := m.entries[id]
	return e, ok
}

// Entries returns every live entry, oldest first.
func (m *Manager) Entries() []*entry.Entry {
	out := make([]*entry.Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// ActiveCount returns the number of entries whose entrance started and
// that have not been removed.
func (m *Manager) ActiveCount() int {
	return m.active
}

// InFlight returns the number of presentations set up but not yet entering.
func (m *Manager) InFlight() int {
	return m.inFlight
}

// TapScreen handles a tap outside the current entry. It reports whether the
// host should forward the tap to whatever is underneath.
func (m *Manager) TapScreen() bool {
	cur := m.displayed()
	if cur == nil {
		return true
	}
	in := cur.Attributes().ScreenInteraction
	forward := false
	switch in.Default {
	case attr.ActionForward, "":
		forward = true
	case attr.ActionDismiss:
		cur.Dismiss(interaction.ReasonScreenTap)
	case attr.ActionDelayExit:
		if in.DelayExit > 0 {
			d := in.DelayExit
			cur.Interaction().ScheduleAutoDismiss(&d)
		} else {
			cur.Interaction().ScheduleAutoDismiss(nil)
		}
	}
	for _, fn := range in.Custom {
		if fn != nil {
			fn()
		}
	}
	return forward
}

// Relayout recomputes every entry's geometry after the container changed.
func (m *Manager) Relayout() {
	for _, e := range m.Entries() {
		e.Relayout()
	}
}

func (m *Manager) entranceStarted(e *entry.Entry) {
	if !m.counted[e.ID()] {
		m.counted[e.ID()] = true
		m.active++
	}
	m.logger.Debug("entry active", "entry_id", e.ID(), "active_count", m.active)
	m.delegate.ChangeToActive(e.Attributes())

	if h := e.Attributes().Haptic; m.haptics != nil && h != "" && h != attr.HapticNone {
		m.haptics.Emit(h)
	}
}

func (m *Manager) exitStarted(e *entry.Entry) {
	m.logger.Debug("entry inactive", "entry_id", e.ID(), "reason", e.Reason())
	m.delegate.ChangeToInactive(e.Attributes())
}

func (m *Manager) removed(e *entry.Entry) {
	delete(m.entries, e.ID())
	if m.current == e {
		m.current = nil
	}
	if m.counted[e.ID()] {
		delete(m.counted, e.ID())
		if m.active > 0 {
			m.active--
		}
	}

	m.logger.Info("entry removed",
		"entry_id", e.ID(),
		"reason", e.Reason(),
		"active_count", m.active,
		"in_flight", m.inFlight,
	)

	if m.onRemoved != nil {
		m.onRemoved(e)
	}

	if m.active == 0 && m.inFlight == 0 {
		m.provider.SetState(window.StateMain)
		m.provider.Release()
	}
}

// bridge is the handle entries hold back to the manager.
type bridge struct{ m *Manager }

func (b bridge) Container() geometry.Size       { return b.m.provider.Container() }
func (b bridge) SafeArea() geometry.Insets      { return b.m.provider.SafeArea() }
func (b bridge) SupportsSafeArea() bool         { return b.m.provider.SupportsSafeArea() }
func (b bridge) EntranceStarted(e *entry.Entry) { b.m.entranceStarted(e) }
func (b bridge) ExitStarted(e *entry.Entry)     { b.m.exitStarted(e) }
func (b bridge) Removed(e *entry.Entry)         { b.m.removed(e) }
