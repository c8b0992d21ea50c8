package presentation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastkit/internal/attr"
	"github.com/jmylchreest/toastkit/internal/constraint"
	"github.com/jmylchreest/toastkit/internal/entry"
	"github.com/jmylchreest/toastkit/internal/geometry"
	"github.com/jmylchreest/toastkit/internal/interaction"
	"github.com/jmylchreest/toastkit/internal/loop"
	"github.com/jmylchreest/toastkit/internal/window"
)

type recorder struct {
	events []string
}

func (r *recorder) ChangeToActive(a *attr.Attributes) { r.events = append(r.events, "active:"+a.Name) }
func (r *recorder) ChangeToInactive(a *attr.Attributes) {
	r.events = append(r.events, "inactive:"+a.Name)
}

type hapticsRecorder struct{ emitted []attr.Haptic }

func (h *hapticsRecorder) Emit(k attr.Haptic) { h.emitted = append(h.emitted, k) }

type fixture struct {
	m        *Manager
	clock    *loop.Manual
	provider *window.Headless
	delegate *recorder
	haptics  *hapticsRecorder
}

func newFixture() *fixture {
	f := &fixture{
		clock:    loop.NewManual(time.Time{}),
		provider: window.NewHeadless(geometry.Size{Width: 400, Height: 800}, geometry.Insets{Top: 24, Bottom: 16}, nil),
		delegate: &recorder{},
		haptics:  &hapticsRecorder{},
	}
	f.m = NewManager(f.provider, f.delegate, f.clock, WithHaptics(f.haptics))
	return f
}

func named(name string, modify func(*attr.Attributes)) *attr.Attributes {
	a := attr.Default()
	a.Name = name
	if modify != nil {
		modify(a)
	}
	return a
}

func (f *fixture) display(t *testing.T, a *attr.Attributes) (*entry.Entry, *window.Surface) {
	t.Helper()
	s := &window.Surface{}
	e, err := f.m.Display(a, window.Content{Size: geometry.Size{Width: 300, Height: 64}}, s)
	require.NoError(t, err)
	return e, s
}

func TestNewManager_FailFast(t *testing.T) {
	p := window.NewHeadless(geometry.Size{Width: 1, Height: 1}, geometry.Insets{}, nil)
	clock := loop.NewManual(time.Time{})

	assert.Panics(t, func() { NewManager(p, nil, clock) })
	assert.Panics(t, func() { NewManager(nil, DelegateFuncs{}, clock) })
	assert.Panics(t, func() { NewManager(p, DelegateFuncs{}, nil) })
	assert.NotPanics(t, func() { NewManager(p, DelegateFuncs{}, clock) })
}

func TestDisplay_SetupThenResting(t *testing.T) {
	f := newFixture()
	var phaseAtActive constraint.Phase
	f.m.delegate = DelegateFuncs{OnActive: func(*attr.Attributes) {
		phaseAtActive = f.m.Current().Relations().Phase()
	}}

	e, s := f.display(t, named("a", nil))

	assert.Equal(t, constraint.PhaseEntering, phaseAtActive, "entering until the entrance is engaged")
	assert.Equal(t, constraint.PhaseResting, e.Relations().Phase())
	assert.Equal(t, 1, e.Relations().MustCount())
	assert.True(t, s.Attached)
	assert.Equal(t, window.StateOverlay, f.provider.State())
	assert.Equal(t, 1, f.m.ActiveCount())
	assert.Zero(t, f.m.InFlight())
}

func TestDisplay_InvalidAttributes(t *testing.T) {
	f := newFixture()
	_, err := f.m.Display(named("bad", func(a *attr.Attributes) { a.Position = "middle" }), window.Content{}, &window.Surface{})
	assert.ErrorIs(t, err, attr.ErrInvalidPosition)
	assert.Zero(t, f.m.ActiveCount())
	assert.Empty(t, f.provider.States())
}

func TestScenario_BottomAutoDismiss(t *testing.T) {
	f := newFixture()
	e, s := f.display(t, named("bottom", func(a *attr.Attributes) {
		a.Position = attr.PositionBottom
		a.DisplayDuration = 2 * time.Second
	}))
	assert.Equal(t, []string{"active:bottom"}, f.delegate.events)

	entrance := e.Attributes().EntranceAnimation.TotalDuration()
	f.clock.Advance(entrance)
	assert.Equal(t, 800.0-16-64, s.Last.Frame.Y)

	f.clock.Advance(2*time.Second - time.Millisecond)
	assert.Equal(t, entry.StateActive, e.State())

	f.clock.Advance(time.Millisecond)
	assert.Equal(t, entry.StateExiting, e.State())
	assert.Equal(t, []string{"active:bottom", "inactive:bottom"}, f.delegate.events)

	f.clock.RunUntilIdle(1000)
	assert.Equal(t, entry.StateRemoved, e.State())
	assert.True(t, s.Detached)
	assert.Zero(t, f.m.ActiveCount())
	assert.Equal(t, window.StateMain, f.provider.State())
	assert.Equal(t, 1, f.provider.Releases())
	assert.Equal(t, []string{"active:bottom", "inactive:bottom"}, f.delegate.events)
}

func TestScenario_TapDismiss(t *testing.T) {
	f := newFixture()
	e, _ := f.display(t, named("tap", func(a *attr.Attributes) { a.DisplayDuration = 10 * time.Second }))
	f.clock.Advance(time.Second)

	e.Tap()
	assert.Equal(t, interaction.ReasonTap, e.Reason())
	assert.False(t, e.Interaction().Pending())

	f.clock.Advance(time.Minute)
	assert.Equal(t, entry.StateRemoved, e.State())
	assert.Equal(t, []string{"active:tap", "inactive:tap"}, f.delegate.events)
	assert.Equal(t, 1, f.provider.Releases())
}

func TestScenario_AnimatedPopOut(t *testing.T) {
	f := newFixture()
	var removed []string
	f.m.SetRemovedHook(func(e *entry.Entry) { removed = append(removed, e.Attributes().Name) })

	first, _ := f.display(t, named("first", nil))
	f.clock.Advance(time.Second)

	second, _ := f.display(t, named("second", nil))
	assert.Equal(t, constraint.PhasePoppedOut, first.Relations().Phase())
	assert.Equal(t, interaction.ReasonPushedOut, first.Reason())
	assert.Equal(t, 2, f.m.ActiveCount(), "first still animating out")
	assert.Same(t, second, f.m.Current())
	assert.Equal(t, []string{"active:first", "inactive:first", "active:second"}, f.delegate.events)

	f.clock.Advance(time.Second)
	assert.Equal(t, entry.StateRemoved, first.State())
	assert.Equal(t, 1, f.m.ActiveCount())
	assert.Zero(t, f.provider.Releases(), "window stays while second is shown")

	f.clock.RunUntilIdle(1000)
	assert.Equal(t, []string{"first", "second"}, removed)
	assert.Zero(t, f.m.ActiveCount())
	assert.Equal(t, 1, f.provider.Releases())
}

func TestPushOut_OverriddenKeepsWindow(t *testing.T) {
	f := newFixture()
	first, _ := f.display(t, named("first", func(a *attr.Attributes) {
		a.PopBehavior = attr.PopBehavior{Kind: attr.PopOverridden}
	}))

	second, _ := f.display(t, named("second", nil))
	assert.Equal(t, entry.StateRemoved, first.State())
	assert.Equal(t, 1, f.m.ActiveCount())
	assert.Zero(t, f.provider.Releases(), "newcomer in flight holds the window")
	assert.Equal(t, window.StateOverlay, f.provider.State())
	assert.Equal(t, entry.StateActive, second.State())
}

func TestDisplay_LowerPriorityRejected(t *testing.T) {
	f := newFixture()
	f.display(t, named("high", func(a *attr.Attributes) { a.Priority = attr.PriorityHigh }))

	_, err := f.m.Display(named("low", nil), window.Content{}, &window.Surface{})
	assert.ErrorIs(t, err, ErrLowerPriority)
	assert.True(t, f.m.IsDisplaying("high"))
	assert.Equal(t, 1, f.m.ActiveCount())
}

func TestActiveCount_RoundTrip(t *testing.T) {
	f := newFixture()
	for i := 0; i < 5; i++ {
		e, _ := f.display(t, named("loop", nil))
		if i%2 == 0 {
			e.Dismiss(interaction.ReasonProgrammatic)
		}
		assert.GreaterOrEqual(t, f.m.ActiveCount(), 0)
	}
	f.clock.RunUntilIdle(10000)
	assert.Zero(t, f.m.ActiveCount())
	assert.Empty(t, f.m.Entries())
}

func TestDismissAll(t *testing.T) {
	f := newFixture()
	f.display(t, named("a", nil))
	f.display(t, named("b", func(a *attr.Attributes) { a.DisplayDuration = attr.Forever }))
	assert.True(t, f.m.IsDisplaying(""))
	assert.True(t, f.m.IsDisplaying("b"))
	assert.False(t, f.m.IsDisplaying("a"))

	f.m.DismissAll()
	assert.False(t, f.m.IsDisplaying(""))
	assert.False(t, f.m.Dismiss())

	f.clock.RunUntilIdle(1000)
	assert.Zero(t, f.m.ActiveCount())
	assert.Equal(t, 1, f.provider.Releases())
}

func TestDismissEntry(t *testing.T) {
	f := newFixture()
	e, _ := f.display(t, named("a", func(a *attr.Attributes) { a.ExitAnimation = attr.None() }))

	assert.False(t, f.m.DismissEntry("missing"))
	assert.True(t, f.m.DismissEntry(e.ID()))
	_, ok := f.m.Entry(e.ID())
	assert.False(t, ok)
}

func TestHaptics_OncePerEntrance(t *testing.T) {
	f := newFixture()
	f.display(t, named("ok", func(a *attr.Attributes) { a.Haptic = attr.HapticSuccess }))
	f.display(t, named("quiet", nil))
	f.clock.RunUntilIdle(1000)

	assert.Equal(t, []attr.Haptic{attr.HapticSuccess}, f.haptics.emitted)
}

func TestTapScreen(t *testing.T) {
	tests := []struct {
		name        string
		action      attr.Action
		wantForward bool
		wantState   entry.State
	}{
		{"forward", attr.ActionForward, true, entry.StateActive},
		{"absorb", attr.ActionAbsorb, false, entry.StateActive},
		{"dismiss", attr.ActionDismiss, false, entry.StateExiting},
		{"delay exit", attr.ActionDelayExit, false, entry.StateActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			custom := 0
			e, _ := f.display(t, named("s", func(a *attr.Attributes) {
				a.ScreenInteraction = attr.Interaction{Default: tt.action, Custom: []func(){func() { custom++ }}}
			}))

			assert.Equal(t, tt.wantForward, f.m.TapScreen())
			assert.Equal(t, tt.wantState, e.State())
			assert.Equal(t, 1, custom)
		})
	}

	f := newFixture()
	assert.True(t, f.m.TapScreen(), "nothing shown, forward")
}

func TestRelayout(t *testing.T) {
	f := newFixture()
	e, s := f.display(t, named("r", nil))
	f.clock.Advance(time.Second)

	f.provider.SetContainer(geometry.Size{Width: 1000, Height: 600}, geometry.Insets{})
	f.m.Relayout()

	assert.Equal(t, 480.0, e.Visual().Frame.Width, "capped by max width")
	assert.Equal(t, 0.0, s.Last.Frame.Y)
	assert.Equal(t, constraint.PhaseResting, e.Relations().Phase())
}

func TestDelegateDismissDuringActivation(t *testing.T) {
	f := newFixture()
	f.m.delegate = DelegateFuncs{OnActive: func(*attr.Attributes) { f.m.Dismiss() }}

	e, _ := f.display(t, named("flash", func(a *attr.Attributes) { a.ExitAnimation = attr.None() }))
	assert.Equal(t, entry.StateRemoved, e.State())
	assert.Zero(t, f.m.ActiveCount())
	assert.Equal(t, 1, f.provider.Releases())
	f.clock.RunUntilIdle(1000)
	assert.Equal(t, 1, f.provider.Releases())
}
