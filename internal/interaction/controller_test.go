package interaction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/toastkit/internal/attr"
	"github.com/jmylchreest/toastkit/internal/loop"
)

type fakeHost struct {
	sign      float64
	height    float64
	dismissed []Reason
	drags     []float64
	pullbacks int
}

func (h *fakeHost) Dismiss(r Reason)     { h.dismissed = append(h.dismissed, r) }
func (h *fakeHost) DragTo(o float64)     { h.drags = append(h.drags, o) }
func (h *fakeHost) PullBack()            { h.pullbacks++ }
func (h *fakeHost) Height() float64      { return h.height }
func (h *fakeHost) OutwardSign() float64 { return h.sign }

func setup(modify func(*attr.Attributes)) (*Controller, *fakeHost, *loop.Manual) {
	a := attr.Default()
	a.EntranceAnimation.Duration = 300 * time.Millisecond
	a.DisplayDuration = 2 * time.Second
	if modify != nil {
		modify(a)
	}
	clock := loop.NewManual(time.Time{})
	host := &fakeHost{sign: -1, height: 100}
	return New(a, clock, host, nil), host, clock
}

func TestScheduleAutoDismiss_DelayIncludesEntrance(t *testing.T) {
	c, host, clock := setup(nil)
	start := clock.Now()

	c.ScheduleAutoDismiss(nil)
	assert.True(t, c.Pending())
	assert.Equal(t, start.Add(2300*time.Millisecond), c.Deadline())

	clock.Advance(2299 * time.Millisecond)
	assert.Empty(t, host.dismissed)

	clock.Advance(time.Millisecond)
	assert.Equal(t, []Reason{ReasonTimeout}, host.dismissed)
	assert.False(t, c.Pending())
}

func TestScheduleAutoDismiss_CancelReplace(t *testing.T) {
	c, host, clock := setup(nil)

	c.ScheduleAutoDismiss(nil)
	clock.Advance(time.Second)
	c.ScheduleAutoDismiss(nil)

	clock.Advance(2 * time.Second)
	assert.Empty(t, host.dismissed, "first timer must not fire")

	clock.Advance(time.Second)
	assert.Equal(t, []Reason{ReasonTimeout}, host.dismissed)
}

func TestScheduleAutoDismiss_Forever(t *testing.T) {
	c, host, clock := setup(func(a *attr.Attributes) { a.DisplayDuration = attr.Forever })

	c.ScheduleAutoDismiss(nil)
	assert.False(t, c.Pending())
	clock.Advance(time.Hour)
	assert.Empty(t, host.dismissed)

	override := time.Second
	c.ScheduleAutoDismiss(&override)
	assert.True(t, c.Pending())
}

func TestCancel_AfterFireIsNoop(t *testing.T) {
	c, host, clock := setup(nil)
	c.ScheduleAutoDismiss(nil)
	clock.Advance(time.Minute)
	assert.NotPanics(t, c.Cancel)
	assert.Len(t, host.dismissed, 1)
}

func TestTap(t *testing.T) {
	tests := []struct {
		name          string
		action        attr.Action
		delayExit     time.Duration
		wantDismissed []Reason
		wantDeadline  time.Duration
	}{
		{"dismiss", attr.ActionDismiss, 0, []Reason{ReasonTap}, 0},
		{"absorb", attr.ActionAbsorb, 0, nil, 0},
		{"delay exit uses display", attr.ActionDelayExit, 0, nil, 2300 * time.Millisecond},
		{"delay exit override", attr.ActionDelayExit, 5 * time.Second, nil, 5300 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			custom := 0
			c, host, clock := setup(func(a *attr.Attributes) {
				a.EntryInteraction = attr.Interaction{
					Default:   tt.action,
					DelayExit: tt.delayExit,
					Custom:    []func(){func() { custom++ }, nil},
				}
			})
			c.ScheduleAutoDismiss(nil)
			clock.Advance(time.Second)

			c.Tap()
			assert.Equal(t, tt.wantDismissed, host.dismissed)
			assert.Equal(t, 1, custom)
			if tt.wantDeadline > 0 {
				assert.Equal(t, clock.Now().Add(tt.wantDeadline), c.Deadline())
			}
		})
	}
}

func TestTouch_HoldsEntry(t *testing.T) {
	c, host, clock := setup(func(a *attr.Attributes) {
		a.EntryInteraction.Default = attr.ActionDelayExit
	})
	c.ScheduleAutoDismiss(nil)

	c.TouchBegan()
	assert.False(t, c.Pending())
	clock.Advance(time.Minute)
	assert.Empty(t, host.dismissed)

	c.TouchEnded()
	assert.True(t, c.Pending())
	clock.Advance(2300 * time.Millisecond)
	assert.Equal(t, []Reason{ReasonTimeout}, host.dismissed)
}

func TestTouch_IgnoredWithoutDelayExit(t *testing.T) {
	c, _, _ := setup(nil)
	c.ScheduleAutoDismiss(nil)
	c.TouchBegan()
	assert.True(t, c.Pending())
}

func TestPan_CancelAndReschedule(t *testing.T) {
	c, host, clock := setup(func(a *attr.Attributes) {
		a.EntryInteraction.Default = attr.ActionDelayExit
		a.Scroll = attr.Scroll{Kind: attr.ScrollDisabled}
	})
	c.ScheduleAutoDismiss(nil)

	c.Pan(PanBegan, 0, 0)
	assert.False(t, c.Pending())
	c.Pan(PanChanged, -30, 0)
	assert.Empty(t, host.drags, "scroll disabled does not move the entry")

	clock.Advance(time.Minute)
	c.Pan(PanCancelled, 0, 0)
	assert.True(t, c.Pending())
	assert.Empty(t, host.dismissed)
}

func TestPan_Swipe(t *testing.T) {
	tests := []struct {
		name          string
		translation   float64
		velocity      float64
		swipeable     bool
		wantDismissed bool
		wantPullback  int
	}{
		{"past threshold", -40, 0, true, true, 0},
		{"fast fling", -10, -900, true, true, 0},
		{"short drag pulls back", -10, -100, true, false, 1},
		{"inward drag pulls back", 30, 0, true, false, 1},
		{"not swipeable", -80, 0, false, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, host, _ := setup(func(a *attr.Attributes) {
				a.Scroll.Swipeable = tt.swipeable
			})
			c.Pan(PanBegan, 0, 0)
			c.Pan(PanChanged, tt.translation, tt.velocity)
			c.Pan(PanEnded, tt.translation, tt.velocity)

			if tt.wantDismissed {
				assert.Equal(t, []Reason{ReasonSwipe}, host.dismissed)
			} else {
				assert.Empty(t, host.dismissed)
			}
			assert.Equal(t, tt.wantPullback, host.pullbacks)
		})
	}
}

func TestPan_RubberBanding(t *testing.T) {
	c, host, _ := setup(nil)
	c.Pan(PanBegan, 0, 0)
	c.Pan(PanChanged, 200, 0)
	c.Pan(PanChanged, -20, 0)

	assert.Len(t, host.drags, 2)
	assert.Greater(t, host.drags[0], 0.0)
	assert.Less(t, host.drags[0], 100.0, "inward drag is damped below the entry height")
	assert.Equal(t, -20.0, host.drags[1], "outward drag follows the finger")

	c2, host2, _ := setup(func(a *attr.Attributes) { a.Scroll.RubberBanding = false })
	c2.Pan(PanBegan, 0, 0)
	c2.Pan(PanChanged, 50, 0)
	assert.Equal(t, []float64{0}, host2.drags)
}

func TestDisable_IgnoresInput(t *testing.T) {
	c, host, clock := setup(nil)
	c.ScheduleAutoDismiss(nil)
	c.Disable()

	c.Tap()
	c.Pan(PanBegan, 0, 0)
	c.ScheduleAutoDismiss(nil)
	clock.Advance(time.Hour)

	assert.True(t, c.Disabled())
	assert.False(t, c.Pending())
	assert.Empty(t, host.dismissed)
}

func TestRubberBand(t *testing.T) {
	assert.Zero(t, RubberBand(10, 0))
	assert.Equal(t, 0.0, RubberBand(0, 100))
	assert.InDelta(t, -RubberBand(50, 100), RubberBand(-50, 100), 1e-9)
	assert.Less(t, RubberBand(1e6, 100), 100.0)
}
