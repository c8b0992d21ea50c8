package animation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastkit/internal/attr"
	"github.com/jmylchreest/toastkit/internal/loop"
)

type values map[Property]float64

func (v values) Value(p Property) float64       { return v[p] }
func (v values) SetValue(p Property, f float64) { v[p] = f }

func newTarget() values {
	return values{PropertyOffset: 0, PropertyAlpha: 1, PropertyScale: 1}
}

func TestEaseOut(t *testing.T) {
	assert.Equal(t, 0.0, EaseOut(0))
	assert.Equal(t, 0.75, EaseOut(0.5))
	assert.Equal(t, 1.0, EaseOut(1))
	assert.Equal(t, 1.0, EaseOut(2))
	assert.Greater(t, EaseOut(0.25), 0.25)
}

func TestAnimate_ReachesTarget(t *testing.T) {
	clock := loop.NewManual(time.Time{})
	target := newTarget()
	a := New(clock, target, nil)

	var results []bool
	a.Animate(PropertyOffset, 100, 300*time.Millisecond, 0, func(ok bool) { results = append(results, ok) })
	assert.True(t, a.Running(PropertyOffset))

	clock.Advance(150 * time.Millisecond)
	mid := target[PropertyOffset]
	assert.Greater(t, mid, 50.0, "ease-out is past halfway at the midpoint")
	assert.Less(t, mid, 100.0)
	assert.Empty(t, results)

	clock.Advance(150 * time.Millisecond)
	assert.Equal(t, 100.0, target[PropertyOffset])
	assert.Equal(t, []bool{true}, results)
	assert.True(t, a.Idle())
}

func TestAnimate_Delay(t *testing.T) {
	clock := loop.NewManual(time.Time{})
	target := newTarget()
	a := New(clock, target, nil)

	done := false
	a.Animate(PropertyAlpha, 0, 100*time.Millisecond, 200*time.Millisecond, func(bool) { done = true })

	clock.Advance(199 * time.Millisecond)
	assert.Equal(t, 1.0, target[PropertyAlpha])

	clock.Advance(101 * time.Millisecond)
	assert.Equal(t, 0.0, target[PropertyAlpha])
	assert.True(t, done)
}

func TestAnimate_SupersedeBeginsFromCurrent(t *testing.T) {
	clock := loop.NewManual(time.Time{})
	target := newTarget()
	a := New(clock, target, nil)

	var first []bool
	a.Animate(PropertyOffset, 100, 300*time.Millisecond, 0, func(ok bool) { first = append(first, ok) })
	clock.Advance(100 * time.Millisecond)
	current := target[PropertyOffset]
	require.Greater(t, current, 0.0)

	var second []bool
	a.Animate(PropertyOffset, -50, 300*time.Millisecond, 0, func(ok bool) { second = append(second, ok) })
	assert.Equal(t, []bool{false}, first)
	assert.Equal(t, current, target[PropertyOffset], "no jump when superseding")

	clock.Advance(16 * time.Millisecond)
	assert.Less(t, target[PropertyOffset], current)

	clock.Advance(time.Second)
	assert.Equal(t, -50.0, target[PropertyOffset])
	assert.Equal(t, []bool{false}, first)
	assert.Equal(t, []bool{true}, second)
}

func TestRetarget(t *testing.T) {
	clock := loop.NewManual(time.Time{})
	target := newTarget()
	a := New(clock, target, nil)

	var results []bool
	a.Animate(PropertyOffset, 100, 300*time.Millisecond, 0, func(ok bool) { results = append(results, ok) })
	clock.Advance(100 * time.Millisecond)
	current := target[PropertyOffset]

	require.True(t, a.Retarget(PropertyOffset, -40))
	assert.Equal(t, current, target[PropertyOffset], "no jump when retargeting")
	assert.True(t, a.Running(PropertyOffset))

	clock.Advance(199 * time.Millisecond)
	assert.Empty(t, results)

	clock.Advance(time.Millisecond)
	assert.Equal(t, -40.0, target[PropertyOffset])
	assert.Equal(t, []bool{true}, results, "keeps the original completion")
	assert.True(t, a.Idle())
}

func TestRetarget_BeforeDelayElapses(t *testing.T) {
	clock := loop.NewManual(time.Time{})
	target := newTarget()
	a := New(clock, target, nil)

	a.Animate(PropertyOffset, 100, 100*time.Millisecond, 50*time.Millisecond, nil)
	require.True(t, a.Retarget(PropertyOffset, 30))

	clock.Advance(150 * time.Millisecond)
	assert.Equal(t, 30.0, target[PropertyOffset])
}

func TestRetarget_NoTrack(t *testing.T) {
	target := newTarget()
	a := New(loop.NewManual(time.Time{}), target, nil)

	assert.False(t, a.Retarget(PropertyOffset, 10))
	assert.Equal(t, 0.0, target[PropertyOffset])
}

func TestAnimate_ZeroDurationIsSynchronous(t *testing.T) {
	clock := loop.NewManual(time.Time{})
	target := newTarget()
	a := New(clock, target, nil)

	calls := 0
	a.Animate(PropertyScale, 0.5, 0, 0, func(ok bool) {
		assert.True(t, ok)
		calls++
	})
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0.5, target[PropertyScale])
	assert.Zero(t, clock.Pending())
}

func TestStopAll_Silent(t *testing.T) {
	clock := loop.NewManual(time.Time{})
	a := New(clock, newTarget(), nil)

	calls := 0
	a.Animate(PropertyOffset, 10, time.Second, 0, func(bool) { calls++ })
	a.Animate(PropertyAlpha, 0, time.Second, 0, func(bool) { calls++ })
	a.StopAll()
	clock.Advance(2 * time.Second)

	assert.Zero(t, calls)
	assert.True(t, a.Idle())
}

func TestBarrier(t *testing.T) {
	var got []bool
	b := NewBarrier(3, func(ok bool) { got = append(got, ok) })
	b.Done(true)
	b.Done(false)
	assert.False(t, b.Fired())
	b.Done(true)
	b.Done(true)
	assert.True(t, b.Fired())
	assert.Equal(t, []bool{false}, got)

	got = nil
	NewBarrier(0, func(ok bool) { got = append(got, ok) })
	assert.Equal(t, []bool{true}, got)
}

func TestPlay(t *testing.T) {
	tests := []struct {
		name      string
		spec      attr.Animation
		wantAlpha float64
		wantScale float64
		sync      bool
	}{
		{
			name:      "no effects",
			spec:      attr.Animation{Duration: time.Second},
			wantAlpha: 1,
			wantScale: 1,
			sync:      true,
		},
		{
			name:      "translate only",
			spec:      attr.Animation{Duration: 300 * time.Millisecond, Translate: &attr.Translate{}},
			wantAlpha: 1,
			wantScale: 1,
		},
		{
			name: "all three",
			spec: attr.Animation{
				Duration:  300 * time.Millisecond,
				Delay:     50 * time.Millisecond,
				Translate: &attr.Translate{},
				Fade:      &attr.Range{Start: 0, End: 0.9},
				Scale:     &attr.Range{Start: 0.5, End: 1.2},
			},
			wantAlpha: 0.9,
			wantScale: 1.2,
		},
		{
			name:      "fade without translation",
			spec:      attr.Animation{Duration: 200 * time.Millisecond, Fade: &attr.Range{Start: 1, End: 0}},
			wantAlpha: 0,
			wantScale: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := loop.NewManual(time.Time{})
			target := newTarget()
			a := New(clock, target, nil)

			calls := 0
			b := a.Play(tt.spec, 40, func(ok bool) {
				assert.True(t, ok)
				calls++
			})

			if tt.sync {
				assert.Equal(t, 1, calls)
				assert.True(t, b.Fired())
				assert.Equal(t, 40.0, target[PropertyOffset])
				return
			}

			assert.Zero(t, calls)
			clock.RunUntilIdle(1000)
			assert.Equal(t, 1, calls)
			assert.Equal(t, 40.0, target[PropertyOffset])
			assert.Equal(t, tt.wantAlpha, target[PropertyAlpha])
			assert.Equal(t, tt.wantScale, target[PropertyScale])
		})
	}
}

func TestPlay_FadePresetsStart(t *testing.T) {
	clock := loop.NewManual(time.Time{})
	target := newTarget()
	a := New(clock, target, nil)

	a.Play(attr.Animation{Duration: time.Second, Delay: time.Second, Fade: &attr.Range{Start: 0, End: 1}}, 0, nil)
	assert.Equal(t, 0.0, target[PropertyAlpha])
}
