package animation

import "github.com/jmylchreest/toastkit/internal/attr"

// Barrier joins n concurrent tasks into one completion.
type Barrier struct {
	remaining int
	finished  bool
	fired     bool
	fn        func(finished bool)
}

// NewBarrier returns a barrier that calls fn once all n tasks reported.
// fn receives true only if every task finished. A barrier for zero tasks
// fires immediately.
func NewBarrier(n int, fn func(finished bool)) *Barrier {
	b := &Barrier{remaining: n, finished: true, fn: fn}
	if n <= 0 {
		b.fire()
	}
	return b
}

// Done reports one task. Extra reports after the barrier fired are ignored.
func (b *Barrier) Done(finished bool) {
	if b.fired {
		return
	}
	if !finished {
		b.finished = false
	}
	b.remaining--
	if b.remaining <= 0 {
		b.fire()
	}
}

// Fired reports whether the completion ran.
func (b *Barrier) Fired() bool {
	return b.fired
}

func (b *Barrier) fire() {
	b.fired = true
	if b.fn != nil {
		b.fn(b.finished)
	}
}

// Play runs the effects of spec concurrently and calls completion once
// after all of them reported.
//
// The translation moves the offset to offsetTo. Without a translation the
// offset jumps there, since the relation flip alone decides the position.
// Fade and scale are preset to their start values and animated to their end.
// A spec with no effects completes synchronously.
func (a *Animator) Play(spec attr.Animation, offsetTo float64, completion func(finished bool)) *Barrier {
	if !spec.ContainsAnimation() {
		a.Set(PropertyOffset, offsetTo)
		return NewBarrier(0, completion)
	}

	b := NewBarrier(spec.EffectCount(), completion)
	if spec.Translate != nil {
		a.Animate(PropertyOffset, offsetTo, spec.Duration, spec.Delay, b.Done)
	} else {
		a.Set(PropertyOffset, offsetTo)
	}
	if spec.Fade != nil {
		a.Set(PropertyAlpha, spec.Fade.Start)
		a.Animate(PropertyAlpha, spec.Fade.End, spec.Duration, spec.Delay, b.Done)
	}
	if spec.Scale != nil {
		a.Set(PropertyScale, spec.Scale.Start)
		a.Animate(PropertyScale, spec.Scale.End, spec.Duration, spec.Delay, b.Done)
	}
	return b
}
