package loop

import (
	"sort"
	"time"
)

// Manual is a deterministic Scheduler driven by a virtual clock.
// Nothing runs until Advance is called.
type Manual struct {
	now   time.Time
	seq   uint64
	queue []scheduled
}

type scheduled struct {
	at  time.Time
	seq uint64
	fn  func()
}

// NewManual returns a Manual scheduler starting at start.
// A zero start uses a fixed epoch so traces are reproducible.
func NewManual(start time.Time) *Manual {
	if start.IsZero() {
		start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return &Manual{now: start}
}

// AfterFunc implements Scheduler.
func (m *Manual) AfterFunc(d time.Duration, fn func()) {
	if d < 0 {
		d = 0
	}
	m.seq++
	m.queue = append(m.queue, scheduled{at: m.now.Add(d), seq: m.seq, fn: fn})
	sort.SliceStable(m.queue, func(i, j int) bool {
		if m.queue[i].at.Equal(m.queue[j].at) {
			return m.queue[i].seq < m.queue[j].seq
		}
		return m.queue[i].at.Before(m.queue[j].at)
	})
}

// Now implements Scheduler.
func (m *Manual) Now() time.Time {
	return m.now
}

// Advance moves the clock forward by d, running every callback that falls
// due in order. Callbacks scheduled while advancing run too if they fall
// inside the window.
func (m *Manual) Advance(d time.Duration) {
	m.AdvanceTo(m.now.Add(d))
}

// AdvanceTo moves the clock to t, running due callbacks in order.
func (m *Manual) AdvanceTo(t time.Time) {
	for len(m.queue) > 0 && !m.queue[0].at.After(t) {
		next := m.queue[0]
		m.queue = m.queue[1:]
		if next.at.After(m.now) {
			m.now = next.at
		}
		next.fn()
	}
	if t.After(m.now) {
		m.now = t
	}
}

// RunUntilIdle drains the queue, jumping the clock to each deadline.
// It stops after limit callbacks to guard against self-rescheduling work.
func (m *Manual) RunUntilIdle(limit int) int {
	ran := 0
	for len(m.queue) > 0 && ran < limit {
		m.AdvanceTo(m.queue[0].at)
		ran++
	}
	return ran
}

// Pending returns the number of queued callbacks.
func (m *Manual) Pending() int {
	return len(m.queue)
}
