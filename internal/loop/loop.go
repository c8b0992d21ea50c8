// Package loop provides the single-threaded scheduling primitives the
// presentation core runs on. All entry state is mutated from one goroutine;
// timers never call back concurrently, they post work onto that goroutine.
package loop

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Scheduler runs delayed work on the owning goroutine.
type Scheduler interface {
	// AfterFunc arranges for fn to run on the loop goroutine once d has elapsed.
	AfterFunc(d time.Duration, fn func())
	// Now returns the scheduler's notion of the current time.
	Now() time.Time
}

// Handle is a cancellable reference to a scheduled action.
// Cancel invalidates the handle; the scheduled closure checks validity
// before running, so a cancelled handle never fires.
type Handle struct {
	cancelled bool
	fired     bool
}

// Schedule arms fn behind a fresh handle.
func Schedule(s Scheduler, d time.Duration, fn func()) *Handle {
	h := &Handle{}
	s.AfterFunc(d, func() {
		if h.cancelled || h.fired {
			return
		}
		h.fired = true
		fn()
	})
	return h
}

// Cancel invalidates the handle. Cancelling a fired or nil handle is a no-op.
func (h *Handle) Cancel() {
	if h == nil {
		return
	}
	h.cancelled = true
}

// Pending reports whether the action is still due to run.
func (h *Handle) Pending() bool {
	return h != nil && !h.cancelled && !h.fired
}

// Loop is a channel-backed Scheduler. Timers run on their own goroutines
// and hand the callback to Run, which executes them one at a time.
type Loop struct {
	logger *slog.Logger
	work   chan func()
	done   chan struct{}
	once   sync.Once
}

// New creates a Loop. Call Run to start executing work.
func New(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		logger: logger,
		work:   make(chan func(), 100),
		done:   make(chan struct{}),
	}
}

// AfterFunc implements Scheduler.
func (l *Loop) AfterFunc(d time.Duration, fn func()) {
	time.AfterFunc(d, func() {
		l.Post(fn)
	})
}

// Now implements Scheduler.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// Post queues fn for execution on the loop goroutine. It waits while the
// queue is full, so it must not be called from the loop goroutine itself
// under load. Work posted after Run returned is dropped.
func (l *Loop) Post(fn func()) {
	select {
	case <-l.done:
		return
	default:
	}
	select {
	case l.work <- fn:
	case <-l.done:
		l.logger.Debug("loop stopped, dropping callback")
	}
}

// Run executes posted work until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	defer l.once.Do(func() { close(l.done) })

	for {
		select {
		case fn := <-l.work:
			fn()
		case <-ctx.Done():
			return
		}
	}
}
