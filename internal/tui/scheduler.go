package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Scheduler runs presentation work inside the BubbleTea update loop.
// Timers queue their callbacks; the model pulls them one at a time with a
// command, so entries are only touched from Update.
type Scheduler struct {
	work chan func()
	done chan struct{}
	once sync.Once
}

// NewScheduler creates a Scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{
		work: make(chan func(), 256),
		done: make(chan struct{}),
	}
}

// AfterFunc implements loop.Scheduler. Callbacks that fall due after Stop
// are dropped.
func (s *Scheduler) AfterFunc(d time.Duration, fn func()) {
	time.AfterFunc(d, func() {
		select {
		case s.work <- fn:
		case <-s.done:
		}
	})
}

// Now implements loop.Scheduler.
func (s *Scheduler) Now() time.Time { return time.Now() }

// Stop releases every timer still waiting to queue work. Call it once the
// program has quit.
func (s *Scheduler) Stop() {
	s.once.Do(func() { close(s.done) })
}

// next waits for the next queued callback.
func (s *Scheduler) next() tea.Msg {
	select {
	case fn := <-s.work:
		return workMsg(fn)
	case <-s.done:
		return nil
	}
}

type workMsg func()
