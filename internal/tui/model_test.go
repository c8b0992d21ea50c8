package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastkit/internal/attr"
	"github.com/jmylchreest/toastkit/internal/config"
	"github.com/jmylchreest/toastkit/internal/geometry"
	"github.com/jmylchreest/toastkit/internal/loop"
	"github.com/jmylchreest/toastkit/internal/window"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T) (Model, *loop.Manual) {
	t.Helper()
	clock := loop.NewManual(time.Time{})
	m := New(config.DefaultConfig(), nil, "", clock, nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	return next.(Model), clock
}

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestModel_ShowAndExpire(t *testing.T) {
	m, clock := newTestModel(t)

	m = press(t, m, runes("n"))
	clock.Advance(time.Second)

	require.Equal(t, 1, m.Manager().ActiveCount())
	view := m.View()
	assert.Contains(t, view, "normal #1")
	assert.Contains(t, view, "priority 500")
	assert.Contains(t, view, "1 on screen")

	clock.Advance(15 * time.Second)
	assert.Zero(t, m.Manager().ActiveCount())
	assert.Contains(t, m.View(), "normal #1 removed (timeout)")
}

func TestModel_TapDismisses(t *testing.T) {
	m, clock := newTestModel(t)

	m = press(t, m, runes("c"))
	clock.Advance(time.Second)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	clock.Advance(time.Second)

	assert.Zero(t, m.Manager().ActiveCount())
	assert.Contains(t, m.View(), "critical #1 removed (tap)")
}

func TestModel_SwipeOutward(t *testing.T) {
	m, clock := newTestModel(t)

	m = press(t, m, runes("n"))
	clock.Advance(time.Second)

	// toasts enter at the top, so down is inward and snaps back
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	clock.Advance(time.Second)
	assert.Equal(t, 1, m.Manager().ActiveCount())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	clock.Advance(time.Second)
	assert.Zero(t, m.Manager().ActiveCount())
	assert.Contains(t, m.View(), "removed (swipe)")
}

func TestModel_LowerPriorityRejected(t *testing.T) {
	m, clock := newTestModel(t)

	m = press(t, m, runes("c"))
	clock.Advance(time.Second)
	m = press(t, m, runes("l"))

	assert.Contains(t, m.View(), "higher priority")
	assert.Equal(t, 1, m.Manager().ActiveCount())
}

func TestModel_PushOut(t *testing.T) {
	m, clock := newTestModel(t)

	m = press(t, m, runes("n"))
	clock.Advance(time.Second)
	m = press(t, m, runes("n"))
	clock.Advance(time.Second)

	assert.Equal(t, 1, m.Manager().ActiveCount())
	view := m.View()
	assert.Contains(t, view, "normal #2")
	assert.Contains(t, view, "normal #1 removed (pushed_out)")
}

func TestModel_HoldAndDismissAll(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Interaction.Tap = string(attr.ActionDelayExit)
	clock := loop.NewManual(time.Time{})
	m := New(cfg, nil, "", clock, nil)

	m = press(t, m, runes("l"))
	clock.Advance(time.Second)
	m = press(t, m, runes("h"))
	clock.Advance(time.Minute)
	assert.Equal(t, 1, m.Manager().ActiveCount(), "held toasts stay")

	m = press(t, m, runes("h"))
	clock.Advance(10 * time.Second)
	assert.Zero(t, m.Manager().ActiveCount(), "released toasts time out again")

	m = press(t, m, runes("n"), runes("c"))
	clock.Advance(time.Second)
	m = press(t, m, runes("D"))
	clock.Advance(time.Second)
	assert.Zero(t, m.Manager().ActiveCount())

	m = press(t, m, runes("d"))
	assert.Contains(t, m.View(), "nothing to dismiss")
}

func TestModel_PositionToggle(t *testing.T) {
	m, clock := newTestModel(t)

	m = press(t, m, runes("p"), runes("n"))
	clock.Advance(time.Second)

	cur := m.Manager().Current()
	require.NotNil(t, cur)
	stage := m.stage()
	f := cur.Visual().Frame
	assert.InDelta(t, stage.Height, f.Y+f.Height, 0.5, "bottom toasts rest on the stage edge")
}

func TestModel_QuitAndHelp(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, runes("?"))
	assert.Contains(t, m.View(), "critical toast")

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_WorkMessages(t *testing.T) {
	s := NewScheduler()
	m := New(config.DefaultConfig(), nil, "", s, nil)

	ran := false
	s.AfterFunc(0, func() { ran = true })

	msg := m.Init()()
	next, cmd := m.Update(msg)
	assert.True(t, ran)
	assert.NotNil(t, cmd, "keeps pulling work")
	_ = next
}

func TestScheduler_StopReleasesTimers(t *testing.T) {
	s := NewScheduler()
	for i := 0; i < cap(s.work); i++ {
		s.work <- func() {}
	}
	s.Stop()

	s.AfterFunc(0, func() {})
	time.Sleep(50 * time.Millisecond)
	for i := 0; i < cap(s.work); i++ {
		<-s.work
	}
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, s.work, "callback due after stop is dropped")
	assert.Nil(t, s.next())
}

func TestRender(t *testing.T) {
	out := render(10, 4, []toast{{
		frame: geometry.Rect{X: 1, Y: 0, Width: 6, Height: 3},
		alpha: 1,
		text:  window.Text{Summary: "hi"},
		style: lipgloss.NewStyle(),
	}})

	assert.Equal(t, []string{
		" ╭────╮   ",
		" │hi  │   ",
		" ╰────╯   ",
		"          ",
	}, strings.Split(out, "\n"))

	hidden := render(4, 1, []toast{{
		frame: geometry.Rect{Width: 4, Height: 3},
		alpha: 0.05,
		style: lipgloss.NewStyle(),
	}})
	assert.Equal(t, "    ", hidden)
}
