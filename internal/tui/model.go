// Package tui provides a BubbleTea playground that presents toasts in the
// terminal. Entries are laid out in character cells by the same
// presentation manager the daemon uses.
package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/toastkit/internal/attr"
	"github.com/jmylchreest/toastkit/internal/config"
	"github.com/jmylchreest/toastkit/internal/entry"
	"github.com/jmylchreest/toastkit/internal/geometry"
	"github.com/jmylchreest/toastkit/internal/interaction"
	"github.com/jmylchreest/toastkit/internal/loop"
	"github.com/jmylchreest/toastkit/internal/presentation"
	"github.com/jmylchreest/toastkit/internal/window"
)

// maxEvents is how many lifecycle events the footer keeps.
const maxEvents = 3

// swipeVelocity is the fling speed of a keyboard swipe, in cells per second.
const swipeVelocity = 2000.0

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// session is the mutable state shared with manager callbacks.
type session struct {
	manager  *presentation.Manager
	provider *window.Headless
	texts    map[string]window.Text
	events   []string
	active   bool
	counter  int
	held     string
}

func (s *session) event(format string, args ...any) {
	s.events = append(s.events, fmt.Sprintf(format, args...))
	if len(s.events) > maxEvents {
		s.events = s.events[len(s.events)-maxEvents:]
	}
}

// Model is the main TUI model.
type Model struct {
	cfg     *config.Config
	presets map[string]*config.Preset
	preset  string
	sched   loop.Scheduler
	logger  *slog.Logger
	s       *session

	keys     KeyMap
	help     help.Model
	showHelp bool
	position attr.Position
	width    int
	height   int

	statusMsg string
	statusErr bool
}

// New creates a new TUI model. preset names the preset applied to every
// toast, or "" for the configured default.
func New(cfg *config.Config, presets map[string]*config.Preset, preset string, sched loop.Scheduler, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	m := Model{
		cfg:      cfg,
		presets:  presets,
		preset:   preset,
		sched:    sched,
		logger:   logger,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		position: attr.Position(cfg.Display.Position),
		width:    80,
		height:   24,
	}

	s := &session{texts: make(map[string]window.Text)}
	s.provider = window.NewHeadless(m.stage(), geometry.Insets{}, logger)
	s.manager = presentation.NewManager(s.provider, presentation.DelegateFuncs{
		OnActive: func(a *attr.Attributes) {
			s.active = true
			s.event("%s active", a.Name)
		},
		OnInactive: func(a *attr.Attributes) {
			s.active = false
			s.event("%s inactive", a.Name)
		},
	}, sched, presentation.WithLogger(logger))
	s.manager.SetRemovedHook(func(e *entry.Entry) {
		delete(s.texts, e.ID())
		if s.held == e.ID() {
			s.held = ""
		}
		s.event("%s removed (%s)", e.Attributes().Name, e.Reason())
	})
	m.s = s
	return m
}

// Manager returns the presentation manager driving the stage.
func (m Model) Manager() *presentation.Manager { return m.s.manager }

// stage is the container size: the terminal minus the footer.
func (m Model) stage() geometry.Size {
	return geometry.Size{Width: float64(m.width), Height: float64(max(1, m.height-m.footerHeight()))}
}

func (m Model) footerHeight() int {
	if m.showHelp {
		return 1 + len(m.keys.FullHelp()[0])
	}
	return 2
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	if w, ok := m.sched.(*Scheduler); ok {
		return w.next
	}
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.relayout()
		return m, nil

	case workMsg:
		msg()
		return m, m.Init()

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, nil
	}
	return m, nil
}

type statusMsg struct {
	text  string
	isErr bool
}

func (m *Model) relayout() {
	m.s.provider.SetContainer(m.stage(), geometry.Insets{})
	m.s.manager.Relayout()
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.s.manager.DismissAll()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.relayout()
		return m, nil

	case key.Matches(msg, m.keys.Low):
		return m.show(config.UrgencyLow)
	case key.Matches(msg, m.keys.Normal):
		return m.show(config.UrgencyNormal)
	case key.Matches(msg, m.keys.Critical):
		return m.show(config.UrgencyCritical)
	case key.Matches(msg, m.keys.Position):
		if m.position == attr.PositionBottom {
			m.position = attr.PositionTop
		} else {
			m.position = attr.PositionBottom
		}
		m.setStatus("new toasts at the "+string(m.position), false)
		return m, nil

	case key.Matches(msg, m.keys.TapScreen):
		if m.s.manager.TapScreen() {
			m.setStatus("tap forwarded to the screen", false)
		}
		return m, nil
	case key.Matches(msg, m.keys.Dismiss):
		if !m.s.manager.Dismiss() {
			m.setStatus("nothing to dismiss", true)
		}
		return m, nil
	case key.Matches(msg, m.keys.DismissAll):
		m.s.manager.DismissAll()
		return m, nil
	}

	cur := m.s.manager.Current()
	if cur == nil || cur.State() != entry.StateActive {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Tap):
		cur.Tap()
	case key.Matches(msg, m.keys.SwipeUp):
		swipe(cur, -1)
	case key.Matches(msg, m.keys.SwipeDown):
		swipe(cur, 1)
	case key.Matches(msg, m.keys.Hold):
		if m.s.held == cur.ID() {
			m.s.held = ""
			cur.TouchEnded()
		} else {
			m.s.held = cur.ID()
			cur.TouchBegan()
		}
	}
	return m, nil
}

// swipe flings e by its own height in direction dir.
func swipe(e *entry.Entry, dir float64) {
	d := dir * e.Visual().Frame.Height
	e.Pan(interaction.PanBegan, 0, 0)
	e.Pan(interaction.PanChanged, d, dir*swipeVelocity)
	e.Pan(interaction.PanEnded, d, dir*swipeVelocity)
}

func (m *Model) setStatus(text string, isErr bool) {
	m.statusMsg = text
	m.statusErr = isErr
}

// show presents a toast of the given urgency.
func (m Model) show(urgency int) (tea.Model, tea.Cmd) {
	a, err := m.cfg.Resolve(m.presets, m.preset, m.cfg.Attributes(urgency))
	if err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}

	m.s.counter++
	a.Name = fmt.Sprintf("%s #%d", urgencyName(urgency), m.s.counter)
	a.Position = m.position

	text := window.Text{
		Summary: a.Name,
		Body:    describe(a),
		Metrics: window.CellMetrics,
	}
	e, err := m.s.manager.Display(a, text, &window.Surface{})
	if err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}
	if e.State() != entry.StateRemoved {
		m.s.texts[e.ID()] = text
	}
	m.setStatus("", false)
	return m, nil
}

func urgencyName(urgency int) string {
	switch urgency {
	case config.UrgencyLow:
		return "low"
	case config.UrgencyCritical:
		return "critical"
	default:
		return "normal"
	}
}

// describe summarizes the attributes a toast was shown with.
func describe(a *attr.Attributes) string {
	d := "stays until dismissed"
	if a.DisplayDuration != attr.Forever {
		d = "for " + a.DisplayDuration.String()
	}
	return fmt.Sprintf("priority %d, %s, tap %s", a.Priority, d, a.EntryInteraction.Default)
}

// View renders the stage and the footer.
func (m Model) View() string {
	stage := m.stage()
	var toasts []toast
	for _, e := range m.s.manager.Entries() {
		text, ok := m.s.texts[e.ID()]
		if !ok {
			continue
		}
		v := e.Visual()
		toasts = append(toasts, toast{
			frame: v.Frame,
			alpha: v.Alpha,
			text:  text,
			style: styleFor(e.Attributes().Priority, e.ID() == m.s.held),
		})
	}

	var b strings.Builder
	b.WriteString(render(int(stage.Width), int(stage.Height), toasts))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	if m.showHelp {
		b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	}
	return b.String()
}

func (m Model) statusLine() string {
	if m.statusMsg != "" {
		if m.statusErr {
			return errorStyle.Render(m.statusMsg)
		}
		return statusStyle.Render(m.statusMsg)
	}

	parts := []string{fmt.Sprintf("%d on screen", m.s.manager.ActiveCount())}
	if cur := m.s.manager.Current(); cur != nil {
		if c := cur.Interaction(); c.Pending() {
			parts = append(parts, fmt.Sprintf("%s leaves %s", cur.Attributes().Name,
				humanize.RelTime(c.Deadline(), m.sched.Now(), "ago", "from now")))
		}
	}
	parts = append(parts, m.s.events...)
	return statusStyle.Render(strings.Join(parts, " · "))
}
