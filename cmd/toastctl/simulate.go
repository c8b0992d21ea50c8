package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/toastkit/internal/attr"
	"github.com/jmylchreest/toastkit/internal/config"
	"github.com/jmylchreest/toastkit/internal/entry"
	"github.com/jmylchreest/toastkit/internal/geometry"
	"github.com/jmylchreest/toastkit/internal/interaction"
	"github.com/jmylchreest/toastkit/internal/loop"
	"github.com/jmylchreest/toastkit/internal/presentation"
	"github.com/jmylchreest/toastkit/internal/window"
)

// swipeVelocity is the fling speed of a scripted swipe, in pixels per second.
const swipeVelocity = 2000.0

// maxSteps bounds a virtual-clock run.
const maxSteps = 1_000_000

var simulateOpts struct {
	urgency     string
	preset      string
	position    string
	count       int
	interval    time.Duration
	tapAt       time.Duration
	swipeAt     time.Duration
	screenAt    time.Duration
	width       float64
	height      float64
	insetTop    float64
	insetBottom float64
	until       time.Duration
	realtime    bool
	output      string
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Replay toasts headlessly and print their lifecycle",
	Long: `Present one or more toasts on a headless window and print every lifecycle
event: delegate activation, appearance hooks, haptics, removal reasons and
window state changes.

The run uses a virtual clock by default, so it finishes instantly and the
trace is deterministic. Use --realtime to run at wall-clock speed.

Gestures can be scripted at offsets from the start:

  toastctl simulate --count 2 --interval 1s
  toastctl simulate --urgency critical --tap-at 1500ms
  toastctl simulate --position bottom --swipe-at 2s -o yaml`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	f := simulateCmd.Flags()
	f.StringVar(&simulateOpts.urgency, "urgency", "normal", "Toast urgency (low, normal, critical)")
	f.StringVar(&simulateOpts.preset, "preset", "", "Preset applied to every toast")
	f.StringVar(&simulateOpts.position, "position", "", "Override the position (top, bottom)")
	f.IntVarP(&simulateOpts.count, "count", "n", 1, "Number of toasts")
	f.DurationVar(&simulateOpts.interval, "interval", time.Second, "Time between toasts")
	f.DurationVar(&simulateOpts.tapAt, "tap-at", 0, "Tap the current toast at this offset")
	f.DurationVar(&simulateOpts.swipeAt, "swipe-at", 0, "Swipe the current toast away at this offset")
	f.DurationVar(&simulateOpts.screenAt, "screen-tap-at", 0, "Tap outside the toast at this offset")
	f.Float64Var(&simulateOpts.width, "width", 1280, "Container width")
	f.Float64Var(&simulateOpts.height, "height", 720, "Container height")
	f.Float64Var(&simulateOpts.insetTop, "inset-top", 0, "Top safe area inset")
	f.Float64Var(&simulateOpts.insetBottom, "inset-bottom", 0, "Bottom safe area inset")
	f.DurationVar(&simulateOpts.until, "until", 0, "Stop after this long (default: when every toast is gone, 1m for --realtime)")
	f.BoolVar(&simulateOpts.realtime, "realtime", false, "Run at wall-clock speed")
	f.StringVarP(&simulateOpts.output, "output", "o", "text", "Output format (text, json, yaml)")
}

// Event is one line of a simulation trace.
type Event struct {
	At     time.Duration `json:"-" yaml:"-"`
	AtMS   int64         `json:"at_ms" yaml:"at_ms"`
	Entry  string        `json:"entry,omitempty" yaml:"entry,omitempty"`
	Kind   string        `json:"event" yaml:"event"`
	Detail string        `json:"detail,omitempty" yaml:"detail,omitempty"`
	Active int           `json:"active" yaml:"active"`
}

// scenario is what a simulation presents and when.
type scenario struct {
	urgency   int
	preset    string
	position  attr.Position
	count     int
	interval  time.Duration
	tapAt     time.Duration
	swipeAt   time.Duration
	screenAt  time.Duration
	container geometry.Size
	safeArea  geometry.Insets
}

func scenarioFromFlags() (scenario, error) {
	urgency, err := parseUrgency(simulateOpts.urgency)
	if err != nil {
		return scenario{}, err
	}
	pos := attr.Position(simulateOpts.position)
	if pos != "" && pos != attr.PositionTop && pos != attr.PositionBottom {
		return scenario{}, fmt.Errorf("invalid position %q: %w", simulateOpts.position, attr.ErrInvalidPosition)
	}
	if simulateOpts.count < 1 {
		return scenario{}, fmt.Errorf("count must be at least 1, got %d", simulateOpts.count)
	}
	if simulateOpts.width <= 0 || simulateOpts.height <= 0 {
		return scenario{}, fmt.Errorf("container must have a positive size, got %vx%v", simulateOpts.width, simulateOpts.height)
	}
	return scenario{
		urgency:   urgency,
		preset:    simulateOpts.preset,
		position:  pos,
		count:     simulateOpts.count,
		interval:  simulateOpts.interval,
		tapAt:     simulateOpts.tapAt,
		swipeAt:   simulateOpts.swipeAt,
		screenAt:  simulateOpts.screenAt,
		container: geometry.Size{Width: simulateOpts.width, Height: simulateOpts.height},
		safeArea:  geometry.Insets{Top: simulateOpts.insetTop, Bottom: simulateOpts.insetBottom},
	}, nil
}

func parseUrgency(s string) (int, error) {
	switch strings.ToLower(s) {
	case "low", "0":
		return config.UrgencyLow, nil
	case "normal", "1", "":
		return config.UrgencyNormal, nil
	case "critical", "2":
		return config.UrgencyCritical, nil
	}
	return 0, fmt.Errorf("invalid urgency %q (want low, normal or critical)", s)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	sc, err := scenarioFromFlags()
	if err != nil {
		return err
	}
	switch simulateOpts.output {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("invalid output format %q", simulateOpts.output)
	}

	var events []Event
	if simulateOpts.realtime {
		var live func(Event)
		if simulateOpts.output == "text" {
			live = func(ev Event) { writeEvent(os.Stdout, ev) }
		}
		until := simulateOpts.until
		if until <= 0 {
			until = time.Minute
		}
		events, err = runRealtime(cmd.Context(), cfg, presets, sc, until, live, logger)
		if err != nil {
			return err
		}
		if simulateOpts.output == "text" {
			writeSummary(os.Stdout, events)
			return nil
		}
	} else {
		events, err = runVirtual(cfg, presets, sc, simulateOpts.until, logger)
		if err != nil {
			return err
		}
	}
	return writeTrace(os.Stdout, simulateOpts.output, events)
}

// runVirtual plays sc on a virtual clock. A zero until runs until the
// scheduler is idle.
func runVirtual(cfg *config.Config, presets map[string]*config.Preset, sc scenario, until time.Duration, logger *slog.Logger) ([]Event, error) {
	clock := loop.NewManual(time.Time{})
	sim, err := newSimulation(cfg, presets, sc, clock, logger)
	if err != nil {
		return nil, err
	}
	sim.script()
	if until > 0 {
		clock.Advance(until)
	} else if n := clock.RunUntilIdle(maxSteps); n == maxSteps {
		logger.Warn("simulation stopped before going idle", "steps", n)
	}
	return sim.events, nil
}

// runRealtime plays sc on a loop.Loop until every toast is gone or until
// elapses.
func runRealtime(ctx context.Context, cfg *config.Config, presets map[string]*config.Preset, sc scenario, until time.Duration, live func(Event), logger *slog.Logger) ([]Event, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, until)
	defer cancel()

	l := loop.New(logger)
	sim, err := newSimulation(cfg, presets, sc, l, logger)
	if err != nil {
		return nil, err
	}
	sim.live = live
	sim.done = cancel
	l.Post(sim.script)
	l.Run(ctx)
	return sim.events, nil
}

// simulation records one scenario run. All methods run on the scheduler's
// goroutine.
type simulation struct {
	cfg      *config.Config
	presets  map[string]*config.Preset
	sc       scenario
	sched    loop.Scheduler
	start    time.Time
	manager  *presentation.Manager
	provider *tracedProvider
	logger   *slog.Logger

	events  []Event
	live    func(Event)
	pending int
	done    func()
}

func newSimulation(cfg *config.Config, presets map[string]*config.Preset, sc scenario, sched loop.Scheduler, logger *slog.Logger) (*simulation, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if sc.preset != "" {
		if _, ok := presets[sc.preset]; !ok {
			return nil, fmt.Errorf("%w: %q", config.ErrPresetNotFound, sc.preset)
		}
	}

	s := &simulation{
		cfg:     cfg,
		presets: presets,
		sc:      sc,
		sched:   sched,
		start:   sched.Now(),
		logger:  logger,
	}
	s.provider = &tracedProvider{Headless: window.NewHeadless(sc.container, sc.safeArea, logger), sim: s}
	s.manager = presentation.NewManager(s.provider, presentation.DelegateFuncs{
		OnActive:   func(a *attr.Attributes) { s.record(a.Name, "active", "") },
		OnInactive: func(a *attr.Attributes) { s.record(a.Name, "inactive", "") },
	}, sched,
		presentation.WithLogger(logger),
		presentation.WithHaptics(hapticsFunc(func(h attr.Haptic) { s.record("", "haptic", string(h)) })),
	)
	s.manager.SetRemovedHook(func(e *entry.Entry) {
		s.record(e.Attributes().Name, "removed", string(e.Reason()))
	})
	return s, nil
}

// script queues the scenario's toasts and gestures.
func (s *simulation) script() {
	for i := range s.sc.count {
		n := i + 1
		s.at(time.Duration(i)*s.sc.interval, func() { s.show(n) })
	}
	if s.sc.tapAt > 0 {
		s.at(s.sc.tapAt, s.tap)
	}
	if s.sc.swipeAt > 0 {
		s.at(s.sc.swipeAt, s.swipe)
	}
	if s.sc.screenAt > 0 {
		s.at(s.sc.screenAt, s.tapScreen)
	}
}

func (s *simulation) at(d time.Duration, fn func()) {
	s.pending++
	s.sched.AfterFunc(d, func() {
		fn()
		s.pending--
		s.check()
	})
}

// check ends a realtime run once nothing is left to happen.
func (s *simulation) check() {
	if s.done == nil || s.pending > 0 {
		return
	}
	if s.manager.ActiveCount() == 0 && s.manager.InFlight() == 0 && len(s.manager.Entries()) == 0 {
		s.done()
	}
}

func (s *simulation) record(name, kind, detail string) {
	at := s.sched.Now().Sub(s.start)
	ev := Event{
		At:     at,
		AtMS:   at.Milliseconds(),
		Entry:  name,
		Kind:   kind,
		Detail: detail,
		Active: s.manager.ActiveCount(),
	}
	s.events = append(s.events, ev)
	if s.live != nil {
		s.live(ev)
	}
}

func (s *simulation) show(n int) {
	a, err := s.cfg.Resolve(s.presets, s.sc.preset, s.cfg.Attributes(s.sc.urgency))
	if err != nil {
		s.record("", "error", err.Error())
		return
	}
	a.Name = fmt.Sprintf("toast #%d", n)
	if s.sc.position != "" {
		a.Position = s.sc.position
	}
	a.Lifecycle = attr.Lifecycle{
		WillAppear:    func() { s.record(a.Name, "will appear", "") },
		DidAppear:     func() { s.record(a.Name, "did appear", s.frameOf(a)) },
		WillDisappear: func() { s.record(a.Name, "will disappear", "") },
		DidDisappear:  func() { s.record(a.Name, "did disappear", "") },
	}

	text := window.Text{
		Summary: a.Name,
		Body:    fmt.Sprintf("priority %d, %s", a.Priority, a.Position),
		Metrics: window.PixelMetrics,
	}
	s.record(a.Name, "display", fmt.Sprintf("priority %d, %s", a.Priority, a.Position))
	if _, err := s.manager.Display(a, text, &window.Surface{}); err != nil {
		s.record(a.Name, "rejected", err.Error())
	}
}

// frameOf describes the frame of the live entry presenting a.
func (s *simulation) frameOf(a *attr.Attributes) string {
	for _, e := range s.manager.Entries() {
		if e.Attributes() != a {
			continue
		}
		f := e.Visual().Frame
		return fmt.Sprintf("%sx%s at %s,%s",
			humanize.FtoaWithDigits(f.Width, 1), humanize.FtoaWithDigits(f.Height, 1),
			humanize.FtoaWithDigits(f.X, 1), humanize.FtoaWithDigits(f.Y, 1))
	}
	return ""
}

// target returns the entry gestures go to, or nil.
func (s *simulation) target(gesture string) *entry.Entry {
	cur := s.manager.Current()
	if cur == nil || cur.State() != entry.StateActive {
		s.record("", gesture, "nothing on screen")
		return nil
	}
	s.record(cur.Attributes().Name, gesture, "")
	return cur
}

func (s *simulation) tap() {
	if cur := s.target("tap"); cur != nil {
		cur.Tap()
	}
}

func (s *simulation) swipe() {
	cur := s.target("swipe")
	if cur == nil {
		return
	}
	l := cur.Relations().Layout()
	d := l.OutwardSign() * l.Height
	cur.Pan(interaction.PanBegan, 0, 0)
	cur.Pan(interaction.PanChanged, d, 0)
	cur.Pan(interaction.PanEnded, d, l.OutwardSign()*swipeVelocity)
}

func (s *simulation) tapScreen() {
	detail := "absorbed"
	if s.manager.TapScreen() {
		detail = "forwarded"
	}
	s.record("", "screen tap", detail)
}

// tracedProvider records window state changes.
type tracedProvider struct {
	*window.Headless
	sim *simulation
}

func (p *tracedProvider) SetState(st window.State) {
	if st != p.State() {
		p.sim.record("", "window", st.String())
	}
	p.Headless.SetState(st)
}

func (p *tracedProvider) Release() {
	p.Headless.Release()
	p.sim.record("", "window", "released")
	p.sim.check()
}

type hapticsFunc func(attr.Haptic)

func (f hapticsFunc) Emit(h attr.Haptic) { f(h) }

func writeTrace(w io.Writer, format string, events []Event) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(events)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(events); err != nil {
			return fmt.Errorf("failed to encode trace: %w", err)
		}
		return enc.Close()
	}
	for _, ev := range events {
		writeEvent(w, ev)
	}
	writeSummary(w, events)
	return nil
}

func writeEvent(w io.Writer, ev Event) {
	line := fmt.Sprintf("%9s  %-10s %-15s", "+"+ev.At.Round(time.Millisecond).String(), ev.Entry, ev.Kind)
	if ev.Detail != "" {
		line += " " + ev.Detail
	}
	fmt.Fprintln(w, strings.TrimRight(line, " "))
}

func writeSummary(w io.Writer, events []Event) {
	shown, removed := 0, 0
	var end time.Duration
	for _, ev := range events {
		switch ev.Kind {
		case "active":
			shown++
		case "removed":
			removed++
		}
		end = ev.At
	}
	fmt.Fprintf(w, "\n%s shown, %s removed, %s over %s\n",
		english.Plural(shown, "toast", ""),
		humanize.Comma(int64(removed)),
		english.Plural(len(events), "event", ""),
		end.Round(time.Millisecond))
}
