package display

import (
	"log/slog"
	"strings"
	"sync"
	"time"
	"unsafe"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	coreglib "github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/toastkit/internal/config"
	"github.com/jmylchreest/toastkit/internal/dbus"
	"github.com/jmylchreest/toastkit/internal/entry"
	"github.com/jmylchreest/toastkit/internal/geometry"
	"github.com/jmylchreest/toastkit/internal/window"
)

// TextMetrics estimates label sizes in pixels for the default stylesheet.
var TextMetrics = window.PixelMetrics

// fallbackContainer is used until a monitor reports its geometry.
var fallbackContainer = geometry.Size{Width: 1280, Height: 720}

// Host places toasts on screen. It implements window.Provider for the
// presentation manager and daemon.Host for the service.
type Host struct {
	app    *gtk.Application
	logger *slog.Logger

	mu      sync.RWMutex
	cfg     *config.Config
	display *gdk.Display
	css     *gtk.CSSProvider

	state    window.State
	holding  bool
	onChange func()
}

// NewHost creates a host for app.
func NewHost(app *gtk.Application, cfg *config.Config, logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Host{
		app:    app,
		cfg:    cfg,
		logger: logger,
	}
}

// Start binds the host to the default display and installs the stylesheet.
// It must run on the GTK main loop after the application activated.
func (h *Host) Start() error {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return &DisplayError{Message: "no display available"}
	}

	h.mu.Lock()
	h.display = display
	h.css = gtk.NewCSSProvider()
	h.css.LoadFromString(Stylesheet)
	h.mu.Unlock()

	gtk.StyleContextAddProviderForDisplay(display, h.css, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)

	if monitors := display.Monitors(); monitors != nil {
		monitors.ConnectItemsChanged(func(position, removed, added uint) {
			h.logger.Info("monitor configuration changed", "count", monitors.NItems())
			h.mu.RLock()
			fn := h.onChange
			h.mu.RUnlock()
			if fn != nil {
				fn()
			}
		})
	}

	size := h.Container()
	h.logger.Info("display host started", "width", size.Width, "height", size.Height)
	return nil
}

// OnContainerChanged sets the callback run when monitors change. The
// daemon relayouts the presentation manager from it.
func (h *Host) OnContainerChanged(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = fn
}

// Reload applies a new configuration to toasts created from now on.
func (h *Host) Reload(cfg *config.Config) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cfg = cfg
}

func (h *Host) config() *config.Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cfg
}

// Container implements window.Provider. It is the geometry of the
// configured monitor.
func (h *Host) Container() geometry.Size {
	m := h.monitor()
	if m == nil {
		return fallbackContainer
	}
	g := m.Geometry()
	return geometry.Size{Width: float64(g.Width()), Height: float64(g.Height())}
}

// SafeArea implements window.Provider. The compositor keeps layer surfaces
// clear of exclusive zones itself, so the container has no insets.
func (h *Host) SafeArea() geometry.Insets { return geometry.Insets{} }

// SupportsSafeArea implements window.Provider. Overriding the safe area
// lets a toast extend under panels.
func (h *Host) SupportsSafeArea() bool { return true }

// State implements window.Provider.
func (h *Host) State() window.State { return h.state }

// SetState implements window.Provider. The application is held while an
// overlay is up so it does not quit between toasts.
func (h *Host) SetState(s window.State) {
	if s == window.StateOverlay && !h.holding {
		h.app.Hold()
		h.holding = true
	}
	if s != h.state {
		h.logger.Debug("window state changed", "from", h.state, "to", s)
	}
	h.state = s
}

// Release implements window.Provider.
func (h *Host) Release() {
	if h.holding {
		h.app.Release()
		h.holding = false
	}
}

// Content implements daemon.Host.
func (h *Host) Content(n *dbus.Notification) entry.Content {
	return window.Text{Summary: n.Summary, Body: n.Body, Metrics: TextMetrics}
}

// Surface implements daemon.Host.
func (h *Host) Surface(n *dbus.Notification) entry.Surface {
	return newPopup(h, n, h.config(), h.logger)
}

// monitor returns the monitor to display toasts on based on config.
// A setting of 0 or an unavailable monitor falls back to the first one.
func (h *Host) monitor() *gdk.Monitor {
	h.mu.RLock()
	display := h.display
	want := h.cfg.Display.Monitor
	h.mu.RUnlock()

	if display == nil {
		return nil
	}
	monitors := display.Monitors()
	if monitors == nil || monitors.NItems() == 0 {
		return nil
	}

	index := uint(0)
	if want > 0 {
		if uint(want) <= monitors.NItems() {
			index = uint(want - 1)
		} else {
			h.logger.Warn("configured monitor not available, using first",
				"configured", want,
				"available", monitors.NItems(),
			)
		}
	}
	return wrapMonitor(monitors.Item(index))
}

// wrapMonitor wraps a list item as a gdk.Monitor. gotk4 does not expose
// its own wrapper, so the object is cast the way the bindings do internally.
func wrapMonitor(obj *coreglib.Object) *gdk.Monitor {
	if obj == nil {
		return nil
	}
	type monitor struct {
		_ [0]func()
		*coreglib.Object
	}
	m := &monitor{Object: obj}
	return (*gdk.Monitor)(unsafe.Pointer(m))
}

// Scheduler runs presentation work on the GTK main loop.
type Scheduler struct{}

// AfterFunc implements loop.Scheduler.
func (Scheduler) AfterFunc(d time.Duration, fn func()) {
	time.AfterFunc(d, func() { Post(fn) })
}

// Now implements loop.Scheduler.
func (Scheduler) Now() time.Time { return time.Now() }

// Post runs fn on the GTK main loop.
func Post(fn func()) {
	glib.IdleAdd(fn)
}

// colorScheme returns "light" or "dark" from the libadwaita style manager.
func colorScheme() string {
	if adw.StyleManagerGetDefault().Dark() {
		return "dark"
	}
	return "light"
}

// sanitizeClassName converts a string to a valid CSS class name.
func sanitizeClassName(name string) string {
	var b strings.Builder
	prevHyphen := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevHyphen = false
		case !prevHyphen && b.Len() > 0:
			b.WriteRune('-')
			prevHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// DisplayError represents a display-related error.
type DisplayError struct {
	Message string
	Cause   error
}

func (e *DisplayError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *DisplayError) Unwrap() error {
	return e.Cause
}
