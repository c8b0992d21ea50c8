package display

import (
	"log/slog"
	"math"
	"strings"
	"time"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/toastkit/internal/config"
	"github.com/jmylchreest/toastkit/internal/dbus"
	"github.com/jmylchreest/toastkit/internal/entry"
	"github.com/jmylchreest/toastkit/internal/interaction"
)

// dragSlop is how far a pointer may move before a press stops being a tap.
const dragSlop = 4.0

// Popup is the layer-shell window presenting one entry. It satisfies
// entry.Surface and daemon.Binder.
type Popup struct {
	host         *Host
	notification *dbus.Notification
	config       *config.Config
	logger       *slog.Logger

	window *gtk.Window
	box    *gtk.Box
	entry  *entry.Entry

	dragging  bool
	dragged   bool
	lastDrag  float64
	lastTime  time.Time
	velocity  float64
	attached  bool
	destroyed bool
}

func newPopup(h *Host, n *dbus.Notification, cfg *config.Config, logger *slog.Logger) *Popup {
	return &Popup{
		host:         h,
		notification: n,
		config:       cfg,
		logger:       logger,
	}
}

// Bind routes input on the window to e.
func (p *Popup) Bind(e *entry.Entry) { p.entry = e }

// Attach implements entry.Surface. It creates the window but keeps it
// transparent until the first Apply.
func (p *Popup) Attach() {
	if p.attached {
		return
	}
	p.attached = true

	p.window = gtk.NewWindow()
	p.window.SetApplication(p.host.app)
	p.window.SetDecorated(false)
	p.window.SetResizable(false)
	p.window.SetOpacity(0)

	layershell.InitForWindow(p.window)
	layershell.SetLayer(p.window, layershell.LayerShellLayerTop)
	layershell.SetKeyboardMode(p.window, layershell.LayerShellKeyboardModeNone)
	layershell.SetNamespace(p.window, "toastkit")
	if p.config.Display.OverrideSafeArea {
		// extend under panels instead of being pushed clear of them
		layershell.SetExclusiveZone(p.window, -1)
	} else {
		layershell.SetExclusiveZone(p.window, 0)
	}
	if m := p.host.monitor(); m != nil {
		layershell.SetMonitor(p.window, m)
	}
	layershell.SetAnchor(p.window, layershell.LayerShellEdgeTop, true)
	layershell.SetAnchor(p.window, layershell.LayerShellEdgeLeft, true)
	layershell.SetAnchor(p.window, layershell.LayerShellEdgeBottom, false)
	layershell.SetAnchor(p.window, layershell.LayerShellEdgeRight, false)

	p.buildUI()
	p.applyThemeClasses()
	p.connectSignals()

	p.window.Present()
}

// Apply implements entry.Surface.
func (p *Popup) Apply(v entry.Visual) {
	if p.window == nil || p.destroyed {
		return
	}
	x, y, w, h := placement(v)
	p.window.SetSizeRequest(w, h)
	layershell.SetMargin(p.window, layershell.LayerShellEdgeLeft, x)
	layershell.SetMargin(p.window, layershell.LayerShellEdgeTop, y)
	p.window.SetOpacity(v.Alpha * p.config.Display.Opacity)
}

// Detach implements entry.Surface.
func (p *Popup) Detach() {
	if p.window == nil || p.destroyed {
		return
	}
	p.destroyed = true
	p.entry = nil
	p.window.Close()
}

// placement converts a visual to window margins and size. Scale shrinks
// the window around the frame's center.
func placement(v entry.Visual) (x, y, w, h int) {
	scale := v.Scale
	if scale <= 0 {
		scale = 1
	}
	f := v.Frame
	width := f.Width * scale
	height := f.Height * scale
	x = int(math.Round(f.X + (f.Width-width)/2))
	y = int(math.Round(f.Y + (f.Height-height)/2))
	w = max(1, int(math.Round(width)))
	h = max(1, int(math.Round(height)))
	return x, y, w, h
}

// buildUI constructs the summary and body labels.
func (p *Popup) buildUI() {
	p.box = gtk.NewBox(gtk.OrientationVertical, 4)
	p.box.AddCSSClass("toast")
	p.box.SetMarginTop(int(TextMetrics.Padding))
	p.box.SetMarginBottom(int(TextMetrics.Padding))
	p.box.SetMarginStart(int(TextMetrics.Padding))
	p.box.SetMarginEnd(int(TextMetrics.Padding))

	summary := gtk.NewLabel(p.notification.Summary)
	summary.AddCSSClass("toast-summary")
	summary.SetXAlign(0)
	summary.SetWrap(true)
	p.box.Append(summary)

	if p.notification.Body != "" {
		body := gtk.NewLabel("")
		body.AddCSSClass("toast-body")
		body.SetXAlign(0)
		body.SetWrap(true)
		body.SetWrapMode(2) // PANGO_WRAP_WORD_CHAR
		if strings.Contains(p.notification.Body, "<") {
			body.SetMarkup(p.notification.Body)
		} else {
			body.SetText(p.notification.Body)
		}
		p.box.Append(body)
	}

	p.window.SetChild(p.box)
}

// applyThemeClasses adds CSS classes for theming.
func (p *Popup) applyThemeClasses() {
	p.box.AddCSSClass(colorScheme())
	p.box.AddCSSClass(urgencyToClass(p.notification.Urgency()))
	if p.config.Display.Opacity < 1.0 {
		p.box.AddCSSClass("translucent")
	}
	if p.notification.AppName != "" {
		p.box.AddCSSClass("app-" + sanitizeClassName(p.notification.AppName))
	}
	if cat := p.notification.Category(); cat != "" {
		p.box.AddCSSClass("category-" + sanitizeClassName(cat))
	}
	if p.notification.HasAction("default") {
		p.box.AddCSSClass("has-default-action")
	}
}

// connectSignals routes pointer input to the bound entry. Hovering holds
// the toast like a resting finger; a vertical drag pans it.
func (p *Popup) connectSignals() {
	motionCtrl := gtk.NewEventControllerMotion()
	motionCtrl.ConnectEnter(func(x, y float64) {
		if p.entry != nil {
			p.entry.TouchBegan()
		}
	})
	motionCtrl.ConnectLeave(func() {
		if p.entry != nil && !p.dragging {
			p.entry.TouchEnded()
		}
	})
	p.window.AddController(motionCtrl)

	clickCtrl := gtk.NewGestureClick()
	clickCtrl.SetButton(1)
	clickCtrl.ConnectReleased(func(nPress int, x, y float64) {
		if p.entry != nil && !p.dragged {
			p.entry.Tap()
		}
	})
	p.window.AddController(clickCtrl)

	dragCtrl := gtk.NewGestureDrag()
	dragCtrl.ConnectDragBegin(func(startX, startY float64) {
		p.dragging, p.dragged = true, false
		p.lastDrag, p.velocity = 0, 0
		p.lastTime = time.Now()
		if p.entry != nil {
			p.entry.Pan(interaction.PanBegan, 0, 0)
		}
	})
	dragCtrl.ConnectDragUpdate(func(offsetX, offsetY float64) {
		p.track(offsetY)
		if math.Abs(offsetY) > dragSlop {
			p.dragged = true
		}
		if p.entry != nil && p.dragged {
			p.entry.Pan(interaction.PanChanged, offsetY, p.velocity)
		}
	})
	dragCtrl.ConnectDragEnd(func(offsetX, offsetY float64) {
		p.track(offsetY)
		p.dragging = false
		if p.entry == nil {
			return
		}
		if p.dragged {
			p.entry.Pan(interaction.PanEnded, offsetY, p.velocity)
		} else {
			p.entry.Pan(interaction.PanCancelled, 0, 0)
		}
	})
	p.window.AddController(dragCtrl)

	scrollCtrl := gtk.NewEventControllerScroll(gtk.EventControllerScrollVertical)
	scrollCtrl.ConnectScroll(func(dx, dy float64) bool {
		if p.entry != nil {
			p.entry.Scroll(dy * TextMetrics.LineHeight)
		}
		return false
	})
	p.window.AddController(scrollCtrl)
}

// track updates the drag velocity in pixels per second.
func (p *Popup) track(offset float64) {
	now := time.Now()
	if dt := now.Sub(p.lastTime).Seconds(); dt > 0 {
		p.velocity = (offset - p.lastDrag) / dt
	}
	p.lastDrag = offset
	p.lastTime = now
}

// urgencyToClass converts urgency level to CSS class name.
func urgencyToClass(urgency int) string {
	switch urgency {
	case dbus.UrgencyLow:
		return "urgency-low"
	case dbus.UrgencyCritical:
		return "urgency-critical"
	default:
		return "urgency-normal"
	}
}
