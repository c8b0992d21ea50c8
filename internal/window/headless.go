package window

import (
	"log/slog"

	"github.com/jmylchreest/toastkit/internal/entry"
	"github.com/jmylchreest/toastkit/internal/geometry"
)

// Headless is an in-memory Provider.
type Headless struct {
	logger    *slog.Logger
	container geometry.Size
	safeArea  geometry.Insets
	supports  bool
	state     State
	releases  int
	states    []State
}

// NewHeadless creates a provider with the given container and safe area.
func NewHeadless(container geometry.Size, safeArea geometry.Insets, logger *slog.Logger) *Headless {
	if logger == nil {
		logger = slog.Default()
	}
	return &Headless{
		logger:    logger,
		container: container,
		safeArea:  safeArea,
		supports:  true,
	}
}

// Container implements Provider.
func (h *Headless) Container() geometry.Size { return h.container }

// SafeArea implements Provider.
func (h *Headless) SafeArea() geometry.Insets { return h.safeArea }

// SupportsSafeArea implements Provider.
func (h *Headless) SupportsSafeArea() bool { return h.supports }

// State implements Provider.
func (h *Headless) State() State { return h.state }

// SetState implements Provider.
func (h *Headless) SetState(s State) {
	if s != h.state {
		h.logger.Debug("window state changed", "from", h.state, "to", s)
	}
	h.state = s
	h.states = append(h.states, s)
}

// Release implements Provider.
func (h *Headless) Release() {
	h.releases++
	h.logger.Debug("window released", "releases", h.releases)
}

// SetContainer resizes the container. Callers relayout entries afterwards.
func (h *Headless) SetContainer(size geometry.Size, safeArea geometry.Insets) {
	h.container = size
	h.safeArea = safeArea
}

// SetSupportsSafeArea toggles the safe-area capability.
func (h *Headless) SetSupportsSafeArea(v bool) {
	h.supports = v
}

// Releases returns how many times Release was called.
func (h *Headless) Releases() int { return h.releases }

// States returns every state passed to SetState, in order.
func (h *Headless) States() []State { return h.states }

// Surface records what an entry shows. It satisfies entry.Surface.
type Surface struct {
	Attached bool
	Detached bool
	Applied  int
	Last     entry.Visual
	OnApply  func(entry.Visual)
	Bound    *entry.Entry
}

// Bind records the entry the surface presents.
func (s *Surface) Bind(e *entry.Entry) { s.Bound = e }

// Attach implements entry.Surface.
func (s *Surface) Attach() { s.Attached = true }

// Apply implements entry.Surface.
func (s *Surface) Apply(v entry.Visual) {
	s.Applied++
	s.Last = v
	if s.OnApply != nil {
		s.OnApply(v)
	}
}

// Detach implements entry.Surface.
func (s *Surface) Detach() { s.Detached = true }

// Content is fixed-size entry content.
type Content struct {
	Size geometry.Size
}

// PreferredSize implements entry.Content. Content wider than maxWidth
// wraps, growing taller.
func (c Content) PreferredSize(maxWidth float64) geometry.Size {
	if c.Size.Width <= maxWidth || maxWidth <= 0 {
		return c.Size
	}
	area := c.Size.Width * c.Size.Height
	return geometry.Size{Width: maxWidth, Height: area / maxWidth}
}
