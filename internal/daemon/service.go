package daemon

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmylchreest/toastkit/internal/attr"
	"github.com/jmylchreest/toastkit/internal/config"
	"github.com/jmylchreest/toastkit/internal/dbus"
	"github.com/jmylchreest/toastkit/internal/entry"
	"github.com/jmylchreest/toastkit/internal/interaction"
	"github.com/jmylchreest/toastkit/internal/presentation"
)

// Host builds the visual pieces of a toast for a notification.
type Host interface {
	Content(n *dbus.Notification) entry.Content
	Surface(n *dbus.Notification) entry.Surface
}

// Binder is implemented by surfaces that route input to the entry they
// present. Bind is called once the entry is on screen.
type Binder interface {
	Bind(e *entry.Entry)
}

// Signals reports toast outcomes back to bus clients.
type Signals interface {
	EmitNotificationClosed(id uint32, reason dbus.CloseReason) error
	EmitActionInvoked(id uint32, actionKey string) error
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithPoster routes bus calls through post, which must run fn on the
// goroutine that owns the presentation manager.
func WithPoster(post func(fn func())) ServiceOption {
	return func(s *Service) { s.post = post }
}

// WithSignals sets where close and action signals are emitted.
func WithSignals(sig Signals) ServiceOption {
	return func(s *Service) { s.signals = sig }
}

// WithServiceLogger sets the logger.
func WithServiceLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// Service turns bus notifications into presented toasts and reports their
// removal. It implements dbus.Handler.
type Service struct {
	logger   *slog.Logger
	manager  *presentation.Manager
	host     Host
	signals  Signals
	registry *Registry
	post     func(fn func())

	mu      sync.RWMutex
	cfg     *config.Config
	presets map[string]*config.Preset
	dnd     bool
}

// NewService creates a Service presenting through manager. It takes over
// the manager's removed hook.
func NewService(manager *presentation.Manager, host Host, cfg *config.Config, presets map[string]*config.Preset, opts ...ServiceOption) *Service {
	if manager == nil || host == nil {
		panic("daemon: NewService requires a manager and a host")
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Service{
		manager:  manager,
		host:     host,
		cfg:      cfg,
		presets:  presets,
		dnd:      cfg.DnD.Enabled,
		registry: NewRegistry(nil),
		post:     func(fn func()) { fn() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	manager.SetRemovedHook(s.removed)
	return s
}

// SetSignals sets where close and action signals are emitted. Call it
// before notifications arrive.
func (s *Service) SetSignals(sig Signals) { s.signals = sig }

// Registry exposes the ID mapping.
func (s *Service) Registry() *Registry { return s.registry }

// Reload swaps the configuration and presets used for new notifications.
// Toasts already on screen keep their attributes.
func (s *Service) Reload(cfg *config.Config, presets map[string]*config.Preset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.presets = presets
	s.dnd = cfg.DnD.Enabled
	s.logger.Info("configuration applied", "presets", len(presets))
}

// SetDnD toggles Do Not Disturb.
func (s *Service) SetDnD(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dnd = enabled
}

// DnD reports whether Do Not Disturb is on.
func (s *Service) DnD() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dnd
}

func (s *Service) snapshot() (*config.Config, map[string]*config.Preset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, s.presets, s.dnd
}

// HandleNotify implements dbus.Handler.
func (s *Service) HandleNotify(n *dbus.Notification, id uint32) {
	s.post(func() { s.Show(n, id) })
}

// HandleClose implements dbus.Handler.
func (s *Service) HandleClose(id uint32) {
	s.post(func() { s.Close(id) })
}

// Attributes resolves the presentation attributes for n: the config's
// urgency defaults, then the named (or default) preset, then per-call hints.
func (s *Service) Attributes(n *dbus.Notification) (*attr.Attributes, error) {
	cfg, presets, _ := s.snapshot()

	a, err := cfg.Resolve(presets, n.Preset(), cfg.Attributes(n.Urgency()))
	if err != nil {
		return nil, err
	}

	a.Name = n.Name()
	if d, ok := n.Timeout(); ok {
		a.DisplayDuration = d
	}
	if p := n.Position(); p != "" {
		a.Position = p
	}
	if h := n.Haptic(); h != "" {
		a.Haptic = h
	}
	if n.SuppressSound() {
		a.Haptic = attr.HapticNone
	}

	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("invalid hints: %w", err)
	}
	return a, nil
}

// Show presents n. It must run on the manager's goroutine.
func (s *Service) Show(n *dbus.Notification, id uint32) {
	cfg, _, dnd := s.snapshot()
	if dnd && !(n.Urgency() == dbus.UrgencyCritical && cfg.DnD.CriticalBypass) {
		s.logger.Debug("notification suppressed by do not disturb", "id", id, "app", n.AppName)
		return
	}

	a, err := s.Attributes(n)
	if err != nil {
		s.logger.Warn("cannot present notification", "id", id, "error", err)
		s.emitClosed(id, dbus.CloseReasonUndefined)
		return
	}

	// A replacement never loses to the toast it replaces, and the replaced
	// toast leaves without being reported closed.
	if prev, ok := s.registry.ByDBusID(id); ok {
		if e, ok := s.manager.Entry(prev.EntryID); ok && e.Attributes().Priority > a.Priority {
			a.Priority = e.Attributes().Priority
		}
		s.registry.Forget(id)
	}

	surface := s.host.Surface(n)
	e, err := s.manager.Display(a, s.host.Content(n), surface)
	if err != nil {
		if errors.Is(err, presentation.ErrLowerPriority) {
			s.logger.Info("notification rejected", "id", id, "app", n.AppName, "reason", err)
		} else {
			s.logger.Warn("cannot present notification", "id", id, "error", err)
		}
		s.emitClosed(id, dbus.CloseReasonUndefined)
		return
	}

	// The entry may already be gone if a delegate dismissed it during its
	// entrance; its removal has then been handled without a record.
	if e.State() == entry.StateRemoved {
		s.emitClosed(id, dbus.CloseReasonFor(e.Reason()))
		return
	}
	if b, ok := surface.(Binder); ok {
		b.Bind(e)
	}
	s.registry.Register(e.ID(), id, n)
	s.logger.Debug("notification shown", "id", id, "entry_id", e.ID(), "priority", a.Priority)
}

// Close dismisses the toast presenting id. It must run on the manager's
// goroutine.
func (s *Service) Close(id uint32) bool {
	rec, ok := s.registry.ByDBusID(id)
	if !ok {
		return false
	}
	return s.manager.DismissEntry(rec.EntryID)
}

func (s *Service) removed(e *entry.Entry) {
	reason := dbus.CloseReasonFor(e.Reason())
	rec, ok := s.registry.Close(e.ID(), reason)
	if !ok {
		return
	}
	if e.Reason() == interaction.ReasonTap && rec.DefaultAction {
		if s.signals != nil {
			if err := s.signals.EmitActionInvoked(rec.DBusID, "default"); err != nil {
				s.logger.Warn("failed to emit action", "id", rec.DBusID, "error", err)
			}
		}
	}
	s.emitClosed(rec.DBusID, reason)
}

func (s *Service) emitClosed(id uint32, reason dbus.CloseReason) {
	if s.signals == nil {
		return
	}
	if err := s.signals.EmitNotificationClosed(id, reason); err != nil {
		s.logger.Warn("failed to emit close", "id", id, "error", err)
	}
}
