package daemon

import (
	"log/slog"
	"sync"
	"time"

	godbus "github.com/godbus/dbus/v5"

	"github.com/jmylchreest/toastkit/internal/dbus"
)

// NotificationLevel indicates the urgency/severity of an internal notification.
type NotificationLevel int

const (
	// NotificationLevelInfo is for informational messages (low urgency).
	NotificationLevelInfo NotificationLevel = iota
	// NotificationLevelWarning is for warning messages (normal urgency).
	NotificationLevelWarning
	// NotificationLevelError is for error messages (critical urgency).
	NotificationLevelError
)

// InternalNotifier shows toasts about toastd's own events. Repeats of the
// same key within the minimum interval are dropped.
type InternalNotifier struct {
	mu     sync.Mutex
	logger *slog.Logger
	now    func() time.Time

	notifyHandler func(n *dbus.Notification) uint32

	lastNotifyTime map[string]time.Time
	minInterval    time.Duration

	enabled bool
}

// NewInternalNotifier creates a new InternalNotifier. A nil clock uses time.Now.
func NewInternalNotifier(logger *slog.Logger, now func() time.Time) *InternalNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &InternalNotifier{
		logger:         logger,
		now:            now,
		lastNotifyTime: make(map[string]time.Time),
		minInterval:    5 * time.Second,
		enabled:        true,
	}
}

// SetNotifyHandler sets the function that presents a notification,
// normally NotificationServer.NotifyInternal.
func (n *InternalNotifier) SetNotifyHandler(handler func(n *dbus.Notification) uint32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifyHandler = handler
}

// SetEnabled enables or disables internal notifications.
func (n *InternalNotifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between duplicate notifications.
func (n *InternalNotifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify sends an internal notification unless rate-limited. It reports
// whether one was sent.
func (n *InternalNotifier) Notify(key, summary, body string, level NotificationLevel) bool {
	n.mu.Lock()
	if !n.enabled {
		n.mu.Unlock()
		return false
	}
	handler := n.notifyHandler
	if handler == nil {
		n.mu.Unlock()
		n.logger.Debug("internal notification skipped: no handler", "summary", summary)
		return false
	}
	now := n.now()
	if last, ok := n.lastNotifyTime[key]; ok && now.Sub(last) < n.minInterval {
		n.mu.Unlock()
		n.logger.Debug("internal notification rate-limited", "key", key, "summary", summary)
		return false
	}
	n.lastNotifyTime[key] = now
	n.mu.Unlock()

	urgency := byte(dbus.UrgencyNormal)
	icon := "dialog-warning"
	switch level {
	case NotificationLevelInfo:
		urgency, icon = dbus.UrgencyLow, "dialog-information"
	case NotificationLevelError:
		urgency, icon = dbus.UrgencyCritical, "dialog-error"
	}

	n.logger.Debug("sending internal notification", "key", key, "summary", summary, "level", level)

	// The handler may present synchronously, so it runs unlocked.
	handler(&dbus.Notification{
		AppName: "toastd",
		AppIcon: icon,
		Summary: summary,
		Body:    body,
		Hints: map[string]godbus.Variant{
			"urgency":       godbus.MakeVariant(urgency),
			"category":      godbus.MakeVariant("device"),
			"transient":     godbus.MakeVariant(true),
			"desktop-entry": godbus.MakeVariant("toastd"),
		},
		ExpireTimeout: 5000,
	})
	return true
}

// NotifyConfigReloaded sends a notification about config being reloaded.
func (n *InternalNotifier) NotifyConfigReloaded() {
	n.Notify("config-reload", "Configuration Reloaded",
		"toastd configuration has been successfully reloaded.", NotificationLevelInfo)
}

// NotifyConfigError sends a notification about a config validation error.
func (n *InternalNotifier) NotifyConfigError(err error) {
	n.Notify("config-error", "Configuration Error",
		"Failed to reload configuration: "+err.Error(), NotificationLevelWarning)
}

// NotifyDnDChanged sends a notification about a DnD state change.
func (n *InternalNotifier) NotifyDnDChanged(enabled bool) {
	summary, body := "Do Not Disturb Disabled", "Toasts will now be displayed."
	if enabled {
		summary, body = "Do Not Disturb Enabled", "Toasts will be suppressed."
	}
	n.Notify("dnd-change", summary, body, NotificationLevelInfo)
}

// NotifyStartup sends a notification that the daemon has started.
func (n *InternalNotifier) NotifyStartup(version string) {
	n.Notify("startup", "toastd Started",
		"Toast daemon v"+version+" is now running.", NotificationLevelInfo)
}

// NotifyAudioError sends a notification about a haptic playback error.
func (n *InternalNotifier) NotifyAudioError(err error) {
	n.Notify("audio-error", "Audio Error",
		"Failed to play haptic feedback: "+err.Error(), NotificationLevelWarning)
}
