package dbus

import (
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/toastkit/internal/attr"
	"github.com/jmylchreest/toastkit/internal/interaction"
)

// CloseReason represents the reason for closing a notification.
// These values are defined by the freedesktop.org notification specification.
type CloseReason uint32

const (
	// CloseReasonExpired indicates the notification expired (timeout reached).
	CloseReasonExpired CloseReason = 1
	// CloseReasonDismissed indicates the user dismissed the notification.
	CloseReasonDismissed CloseReason = 2
	// CloseReasonClosed indicates the notification was closed via CloseNotification.
	CloseReasonClosed CloseReason = 3
	// CloseReasonUndefined is reserved/undefined by freedesktop.org.
	CloseReasonUndefined CloseReason = 4
)

// String returns the string representation of the close reason.
func (r CloseReason) String() string {
	switch r {
	case CloseReasonExpired:
		return "expired"
	case CloseReasonDismissed:
		return "dismissed"
	case CloseReasonClosed:
		return "closed"
	case CloseReasonUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// CloseReasonFor maps the reason a toast left the screen to the reason
// reported in NotificationClosed.
func CloseReasonFor(r interaction.Reason) CloseReason {
	switch r {
	case interaction.ReasonTimeout:
		return CloseReasonExpired
	case interaction.ReasonTap, interaction.ReasonSwipe, interaction.ReasonScreenTap:
		return CloseReasonDismissed
	case interaction.ReasonProgrammatic, interaction.ReasonPushedOut:
		return CloseReasonClosed
	default:
		return CloseReasonUndefined
	}
}

// Urgency levels carried in the "urgency" hint.
const (
	UrgencyLow      = 0
	UrgencyNormal   = 1
	UrgencyCritical = 2
)

// Notification represents an incoming D-Bus Notify call.
// It contains the raw parameters from the org.freedesktop.Notifications.Notify method.
type Notification struct {
	AppName       string
	ReplacesID    uint32
	AppIcon       string
	Summary       string
	Body          string
	Actions       []string // Alternating key, label pairs
	Hints         map[string]dbus.Variant
	ExpireTimeout int32 // -1 = server default, 0 = never expire
}

// Action represents a notification action with key and label.
type Action struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// ParsedActions converts the D-Bus action array to structured form.
// D-Bus actions are passed as alternating key/label pairs.
func (n *Notification) ParsedActions() []Action {
	actions := make([]Action, 0, len(n.Actions)/2)
	for i := 0; i+1 < len(n.Actions); i += 2 {
		actions = append(actions, Action{
			Key:   n.Actions[i],
			Label: n.Actions[i+1],
		})
	}
	return actions
}

// HasAction reports whether the notification offers the action key.
func (n *Notification) HasAction(key string) bool {
	for _, a := range n.ParsedActions() {
		if a.Key == key {
			return true
		}
	}
	return false
}

// hint returns the hint value if present with type T.
func hint[T any](n *Notification, name string) (T, bool) {
	var zero T
	v, ok := n.Hints[name]
	if !ok {
		return zero, false
	}
	t, ok := v.Value().(T)
	return t, ok
}

func stringHint(n *Notification, name string) string {
	s, _ := hint[string](n, name)
	return s
}

func boolHint(n *Notification, name string) bool {
	b, _ := hint[bool](n, name)
	return b
}

// Urgency extracts the urgency hint from the notification.
// Returns UrgencyNormal if not specified.
func (n *Notification) Urgency() int {
	if b, ok := hint[byte](n, "urgency"); ok {
		return int(b)
	}
	return UrgencyNormal
}

// Category extracts the category hint from the notification.
func (n *Notification) Category() string { return stringHint(n, "category") }

// DesktopEntry extracts the desktop-entry hint.
func (n *Notification) DesktopEntry() string { return stringHint(n, "desktop-entry") }

// SoundFile extracts the sound-file hint.
func (n *Notification) SoundFile() string { return stringHint(n, "sound-file") }

// SuppressSound returns true if the suppress-sound hint is set.
func (n *Notification) SuppressSound() bool { return boolHint(n, "suppress-sound") }

// Transient returns true if the transient hint is set.
func (n *Notification) Transient() bool { return boolHint(n, "transient") }

// Resident returns true if the resident hint is set.
// Resident notifications should not be auto-removed after an action is invoked.
func (n *Notification) Resident() bool { return boolHint(n, "resident") }

// StackTag extracts the stack-tag hint for notification grouping.
// This is used by dunstify with the -h string:x-dunst-stack-tag:TAG option.
func (n *Notification) StackTag() string {
	if s := stringHint(n, "x-dunst-stack-tag"); s != "" {
		return s
	}
	return stringHint(n, "stack-tag")
}

// Position extracts the x-toast-position hint ("top" or "bottom").
func (n *Notification) Position() attr.Position {
	return attr.Position(stringHint(n, "x-toast-position"))
}

// Preset extracts the x-toast-preset hint naming an attribute preset.
func (n *Notification) Preset() string { return stringHint(n, "x-toast-preset") }

// Haptic extracts the x-toast-haptic hint.
func (n *Notification) Haptic() attr.Haptic {
	return attr.Haptic(stringHint(n, "x-toast-haptic"))
}

// Name identifies the toast for IsDisplaying queries: the stack tag when
// present, otherwise the application name.
func (n *Notification) Name() string {
	if tag := n.StackTag(); tag != "" {
		return tag
	}
	return n.AppName
}

// Timeout interprets expire_timeout. ok is false when the server default
// applies; a zero timeout maps to attr.Forever.
func (n *Notification) Timeout() (d time.Duration, ok bool) {
	switch {
	case n.ExpireTimeout < 0:
		return 0, false
	case n.ExpireTimeout == 0:
		return attr.Forever, true
	default:
		return time.Duration(n.ExpireTimeout) * time.Millisecond, true
	}
}

// ServerCapabilities lists the capabilities advertised by toastd.
var ServerCapabilities = []string{
	"actions",     // Support notification actions
	"body",        // Support body text
	"icon-static", // Support static icons
	"sound",       // Play sounds
	"x-toast-position",
	"x-toast-preset",
}

// ServerInfo contains information about the notification server.
type ServerInfo struct {
	Name        string // "toastd"
	Vendor      string // "toastkit"
	Version     string // Build version
	SpecVersion string // "1.2"
}

// DefaultServerInfo returns the default server information.
func DefaultServerInfo() ServerInfo {
	return ServerInfo{
		Name:        "toastd",
		Vendor:      "toastkit",
		Version:     "0.0.1", // Will be replaced by build-time version
		SpecVersion: "1.2",
	}
}
