package attr

import "time"

// Action is the default reaction to a tap.
type Action string

const (
	// ActionAbsorb swallows the touch.
	ActionAbsorb Action = "absorb"
	// ActionForward passes the touch to whatever is underneath.
	ActionForward Action = "forward"
	// ActionDismiss exits the entry immediately.
	ActionDismiss Action = "dismiss"
	// ActionDelayExit restarts the auto dismiss timer.
	ActionDelayExit Action = "delay-exit"
)

// Interaction is a tap policy plus callbacks that always fire.
type Interaction struct {
	Default Action
	// DelayExit replaces the display duration when ActionDelayExit reschedules.
	// Zero means use the display duration.
	DelayExit time.Duration
	Custom    []func()
}

// IsDelayExit reports whether interaction postpones the auto dismiss.
func (i Interaction) IsDelayExit() bool {
	return i.Default == ActionDelayExit
}

// Validate checks the action is known.
func (i Interaction) Validate() error {
	switch i.Default {
	case ActionAbsorb, ActionForward, ActionDismiss, ActionDelayExit, "":
	default:
		return ErrInvalidAction
	}
	if i.DelayExit < 0 {
		return ErrNegativeDuration
	}
	return nil
}

// ScrollKind selects how pan gestures move the entry.
type ScrollKind string

const (
	ScrollDisabled ScrollKind = "disabled"
	ScrollEnabled  ScrollKind = "enabled"
	// ScrollEdgeCrossingDisabled is reserved; it currently behaves like
	// ScrollEnabled.
	ScrollEdgeCrossingDisabled ScrollKind = "edge-crossing-disabled"
)

// Scroll configures drag handling.
type Scroll struct {
	Kind ScrollKind
	// Swipeable lets a drag toward the off-screen side dismiss the entry.
	Swipeable bool
	// RubberBanding damps drags past the resting position.
	RubberBanding bool
	// Pullback returns the entry to rest after an unfinished swipe.
	// An empty animation snaps back.
	Pullback Animation
}

// IsEnabled reports whether pan gestures move the entry.
func (s Scroll) IsEnabled() bool {
	return s.Kind == ScrollEnabled || s.Kind == ScrollEdgeCrossingDisabled
}
