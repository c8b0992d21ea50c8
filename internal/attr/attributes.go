// Package attr defines the immutable description of a single presentation:
// where an entry sits, how it animates in and out, and how it reacts to input.
package attr

import (
	"errors"
	"fmt"
	"time"
)

// Forever disables auto dismiss when used as a display duration.
const Forever time.Duration = -1

// Priority levels for replacing a displayed entry.
const (
	PriorityMin    = 0
	PriorityNormal = 500
	PriorityHigh   = 750
	PriorityMax    = 1000
)

// Position is the screen edge an entry is anchored to.
type Position string

const (
	PositionTop    Position = "top"
	PositionBottom Position = "bottom"
)

// Haptic is the feedback kind emitted once per entrance.
type Haptic string

const (
	HapticNone    Haptic = "none"
	HapticSuccess Haptic = "success"
	HapticWarning Haptic = "warning"
	HapticError   Haptic = "error"
)

// Validation errors.
var (
	ErrInvalidPosition  = errors.New("position must be top or bottom")
	ErrInvalidPriority  = errors.New("priority must be between 0 and 1000")
	ErrInvalidRatio     = errors.New("ratio must be in (0, 1]")
	ErrNegativeSize     = errors.New("size constant and offsets cannot be negative")
	ErrInvalidSize      = errors.New("unknown size policy")
	ErrNegativeDuration = errors.New("animation duration and delay cannot be negative")
	ErrInvalidDisplay   = errors.New("display duration must be positive or Forever")
	ErrInvalidHaptic    = errors.New("haptic must be none, success, warning or error")
	ErrInvalidAction    = errors.New("unknown interaction action")
	ErrInvalidPop       = errors.New("unknown pop behavior")
	ErrInvalidScroll    = errors.New("unknown scroll kind")
)

// Attributes describes one presentation. The presenting code owns the value;
// the core only reads it.
type Attributes struct {
	Name     string
	Priority int
	Position Position

	PositionConstraints PositionConstraints

	EntranceAnimation Animation
	ExitAnimation     Animation
	PopBehavior       PopBehavior

	// DisplayDuration is how long the entry rests before auto dismiss.
	// Forever keeps it until dismissed.
	DisplayDuration time.Duration

	EntryInteraction  Interaction
	ScreenInteraction Interaction
	Scroll            Scroll

	Haptic    Haptic
	Lifecycle Lifecycle
}

// Lifecycle holds optional hooks fired around appearance and disappearance.
type Lifecycle struct {
	WillAppear    func()
	DidAppear     func()
	WillDisappear func()
	DidDisappear  func()
}

func fire(fn func()) {
	if fn != nil {
		fn()
	}
}

// FireWillAppear runs the WillAppear hook if set.
func (l Lifecycle) FireWillAppear() { fire(l.WillAppear) }

// FireDidAppear runs the DidAppear hook if set.
func (l Lifecycle) FireDidAppear() { fire(l.DidAppear) }

// FireWillDisappear runs the WillDisappear hook if set.
func (l Lifecycle) FireWillDisappear() { fire(l.WillDisappear) }

// FireDidDisappear runs the DidDisappear hook if set.
func (l Lifecycle) FireDidDisappear() { fire(l.DidDisappear) }

// Default returns attributes for a plain top toast: slides in from the top,
// fades out, rests for four seconds and dismisses on tap.
func Default() *Attributes {
	return &Attributes{
		Priority: PriorityNormal,
		Position: PositionTop,
		PositionConstraints: PositionConstraints{
			Width:    Ratio(0.9),
			Height:   Intrinsic(),
			MaxWidth: Constant(480),
		},
		EntranceAnimation: Animation{
			Duration:  300 * time.Millisecond,
			Translate: &Translate{From: FromAutomatic},
		},
		ExitAnimation: Animation{
			Duration: 300 * time.Millisecond,
			Fade:     &Range{Start: 1, End: 0},
		},
		PopBehavior: PopBehavior{
			Kind: PopAnimated,
			Animation: Animation{
				Duration: 200 * time.Millisecond,
				Fade:     &Range{Start: 1, End: 0},
			},
		},
		DisplayDuration:   4 * time.Second,
		EntryInteraction:  Interaction{Default: ActionDismiss},
		ScreenInteraction: Interaction{Default: ActionForward},
		Scroll:            Scroll{Kind: ScrollEnabled, Swipeable: true, RubberBanding: true},
		Haptic:            HapticNone,
	}
}

// HasFiniteDisplay reports whether the entry auto dismisses.
func (a *Attributes) HasFiniteDisplay() bool {
	return a.DisplayDuration != Forever
}

// IsTop reports whether the entry is anchored to the top edge.
func (a *Attributes) IsTop() bool {
	return a.Position == PositionTop
}

// Validate checks the attributes for values the core cannot lay out or time.
func (a *Attributes) Validate() error {
	if a.Position != PositionTop && a.Position != PositionBottom {
		return fmt.Errorf("%w, got %q", ErrInvalidPosition, a.Position)
	}
	if a.Priority < PriorityMin || a.Priority > PriorityMax {
		return fmt.Errorf("%w, got %d", ErrInvalidPriority, a.Priority)
	}
	if a.DisplayDuration != Forever && a.DisplayDuration <= 0 {
		return fmt.Errorf("%w, got %s", ErrInvalidDisplay, a.DisplayDuration)
	}
	switch a.Haptic {
	case HapticNone, HapticSuccess, HapticWarning, HapticError, "":
	default:
		return fmt.Errorf("%w, got %q", ErrInvalidHaptic, a.Haptic)
	}

	pc := a.PositionConstraints
	for name, p := range map[string]SizePolicy{"width": pc.Width, "height": pc.Height, "max_width": pc.MaxWidth} {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	for name, anim := range map[string]Animation{
		"entrance": a.EntranceAnimation,
		"exit":     a.ExitAnimation,
		"pop":      a.PopBehavior.Animation,
		"pullback": a.Scroll.Pullback,
	} {
		if err := anim.Validate(); err != nil {
			return fmt.Errorf("%s animation: %w", name, err)
		}
	}

	switch a.PopBehavior.Kind {
	case PopOverridden, PopAnimated, "":
	default:
		return fmt.Errorf("%w %q", ErrInvalidPop, a.PopBehavior.Kind)
	}

	for name, in := range map[string]Interaction{"entry": a.EntryInteraction, "screen": a.ScreenInteraction} {
		if err := in.Validate(); err != nil {
			return fmt.Errorf("%s interaction: %w", name, err)
		}
	}

	switch a.Scroll.Kind {
	case ScrollDisabled, ScrollEnabled, ScrollEdgeCrossingDisabled, "":
	default:
		return fmt.Errorf("%w %q", ErrInvalidScroll, a.Scroll.Kind)
	}

	return nil
}
