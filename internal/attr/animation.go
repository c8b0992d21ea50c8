package attr

import "time"

// TranslateFrom picks the side an entry slides from or to.
type TranslateFrom string

const (
	// FromAutomatic slides toward the edge the entry is anchored to.
	FromAutomatic TranslateFrom = "automatic"
	FromTop       TranslateFrom = "top"
	FromBottom    TranslateFrom = "bottom"
)

// Translate moves the entry between its off-screen and resting positions.
type Translate struct {
	From TranslateFrom
}

// Range animates a scalar from Start to End.
type Range struct {
	Start float64
	End   float64
}

// Animation composes up to three effects that run concurrently over the
// same duration. A nil effect is absent.
type Animation struct {
	Duration time.Duration
	Delay    time.Duration

	Translate *Translate
	Fade      *Range
	Scale     *Range
}

// None is an animation with no effects; transitions using it apply instantly.
func None() Animation {
	return Animation{}
}

// ContainsTranslation reports whether the animation moves the entry.
func (a Animation) ContainsTranslation() bool {
	return a.Translate != nil
}

// ContainsAnimation reports whether any effect is present.
func (a Animation) ContainsAnimation() bool {
	return a.Translate != nil || a.Fade != nil || a.Scale != nil
}

// EffectCount returns how many effects will run.
func (a Animation) EffectCount() int {
	n := 0
	if a.Translate != nil {
		n++
	}
	if a.Fade != nil {
		n++
	}
	if a.Scale != nil {
		n++
	}
	return n
}

// TotalDuration is the time until every effect has finished.
func (a Animation) TotalDuration() time.Duration {
	if !a.ContainsAnimation() {
		return 0
	}
	return a.Delay + a.Duration
}

// Validate rejects negative timings and unknown translate anchors.
func (a Animation) Validate() error {
	if a.Duration < 0 || a.Delay < 0 {
		return ErrNegativeDuration
	}
	if a.Translate != nil {
		switch a.Translate.From {
		case FromAutomatic, FromTop, FromBottom, "":
		default:
			return ErrInvalidPosition
		}
	}
	return nil
}

// PopKind selects how an entry leaves when a newer entry replaces it.
type PopKind string

const (
	// PopOverridden removes the entry immediately without animation.
	PopOverridden PopKind = "overridden"
	// PopAnimated plays the pop animation.
	PopAnimated PopKind = "animated"
)

// PopBehavior is applied when an entry is pushed out by a newer one.
type PopBehavior struct {
	Kind      PopKind
	Animation Animation
}

// IsAnimated reports whether the pop plays an animation.
func (p PopBehavior) IsAnimated() bool {
	return p.Kind == PopAnimated
}
