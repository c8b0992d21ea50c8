// Package constraint holds the four positional relations of an entry and
// flips their priorities to move it between off-screen and resting.
package constraint

import (
	"fmt"

	"github.com/jmylchreest/toastkit/internal/attr"
	"github.com/jmylchreest/toastkit/internal/geometry"
)

// Name identifies one of the four relations.
type Name string

const (
	EntranceOut Name = "entrance_out"
	In          Name = "in"
	ExitOut     Name = "exit_out"
	PopOut      Name = "pop_out"
)

// Names lists the relations in a stable order.
var Names = []Name{EntranceOut, In, ExitOut, PopOut}

// Phase is the settled state of a Set. Each phase makes exactly one
// relation Must.
type Phase int

const (
	PhaseEntering Phase = iota
	PhaseResting
	PhaseExiting
	PhasePoppedOut
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseEntering:
		return "entering"
	case PhaseResting:
		return "resting"
	case PhaseExiting:
		return "exiting"
	case PhasePoppedOut:
		return "popped_out"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Relation returns the relation a phase makes authoritative.
func (p Phase) Relation() Name {
	switch p {
	case PhaseResting:
		return In
	case PhaseExiting:
		return ExitOut
	case PhasePoppedOut:
		return PopOut
	default:
		return EntranceOut
	}
}

// Set owns the four relations of one entry.
type Set struct {
	layout    geometry.Layout
	pop       attr.PopBehavior
	entrance  attr.Animation
	exit      attr.Animation
	relations map[Name]geometry.Relation
	phase     Phase
}

// Build creates the relations for layout. Out relations use the translation
// side of their animation; animations without a translation, and a pop
// behavior that is not animated, mirror the resting offset instead. The set
// starts in PhaseEntering.
func Build(layout geometry.Layout, pop attr.PopBehavior, entrance, exit attr.Animation) *Set {
	s := &Set{
		pop:      pop,
		entrance: entrance,
		exit:     exit,
	}
	s.build(layout)
	s.Activate(PhaseEntering)
	return s
}

func (s *Set) build(layout geometry.Layout) {
	s.layout = layout
	low := geometry.PriorityDefaultLow

	out := func(name Name, anim attr.Animation) geometry.Relation {
		if anim.ContainsTranslation() {
			return layout.Out(string(name), layout.SideFor(anim.Translate.From), low)
		}
		return layout.Rest(string(name), low)
	}

	popAnim := attr.None()
	if s.pop.IsAnimated() {
		popAnim = s.pop.Animation
	}

	s.relations = map[Name]geometry.Relation{
		EntranceOut: out(EntranceOut, s.entrance),
		In:          layout.Rest(string(In), low),
		ExitOut:     out(ExitOut, s.exit),
		PopOut:      out(PopOut, popAnim),
	}
}

// Activate raises the phase's relation to Must and lowers the others.
func (s *Set) Activate(p Phase) {
	s.phase = p
	active := p.Relation()
	for name, r := range s.relations {
		if name == active {
			s.relations[name] = r.WithPriority(geometry.PriorityMust)
		} else {
			s.relations[name] = r.WithPriority(geometry.PriorityDefaultLow)
		}
	}
}

// Rebuild recomputes the relations for a new layout and keeps the phase.
func (s *Set) Rebuild(layout geometry.Layout) {
	s.build(layout)
	s.Activate(s.phase)
}

// Phase returns the current phase.
func (s *Set) Phase() Phase {
	return s.phase
}

// Active returns the Must relation.
func (s *Set) Active() geometry.Relation {
	return s.relations[s.phase.Relation()]
}

// Relation returns the named relation.
func (s *Set) Relation(n Name) geometry.Relation {
	return s.relations[n]
}

// Relations returns all four relations in Names order.
func (s *Set) Relations() []geometry.Relation {
	out := make([]geometry.Relation, 0, len(Names))
	for _, n := range Names {
		out = append(out, s.relations[n])
	}
	return out
}

// MustCount returns how many relations have Must priority.
func (s *Set) MustCount() int {
	n := 0
	for _, r := range s.relations {
		if r.Priority == geometry.PriorityMust {
			n++
		}
	}
	return n
}

// Layout returns the geometry the relations were built from.
func (s *Set) Layout() geometry.Layout {
	return s.layout
}

// Y resolves the named relation to the entry's top y.
func (s *Set) Y(n Name) float64 {
	return s.layout.Y(s.relations[n])
}

// ActiveY resolves the Must relation to the entry's top y.
func (s *Set) ActiveY() float64 {
	return s.Y(s.phase.Relation())
}
