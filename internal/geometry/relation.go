// Package geometry computes where an entry sits inside its container:
// the edge it is anchored to, its resting and off-screen offsets, and the
// width/height relations derived from the size policies.
package geometry

import "fmt"

// Size is a width/height pair in container units.
type Size struct {
	Width  float64
	Height float64
}

// IsZero reports whether either dimension is missing.
func (s Size) IsZero() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Insets are the safe-area margins of a container.
type Insets struct {
	Top    float64
	Bottom float64
	Left   float64
	Right  float64
}

// Rect is an entry frame in container coordinates, y growing downward.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Edge is a horizontal edge of the entry or its container.
type Edge int

const (
	EdgeTop Edge = iota
	EdgeBottom
)

// String returns the edge name.
func (e Edge) String() string {
	if e == EdgeBottom {
		return "bottom"
	}
	return "top"
}

// Op is the comparison a relation enforces.
type Op int

const (
	OpEqual Op = iota
	OpLessOrEqual
)

// String returns the operator symbol.
func (o Op) String() string {
	if o == OpLessOrEqual {
		return "<="
	}
	return "=="
}

// Priority weighs competing relations. Only the highest satisfied relation
// on an attribute decides the layout.
type Priority int

const (
	PriorityDefaultLow  Priority = 250
	PriorityDefaultHigh Priority = 750
	// PriorityMust wins over every other positional relation while staying
	// below required so it can still be flipped at runtime.
	PriorityMust     Priority = 999
	PriorityRequired Priority = 1000
)

// String returns a readable priority name.
func (p Priority) String() string {
	switch p {
	case PriorityDefaultLow:
		return "low"
	case PriorityDefaultHigh:
		return "high"
	case PriorityMust:
		return "must"
	case PriorityRequired:
		return "required"
	default:
		return fmt.Sprintf("%d", int(p))
	}
}

// Relation pins one edge of the entry to one edge of the container:
// entry.EntryEdge Op container.ContainerEdge + Constant.
type Relation struct {
	Name          string
	EntryEdge     Edge
	ContainerEdge Edge
	Op            Op
	Constant      float64
	Priority      Priority
}

// WithPriority returns a copy of r weighted with p.
func (r Relation) WithPriority(p Priority) Relation {
	r.Priority = p
	return r
}

// Resolve returns the entry's top y when r is satisfied for an entry of
// entryHeight inside container.
func (r Relation) Resolve(container Size, entryHeight float64) float64 {
	edgeY := 0.0
	if r.ContainerEdge == EdgeBottom {
		edgeY = container.Height
	}
	y := edgeY + r.Constant
	if r.EntryEdge == EdgeBottom {
		y -= entryHeight
	}
	return y
}

// String renders the relation for logs and traces.
func (r Relation) String() string {
	return fmt.Sprintf("%s: entry.%s %s container.%s%+.1f @%s",
		r.Name, r.EntryEdge, r.Op, r.ContainerEdge, r.Constant, r.Priority)
}

// SizeRelation constrains one dimension of the entry.
type SizeRelation struct {
	Attribute  string // "width", "height", "leading", "trailing"
	Op         Op
	Multiplier float64 // of the container dimension; zero for constants
	Constant   float64
	Priority   Priority
}
