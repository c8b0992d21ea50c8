package geometry

import (
	"math"

	"github.com/jmylchreest/toastkit/internal/attr"
)

// Side is the container edge an entry hides behind when off screen.
type Side int

const (
	SideTop Side = iota
	SideBottom
)

// Input is everything the engine needs to place one entry.
type Input struct {
	Position    attr.Position
	Constraints attr.PositionConstraints

	Container Size
	SafeArea  Insets
	// SafeAreaSupported is the window provider's capability flag. Without it
	// the override flag has no effect.
	SafeAreaSupported bool

	// Measure returns the content's preferred size for a given width.
	// Nil measures as zero.
	Measure func(maxWidth float64) Size
}

// Anchor is the edge pair used to align the entry at rest.
type Anchor struct {
	EntryEdge     Edge
	ContainerEdge Edge
}

// Layout is the computed geometry for one entry.
type Layout struct {
	Position  attr.Position
	Anchor    Anchor
	Container Size

	// Spacer is the safe-area band reserved between the container edge and
	// the entry. Zero when the safe area is overridden or empty.
	Spacer float64
	// RestOffset is the distance from the anchored container edge to the
	// entry's anchored edge while resting.
	RestOffset float64

	X      float64
	Width  float64
	Height float64

	Sizes []SizeRelation
}

// Compute resolves anchors, offsets, and size for in.
func Compute(in Input) Layout {
	pc := in.Constraints
	l := Layout{
		Position:  in.Position,
		Container: in.Container,
	}

	if in.Position == attr.PositionBottom {
		l.Anchor = Anchor{EntryEdge: EdgeBottom, ContainerEdge: EdgeBottom}
	} else {
		l.Anchor = Anchor{EntryEdge: EdgeTop, ContainerEdge: EdgeTop}
	}

	overridden := pc.SafeArea.Overridden && in.SafeAreaSupported
	if !overridden {
		inset := in.SafeArea.Top
		if in.Position == attr.PositionBottom {
			inset = in.SafeArea.Bottom
		}
		if inset > 0 {
			l.Spacer = inset
		}
	}
	l.RestOffset = l.Spacer + pc.VerticalOffset

	measure := in.Measure
	if measure == nil {
		measure = func(float64) Size { return Size{} }
	}

	W, H := in.Container.Width, in.Container.Height
	intrinsic := measure(W)

	var sizes []SizeRelation
	w, leading, trailing, offset, rels := resolveDimension("width", pc.Width, W, intrinsic.Width)
	sizes = append(sizes, rels...)

	if maxW, rel, ok := resolveMax(pc.MaxWidth, W, intrinsic.Width); ok {
		sizes = append(sizes, rel)
		w = math.Min(w, maxW)
	}
	w = clamp(w, 0, W)

	if offset {
		l.X = leading + math.Max(0, (W-leading-trailing-w)/2)
	} else {
		l.X = (W - w) / 2
	}
	l.Width = w

	contentAtWidth := measure(w)
	h, _, _, _, rels := resolveDimension("height", pc.Height, H, contentAtWidth.Height)
	sizes = append(sizes, rels...)
	l.Height = clamp(h, 0, H)
	l.Sizes = sizes

	return l
}

// resolveDimension applies one size policy. It returns the size, the
// leading/trailing insets for offset policies, and the relations added.
func resolveDimension(name string, p attr.SizePolicy, container, intrinsic float64) (size, leading, trailing float64, offset bool, rels []SizeRelation) {
	switch p.Kind {
	case attr.SizeOffset:
		rels = []SizeRelation{
			{Attribute: "leading", Op: OpEqual, Constant: p.Leading, Priority: PriorityMust},
			{Attribute: "trailing", Op: OpEqual, Constant: -p.Trailing, Priority: PriorityMust},
		}
		return container - p.Leading - p.Trailing, p.Leading, p.Trailing, true, rels
	case attr.SizeRatio:
		rels = []SizeRelation{{Attribute: name, Op: OpEqual, Multiplier: p.Ratio, Priority: PriorityMust}}
		return container * p.Ratio, 0, 0, false, rels
	case attr.SizeConstant:
		rels = []SizeRelation{{Attribute: name, Op: OpEqual, Constant: p.Value, Priority: PriorityMust}}
		return p.Value, 0, 0, false, rels
	case attr.SizeIntrinsic:
		rels = []SizeRelation{{Attribute: name, Op: OpEqual, Constant: intrinsic, Priority: PriorityDefaultHigh}}
		return intrinsic, 0, 0, false, rels
	default:
		return intrinsic, 0, 0, false, nil
	}
}

// resolveMax turns a max-width policy into an inequality.
func resolveMax(p attr.SizePolicy, container, intrinsic float64) (float64, SizeRelation, bool) {
	rel := SizeRelation{Attribute: "width", Op: OpLessOrEqual, Priority: PriorityMust}
	switch p.Kind {
	case attr.SizeOffset:
		rel.Constant = container - p.Leading - p.Trailing
		return rel.Constant, rel, true
	case attr.SizeRatio:
		rel.Multiplier = p.Ratio
		return container * p.Ratio, rel, true
	case attr.SizeConstant:
		rel.Constant = p.Value
		return p.Value, rel, true
	case attr.SizeIntrinsic:
		rel.Constant = intrinsic
		return intrinsic, rel, true
	default:
		return 0, rel, false
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// Rest returns the relation that holds the entry at its resting position.
func (l Layout) Rest(name string, p Priority) Relation {
	r := Relation{
		Name:          name,
		EntryEdge:     l.Anchor.EntryEdge,
		ContainerEdge: l.Anchor.ContainerEdge,
		Op:            OpEqual,
		Constant:      l.RestOffset,
		Priority:      p,
	}
	if l.Anchor.ContainerEdge == EdgeBottom {
		r.Constant = -l.RestOffset
	}
	return r
}

// Out returns the relation that parks the entry just past side.
func (l Layout) Out(name string, side Side, p Priority) Relation {
	if side == SideBottom {
		return Relation{Name: name, EntryEdge: EdgeTop, ContainerEdge: EdgeBottom, Op: OpEqual, Priority: p}
	}
	return Relation{Name: name, EntryEdge: EdgeBottom, ContainerEdge: EdgeTop, Op: OpEqual, Priority: p}
}

// SideFor maps a translate anchor to the side the entry slides through.
func (l Layout) SideFor(from attr.TranslateFrom) Side {
	switch from {
	case attr.FromTop:
		return SideTop
	case attr.FromBottom:
		return SideBottom
	default:
		if l.Position == attr.PositionBottom {
			return SideBottom
		}
		return SideTop
	}
}

// OutwardSign is -1 when the entry leaves upward and +1 when downward.
func (l Layout) OutwardSign() float64 {
	if l.Position == attr.PositionBottom {
		return 1
	}
	return -1
}

// Y resolves r to the entry's top y for this layout.
func (l Layout) Y(r Relation) float64 {
	return r.Resolve(l.Container, l.Height)
}

// Frame returns the entry rectangle at top y.
func (l Layout) Frame(y float64) Rect {
	return Rect{X: l.X, Y: y, Width: l.Width, Height: l.Height}
}
