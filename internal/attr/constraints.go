package attr

// SizeKind selects how a width or height is resolved against the container.
type SizeKind string

const (
	// SizeUnspecified adds no relation.
	SizeUnspecified SizeKind = "unspecified"
	// SizeOffset insets the entry from both container edges.
	SizeOffset SizeKind = "offset"
	// SizeRatio sizes the entry as a fraction of the container.
	SizeRatio SizeKind = "ratio"
	// SizeConstant uses a fixed size.
	SizeConstant SizeKind = "constant"
	// SizeIntrinsic uses the content's preferred size.
	SizeIntrinsic SizeKind = "intrinsic"
)

// SizePolicy describes one dimension.
type SizePolicy struct {
	Kind     SizeKind
	Leading  float64 // offset
	Trailing float64 // offset
	Ratio    float64
	Value    float64 // constant
}

// Offset insets the entry by leading and trailing from the container edges.
func Offset(leading, trailing float64) SizePolicy {
	return SizePolicy{Kind: SizeOffset, Leading: leading, Trailing: trailing}
}

// Ratio sizes the entry as r times the container dimension.
func Ratio(r float64) SizePolicy {
	return SizePolicy{Kind: SizeRatio, Ratio: r}
}

// Constant fixes the dimension to v.
func Constant(v float64) SizePolicy {
	return SizePolicy{Kind: SizeConstant, Value: v}
}

// Intrinsic uses the content's preferred size.
func Intrinsic() SizePolicy {
	return SizePolicy{Kind: SizeIntrinsic}
}

// Unspecified adds no relation.
func Unspecified() SizePolicy {
	return SizePolicy{Kind: SizeUnspecified}
}

// Validate checks ranges for the selected kind.
func (p SizePolicy) Validate() error {
	switch p.Kind {
	case SizeUnspecified, SizeIntrinsic, "":
		return nil
	case SizeOffset:
		if p.Leading < 0 || p.Trailing < 0 {
			return ErrNegativeSize
		}
	case SizeRatio:
		if p.Ratio <= 0 || p.Ratio > 1 {
			return ErrInvalidRatio
		}
	case SizeConstant:
		if p.Value < 0 {
			return ErrNegativeSize
		}
	default:
		return ErrInvalidSize
	}
	return nil
}

// SafeArea controls whether the entry respects the container's safe area.
type SafeArea struct {
	// Overridden lets the entry extend into the safe area.
	Overridden bool
}

// PositionConstraints groups size and offset policies.
type PositionConstraints struct {
	Width    SizePolicy
	Height   SizePolicy
	MaxWidth SizePolicy

	VerticalOffset float64
	SafeArea       SafeArea
}
