package quote

// Size is a share/contract count with an explicit invalid state,
// distinguishing "zero size" from "side not present" (spec.md's
// PxSize2/BboTick feature set).
type Size struct {
	rep int32
}

const invalidSizeRep int32 = -1

// InvalidSize is a Size carrying no quantity.
func InvalidSize() Size { return Size{rep: invalidSizeRep} }

// SizeFromInt wraps x as a valid Size.
func SizeFromInt(x int32) Size { return Size{rep: x} }

// IsValid reports whether s carries an actual quantity.
func (s Size) IsValid() bool { return s.rep != invalidSizeRep }

// ToInt returns s's raw quantity; meaningless if !s.IsValid().
func (s Size) ToInt() int32 { return s.rep }

// Compare returns negative/zero/positive as x is less than, equal to,
// or greater than y.
func (x Size) Compare(y Size) int32 {
	return x.rep - y.rep
}
