package som

import (
	"math"
	"sort"

	"github.com/tsawler/reflow/model"
)

// HorizontalFuzz is the fraction of the wider box's width within which two
// overlapping boxes count as horizontally aligned
const HorizontalFuzz = 0.1

// Relation is the spatial relation of one box to another along an axis
type Relation int

const (
	Before Relation = iota
	OverlapBefore
	Equal
	OverlapAfter
	After
)

// String returns the relation name
func (r Relation) String() string {
	switch r {
	case Before:
		return "Before"
	case OverlapBefore:
		return "OverlapBefore"
	case Equal:
		return "Equal"
	case OverlapAfter:
		return "OverlapAfter"
	case After:
		return "After"
	default:
		return "Unknown"
	}
}

// Invert returns the relation seen from the other box
func (r Relation) Invert() Relation {
	return After - r
}

// IsOverlap reports whether r is OverlapBefore or OverlapAfter
func (r Relation) IsOverlap() bool {
	return r == OverlapBefore || r == OverlapAfter
}

// IsStrict reports whether r is Before or After
func (r Relation) IsStrict() bool {
	return r == Before || r == After
}

func (r Relation) sign() int {
	switch r {
	case Before, OverlapBefore:
		return -1
	case After, OverlapAfter:
		return 1
	}
	return 0
}

// CompareHorizontal relates a to b along the reading axis. Under rtl the
// leading edge is the right edge and the result is mirrored.
func CompareHorizontal(a, b model.BBox, rtl bool) Relation {
	la, lb := a.Left(), b.Left()
	if rtl {
		la, lb = a.Right(), b.Right()
	}
	if la == lb {
		return Equal
	}

	var r Relation
	switch {
	case a.Right() < b.Left():
		r = Before
	case b.Right() < a.Left():
		r = After
	default:
		if math.Abs(la-lb) < HorizontalFuzz*math.Max(a.Width, b.Width) {
			return Equal
		}
		if la < lb {
			r = OverlapBefore
		} else {
			r = OverlapAfter
		}
	}

	if rtl {
		r = r.Invert()
	}
	return r
}

// CompareVertical relates a to b from top to bottom
func CompareVertical(a, b model.BBox) Relation {
	switch {
	case a.Top() == b.Top():
		return Equal
	case a.Bottom() <= b.Top():
		return Before
	case b.Bottom() <= a.Top():
		return After
	case a.Top() < b.Top():
		return OverlapBefore
	default:
		return OverlapAfter
	}
}

// CompareBoxes orders two boxes for reading. It returns -1 or +1 for
// distinct boxes and 0 only when a and b are the same box. Ambiguous spatial
// relations fall back to markup order, then absolute position, then creation
// order.
func CompareBoxes(a, b Box, rtl bool, order *MarkupOrder) int {
	if a == b {
		return 0
	}

	ba, bb := a.BBox(), b.BBox()
	if !ba.IsEmpty() && !bb.IsEmpty() {
		if s := spatialOrder(ba, bb, rtl); s != 0 {
			return s
		}
	}
	return fallbackOrder(a, b, order)
}

func spatialOrder(a, b model.BBox, rtl bool) int {
	h := CompareHorizontal(a, b, rtl)
	v := CompareVertical(a, b)

	switch {
	case h == Equal:
		return v.sign()
	case v == Equal:
		return h.sign()
	case h.IsStrict():
		return h.sign()
	case v.IsStrict():
		return v.sign()
	}
	return 0
}

func fallbackOrder(a, b Box, order *MarkupOrder) int {
	na, oa, okA := a.markup()
	nb, ob, okB := b.markup()
	if okA && okB {
		ia, ib := order.Index(na), order.Index(nb)
		if ia >= 0 && ib >= 0 && ia != ib {
			return cmpInt(ia, ib)
		}
		if na == nb && oa != ob {
			return cmpInt(oa, ob)
		}
	}

	ba, bb := a.BBox(), b.BBox()
	if !ba.IsEmpty() && !bb.IsEmpty() {
		if ba.Top() != bb.Top() {
			return cmpFloat(ba.Top(), bb.Top())
		}
		if ba.Left() != bb.Left() {
			return cmpFloat(ba.Left(), bb.Left())
		}
	}

	return cmpUint(a.Seq(), b.Seq())
}

// SortBoxes sorts boxes into reading order. CompareBoxes is antisymmetric
// but not transitive for overlapping boxes, so the result can depend on the
// input order. The sort is stable.
func SortBoxes(boxes []Box, rtl bool, order *MarkupOrder) {
	sort.SliceStable(boxes, func(i, j int) bool {
		return CompareBoxes(boxes[i], boxes[j], rtl, order) < 0
	})
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	return 1
}

func cmpFloat(a, b float64) int {
	if a < b {
		return -1
	}
	return 1
}

func cmpUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
