package som

import (
	"math"
	"sort"

	"github.com/tidwall/rtree"

	"github.com/tsawler/reflow/model"
	"github.com/tsawler/reflow/separator"
)

// disjointSet is a union-find over rule indices
type disjointSet []int

func newDisjointSet(n int) disjointSet {
	s := make(disjointSet, n)
	for i := range s {
		s[i] = i
	}
	return s
}

func (s disjointSet) find(i int) int {
	for s[i] != i {
		s[i] = s[s[i]]
		i = s[i]
	}
	return i
}

func (s disjointSet) union(a, b int) {
	ra, rb := s.find(a), s.find(b)
	if ra != rb {
		s[rb] = ra
	}
}

func rect(b model.BBox) (min, max [2]float64) {
	return [2]float64{b.Left(), b.Top()}, [2]float64{b.Right(), b.Bottom()}
}

// ruleComponents groups rules that touch within tol. Components without a
// vertical rule cannot form columns and are dropped.
func ruleComponents(rules []rule, tol float64) [][]rule {
	var tr rtree.RTreeG[int]
	for i, r := range rules {
		min, max := rect(r.bbox().Inflate(tol, tol))
		tr.Insert(min, max, i)
	}

	set := newDisjointSet(len(rules))
	for i, r := range rules {
		min, max := rect(r.bbox().Inflate(tol, tol))
		tr.Search(min, max, func(_, _ [2]float64, j int) bool {
			set.union(i, j)
			return true
		})
	}

	groups := make(map[int][]rule)
	var roots []int
	for i, r := range rules {
		root := set.find(i)
		if _, ok := groups[root]; !ok {
			roots = append(roots, root)
		}
		groups[root] = append(groups[root], r)
	}

	var out [][]rule
	for _, root := range roots {
		group := groups[root]
		for _, r := range group {
			if !r.horizontal {
				out = append(out, group)
				break
			}
		}
	}
	return out
}

// tableRegion is the area of one rule component and the closed state of its
// sides. A side is closed when a border rule runs along it and meets a rule
// of the other orientation there.
type tableRegion struct {
	box                      model.BBox
	left, right, top, bottom bool
}

func newTableRegion(component []rule, tol float64) tableRegion {
	box := model.EmptyBBox()
	for _, r := range component {
		box = box.Union(r.bbox())
	}

	near := func(a, b float64) bool { return math.Abs(a-b) <= tol }
	edge := func(horizontal bool, coord float64) bool {
		for _, r := range component {
			if r.horizontal == horizontal && near(r.coord, coord) {
				return true
			}
		}
		return false
	}
	meets := func(horizontal bool, at float64) bool {
		for _, r := range component {
			if r.horizontal == horizontal && (near(r.start, at) || near(r.end, at)) {
				return true
			}
		}
		return false
	}

	return tableRegion{
		box:    box,
		left:   edge(false, box.Left()) && meets(true, box.Left()),
		right:  edge(false, box.Right()) && meets(true, box.Right()),
		top:    edge(true, box.Top()) && meets(false, box.Top()),
		bottom: edge(true, box.Bottom()) && meets(false, box.Bottom()),
	}
}

// extend grows the open sides of the region over adjacent blocks lying
// within the gap limit
func (pc *PageConstructor) extend(region tableRegion, index *rtree.RTreeG[Box], claimed map[Box]bool) model.BBox {
	box := region.box
	tol := pc.config.JoinTolerance
	ratio := pc.config.TableGapRatio

	adjacent := func(search model.BBox, accept func(b Box, bb model.BBox, lh float64) bool) model.BBox {
		grown := model.EmptyBBox()
		min, max := rect(search)
		index.Search(min, max, func(_, _ [2]float64, b Box) bool {
			fb, ok := b.(*FixedBlock)
			if !ok || claimed[b] {
				return true
			}
			if accept(b, fb.BBox(), fb.LineHeight()) {
				grown = grown.Union(fb.BBox())
			}
			return true
		})
		return grown
	}

	far := math.Inf(1)

	if !region.left {
		g := adjacent(model.NewBBoxLTRB(-far, box.Top(), box.Left()+tol, box.Bottom()), func(_ Box, bb model.BBox, lh float64) bool {
			return bb.Right() <= box.Left()+tol && verticalOverlap(bb, box) > 0 && box.Left()-bb.Right() <= ratio*lh
		})
		if !g.IsEmpty() {
			box = box.Union(g)
		}
	}
	if !region.right {
		g := adjacent(model.NewBBoxLTRB(box.Right()-tol, box.Top(), far, box.Bottom()), func(_ Box, bb model.BBox, lh float64) bool {
			return bb.Left() >= box.Right()-tol && verticalOverlap(bb, box) > 0 && bb.Left()-box.Right() <= ratio*lh
		})
		if !g.IsEmpty() {
			box = box.Union(g)
		}
	}
	if !region.top {
		g := adjacent(model.NewBBoxLTRB(box.Left(), -far, box.Right(), box.Top()+tol), func(_ Box, bb model.BBox, lh float64) bool {
			return bb.Bottom() <= box.Top()+tol && horizontalOverlap(bb, box) > 0 && box.Top()-bb.Bottom() <= ratio*lh
		})
		if !g.IsEmpty() {
			box = box.Union(g)
		}
	}
	if !region.bottom {
		g := adjacent(model.NewBBoxLTRB(box.Left(), box.Bottom()-tol, box.Right(), far), func(_ Box, bb model.BBox, lh float64) bool {
			return bb.Top() >= box.Bottom()-tol && horizontalOverlap(bb, box) > 0 && bb.Top()-box.Bottom() <= ratio*lh
		})
		if !g.IsEmpty() {
			box = box.Union(g)
		}
	}
	return box
}

// boundaries returns the sorted distinct coordinates of rules of the given
// orientation lying strictly inside (lo, hi), framed by lo and hi
func boundaries(component []rule, horizontal bool, lo, hi, tol float64) []float64 {
	coords := []float64{lo, hi}
	for _, r := range component {
		if r.horizontal == horizontal && r.coord > lo+tol && r.coord < hi-tol {
			coords = append(coords, r.coord)
		}
	}
	sort.Float64s(coords)

	out := coords[:1]
	for _, c := range coords[1:] {
		if c-out[len(out)-1] > tol {
			out = append(out, c)
		}
	}
	if len(out) > 1 && out[len(out)-1] < hi {
		out[len(out)-1] = hi
	}
	return out
}

// detectTables builds tables from rule components and claims the blocks and
// images placed in their cells
func (pc *PageConstructor) detectTables(rules []rule, boxes []Box, lines *separator.LineCollection, order *MarkupOrder) ([]*Table, map[Box]bool) {
	claimed := make(map[Box]bool)
	if len(rules) == 0 || len(boxes) == 0 {
		return nil, claimed
	}

	var index rtree.RTreeG[Box]
	for _, b := range boxes {
		min, max := rect(b.BBox())
		index.Insert(min, max, b)
	}

	tol := pc.config.JoinTolerance
	var tables []*Table
	for _, component := range ruleComponents(rules, tol) {
		region := newTableRegion(component, tol)
		area := pc.extend(region, &index, claimed)

		t := pc.buildGrid(component, area, lines, tol)
		members := pc.assign(t, area, &index, claimed)
		if len(members) == 0 {
			continue
		}

		t.DeleteEmptyRows()
		t.DeleteEmptyColumns()
		t.MergeRowSpans(lines.IsHorizontallySeparated)
		if t.IsEmpty() || t.IsSingleCell() {
			continue
		}

		for _, r := range t.Rows {
			for _, c := range r.Cells {
				children := append([]Box(nil), c.Children()...)
				SortBoxes(children, c.IsRTL(), order)
				c.reset(children)
			}
		}
		t.refresh()
		t.Sort()

		for _, b := range members {
			claimed[b] = true
		}
		tables = append(tables, t)
	}
	return tables, claimed
}

// buildGrid lays out rows at the component's horizontal rules and, per row,
// cells at the vertical rules crossing the whole row
func (pc *PageConstructor) buildGrid(component []rule, area model.BBox, lines *separator.LineCollection, tol float64) *Table {
	t := NewTable(area, pc.config)
	ys := boundaries(component, true, area.Top(), area.Bottom(), tol)
	xs := boundaries(component, false, area.Left(), area.Right(), tol)

	for i := 0; i+1 < len(ys); i++ {
		y0, y1 := ys[i], ys[i+1]
		row := NewTableRow(model.NewBBoxLTRB(area.Left(), y0, area.Right(), y1))

		left := area.Left()
		for _, x := range xs[1:] {
			last := x == xs[len(xs)-1]
			if !last && !lines.IsVerticallySeparated(model.NewBBoxLTRB(x-tol, y0, x+tol, y1)) {
				continue
			}
			row.AddCell(NewTableCell(model.NewBBoxLTRB(left, y0, x, y1)))
			left = x
		}
		t.AddRow(row)
	}
	return t
}

// assign places unclaimed boxes into the cell containing them and returns
// the boxes placed
func (pc *PageConstructor) assign(t *Table, area model.BBox, index *rtree.RTreeG[Box], claimed map[Box]bool) []Box {
	var candidates []Box
	min, max := rect(area)
	index.Search(min, max, func(_, _ [2]float64, b Box) bool {
		if !claimed[b] {
			candidates = append(candidates, b)
		}
		return true
	})
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Seq() < candidates[j].Seq()
	})

	shrink := pc.config.CellShrink
	var members []Box
	for _, b := range candidates {
		inner := b.BBox().Shrink(shrink, shrink)
		if !area.ContainsBBox(inner) {
			continue
		}
		if cell := cellContaining(t, inner); cell != nil {
			cell.Add(b)
			members = append(members, b)
		}
	}
	if len(members) > 0 {
		t.refresh()
	}
	return members
}

func cellContaining(t *Table, inner model.BBox) *TableCell {
	for _, r := range t.Rows {
		for _, c := range r.Cells {
			if c.Frame.ContainsBBox(inner) {
				return c
			}
		}
	}
	return nil
}
