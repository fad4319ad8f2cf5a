package som

import (
	"math"
	"sort"

	"github.com/tsawler/reflow/model"
)

// TableCell is one cell of a table row. Frame is the area bounded by the
// cell's rules; the cell's BBox is the union of its content.
type TableCell struct {
	container

	Frame      model.BBox
	ColumnSpan int
	RowSpan    int

	// Covered marks a placeholder for the area of a cell spanning rows from
	// above; its content has moved to Owner
	Covered bool
	Owner   *TableCell
}

// NewTableCell creates an empty cell with the given frame
func NewTableCell(frame model.BBox) *TableCell {
	return &TableCell{
		container:  newContainer(),
		Frame:      frame,
		ColumnSpan: 1,
		RowSpan:    1,
	}
}

// Add appends a block or image to the cell and counts its direction vote
func (c *TableCell) Add(b Box) {
	c.add(b)
	switch v := b.(type) {
	case *FixedBlock:
		if rtl, ltr := v.Votes(); rtl+ltr > 0 {
			c.vote(v.IsRTL())
		}
	case Element:
		c.vote(v.IsRTL())
	}
}

// IsEmpty reports whether the cell holds no content
func (c *TableCell) IsEmpty() bool {
	return len(c.children) == 0
}

// TableRow is a horizontal band of cells
type TableRow struct {
	container

	Frame model.BBox
	Cells []*TableCell
}

// NewTableRow creates an empty row with the given frame
func NewTableRow(frame model.BBox) *TableRow {
	return &TableRow{container: newContainer(), Frame: frame}
}

// AddCell appends a cell
func (r *TableRow) AddCell(c *TableCell) {
	r.Cells = append(r.Cells, c)
	r.add(c)
	if rtl, ltr := c.Votes(); rtl+ltr > 0 {
		r.vote(c.IsRTL())
	}
}

// IsEmpty reports whether no cell of the row holds content
func (r *TableRow) IsEmpty() bool {
	for _, c := range r.Cells {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// ColumnCount returns the number of grid columns spanned by the row
func (r *TableRow) ColumnCount() int {
	n := 0
	for _, c := range r.Cells {
		n += c.ColumnSpan
	}
	return n
}

func (r *TableRow) refresh() {
	children := make([]Box, len(r.Cells))
	for i, c := range r.Cells {
		children[i] = c
	}
	r.reset(children)
	r.rtlVotes, r.ltrVotes = 0, 0
	for _, c := range r.Cells {
		if rtl, ltr := c.Votes(); rtl+ltr > 0 {
			r.vote(c.IsRTL())
		}
	}
}

// Table is a grid of rows detected from rule lines
type Table struct {
	container

	Frame model.BBox
	Rows  []*TableRow

	minRowHeight   float64
	minColumnWidth float64
	alignment      float64
}

// NewTable creates an empty table with the pruning thresholds of config
func NewTable(frame model.BBox, config Config) *Table {
	return &Table{
		container:      newContainer(),
		Frame:          frame,
		minRowHeight:   config.MinRowHeight,
		minColumnWidth: config.MinColumnWidth,
		alignment:      config.AlignmentTolerance,
	}
}

// AddRow appends a row
func (t *Table) AddRow(r *TableRow) {
	t.Rows = append(t.Rows, r)
	t.add(r)
	if rtl, ltr := r.Votes(); rtl+ltr > 0 {
		t.vote(r.IsRTL())
	}
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColumnCount returns the widest row's column count
func (t *Table) ColumnCount() int {
	n := 0
	for _, r := range t.Rows {
		n = max(n, r.ColumnCount())
	}
	return n
}

// Cell returns the cell at row and cell index, or nil
func (t *Table) Cell(row, index int) *TableCell {
	if row < 0 || row >= len(t.Rows) || index < 0 || index >= len(t.Rows[row].Cells) {
		return nil
	}
	return t.Rows[row].Cells[index]
}

// IsEmpty reports whether no cell holds content
func (t *Table) IsEmpty() bool {
	for _, r := range t.Rows {
		if !r.IsEmpty() {
			return false
		}
	}
	return true
}

// IsSingleCell reports whether the table degenerates to one cell
func (t *Table) IsSingleCell() bool {
	cells := 0
	for _, r := range t.Rows {
		for _, c := range r.Cells {
			if !c.Covered {
				cells++
			}
		}
	}
	return cells <= 1
}

// Blocks returns the content of every cell in row-major order
func (t *Table) Blocks() []Box {
	var boxes []Box
	for _, r := range t.Rows {
		for _, c := range r.Cells {
			boxes = append(boxes, c.Children()...)
		}
	}
	return boxes
}

// DeleteEmptyRows drops rows without content that are lower than the
// minimum row height
func (t *Table) DeleteEmptyRows() {
	kept := t.Rows[:0]
	for _, r := range t.Rows {
		if r.IsEmpty() && r.Frame.Height < t.minRowHeight {
			continue
		}
		kept = append(kept, r)
	}
	t.Rows = kept
	t.refresh()
}

// DeleteEmptyColumns removes grid columns that are empty and narrower than
// the minimum column width in every row. Column spans are recomputed from
// one, so repeated calls leave the table unchanged.
//
// The pass walks the rows in parallel, each with a cursor on its current
// cell. At each step the smallest left edge among the current cells is the
// next grid column. Rows whose current cell starts there either all hold a
// removable cell, and the column is deleted, or advance past it; rows whose
// cell started earlier extend that cell's column span.
func (t *Table) DeleteEmptyColumns() {
	for _, r := range t.Rows {
		for _, c := range r.Cells {
			c.ColumnSpan = 1
		}
	}

	cursor := make([]int, len(t.Rows))
	for {
		next := math.Inf(1)
		for i, r := range t.Rows {
			if cursor[i] < len(r.Cells) {
				next = math.Min(next, r.Cells[cursor[i]].Frame.Left())
			}
		}
		if math.IsInf(next, 1) {
			break
		}

		if t.columnRemovable(cursor, next) {
			for i, r := range t.Rows {
				r.removeCell(cursor[i])
			}
			continue
		}

		for i, r := range t.Rows {
			if cursor[i] < len(r.Cells) && t.aligned(r.Cells[cursor[i]].Frame.Left(), next) {
				cursor[i]++
			} else if cursor[i] > 0 {
				r.Cells[cursor[i]-1].ColumnSpan++
			}
		}
	}
	t.refresh()
}

// columnRemovable reports whether every row's current cell starts at left,
// is empty and is narrower than the minimum width
func (t *Table) columnRemovable(cursor []int, left float64) bool {
	for i, r := range t.Rows {
		if cursor[i] >= len(r.Cells) {
			return false
		}
		c := r.Cells[cursor[i]]
		if !t.aligned(c.Frame.Left(), left) || !c.IsEmpty() || c.Covered || c.Frame.Width >= t.minColumnWidth {
			return false
		}
	}
	return true
}

func (t *Table) aligned(a, b float64) bool {
	return math.Abs(a-b) <= t.alignment
}

// removeCell deletes a cell, giving its area to a neighbour
func (r *TableRow) removeCell(i int) {
	if i < 0 || i >= len(r.Cells) {
		return
	}
	removed := r.Cells[i]
	r.Cells = append(r.Cells[:i], r.Cells[i+1:]...)
	switch {
	case i > 0:
		prev := r.Cells[i-1]
		prev.Frame = prev.Frame.Union(removed.Frame)
	case len(r.Cells) > 0:
		r.Cells[0].Frame = r.Cells[0].Frame.Union(removed.Frame)
	}
}

// MergeRowSpans merges vertically aligned cells whose shared boundary is not
// drawn. separated reports whether a rule lies along the given boundary
// strip. The lower cell becomes a covered placeholder and its content moves
// to the cell above.
func (t *Table) MergeRowSpans(separated func(strip model.BBox) bool) {
	for i := 1; i < len(t.Rows); i++ {
		above, row := t.Rows[i-1], t.Rows[i]
		for _, c := range row.Cells {
			if c.Covered {
				continue
			}
			up := above.cellAligned(c.Frame, t.alignment)
			if up == nil {
				continue
			}
			strip := model.NewBBoxLTRB(c.Frame.Left(), c.Frame.Top()-t.alignment, c.Frame.Right(), c.Frame.Top()+t.alignment)
			if separated(strip) {
				continue
			}

			owner := up
			if up.Covered && up.Owner != nil {
				owner = up.Owner
			}
			owner.RowSpan++
			owner.Frame = owner.Frame.Union(c.Frame)
			for _, b := range c.Children() {
				owner.Add(b)
			}

			c.reset(nil)
			c.rtlVotes, c.ltrVotes = 0, 0
			c.Covered = true
			c.Owner = owner
		}
		above.refresh()
		row.refresh()
	}
	t.refresh()
}

// cellAligned returns the cell whose frame has the same left and right edges
func (r *TableRow) cellAligned(frame model.BBox, tol float64) *TableCell {
	for _, c := range r.Cells {
		if math.Abs(c.Frame.Left()-frame.Left()) <= tol && math.Abs(c.Frame.Right()-frame.Right()) <= tol {
			return c
		}
	}
	return nil
}

// Sort orders rows top to bottom and cells along the table direction
func (t *Table) Sort() {
	rtl := t.IsRTL()
	sort.SliceStable(t.Rows, func(i, j int) bool {
		return t.Rows[i].Frame.Top() < t.Rows[j].Frame.Top()
	})
	for _, r := range t.Rows {
		sort.SliceStable(r.Cells, func(i, j int) bool {
			if rtl {
				return r.Cells[i].Frame.Right() > r.Cells[j].Frame.Right()
			}
			return r.Cells[i].Frame.Left() < r.Cells[j].Frame.Left()
		})
		r.refresh()
	}
	t.refresh()
}

func (t *Table) refresh() {
	for _, r := range t.Rows {
		r.refresh()
	}
	children := make([]Box, len(t.Rows))
	for i, r := range t.Rows {
		children[i] = r
	}
	t.reset(children)
	t.rtlVotes, t.ltrVotes = 0, 0
	for _, r := range t.Rows {
		if rtl, ltr := r.Votes(); rtl+ltr > 0 {
			t.vote(r.IsRTL())
		}
	}
}
