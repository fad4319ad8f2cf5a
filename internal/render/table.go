// Package render draws detected tables as plain text for terminals.
package render

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/tsawler/reflow/som"
)

// cell is a table cell placed on the grid
type cell struct {
	row, col         int
	rowSpan, colSpan int
	lines            []string
}

// Grid is a table laid out on rows and columns. owner[r][c] is the cell
// drawn at each slot; spanning cells own several slots.
type Grid struct {
	rows, cols int
	cells      []*cell
	owner      [][]*cell

	widths  []int
	heights []int
}

// FromTable places the cells of t on a grid. text returns the content of
// a cell; newlines in it start new display lines.
func FromTable(t *som.Table, text func(*som.TableCell) string) *Grid {
	g := &Grid{rows: t.RowCount(), cols: t.ColumnCount()}
	g.owner = make([][]*cell, g.rows)
	for r := range g.owner {
		g.owner[r] = make([]*cell, g.cols)
	}

	placed := make(map[*som.TableCell]*cell)
	for r, row := range t.Rows {
		col := 0
		for _, tc := range row.Cells {
			span := max(tc.ColumnSpan, 1)
			if tc.Covered && tc.Owner != nil {
				if c, ok := placed[tc.Owner]; ok {
					g.claim(c, r, col, span)
				}
				col += span
				continue
			}
			c := &cell{
				row:     r,
				col:     col,
				rowSpan: max(tc.RowSpan, 1),
				colSpan: span,
				lines:   strings.Split(text(tc), "\n"),
			}
			placed[tc] = c
			g.cells = append(g.cells, c)
			g.claim(c, r, col, span)
			col += span
		}
	}

	g.measure()
	return g
}

func (g *Grid) claim(c *cell, row, col, span int) {
	for i := col; i < col+span && i < g.cols; i++ {
		g.owner[row][i] = c
	}
}

func (g *Grid) measure() {
	g.widths = make([]int, g.cols)
	for i := range g.widths {
		g.widths[i] = 1
	}
	g.heights = make([]int, g.rows)
	for i := range g.heights {
		g.heights[i] = 1
	}

	// single-column cells first, then widen for spanning cells
	for _, c := range g.cells {
		if c.colSpan == 1 && c.col < g.cols {
			g.widths[c.col] = max(g.widths[c.col], widest(c.lines))
		}
		g.heights[c.row] = max(g.heights[c.row], len(c.lines))
	}
	for _, c := range g.cells {
		if c.colSpan == 1 {
			continue
		}
		total := g.spanWidth(c.col, c.colSpan)
		if need := widest(c.lines) - total; need > 0 {
			for i := 0; i < c.colSpan && c.col+i < g.cols; i++ {
				g.widths[c.col+i] += need / c.colSpan
				if i < need%c.colSpan {
					g.widths[c.col+i]++
				}
			}
		}
	}
}

// spanWidth is the content width of span columns from col, separators
// included
func (g *Grid) spanWidth(col, span int) int {
	w := 0
	for i := col; i < col+span && i < g.cols; i++ {
		w += g.widths[i]
	}
	return w + 3*(span-1)
}

func widest(lines []string) int {
	w := 0
	for _, l := range lines {
		w = max(w, runewidth.StringWidth(l))
	}
	return w
}

// Render draws the grid with ASCII borders. Borders between slots of one
// spanning cell are left open.
func (g *Grid) Render() string {
	if g.rows == 0 || g.cols == 0 {
		return ""
	}
	var sb strings.Builder
	g.border(&sb, -1)
	for r := 0; r < g.rows; r++ {
		for line := 0; line < g.heights[r]; line++ {
			g.content(&sb, r, line)
		}
		g.border(&sb, r)
	}
	return sb.String()
}

// border draws the rule below row, or the top rule for row -1
func (g *Grid) border(sb *strings.Builder, row int) {
	sb.WriteByte('+')
	for col := 0; col < g.cols; col++ {
		fill := "-"
		if row >= 0 && row < g.rows-1 && g.owner[row][col] != nil && g.owner[row][col] == g.owner[row+1][col] {
			fill = " "
		}
		sb.WriteString(strings.Repeat(fill, g.widths[col]+2))
		sb.WriteByte('+')
	}
	sb.WriteByte('\n')
}

func (g *Grid) content(sb *strings.Builder, row, line int) {
	sb.WriteByte('|')
	for col := 0; col < g.cols; {
		c := g.owner[row][col]
		span := 1
		text := ""
		if c != nil && c.col == col {
			span = c.colSpan
			if c.row == row && line < len(c.lines) {
				text = c.lines[line]
			}
		}
		width := g.spanWidth(col, span)
		sb.WriteByte(' ')
		sb.WriteString(text)
		sb.WriteString(strings.Repeat(" ", max(0, width-runewidth.StringWidth(text))))
		sb.WriteString(" |")
		col += span
	}
	sb.WriteByte('\n')
}

// CellText returns the text of a cell: the runs of each block joined by
// spaces, one block per line, images as [image]
func CellText(c *som.TableCell) string {
	var lines []string
	for _, b := range c.Children() {
		switch v := b.(type) {
		case *som.FixedBlock:
			var words []string
			for _, r := range v.Runs() {
				if t := strings.TrimSpace(r.Text); t != "" {
					words = append(words, t)
				}
			}
			lines = append(lines, strings.Join(words, " "))
		case *som.Image:
			lines = append(lines, "[image]")
		}
	}
	return strings.Join(lines, "\n")
}
