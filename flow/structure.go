package flow

import (
	"fmt"
	"math"

	"github.com/tsawler/reflow/model"
	"github.com/tsawler/reflow/som"
)

// LineResult is one entry of a page's line table: a line of text and the
// physical nodes drawn on it
type LineResult struct {
	BBox  model.BBox
	Nodes []model.FixedNode
}

// PageStructure holds the per-page state of the flow: the flow range of the
// page, its constructed object model and its line table
type PageStructure struct {
	PageIndex int

	// FlowStart and FlowEnd bound the page in the flow order. Until the page
	// is built both refer to its Virtual node.
	FlowStart NodeID
	FlowEnd   NodeID

	Page *som.Page

	lines   []LineResult
	virtual bool
}

// NewPageStructure creates the structure of an unbuilt page represented by
// a virtual node
func NewPageStructure(pageIndex int, virtual NodeID) *PageStructure {
	return &PageStructure{
		PageIndex: pageIndex,
		FlowStart: virtual,
		FlowEnd:   virtual,
		virtual:   true,
	}
}

// IsVirtual reports whether the page still stands behind its placeholder
func (ps *PageStructure) IsVirtual() bool {
	return ps.virtual
}

// SetFlowBoundary records the first and last flow nodes of the built page
func (ps *PageStructure) SetFlowBoundary(start, end NodeID) {
	ps.FlowStart, ps.FlowEnd = start, end
	ps.virtual = false
}

// FlowRange returns the flow positions of the page's first and last nodes
func (ps *PageStructure) FlowRange(m *FlowMap) (int, int, error) {
	start, err := m.Fp(ps.FlowStart)
	if err != nil {
		return -1, -1, err
	}
	end, err := m.Fp(ps.FlowEnd)
	if err != nil {
		return -1, -1, err
	}
	return start, end, nil
}

// SetPage attaches the constructed page and rebuilds the line table from its
// blocks in reading order
func (ps *PageStructure) SetPage(page *som.Page) {
	ps.Page = page
	ps.lines = nil
	if page == nil {
		return
	}
	for _, b := range page.Children() {
		ps.collectLines(b)
	}
}

func (ps *PageStructure) collectLines(b som.Box) {
	switch v := b.(type) {
	case *som.FixedBlock:
		for _, l := range v.Lines() {
			var nodes []model.FixedNode
			seen := make(map[model.FixedNode]bool)
			for _, r := range l.Runs {
				if !seen[r.Node] {
					seen[r.Node] = true
					nodes = append(nodes, r.Node)
				}
			}
			ps.lines = append(ps.lines, LineResult{BBox: l.BBox, Nodes: nodes})
		}
	case *som.Table:
		for _, row := range v.Rows {
			for _, c := range row.Cells {
				for _, child := range c.Children() {
					ps.collectLines(child)
				}
			}
		}
	}
}

// Lines returns the line table in reading order
func (ps *PageStructure) Lines() []LineResult {
	return ps.lines
}

// FindLine returns the index of the first line drawing node, or -1
func (ps *PageStructure) FindLine(node model.FixedNode) int {
	for i, l := range ps.lines {
		for _, n := range l.Nodes {
			if n == node {
				return i
			}
		}
	}
	return -1
}

// NextLine returns the nodes of the line count lines after the one holding
// node, stopping at the last line
func (ps *PageStructure) NextLine(node model.FixedNode, count int) ([]model.FixedNode, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: negative line count %d", ErrInvalidArgument, count)
	}
	return ps.moveLine(node, count)
}

// PreviousLine returns the nodes of the line count lines before the one
// holding node, stopping at the first line
func (ps *PageStructure) PreviousLine(node model.FixedNode, count int) ([]model.FixedNode, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: negative line count %d", ErrInvalidArgument, count)
	}
	return ps.moveLine(node, -count)
}

func (ps *PageStructure) moveLine(node model.FixedNode, delta int) ([]model.FixedNode, error) {
	i := ps.FindLine(node)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s is on no line of page %d", ErrNotFound, node, ps.PageIndex)
	}
	n := len(ps.lines)
	delta = max(-n, min(delta, n))
	target := max(0, min(i+delta, n-1))
	return ps.lines[target].Nodes, nil
}

// SnapToLine returns the nodes of the line nearest to a page-space point.
// Lines whose vertical span holds the point win; among them, and otherwise,
// the smallest distance to the line box decides.
func (ps *PageStructure) SnapToLine(p model.Point) ([]model.FixedNode, error) {
	if len(ps.lines) == 0 {
		return nil, fmt.Errorf("%w: page %d has no lines", ErrNotFound, ps.PageIndex)
	}

	best := -1
	bestInside := false
	bestDist := math.Inf(1)
	for i, l := range ps.lines {
		inside := p.Y >= l.BBox.Top() && p.Y <= l.BBox.Bottom()
		d := distance(l.BBox, p)
		if best < 0 || (inside && !bestInside) || (inside == bestInside && d < bestDist) {
			best, bestInside, bestDist = i, inside, d
		}
	}
	return ps.lines[best].Nodes, nil
}

func distance(b model.BBox, p model.Point) float64 {
	dx := math.Max(0, math.Max(b.Left()-p.X, p.X-b.Right()))
	dy := math.Max(0, math.Max(b.Top()-p.Y, p.Y-b.Bottom()))
	return math.Hypot(dx, dy)
}
