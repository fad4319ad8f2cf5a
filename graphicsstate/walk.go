package graphicsstate

import (
	"github.com/tsawler/reflow/model"
)

// Visitor receives a primitive, its physical address and its page-space
// transform (the primitive's own render transform included). Returning false
// for a canvas skips its children.
type Visitor func(node model.Node, addr model.FixedNode, ctm model.Matrix) bool

// WalkPage visits every primitive of page in markup order
func WalkPage(page *model.Page, pageIndex int, visit Visitor) {
	if page == nil {
		return
	}
	gs := NewGraphicsState()
	walk(gs, page.Children, model.PageStart(pageIndex), visit)
}

func walk(gs *GraphicsState, nodes []model.Node, parent model.FixedNode, visit Visitor) {
	for i, n := range nodes {
		addr := parent.Child(i)
		switch n := n.(type) {
		case *model.Canvas:
			if !visit(n, addr, gs.Local(n.RenderTransform)) {
				continue
			}
			gs.Save()
			gs.Transform(n.RenderTransform)
			walk(gs, n.Children, addr, visit)
			// Save and Restore are paired within this frame
			_ = gs.Restore()
		case *model.Glyphs:
			visit(n, addr, gs.Local(n.RenderTransform))
		case *model.Path:
			visit(n, addr, gs.Local(n.RenderTransform))
		}
	}
}
