package som

import (
	"sort"

	"github.com/tsawler/reflow/model"
)

// MarkupOrder is a page's declaration order of leaf primitives
type MarkupOrder struct {
	nodes []model.FixedNode
}

// NewMarkupOrder creates a markup order from nodes in declaration order
func NewMarkupOrder(nodes []model.FixedNode) *MarkupOrder {
	sorted := make([]model.FixedNode, len(nodes))
	copy(sorted, nodes)
	// Declaration order already sorts by path; this guards hand-built input
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Compare(sorted[j]) < 0 })
	return &MarkupOrder{nodes: sorted}
}

// Index returns the position of node, or -1 when absent
func (o *MarkupOrder) Index(node model.FixedNode) int {
	if o == nil {
		return -1
	}
	i := sort.Search(len(o.nodes), func(i int) bool { return o.nodes[i].Compare(node) >= 0 })
	if i < len(o.nodes) && o.nodes[i] == node {
		return i
	}
	return -1
}

// Len returns the number of primitives
func (o *MarkupOrder) Len() int {
	if o == nil {
		return 0
	}
	return len(o.nodes)
}

// Nodes returns the primitives in declaration order
func (o *MarkupOrder) Nodes() []model.FixedNode {
	if o == nil {
		return nil
	}
	return o.nodes
}
