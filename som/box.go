package som

import (
	"errors"
	"sync/atomic"

	"github.com/tsawler/reflow/model"
)

var (
	// ErrInvalidArgument is returned for nil pages and negative page indices
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidConfig is returned by Config.Validate
	ErrInvalidConfig = errors.New("invalid configuration")
)

// sequence numbers every box in creation order; it is the final ordering
// tie-break
var sequence atomic.Uint64

// Box is a node of the semantic object model. Elements (*TextRun, *Image)
// are leaves; containers (*FixedBlock, *TableCell, *TableRow, *Table, *Page)
// hold child boxes.
type Box interface {
	// BBox returns the box in page coordinates. A container's box is the
	// union of its children and is empty while it has none.
	BBox() model.BBox

	// Seq returns the creation sequence number
	Seq() uint64

	// markup returns the earliest physical address under the box and the
	// character offset it starts at
	markup() (model.FixedNode, int, bool)
}

type base struct {
	bbox model.BBox
	seq  uint64
}

func newBase(bbox model.BBox) base {
	return base{bbox: bbox, seq: sequence.Add(1)}
}

func (b *base) BBox() model.BBox { return b.bbox }
func (b *base) Seq() uint64      { return b.seq }

// container keeps the children, the union box, the earliest markup address
// and the direction votes of a container box
type container struct {
	base
	children []Box

	first       model.FixedNode
	firstOffset int
	hasFirst    bool

	rtlVotes int
	ltrVotes int
}

func newContainer() container {
	return container{base: newBase(model.EmptyBBox())}
}

func (c *container) add(b Box) {
	c.children = append(c.children, b)
	c.bbox = c.bbox.Union(b.BBox())

	node, offset, ok := b.markup()
	if !ok {
		return
	}
	if !c.hasFirst || node.Compare(c.first) < 0 || (node == c.first && offset < c.firstOffset) {
		c.first, c.firstOffset, c.hasFirst = node, offset, true
	}
}

// reset recomputes the union box and markup address from scratch
func (c *container) reset(children []Box) {
	c.children = nil
	c.bbox = model.EmptyBBox()
	c.hasFirst = false
	for _, b := range children {
		c.add(b)
	}
}

func (c *container) markup() (model.FixedNode, int, bool) {
	return c.first, c.firstOffset, c.hasFirst
}

// vote records the direction of one child
func (c *container) vote(rtl bool) {
	if rtl {
		c.rtlVotes++
	} else {
		c.ltrVotes++
	}
}

// IsRTL reports whether right-to-left content outvotes left-to-right content
func (c *container) IsRTL() bool {
	return c.rtlVotes > c.ltrVotes
}

// Votes returns the right-to-left and left-to-right vote counts
func (c *container) Votes() (rtl, ltr int) {
	return c.rtlVotes, c.ltrVotes
}

// Children returns the child boxes in their current order
func (c *container) Children() []Box {
	return c.children
}

// Len returns the number of children
func (c *container) Len() int {
	return len(c.children)
}
