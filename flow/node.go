package flow

import "errors"

var (
	// ErrInvalidArgument is returned for unknown node IDs, misplaced
	// nodes, negative counts and out-of-range positions
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is returned when an address maps to no flow node
	ErrNotFound = errors.New("not found")
)

// NodeType tags a flow node
type NodeType int

const (
	// Boundary marks the start or end of the document
	Boundary NodeType = iota
	// Start opens a flow element
	Start
	// Run holds text content
	Run
	// End closes a flow element
	End
	// Object holds an embedded object such as an image
	Object
	// Virtual stands in for a page that has not been built
	Virtual
	// Noop occupies the flow range of a page without content
	Noop
)

func (t NodeType) String() string {
	switch t {
	case Boundary:
		return "Boundary"
	case Start:
		return "Start"
	case Run:
		return "Run"
	case End:
		return "End"
	case Object:
		return "Object"
	case Virtual:
		return "Virtual"
	case Noop:
		return "Noop"
	}
	return "Unknown"
}

// NodeID is the stable arena index of a flow node
type NodeID int

// None refers to no node
const None NodeID = -1

// Node is a snapshot of a flow node
type Node struct {
	ID   NodeID
	Type NodeType

	// PageIndex is the page owning the node, -1 for boundaries
	PageIndex int

	// Cookie is the payload: the owning flow element for content nodes,
	// the page index for Virtual and Noop nodes
	Cookie any

	// Fp is the flow position, -1 while the node is not in the order
	Fp int
}

// InOrder reports whether the node currently has a flow position
func (n Node) InOrder() bool {
	return n.Fp >= 0
}
