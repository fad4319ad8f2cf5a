package flow

import (
	"fmt"

	"github.com/tsawler/reflow/model"
	"github.com/tsawler/reflow/som"
)

type nodeData struct {
	typ    NodeType
	page   int
	cookie any
}

type elementEntry struct {
	elem som.Element
	node NodeID
}

// FlowMap is the document-wide flow order and the FixedNode index of
// classified elements. It is not safe for concurrent use.
type FlowMap struct {
	nodes []nodeData
	fps   []int
	order []NodeID

	start NodeID
	end   NodeID

	virtual map[int]NodeID

	fixed    map[model.FixedNode][]elementEntry
	elements map[NodeID][]som.Element

	// last lookup
	lastNode    model.FixedNode
	lastEntries []elementEntry
	hasLast     bool
}

// NewFlowMap creates a map holding only the two boundary nodes
func NewFlowMap() *FlowMap {
	m := &FlowMap{
		virtual:  make(map[int]NodeID),
		fixed:    make(map[model.FixedNode][]elementEntry),
		elements: make(map[NodeID][]som.Element),
	}
	m.start = m.NewNode(Boundary, -1, nil)
	m.end = m.NewNode(Boundary, -1, nil)
	m.order = []NodeID{m.start, m.end}
	m.fps[m.start] = 0
	m.fps[m.end] = 1
	return m
}

// NewNode allocates a node outside the flow order
func (m *FlowMap) NewNode(typ NodeType, pageIndex int, cookie any) NodeID {
	id := NodeID(len(m.nodes))
	m.nodes = append(m.nodes, nodeData{typ: typ, page: pageIndex, cookie: cookie})
	m.fps = append(m.fps, -1)
	return id
}

// StartBoundary returns the document start sentinel node
func (m *FlowMap) StartBoundary() NodeID { return m.start }

// EndBoundary returns the document end sentinel node
func (m *FlowMap) EndBoundary() NodeID { return m.end }

// InitVirtual inserts one Virtual node per page before the end boundary and
// returns them in page order
func (m *FlowMap) InitVirtual(pageCount int) ([]NodeID, error) {
	if pageCount < 0 {
		return nil, fmt.Errorf("%w: negative page count %d", ErrInvalidArgument, pageCount)
	}
	if len(m.virtual) > 0 || len(m.order) > 2 {
		return nil, fmt.Errorf("%w: flow order already initialised", ErrInvalidArgument)
	}

	ids := make([]NodeID, pageCount)
	for i := range ids {
		id := m.NewNode(Virtual, i, i)
		if err := m.FlowOrderInsertBefore(m.end, id); err != nil {
			return nil, err
		}
		m.virtual[i] = id
		ids[i] = id
	}
	return ids, nil
}

// VirtualNode returns the placeholder of an unbuilt page
func (m *FlowMap) VirtualNode(pageIndex int) (NodeID, bool) {
	id, ok := m.virtual[pageIndex]
	return id, ok
}

func (m *FlowMap) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(m.nodes)
}

func (m *FlowMap) checkNew(id NodeID) error {
	if !m.valid(id) {
		return fmt.Errorf("%w: unknown node %d", ErrInvalidArgument, id)
	}
	if m.fps[id] >= 0 {
		return fmt.Errorf("%w: node %d is already in the flow order", ErrInvalidArgument, id)
	}
	return nil
}

func (m *FlowMap) checkPlaced(id NodeID) error {
	if !m.valid(id) {
		return fmt.Errorf("%w: unknown node %d", ErrInvalidArgument, id)
	}
	if m.fps[id] < 0 {
		return fmt.Errorf("%w: node %d is not in the flow order", ErrInvalidArgument, id)
	}
	return nil
}

// FlowOrderInsertBefore splices node immediately before existing. node
// takes the flow position of existing; every later node moves up by one.
func (m *FlowMap) FlowOrderInsertBefore(existing, node NodeID) error {
	if err := m.checkPlaced(existing); err != nil {
		return err
	}
	if err := m.checkNew(node); err != nil {
		return err
	}
	if existing == m.start {
		return fmt.Errorf("%w: cannot insert before the start boundary", ErrInvalidArgument)
	}

	fp := m.fps[existing]
	m.order = append(m.order, None)
	copy(m.order[fp+1:], m.order[fp:])
	m.order[fp] = node
	m.renumber(fp)
	return nil
}

// MappingReplace replaces old in the flow order with nodes, in order
func (m *FlowMap) MappingReplace(old NodeID, nodes []NodeID) error {
	if err := m.checkPlaced(old); err != nil {
		return err
	}
	if old == m.start || old == m.end {
		return fmt.Errorf("%w: cannot replace a boundary node", ErrInvalidArgument)
	}
	seen := make(map[NodeID]bool, len(nodes))
	for _, id := range nodes {
		if err := m.checkNew(id); err != nil {
			return err
		}
		if seen[id] {
			return fmt.Errorf("%w: node %d listed twice", ErrInvalidArgument, id)
		}
		seen[id] = true
	}

	fp := m.fps[old]
	tail := append([]NodeID(nil), m.order[fp+1:]...)
	m.order = append(append(m.order[:fp], nodes...), tail...)
	m.fps[old] = -1
	m.renumber(fp)

	if n := m.nodes[old]; n.typ == Virtual {
		if id, ok := m.virtual[n.page]; ok && id == old {
			delete(m.virtual, n.page)
		}
	}
	return nil
}

func (m *FlowMap) renumber(from int) {
	for fp := from; fp < len(m.order); fp++ {
		m.fps[m.order[fp]] = fp
	}
}

// Count returns the number of nodes in the flow order, boundaries included
func (m *FlowMap) Count() int {
	return len(m.order)
}

// Node returns a snapshot of a node
func (m *FlowMap) Node(id NodeID) (Node, error) {
	if !m.valid(id) {
		return Node{}, fmt.Errorf("%w: unknown node %d", ErrInvalidArgument, id)
	}
	n := m.nodes[id]
	return Node{ID: id, Type: n.typ, PageIndex: n.page, Cookie: n.cookie, Fp: m.fps[id]}, nil
}

// NodeAt returns the node at flow position fp
func (m *FlowMap) NodeAt(fp int) (Node, error) {
	if fp < 0 || fp >= len(m.order) {
		return Node{}, fmt.Errorf("%w: flow position %d out of range [0, %d)", ErrInvalidArgument, fp, len(m.order))
	}
	return m.Node(m.order[fp])
}

// Fp returns the flow position of a node in the order
func (m *FlowMap) Fp(id NodeID) (int, error) {
	if err := m.checkPlaced(id); err != nil {
		return -1, err
	}
	return m.fps[id], nil
}

// AddFixedElement indexes elem under its FixedNode as content of node
func (m *FlowMap) AddFixedElement(elem som.Element, node NodeID) error {
	if elem == nil {
		return fmt.Errorf("%w: nil element", ErrInvalidArgument)
	}
	if !m.valid(node) {
		return fmt.Errorf("%w: unknown node %d", ErrInvalidArgument, node)
	}
	key := elem.FixedNode()
	m.fixed[key] = append(m.fixed[key], elementEntry{elem: elem, node: node})
	m.elements[node] = append(m.elements[node], elem)
	if m.hasLast && m.lastNode == key {
		m.hasLast = false
	}
	return nil
}

// Elements returns the elements held by a node
func (m *FlowMap) Elements(id NodeID) []som.Element {
	return m.elements[id]
}

func (m *FlowMap) lookup(node model.FixedNode) []elementEntry {
	if m.hasLast && m.lastNode == node {
		return m.lastEntries
	}
	entries := m.fixed[node]
	m.lastNode, m.lastEntries, m.hasLast = node, entries, true
	return entries
}

// MappingGetFixedSOMElement returns the element at node whose character
// range holds offset, and the flow node holding it. An offset equal to the
// end of the last sub-run selects that sub-run.
func (m *FlowMap) MappingGetFixedSOMElement(node model.FixedNode, offset int) (som.Element, NodeID, bool) {
	entries := m.lookup(node)
	for _, e := range entries {
		start, end := e.elem.Range()
		if offset >= start && offset < end {
			return e.elem, e.node, true
		}
	}
	for _, e := range entries {
		if _, end := e.elem.Range(); offset == end {
			return e.elem, e.node, true
		}
	}
	return nil, None, false
}

// FlowNodeFromFixed maps a physical address and character offset to the
// flow node holding it and the offset within that node. The document
// sentinels map to the boundary nodes.
func (m *FlowMap) FlowNodeFromFixed(node model.FixedNode, offset int) (NodeID, int, error) {
	switch node {
	case model.DocumentStart():
		return m.start, 0, nil
	case model.DocumentEnd():
		return m.end, 0, nil
	}
	if offset < 0 {
		return None, 0, fmt.Errorf("%w: negative offset %d", ErrInvalidArgument, offset)
	}

	elem, id, ok := m.MappingGetFixedSOMElement(node, offset)
	if !ok {
		return None, 0, fmt.Errorf("%w: %s at offset %d", ErrNotFound, node, offset)
	}

	local := 0
	for _, e := range m.elements[id] {
		if e == elem {
			start, _ := e.Range()
			return id, local + offset - start, nil
		}
		start, end := e.Range()
		local += end - start
	}
	return id, local, nil
}

// FixedNodesOf returns the distinct physical addresses spanned by a node in
// content order. Boundaries return their document sentinel.
func (m *FlowMap) FixedNodesOf(id NodeID) ([]model.FixedNode, error) {
	if !m.valid(id) {
		return nil, fmt.Errorf("%w: unknown node %d", ErrInvalidArgument, id)
	}
	switch id {
	case m.start:
		return []model.FixedNode{model.DocumentStart()}, nil
	case m.end:
		return []model.FixedNode{model.DocumentEnd()}, nil
	}

	var out []model.FixedNode
	seen := make(map[model.FixedNode]bool)
	for _, e := range m.elements[id] {
		n := e.FixedNode()
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out, nil
}

// Validate checks that positions are dense and agree with the order
func (m *FlowMap) Validate() error {
	if len(m.order) < 2 || m.order[0] != m.start || m.order[len(m.order)-1] != m.end {
		return fmt.Errorf("%w: boundary nodes misplaced", ErrInvalidArgument)
	}
	placed := 0
	for id, fp := range m.fps {
		if fp < 0 {
			continue
		}
		placed++
		if fp >= len(m.order) || m.order[fp] != NodeID(id) {
			return fmt.Errorf("%w: node %d has flow position %d out of step with the order", ErrInvalidArgument, id, fp)
		}
	}
	if placed != len(m.order) {
		return fmt.Errorf("%w: %d placed nodes for %d positions", ErrInvalidArgument, placed, len(m.order))
	}
	return nil
}
