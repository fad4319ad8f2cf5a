package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/reflow/model"
	"github.com/tsawler/reflow/som"
)

// assertDense checks that order[n.Fp] == n for every placed node and that
// positions run 0..Count-1
func assertDense(t *testing.T, m *FlowMap) {
	t.Helper()
	require.NoError(t, m.Validate())
	for fp := 0; fp < m.Count(); fp++ {
		n, err := m.NodeAt(fp)
		require.NoError(t, err)
		assert.Equal(t, fp, n.Fp)
		got, err := m.Fp(n.ID)
		require.NoError(t, err)
		assert.Equal(t, fp, got)
	}
}

func textRun(node model.FixedNode, start, end int) *som.TextRun {
	return &som.TextRun{Node: node, Start: start, End: end}
}

// ============================================================================
// Flow order tests
// ============================================================================

func TestNewFlowMap(t *testing.T) {
	m := NewFlowMap()
	assert.Equal(t, 2, m.Count())

	first, err := m.NodeAt(0)
	require.NoError(t, err)
	assert.Equal(t, Boundary, first.Type)
	assert.Equal(t, m.StartBoundary(), first.ID)

	last, err := m.NodeAt(1)
	require.NoError(t, err)
	assert.Equal(t, m.EndBoundary(), last.ID)
	assertDense(t, m)

	assert.NotEqual(t, None, m.StartBoundary())
	_, err = m.Node(None)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFlowOrderInsertBefore_AtPositionThree(t *testing.T) {
	m := NewFlowMap()
	// Boundaries plus three content nodes: Fp 0..4
	var ids []NodeID
	for i := 0; i < 3; i++ {
		id := m.NewNode(Run, 0, i)
		require.NoError(t, m.FlowOrderInsertBefore(m.EndBoundary(), id))
		ids = append(ids, id)
	}
	require.Equal(t, 5, m.Count())

	before := make(map[NodeID]int)
	for fp := 0; fp < m.Count(); fp++ {
		n, _ := m.NodeAt(fp)
		before[n.ID] = fp
	}

	at3, err := m.NodeAt(3)
	require.NoError(t, err)
	inserted := m.NewNode(Run, 0, "new")
	require.NoError(t, m.FlowOrderInsertBefore(at3.ID, inserted))

	assert.Equal(t, 6, m.Count())
	fp, err := m.Fp(inserted)
	require.NoError(t, err)
	assert.Equal(t, 3, fp)

	for id, old := range before {
		got, err := m.Fp(id)
		require.NoError(t, err)
		if old >= 3 {
			assert.Equal(t, old+1, got, "node %d", id)
		} else {
			assert.Equal(t, old, got, "node %d", id)
		}
	}
	assertDense(t, m)
}

func TestFlowOrderInsertBefore_Rejects(t *testing.T) {
	m := NewFlowMap()
	id := m.NewNode(Run, 0, nil)

	assert.ErrorIs(t, m.FlowOrderInsertBefore(m.StartBoundary(), id), ErrInvalidArgument)
	assert.ErrorIs(t, m.FlowOrderInsertBefore(NodeID(99), id), ErrInvalidArgument)

	require.NoError(t, m.FlowOrderInsertBefore(m.EndBoundary(), id))
	assert.ErrorIs(t, m.FlowOrderInsertBefore(m.EndBoundary(), id), ErrInvalidArgument)

	stray := m.NewNode(Run, 0, nil)
	other := m.NewNode(Run, 0, nil)
	assert.ErrorIs(t, m.FlowOrderInsertBefore(stray, other), ErrInvalidArgument)
	assertDense(t, m)
}

func TestInitVirtualAndMappingReplace(t *testing.T) {
	m := NewFlowMap()
	virtual, err := m.InitVirtual(3)
	require.NoError(t, err)
	require.Len(t, virtual, 3)
	assert.Equal(t, 5, m.Count())

	id, ok := m.VirtualNode(1)
	require.True(t, ok)
	assert.Equal(t, virtual[1], id)

	nodes := []NodeID{m.NewNode(Start, 1, nil), m.NewNode(Run, 1, nil), m.NewNode(End, 1, nil)}
	require.NoError(t, m.MappingReplace(virtual[1], nodes))

	assert.Equal(t, 7, m.Count())
	for i, want := range nodes {
		fp, err := m.Fp(want)
		require.NoError(t, err)
		assert.Equal(t, 2+i, fp)
	}
	fp, err := m.Fp(virtual[2])
	require.NoError(t, err)
	assert.Equal(t, 5, fp)

	_, err = m.Fp(virtual[1])
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, ok = m.VirtualNode(1)
	assert.False(t, ok)
	assertDense(t, m)

	_, err = m.InitVirtual(2)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestMappingReplace_Rejects(t *testing.T) {
	m := NewFlowMap()
	virtual, err := m.InitVirtual(1)
	require.NoError(t, err)

	assert.ErrorIs(t, m.MappingReplace(m.StartBoundary(), nil), ErrInvalidArgument)
	assert.ErrorIs(t, m.MappingReplace(m.EndBoundary(), nil), ErrInvalidArgument)

	dup := m.NewNode(Run, 0, nil)
	assert.ErrorIs(t, m.MappingReplace(virtual[0], []NodeID{dup, dup}), ErrInvalidArgument)
	assert.ErrorIs(t, m.MappingReplace(virtual[0], []NodeID{m.EndBoundary()}), ErrInvalidArgument)

	// Nothing changed on failure
	assert.Equal(t, 3, m.Count())
	assertDense(t, m)
}

func TestNodeAt_OutOfRange(t *testing.T) {
	m := NewFlowMap()
	_, err := m.NodeAt(-1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = m.NodeAt(2)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = m.Node(NodeID(42))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

// ============================================================================
// Fixed element index tests
// ============================================================================

func TestMappingGetFixedSOMElement(t *testing.T) {
	m := NewFlowMap()
	fixed := model.NewFixedNode(0, 4)
	first := textRun(fixed, 0, 5)
	second := textRun(fixed, 5, 9)

	a := m.NewNode(Run, 0, nil)
	b := m.NewNode(Run, 0, nil)
	require.NoError(t, m.AddFixedElement(first, a))
	require.NoError(t, m.AddFixedElement(second, b))

	tests := []struct {
		offset int
		elem   som.Element
		node   NodeID
	}{
		{0, first, a},
		{4, first, a},
		{5, second, b},
		{8, second, b},
		{9, second, b},
	}
	for _, tt := range tests {
		elem, node, ok := m.MappingGetFixedSOMElement(fixed, tt.offset)
		require.True(t, ok, "offset %d", tt.offset)
		assert.Same(t, tt.elem, elem, "offset %d", tt.offset)
		assert.Equal(t, tt.node, node)
	}

	_, _, ok := m.MappingGetFixedSOMElement(fixed, 10)
	assert.False(t, ok)
	_, _, ok = m.MappingGetFixedSOMElement(model.NewFixedNode(0, 5), 0)
	assert.False(t, ok)
}

func TestAddFixedElementInvalidatesCache(t *testing.T) {
	m := NewFlowMap()
	fixed := model.NewFixedNode(1, 0)
	node := m.NewNode(Run, 1, nil)

	_, _, ok := m.MappingGetFixedSOMElement(fixed, 0)
	require.False(t, ok)

	require.NoError(t, m.AddFixedElement(textRun(fixed, 0, 3), node))
	_, got, ok := m.MappingGetFixedSOMElement(fixed, 1)
	assert.True(t, ok)
	assert.Equal(t, node, got)

	assert.ErrorIs(t, m.AddFixedElement(nil, node), ErrInvalidArgument)
	assert.ErrorIs(t, m.AddFixedElement(textRun(fixed, 0, 1), NodeID(77)), ErrInvalidArgument)
}

func TestFlowNodeFromFixed(t *testing.T) {
	m := NewFlowMap()
	node := m.NewNode(Run, 0, nil)
	require.NoError(t, m.FlowOrderInsertBefore(m.EndBoundary(), node))

	alpha := textRun(model.NewFixedNode(0, 0), 0, 5)
	beta := textRun(model.NewFixedNode(0, 1), 0, 4)
	require.NoError(t, m.AddFixedElement(alpha, node))
	require.NoError(t, m.AddFixedElement(beta, node))

	id, local, err := m.FlowNodeFromFixed(model.NewFixedNode(0, 1), 2)
	require.NoError(t, err)
	assert.Equal(t, node, id)
	assert.Equal(t, 7, local)

	id, local, err = m.FlowNodeFromFixed(model.DocumentStart(), 0)
	require.NoError(t, err)
	assert.Equal(t, m.StartBoundary(), id)
	assert.Zero(t, local)

	id, _, err = m.FlowNodeFromFixed(model.DocumentEnd(), 0)
	require.NoError(t, err)
	assert.Equal(t, m.EndBoundary(), id)

	_, _, err = m.FlowNodeFromFixed(model.NewFixedNode(3, 0), 0)
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = m.FlowNodeFromFixed(model.NewFixedNode(0, 0), -1)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	nodes, err := m.FixedNodesOf(node)
	require.NoError(t, err)
	assert.Equal(t, []model.FixedNode{alpha.Node, beta.Node}, nodes)

	nodes, err = m.FixedNodesOf(m.StartBoundary())
	require.NoError(t, err)
	assert.Equal(t, []model.FixedNode{model.DocumentStart()}, nodes)
}
