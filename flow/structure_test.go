package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/reflow/model"
	"github.com/tsawler/reflow/som"
)

func glyphs(s string, x, y float64) *model.Glyphs {
	g := model.NewGlyphs(s, x, y, 10)
	for range s {
		g.Indices = append(g.Indices, model.GlyphMapping{ClusterCodeUnits: 1, ClusterGlyphs: 1, Index: -1, Advance: 100, HasAdvance: true})
	}
	return g
}

func threeLines(t *testing.T) (*PageStructure, []model.FixedNode) {
	t.Helper()
	src := model.NewPage(400, 400)
	src.Add(glyphs("one", 0, 8))
	src.Add(glyphs("two", 0, 20))
	src.Add(glyphs("three", 0, 80))

	page, err := som.NewPageConstructor().Construct(src, 0)
	require.NoError(t, err)

	ps := NewPageStructure(0, None)
	ps.SetPage(page)
	return ps, []model.FixedNode{model.NewFixedNode(0, 0), model.NewFixedNode(0, 1), model.NewFixedNode(0, 2)}
}

func TestPageStructure_Boundary(t *testing.T) {
	m := NewFlowMap()
	virtual, err := m.InitVirtual(1)
	require.NoError(t, err)

	ps := NewPageStructure(0, virtual[0])
	assert.True(t, ps.IsVirtual())
	start, end, err := ps.FlowRange(m)
	require.NoError(t, err)
	assert.Equal(t, 1, start)
	assert.Equal(t, 1, end)

	a, b := m.NewNode(Start, 0, nil), m.NewNode(End, 0, nil)
	require.NoError(t, m.MappingReplace(virtual[0], []NodeID{a, b}))
	ps.SetFlowBoundary(a, b)
	assert.False(t, ps.IsVirtual())

	start, end, err = ps.FlowRange(m)
	require.NoError(t, err)
	assert.Equal(t, 1, start)
	assert.Equal(t, 2, end)
}

func TestPageStructure_LineTable(t *testing.T) {
	ps, nodes := threeLines(t)
	require.Len(t, ps.Lines(), 3)

	assert.Equal(t, 0, ps.FindLine(nodes[0]))
	assert.Equal(t, 1, ps.FindLine(nodes[1]))
	assert.Equal(t, 2, ps.FindLine(nodes[2]))
	assert.Equal(t, -1, ps.FindLine(model.NewFixedNode(0, 9)))
}

func TestPageStructure_LineNavigation(t *testing.T) {
	ps, nodes := threeLines(t)

	tests := []struct {
		name  string
		move  func(model.FixedNode, int) ([]model.FixedNode, error)
		from  int
		count int
		want  int
	}{
		{"next", ps.NextLine, 0, 1, 1},
		{"next clamps", ps.NextLine, 0, 10, 2},
		{"next zero", ps.NextLine, 1, 0, 1},
		{"previous", ps.PreviousLine, 2, 1, 1},
		{"previous clamps", ps.PreviousLine, 1, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.move(nodes[tt.from], tt.count)
			require.NoError(t, err)
			assert.Equal(t, []model.FixedNode{nodes[tt.want]}, got)
		})
	}

	_, err := ps.NextLine(nodes[0], -1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = ps.PreviousLine(nodes[0], -1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = ps.NextLine(model.NewFixedNode(0, 9), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPageStructure_SnapToLine(t *testing.T) {
	ps, nodes := threeLines(t)

	tests := []struct {
		name  string
		point model.Point
		want  int
	}{
		{"on first line", model.Point{X: 5, Y: 5}, 0},
		{"on second line", model.Point{X: 5, Y: 21}, 1},
		{"right of third line", model.Point{X: 300, Y: 78}, 2},
		{"between lines nearer the third", model.Point{X: 0, Y: 50}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ps.SnapToLine(tt.point)
			require.NoError(t, err)
			assert.Equal(t, []model.FixedNode{nodes[tt.want]}, got)
		})
	}

	empty := NewPageStructure(1, None)
	_, err := empty.SnapToLine(model.Point{})
	assert.ErrorIs(t, err, ErrNotFound)
}
