package graphicsstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/reflow/model"
)

func TestGraphicsStateSaveRestore(t *testing.T) {
	gs := NewGraphicsState()
	assert.True(t, gs.CTM.IsIdentity())

	gs.Save()
	gs.Transform(model.Translate(10, 20))
	assert.Equal(t, 1, gs.Depth())
	assert.Equal(t, model.Point{X: 11, Y: 21}, gs.CTM.Transform(model.Point{X: 1, Y: 1}))

	require.NoError(t, gs.Restore())
	assert.True(t, gs.CTM.IsIdentity())
	assert.ErrorIs(t, gs.Restore(), ErrStackUnderflow)
}

func TestGraphicsStateNestedTransforms(t *testing.T) {
	gs := NewGraphicsState()
	gs.Transform(model.Translate(100, 0)) // outer canvas
	gs.Save()
	gs.Transform(model.Scale(2, 2)) // inner canvas

	// Inner scale applies first, outer translation second
	p := gs.CTM.Transform(model.Point{X: 5, Y: 5})
	assert.Equal(t, model.Point{X: 110, Y: 10}, p)

	local := gs.Local(model.Translate(1, 0))
	assert.Equal(t, model.Point{X: 112, Y: 10}, local.Transform(model.Point{X: 5, Y: 5}))
}

func TestGraphicsStateClone(t *testing.T) {
	gs := NewGraphicsState()
	gs.Transform(model.Translate(1, 2))
	gs.Save()

	clone := gs.Clone()
	assert.Equal(t, gs.CTM, clone.CTM)
	assert.Equal(t, 0, clone.Depth())
}

func TestWalkPage(t *testing.T) {
	page := model.NewPage(100, 100)
	page.Add(model.NewGlyphs("a", 0, 0, 10))
	canvas := model.NewCanvas()
	canvas.RenderTransform = model.Translate(50, 0)
	inner := model.NewGlyphs("b", 0, 0, 10)
	inner.RenderTransform = model.Translate(0, 5)
	canvas.Add(inner)
	page.Add(canvas)

	type visit struct {
		addr   string
		origin model.Point
	}
	var visits []visit
	WalkPage(page, 2, func(n model.Node, addr model.FixedNode, ctm model.Matrix) bool {
		visits = append(visits, visit{addr.String(), ctm.Transform(model.Point{})})
		return true
	})

	assert.Equal(t, []visit{
		{"2:0", model.Point{X: 0, Y: 0}},
		{"2:1", model.Point{X: 50, Y: 0}},
		{"2:1/0", model.Point{X: 50, Y: 5}},
	}, visits)
}

func TestWalkPageSkipsCanvas(t *testing.T) {
	page := model.NewPage(100, 100)
	canvas := model.NewCanvas()
	canvas.Add(model.NewGlyphs("hidden", 0, 0, 10))
	page.Add(canvas)

	count := 0
	WalkPage(page, 0, func(n model.Node, _ model.FixedNode, _ model.Matrix) bool {
		count++
		return false
	})
	assert.Equal(t, 1, count)

	WalkPage(nil, 0, func(model.Node, model.FixedNode, model.Matrix) bool {
		t.Fatal("nil page must not be visited")
		return true
	})
}
