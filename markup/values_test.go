package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/reflow/model"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    model.Color
		wantErr bool
	}{
		{"#FF000000", model.Color{A: 255}, false},
		{"#80FF8000", model.Color{A: 128, R: 255, G: 128}, false},
		{"#00ff00", model.Color{A: 255, G: 255}, false},
		{"sc#1,0,0", model.Color{A: 255, R: 255}, false},
		{"sc#0.5, 0, 0, 1", model.Color{A: 128, B: 255}, false},
		{"#FFF", model.Color{}, true},
		{"red", model.Color{}, true},
		{"#GG000000", model.Color{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMarkup)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMatrix(t *testing.T) {
	m, err := ParseMatrix("1,0,0,1,10.5,-20")
	require.NoError(t, err)
	assert.Equal(t, model.Matrix{1, 0, 0, 1, 10.5, -20}, m)

	_, err = ParseMatrix("1,0,0,1")
	assert.ErrorIs(t, err, ErrInvalidMarkup)
	_, err = ParseMatrix("a,b,c,d,e,f")
	assert.ErrorIs(t, err, ErrInvalidMarkup)
}

func TestParsePoints(t *testing.T) {
	pts, err := ParsePoints("0,0 10,5  2.5,-1")
	require.NoError(t, err)
	assert.Equal(t, []model.Point{{X: 0, Y: 0}, {X: 10, Y: 5}, {X: 2.5, Y: -1}}, pts)

	_, err = ParsePoints("1,2 3")
	assert.ErrorIs(t, err, ErrInvalidMarkup)
}

func TestParseIndices(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []model.GlyphMapping
		wantErr bool
	}{
		{"empty", "", nil, false},
		{
			"index and advance",
			"43,55.5;72",
			[]model.GlyphMapping{
				{ClusterCodeUnits: 1, ClusterGlyphs: 1, Index: 43, Advance: 55.5, HasAdvance: true},
				{ClusterCodeUnits: 1, ClusterGlyphs: 1, Index: 72},
			},
			false,
		},
		{
			"blank entries",
			";;,50",
			[]model.GlyphMapping{
				{ClusterCodeUnits: 1, ClusterGlyphs: 1, Index: -1},
				{ClusterCodeUnits: 1, ClusterGlyphs: 1, Index: -1},
				{ClusterCodeUnits: 1, ClusterGlyphs: 1, Index: -1, Advance: 50, HasAdvance: true},
			},
			false,
		},
		{
			"cluster map with offsets",
			"(2:1)3,60,5,-2",
			[]model.GlyphMapping{
				{ClusterCodeUnits: 2, ClusterGlyphs: 1, Index: 3, Advance: 60, HasAdvance: true},
			},
			false,
		},
		{
			"cluster without glyph count",
			"(3)",
			[]model.GlyphMapping{{ClusterCodeUnits: 3, ClusterGlyphs: 1, Index: -1}},
			false,
		},
		{"unterminated cluster", "(2:1", nil, true},
		{"bad index", "x", nil, true},
		{"bad advance", "1,y", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIndices(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMarkup)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ============================================================================
// Path data
// ============================================================================

func TestParsePathData_Lines(t *testing.T) {
	g, err := ParsePathData("F1 M 0,0 L 10,0 10,10 Z")
	require.NoError(t, err)

	assert.Equal(t, model.FillNonZero, g.FillRule)
	require.Len(t, g.Figures, 1)
	f := g.Figures[0]
	assert.True(t, f.IsClosed)
	assert.True(t, f.IsFilled)
	assert.Equal(t, model.Point{}, f.StartPoint)
	require.Len(t, f.Segments, 1)
	assert.Equal(t, model.SegmentPolyLine, f.Segments[0].Kind)
	assert.Equal(t, []model.Point{{X: 10, Y: 0}, {X: 10, Y: 10}}, f.Segments[0].Points)
}

func TestParsePathData_RelativeAndAxis(t *testing.T) {
	g, err := ParsePathData("m5,5 h10 v10 h-10 z M 100 100 l 1 1")
	require.NoError(t, err)

	require.Len(t, g.Figures, 2)
	first := g.Figures[0]
	assert.Equal(t, model.Point{X: 5, Y: 5}, first.StartPoint)
	assert.True(t, first.IsClosed)
	require.Len(t, first.Segments, 3)
	ends := make([]model.Point, 0, 3)
	for _, s := range first.Segments {
		assert.Equal(t, model.SegmentLine, s.Kind)
		p, _ := s.EndPoint()
		ends = append(ends, p)
	}
	assert.Equal(t, []model.Point{{X: 15, Y: 5}, {X: 15, Y: 15}, {X: 5, Y: 15}}, ends)

	second := g.Figures[1]
	assert.False(t, second.IsClosed)
	p, _ := second.Segments[0].EndPoint()
	assert.Equal(t, model.Point{X: 101, Y: 101}, p)
}

func TestParsePathData_ImplicitLineAfterMove(t *testing.T) {
	g, err := ParsePathData("M0,0 10,0 10,10")
	require.NoError(t, err)
	require.Len(t, g.Figures, 1)
	require.Len(t, g.Figures[0].Segments, 1)
	assert.Equal(t, model.SegmentPolyLine, g.Figures[0].Segments[0].Kind)
}

func TestParsePathData_Curves(t *testing.T) {
	g, err := ParsePathData("M0,0 C1,1 2,2 3,3 S5,5 6,6 Q7,7 8,8 T10,10 A5,5 30 1 0 20,0")
	require.NoError(t, err)
	require.Len(t, g.Figures, 1)
	segs := g.Figures[0].Segments
	require.Len(t, segs, 5)

	kinds := make([]model.SegmentKind, len(segs))
	for i, s := range segs {
		kinds[i] = s.Kind
		assert.True(t, s.Kind.IsCurve())
	}
	assert.Equal(t, []model.SegmentKind{
		model.SegmentBezier,
		model.SegmentBezier,
		model.SegmentQuadraticBezier,
		model.SegmentQuadraticBezier,
		model.SegmentArc,
	}, kinds)

	// smooth cubic reflects the previous second control point about (3,3)
	assert.Equal(t, model.Point{X: 4, Y: 4}, segs[1].Points[0])
	// smooth quadratic reflects (7,7) about (8,8)
	assert.Equal(t, model.Point{X: 9, Y: 9}, segs[3].Points[0])

	arc := segs[4]
	assert.Equal(t, model.Point{X: 5, Y: 5}, arc.Size)
	assert.Equal(t, 30.0, arc.RotationAngle)
	assert.True(t, arc.IsLargeArc)
	assert.False(t, arc.SweepClockwise)
}

func TestParsePathData_PolyCurves(t *testing.T) {
	g, err := ParsePathData("M0,0 C1,1 2,2 3,3 4,4 5,5 6,6")
	require.NoError(t, err)
	seg := g.Figures[0].Segments[0]
	assert.Equal(t, model.SegmentPolyBezier, seg.Kind)
	assert.Len(t, seg.Points, 6)
}

func TestParsePathData_Exponent(t *testing.T) {
	g, err := ParsePathData("M1e1,-2.5E-1 L.5,3")
	require.NoError(t, err)
	assert.Equal(t, model.Point{X: 10, Y: -0.25}, g.Figures[0].StartPoint)
	p, _ := g.Figures[0].Segments[0].EndPoint()
	assert.Equal(t, model.Point{X: 0.5, Y: 3}, p)
}

func TestParsePathData_Errors(t *testing.T) {
	for _, in := range []string{
		"M 0",
		"M 0,0 X 1,1",
		"10,10",
		"M 0,0 L 1,1 F1",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := ParsePathData(in)
			assert.ErrorIs(t, err, ErrInvalidMarkup)
		})
	}
}
