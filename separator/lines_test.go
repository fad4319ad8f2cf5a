package separator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/reflow/model"
)

func TestHorizontalRoundTrip(t *testing.T) {
	// Horizontal rule at y=100 from x=20 to x=220
	lc := NewLineCollection()
	lc.AddHorizontal(100, 20, 220)

	tests := []struct {
		name string
		rect model.BBox
		want bool
	}{
		{"inside span", model.NewBBoxLTRB(30, 90, 210, 110), true},
		{"exact span", model.NewBBoxLTRB(20, 95, 220, 105), true},
		{"slightly wider than line", model.NewBBoxLTRB(10, 95, 230, 105), true},
		{"well beyond the line", model.NewBBoxLTRB(0, 95, 400, 105), false},
		{"line above rect", model.NewBBoxLTRB(30, 101, 210, 120), false},
		{"line below rect", model.NewBBoxLTRB(30, 80, 210, 99), false},
		{"rect edge on line", model.NewBBoxLTRB(30, 100, 210, 120), true},
		{"off to the right", model.NewBBoxLTRB(300, 90, 400, 110), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lc.IsHorizontallySeparated(tt.rect))
			assert.False(t, lc.IsVerticallySeparated(tt.rect), "orientation is kept apart")
		})
	}
}

func TestHorizontalRoundTripEpsilon(t *testing.T) {
	x0, x1, y := 0.0, 500.0, 42.0
	lc := NewLineCollection()
	lc.AddHorizontal(y, x0, x1)

	for _, eps := range []float64{0, 0.5, 1, 10, 100, 249} {
		rect := model.NewBBoxLTRB(x0+eps, y-5, x1-eps, y+5)
		assert.True(t, lc.IsHorizontallySeparated(rect), "eps=%v", eps)
	}
}

func TestVerticalRule(t *testing.T) {
	lc := NewLineCollection()
	lc.AddVertical(55, -2, 12)

	assert.True(t, lc.IsVerticallySeparated(model.NewBBoxLTRB(50, 0, 60, 10)))
	assert.False(t, lc.IsVerticallySeparated(model.NewBBoxLTRB(60, 0, 70, 10)))
	assert.False(t, lc.IsVerticallySeparated(model.NewBBoxLTRB(50, 0, 60, 30)))
	assert.False(t, lc.IsHorizontallySeparated(model.NewBBoxLTRB(50, 0, 60, 10)))
}

func TestNearbyLinesMerge(t *testing.T) {
	lc := NewLineCollection()
	lc.AddHorizontal(100, 0, 50)
	lc.AddHorizontal(101, 40, 100) // within MinSeparation/2, overlapping
	lc.AddHorizontal(100.5, 150, 200)

	lines := lc.Horizontals()
	require.Len(t, lines, 2)
	assert.Equal(t, Line{Coord: 100, Start: 0, End: 100}, lines[0])
	assert.Equal(t, Line{Coord: 100, Start: 150, End: 200}, lines[1])

	// The coalesced interval spans both pieces
	assert.True(t, lc.IsHorizontallySeparated(model.NewBBoxLTRB(5, 95, 95, 105)))
	// The gap between intervals is not covered
	assert.False(t, lc.IsHorizontallySeparated(model.NewBBoxLTRB(60, 95, 190, 105)))
}

func TestDistantLinesStaySorted(t *testing.T) {
	lc := NewLineCollection()
	for _, y := range []float64{300, 100, 200, 50} {
		lc.AddHorizontal(y, 0, 10)
	}

	var coords []float64
	for _, l := range lc.Horizontals() {
		coords = append(coords, l.Coord)
	}
	assert.Equal(t, []float64{50, 100, 200, 300}, coords)
	assert.Equal(t, 4, lc.Len())
}

func TestIntervalCoalescing(t *testing.T) {
	tests := []struct {
		name  string
		add   [][2]float64
		wants []Line
	}{
		{
			name:  "disjoint",
			add:   [][2]float64{{0, 10}, {20, 30}},
			wants: []Line{{0, 0, 10}, {0, 20, 30}},
		},
		{
			name:  "touching",
			add:   [][2]float64{{0, 10}, {10, 20}},
			wants: []Line{{0, 0, 20}},
		},
		{
			name:  "bridging",
			add:   [][2]float64{{0, 10}, {20, 30}, {5, 25}},
			wants: []Line{{0, 0, 30}},
		},
		{
			name:  "contained",
			add:   [][2]float64{{0, 30}, {5, 6}},
			wants: []Line{{0, 0, 30}},
		},
		{
			name:  "reversed endpoints",
			add:   [][2]float64{{30, 20}, {0, 10}},
			wants: []Line{{0, 0, 10}, {0, 20, 30}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lc := NewLineCollection()
			for _, a := range tt.add {
				lc.AddVertical(0, a[0], a[1])
			}
			assert.Equal(t, tt.wants, lc.Verticals())
		})
	}
}

func TestDegenerateInputIgnored(t *testing.T) {
	lc := NewLineCollection()
	lc.AddHorizontal(math.NaN(), 0, 10)
	lc.AddHorizontal(10, math.NaN(), 10)
	lc.AddVertical(10, 5, 5)
	lc.AddVertical(math.Inf(1), 0, 10)

	assert.Equal(t, 0, lc.Len())
	assert.False(t, lc.IsHorizontallySeparated(model.EmptyBBox()))
	assert.False(t, lc.IsVerticallySeparated(model.NewBBox(0, 0, 10, 10)))
}

func TestCustomConfig(t *testing.T) {
	lc := NewLineCollectionWithConfig(Config{MinSeparation: 20, Fudge: 0})
	lc.AddHorizontal(100, 0, 100)
	lc.AddHorizontal(108, 0, 100)
	assert.Len(t, lc.Horizontals(), 1)

	// No fudge: the line must cover the whole width
	assert.False(t, lc.IsHorizontallySeparated(model.NewBBoxLTRB(0, 90, 101, 110)))
	assert.True(t, lc.IsHorizontallySeparated(model.NewBBoxLTRB(0, 90, 100, 110)))
}
