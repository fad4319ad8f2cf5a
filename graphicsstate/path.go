package graphicsstate

import (
	"math"

	"github.com/tsawler/reflow/model"
)

// Segment is an axis-aligned stroked line in page space. Start lies left of
// or above End.
type Segment struct {
	Start model.Point
	End   model.Point

	// Stroke width in page space
	Width float64

	IsHorizontal bool
	IsVertical   bool
}

// Length returns the segment length
func (s Segment) Length() float64 {
	return s.Start.Distance(s.End)
}

// BBox returns the zero-width box spanned by the segment
func (s Segment) BBox() model.BBox {
	return model.NewBBoxFromPoints(s.Start, s.End)
}

// Sink receives the geometry events of a walk
type Sink interface {
	Line(seg Segment)
	Fill(box model.BBox)
}

// Collector is a Sink gathering events into slices
type Collector struct {
	Lines []Segment
	Fills []model.BBox
}

// Line records a stroked segment
func (c *Collector) Line(seg Segment) {
	c.Lines = append(c.Lines, seg)
}

// Fill records a filled rectangle
func (c *Collector) Fill(box model.BBox) {
	c.Fills = append(c.Fills, box)
}

// HorizontalLines returns only horizontal segments
func (c *Collector) HorizontalLines() []Segment {
	var result []Segment
	for _, l := range c.Lines {
		if l.IsHorizontal {
			result = append(result, l)
		}
	}
	return result
}

// VerticalLines returns only vertical segments
func (c *Collector) VerticalLines() []Segment {
	var result []Segment
	for _, l := range c.Lines {
		if l.IsVertical {
			result = append(result, l)
		}
	}
	return result
}

// FilterLinesByLength returns segments at least minLength long
func (c *Collector) FilterLinesByLength(minLength float64) []Segment {
	var result []Segment
	for _, l := range c.Lines {
		if l.Length() >= minLength {
			result = append(result, l)
		}
	}
	return result
}

// Walker interprets path geometry into rule lines and filled rectangles
type Walker struct {
	// Tolerance for horizontal/vertical classification in page units
	AngleTolerance float64
}

// NewWalker creates a new path walker
func NewWalker() *Walker {
	return &Walker{
		AngleTolerance: 0.5, // Allow 0.5 unit deviation for horizontal/vertical
	}
}

// Walk interprets geom drawn under ctm. stroked and filled tell whether the
// path carries a stroke and a fill; width is the stroke thickness in local
// units.
//
// Stroked segments are emitted for open figures as well as closed ones, so
// a single drawn rule reaches the sink. Closed figures also emit their
// closing edge.
func (w *Walker) Walk(geom *model.PathGeometry, ctm model.Matrix, stroked, filled bool, width float64, sink Sink) {
	if geom == nil || (!stroked && !filled) {
		return
	}
	if hasCurves(geom) {
		return
	}

	m := geom.Transform.Multiply(ctm)
	pageWidth := width * math.Sqrt(math.Abs(m[0]*m[3]-m[1]*m[2]))

	for _, fig := range geom.Figures {
		w.walkFigure(fig, m, stroked, filled, pageWidth, sink)
	}
}

func (w *Walker) walkFigure(fig model.PathFigure, m model.Matrix, stroked, filled bool, width float64, sink Sink) {
	start := m.Transform(fig.StartPoint)
	current := start
	bounds := model.EmptyBBox().UnionPoint(start)

	var lines []Segment
	segments := 0

	for _, seg := range fig.Segments {
		for _, p := range seg.Points {
			next := m.Transform(p)
			if stroked && seg.IsStroked {
				if l, ok := w.createLine(current, next, width); ok {
					lines = append(lines, l)
				}
			}
			bounds = bounds.UnionPoint(next)
			current = next
		}
		if len(seg.Points) > 0 {
			segments++
		}
	}

	if segments == 0 {
		return
	}

	if stroked {
		if fig.IsClosed {
			if l, ok := w.createLine(current, start, width); ok {
				lines = append(lines, l)
			}
		}
		for _, l := range lines {
			sink.Line(l)
		}
	}

	// A filled figure is implicitly closed
	if filled && fig.IsFilled && !bounds.IsDegenerate() {
		sink.Fill(bounds)
	}
}

// createLine classifies the segment from a to b. Diagonal and zero-length
// segments are dropped.
func (w *Walker) createLine(a, b model.Point, width float64) (Segment, bool) {
	dx := b.X - a.X
	dy := b.Y - a.Y

	isHoriz := math.Abs(dy) < w.AngleTolerance
	isVert := math.Abs(dx) < w.AngleTolerance
	if isHoriz == isVert {
		return Segment{}, false
	}

	if isHoriz {
		y := (a.Y + b.Y) / 2
		x0, x1 := math.Min(a.X, b.X), math.Max(a.X, b.X)
		return Segment{
			Start:        model.Point{X: x0, Y: y},
			End:          model.Point{X: x1, Y: y},
			Width:        width,
			IsHorizontal: true,
		}, true
	}

	x := (a.X + b.X) / 2
	y0, y1 := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
	return Segment{
		Start:      model.Point{X: x, Y: y0},
		End:        model.Point{X: x, Y: y1},
		Width:      width,
		IsVertical: true,
	}, true
}

func hasCurves(geom *model.PathGeometry) bool {
	for _, fig := range geom.Figures {
		for _, seg := range fig.Segments {
			if seg.Kind.IsCurve() {
				return true
			}
		}
	}
	return false
}
