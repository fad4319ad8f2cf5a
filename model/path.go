package model

// FillRule selects how overlapping figures are filled
type FillRule int

const (
	FillEvenOdd FillRule = iota
	FillNonZero
)

// PathGeometry is the vector outline of a Path
type PathGeometry struct {
	FillRule  FillRule
	Transform Matrix
	Figures   []PathFigure
}

// NewPathGeometry creates an empty geometry with an identity transform
func NewPathGeometry() *PathGeometry {
	return &PathGeometry{Transform: Identity()}
}

// AddFigure appends a figure and returns it for segment construction
func (g *PathGeometry) AddFigure(start Point, closed, filled bool) *PathFigure {
	g.Figures = append(g.Figures, PathFigure{
		StartPoint: start,
		IsClosed:   closed,
		IsFilled:   filled,
	})
	return &g.Figures[len(g.Figures)-1]
}

// Rectangle returns a closed, filled geometry tracing r
func Rectangle(r BBox) *PathGeometry {
	g := NewPathGeometry()
	f := g.AddFigure(Point{r.Left(), r.Top()}, true, true)
	f.PolyLineTo(
		Point{r.Right(), r.Top()},
		Point{r.Right(), r.Bottom()},
		Point{r.Left(), r.Bottom()},
	)
	return g
}

// Line returns an open, unfilled geometry from a to b
func Line(a, b Point) *PathGeometry {
	g := NewPathGeometry()
	f := g.AddFigure(a, false, false)
	f.LineTo(b)
	return g
}

// PathFigure is one connected run of segments
type PathFigure struct {
	StartPoint Point
	IsClosed   bool
	IsFilled   bool
	Segments   []PathSegment
}

// LineTo appends a straight segment
func (f *PathFigure) LineTo(p Point) {
	f.Segments = append(f.Segments, PathSegment{Kind: SegmentLine, Points: []Point{p}, IsStroked: true})
}

// PolyLineTo appends a polyline segment
func (f *PathFigure) PolyLineTo(points ...Point) {
	f.Segments = append(f.Segments, PathSegment{Kind: SegmentPolyLine, Points: points, IsStroked: true})
}

// BezierTo appends a cubic Bézier segment
func (f *PathFigure) BezierTo(c1, c2, end Point) {
	f.Segments = append(f.Segments, PathSegment{Kind: SegmentBezier, Points: []Point{c1, c2, end}, IsStroked: true})
}

// SegmentKind identifies the segment shape
type SegmentKind int

const (
	SegmentLine SegmentKind = iota
	SegmentPolyLine
	SegmentBezier
	SegmentPolyBezier
	SegmentQuadraticBezier
	SegmentPolyQuadraticBezier
	SegmentArc
)

// IsCurve reports whether the segment is not made of straight lines
func (k SegmentKind) IsCurve() bool {
	return k != SegmentLine && k != SegmentPolyLine
}

// PathSegment is one segment of a figure. Points holds the end points for
// lines and polylines, control points followed by end points for curves,
// and the end point for arcs.
type PathSegment struct {
	Kind      SegmentKind
	Points    []Point
	IsStroked bool

	// Arc parameters
	Size           Point
	RotationAngle  float64
	IsLargeArc     bool
	SweepClockwise bool
}

// EndPoint returns the last point reached by the segment
func (s PathSegment) EndPoint() (Point, bool) {
	if len(s.Points) == 0 {
		return Point{}, false
	}
	return s.Points[len(s.Points)-1], true
}
