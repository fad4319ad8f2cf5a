package model

import "math"

// Point represents a 2D point in page coordinates
type Point struct {
	X, Y float64
}

// Distance calculates the Euclidean distance to another point
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// BBox represents an axis-aligned bounding box.
// Fixed pages place the origin at the top-left corner, so Y grows downward:
// Top is Y and Bottom is Y+Height.
type BBox struct {
	X      float64 // Left
	Y      float64 // Top
	Width  float64
	Height float64
}

// NewBBox creates a bounding box from its top-left corner and size
func NewBBox(x, y, width, height float64) BBox {
	return BBox{X: x, Y: y, Width: width, Height: height}
}

// NewBBoxLTRB creates a bounding box from its edges
func NewBBoxLTRB(left, top, right, bottom float64) BBox {
	return BBox{X: left, Y: top, Width: right - left, Height: bottom - top}
}

// NewBBoxFromPoints creates the smallest bounding box holding both points
func NewBBoxFromPoints(p1, p2 Point) BBox {
	x := math.Min(p1.X, p2.X)
	y := math.Min(p1.Y, p2.Y)
	width := math.Abs(p2.X - p1.X)
	height := math.Abs(p2.Y - p1.Y)
	return BBox{X: x, Y: y, Width: width, Height: height}
}

// EmptyBBox returns the distinguished empty box. It contains nothing and
// is the identity element of Union.
func EmptyBBox() BBox {
	return BBox{
		X:      math.Inf(1),
		Y:      math.Inf(1),
		Width:  math.Inf(-1),
		Height: math.Inf(-1),
	}
}

// Left returns the left edge X coordinate
func (b BBox) Left() float64 {
	return b.X
}

// Right returns the right edge X coordinate
func (b BBox) Right() float64 {
	return b.X + b.Width
}

// Top returns the top edge Y coordinate
func (b BBox) Top() float64 {
	return b.Y
}

// Bottom returns the bottom edge Y coordinate
func (b BBox) Bottom() float64 {
	return b.Y + b.Height
}

// Center returns the center point
func (b BBox) Center() Point {
	return Point{
		X: b.X + b.Width/2,
		Y: b.Y + b.Height/2,
	}
}

// IsEmpty reports whether b is the empty box
func (b BBox) IsEmpty() bool {
	return b.Width < 0 || b.Height < 0
}

// IsDegenerate reports whether b is empty, has no area or carries NaN
// coordinates. Degenerate boxes are skipped during page construction.
func (b BBox) IsDegenerate() bool {
	if math.IsNaN(b.X) || math.IsNaN(b.Y) || math.IsNaN(b.Width) || math.IsNaN(b.Height) {
		return true
	}
	if math.IsInf(b.X, 0) || math.IsInf(b.Y, 0) {
		return true
	}
	return b.Width <= 0 || b.Height <= 0
}

// ContainsPoint checks if a point is inside the bounding box
func (b BBox) ContainsPoint(p Point) bool {
	if b.IsEmpty() {
		return false
	}
	return p.X >= b.Left() && p.X <= b.Right() &&
		p.Y >= b.Top() && p.Y <= b.Bottom()
}

// ContainsBBox checks if other lies entirely inside b (edges inclusive)
func (b BBox) ContainsBBox(other BBox) bool {
	if b.IsEmpty() || other.IsEmpty() {
		return false
	}
	return other.Left() >= b.Left() && other.Right() <= b.Right() &&
		other.Top() >= b.Top() && other.Bottom() <= b.Bottom()
}

// Intersects checks if two bounding boxes intersect (touching edges count)
func (b BBox) Intersects(other BBox) bool {
	if b.IsEmpty() || other.IsEmpty() {
		return false
	}
	return !(b.Right() < other.Left() ||
		b.Left() > other.Right() ||
		b.Bottom() < other.Top() ||
		b.Top() > other.Bottom())
}

// Intersection returns the intersection of two bounding boxes, or the
// empty box when they do not intersect
func (b BBox) Intersection(other BBox) BBox {
	if !b.Intersects(other) {
		return EmptyBBox()
	}

	left := math.Max(b.Left(), other.Left())
	top := math.Max(b.Top(), other.Top())
	right := math.Min(b.Right(), other.Right())
	bottom := math.Min(b.Bottom(), other.Bottom())

	return NewBBoxLTRB(left, top, right, bottom)
}

// Union returns the smallest box containing both boxes
func (b BBox) Union(other BBox) BBox {
	if b.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return b
	}

	left := math.Min(b.Left(), other.Left())
	top := math.Min(b.Top(), other.Top())
	right := math.Max(b.Right(), other.Right())
	bottom := math.Max(b.Bottom(), other.Bottom())

	return NewBBoxLTRB(left, top, right, bottom)
}

// UnionPoint returns the smallest box containing b and p
func (b BBox) UnionPoint(p Point) BBox {
	return b.Union(BBox{X: p.X, Y: p.Y})
}

// Offset moves the box by dx, dy
func (b BBox) Offset(dx, dy float64) BBox {
	if b.IsEmpty() {
		return b
	}
	return BBox{X: b.X + dx, Y: b.Y + dy, Width: b.Width, Height: b.Height}
}

// Inflate grows the box by dx on the left and right and dy on the top and
// bottom. Negative values shrink it.
func (b BBox) Inflate(dx, dy float64) BBox {
	if b.IsEmpty() {
		return b
	}
	return BBox{
		X:      b.X - dx,
		Y:      b.Y - dy,
		Width:  b.Width + 2*dx,
		Height: b.Height + 2*dy,
	}
}

// Shrink reduces the box by ratioX of its width and ratioY of its height on
// each side around its center
func (b BBox) Shrink(ratioX, ratioY float64) BBox {
	return b.Inflate(-b.Width*ratioX, -b.Height*ratioY)
}

// Area returns the area of the bounding box
func (b BBox) Area() float64 {
	if b.IsEmpty() {
		return 0
	}
	return b.Width * b.Height
}

// OverlapRatio calculates the overlap area relative to the smaller box.
// Returns value between 0 and 1
func (b BBox) OverlapRatio(other BBox) float64 {
	if !b.Intersects(other) {
		return 0
	}

	minArea := math.Min(b.Area(), other.Area())
	if minArea == 0 {
		return 0
	}

	return b.Intersection(other).Area() / minArea
}

// Matrix represents a 2D affine transformation matrix laid out as
// [M11 M12 M21 M22 OffsetX OffsetY]
type Matrix [6]float64

// Identity returns an identity matrix
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// IsIdentity reports whether m leaves every point unchanged
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// Transform applies the matrix transformation to a point
func (m Matrix) Transform(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// TransformBBox returns the axis-aligned bounds of the transformed box
func (m Matrix) TransformBBox(b BBox) BBox {
	if b.IsEmpty() {
		return b
	}
	if m.IsIdentity() {
		return b
	}

	corners := [4]Point{
		m.Transform(Point{b.Left(), b.Top()}),
		m.Transform(Point{b.Right(), b.Top()}),
		m.Transform(Point{b.Right(), b.Bottom()}),
		m.Transform(Point{b.Left(), b.Bottom()}),
	}

	result := EmptyBBox()
	for _, c := range corners {
		result = result.UnionPoint(c)
	}
	return result
}

// Multiply returns m followed by other
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		m[0]*other[0] + m[1]*other[2],
		m[0]*other[1] + m[1]*other[3],
		m[2]*other[0] + m[3]*other[2],
		m[2]*other[1] + m[3]*other[3],
		m[4]*other[0] + m[5]*other[2] + other[4],
		m[4]*other[1] + m[5]*other[3] + other[5],
	}
}

// ScaleY returns the length of the transformed unit Y vector. It is the
// factor applied to a font's em size by the transform.
func (m Matrix) ScaleY() float64 {
	return math.Hypot(m[2], m[3])
}

// Translate creates a translation matrix
func Translate(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// Scale creates a scaling matrix
func Scale(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}

// Rotate creates a rotation matrix (angle in radians)
func Rotate(angle float64) Matrix {
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	return Matrix{cos, sin, -sin, cos, 0, 0}
}
