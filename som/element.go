package som

import (
	"golang.org/x/text/language"

	"github.com/tsawler/reflow/model"
	"github.com/tsawler/reflow/text"
)

// Element is a classified leaf: *TextRun or *Image
type Element interface {
	Box

	// FixedNode returns the physical address of the primitive
	FixedNode() model.FixedNode

	// Range returns the [start, end) character range covered inside the
	// primitive; images cover [0, 1)
	Range() (start, end int)

	// Block returns the line block owning the element, or nil
	Block() *FixedBlock

	IsRTL() bool

	element()
}

// TextRun is a classified glyph run, or a sub-range of one
type TextRun struct {
	base

	Node  model.FixedNode
	Start int
	End   int

	// Text holds the characters of the range in logical order
	Text string

	// Glyphs is the source primitive
	Glyphs *model.Glyphs

	// Transform maps the run's local coordinates to page space
	Transform model.Matrix

	// Baseline is the page-space Y of the baseline
	Baseline float64

	// FontSize is the em size in page space
	FontSize   float64
	FontFamily string
	Bold       bool
	Italic     bool
	Stretch    string

	Culture language.Tag

	// Foreground is the solid fill colour; HasForeground is false for
	// other brushes
	Foreground    model.Color
	HasForeground bool

	BidiLevel    int
	IsSideways   bool
	IsWhitespace bool

	// IsReversed marks runs stored in visual order whose Text was reversed
	IsReversed bool

	Underline     bool
	Strikethrough bool

	NavigateURI string

	block *FixedBlock
}

func (r *TextRun) FixedNode() model.FixedNode { return r.Node }
func (r *TextRun) Range() (int, int)          { return r.Start, r.End }
func (r *TextRun) Block() *FixedBlock         { return r.block }
func (r *TextRun) element()                   {}

func (r *TextRun) markup() (model.FixedNode, int, bool) {
	return r.Node, r.Start, true
}

// IsRTL reports whether the run reads right to left
func (r *TextRun) IsRTL() bool {
	if r.BidiLevel%2 == 1 || r.IsReversed {
		return true
	}
	return text.DetectDirection(r.Text) == text.RTL
}

// VisibleText returns the characters as drawn: reversed runs are returned in
// their stored visual order
func (r *TextRun) VisibleText() string {
	if r.IsReversed {
		return text.Reverse(r.Text)
	}
	return r.Text
}

// Image is a classified raster image
type Image struct {
	base

	Node        model.FixedNode
	Source      string
	PixelWidth  int
	PixelHeight int
	NavigateURI string

	block *FixedBlock
}

func (i *Image) FixedNode() model.FixedNode { return i.Node }
func (i *Image) Range() (int, int)          { return 0, 1 }
func (i *Image) Block() *FixedBlock         { return i.block }
func (i *Image) IsRTL() bool                { return false }
func (i *Image) element()                   {}

func (i *Image) markup() (model.FixedNode, int, bool) {
	return i.Node, 0, true
}

// HasSameRichProperties reports whether two runs can share one flow run:
// font size, culture, style, weight, stretch, family, direction and
// foreground colour value must all match
func HasSameRichProperties(a, b *TextRun) bool {
	if a == nil || b == nil {
		return false
	}
	return a.FontSize == b.FontSize &&
		a.Culture == b.Culture &&
		a.Italic == b.Italic &&
		a.Bold == b.Bold &&
		a.Stretch == b.Stretch &&
		a.FontFamily == b.FontFamily &&
		a.IsRTL() == b.IsRTL() &&
		a.HasForeground == b.HasForeground &&
		a.Foreground == b.Foreground &&
		a.Underline == b.Underline &&
		a.Strikethrough == b.Strikethrough
}
