package som

import (
	"math"
	"sort"

	"github.com/tsawler/reflow/model"
)

// FixedBlock is a cluster of text runs forming one or more lines
type FixedBlock struct {
	container

	runs  []*TextRun
	lines []Line

	lineHeightRatio float64
}

// Line is one line of a block, its runs in reading order
type Line struct {
	BBox     model.BBox
	Runs     []*TextRun
	Baseline float64
}

// NewFixedBlock creates an empty block. lineHeightRatio is the relative
// height difference above which a trailing run does not set the line height.
func NewFixedBlock(lineHeightRatio float64) *FixedBlock {
	return &FixedBlock{
		container:       newContainer(),
		lineHeightRatio: lineHeightRatio,
	}
}

// Add appends a run, claims it for the block and counts its direction vote.
// Whitespace runs do not vote.
func (b *FixedBlock) Add(r *TextRun) {
	b.runs = append(b.runs, r)
	b.add(r)
	r.block = b
	if !r.IsWhitespace {
		b.vote(r.IsRTL())
	}
	b.lines = nil
}

// Runs returns the runs, in reading order once the block is sorted
func (b *FixedBlock) Runs() []*TextRun {
	return b.runs
}

// Last returns the most recently added run
func (b *FixedBlock) Last() *TextRun {
	if len(b.runs) == 0 {
		return nil
	}
	return b.runs[len(b.runs)-1]
}

// LineHeight returns the height of the last run, unless the run before it
// differs in height by more than the line height ratio and shares no edge
// with it. A small trailing run such as a footnote marker then leaves the
// previous run's height in place.
func (b *FixedBlock) LineHeight() float64 {
	n := len(b.runs)
	if n == 0 {
		return 0
	}
	last := b.runs[n-1].BBox()
	if n == 1 {
		return last.Height
	}
	prev := b.runs[n-2].BBox()

	if math.Abs(prev.Height-last.Height) > b.lineHeightRatio*last.Height && !sharesEdge(prev, last) {
		return prev.Height
	}
	return last.Height
}

// FontSize returns the font size of the last non-whitespace run
func (b *FixedBlock) FontSize() float64 {
	for i := len(b.runs) - 1; i >= 0; i-- {
		if !b.runs[i].IsWhitespace {
			return b.runs[i].FontSize
		}
	}
	if len(b.runs) > 0 {
		return b.runs[len(b.runs)-1].FontSize
	}
	return 0
}

// Lines returns the runs grouped into lines, top to bottom
func (b *FixedBlock) Lines() []Line {
	if b.lines == nil {
		b.lines = groupLines(b.runs, b.IsRTL())
	}
	return b.lines
}

// IsWhitespace reports whether every run is whitespace
func (b *FixedBlock) IsWhitespace() bool {
	for _, r := range b.runs {
		if !r.IsWhitespace {
			return false
		}
	}
	return true
}

// Text returns the logical text of the block, lines joined by newlines
func (b *FixedBlock) Text() string {
	var out []rune
	for i, l := range b.Lines() {
		if i > 0 {
			out = append(out, '\n')
		}
		for _, r := range l.Runs {
			out = append(out, []rune(r.Text)...)
		}
	}
	return string(out)
}

// sortLines puts the runs in reading order: lines top to bottom, runs along
// the block's direction
func (b *FixedBlock) sortLines() {
	b.lines = groupLines(b.runs, b.IsRTL())
	b.runs = b.runs[:0]
	children := make([]Box, 0, cap(b.children))
	for _, l := range b.lines {
		for _, r := range l.Runs {
			b.runs = append(b.runs, r)
			children = append(children, r)
		}
	}
	b.rtlVotes, b.ltrVotes = countVotes(b.runs)
	b.reset(children)
}

// groupLines clusters runs whose vertical spans overlap by at least half the
// smaller height
func groupLines(runs []*TextRun, rtl bool) []Line {
	if len(runs) == 0 {
		return nil
	}
	sorted := make([]*TextRun, len(runs))
	copy(sorted, runs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BBox().Top() < sorted[j].BBox().Top()
	})

	var lines []Line
	for _, r := range sorted {
		box := r.BBox()
		placed := false
		for i := range lines {
			if verticalOverlap(lines[i].BBox, box) >= 0.5*math.Min(lines[i].BBox.Height, box.Height) {
				lines[i].Runs = append(lines[i].Runs, r)
				lines[i].BBox = lines[i].BBox.Union(box)
				placed = true
				break
			}
		}
		if !placed {
			lines = append(lines, Line{BBox: box, Runs: []*TextRun{r}, Baseline: r.Baseline})
		}
	}

	for i := range lines {
		runs := lines[i].Runs
		sort.SliceStable(runs, func(a, b int) bool {
			ba, bb := runs[a].BBox(), runs[b].BBox()
			if rtl {
				return ba.Right() > bb.Right()
			}
			return ba.Left() < bb.Left()
		})
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].BBox.Top() < lines[j].BBox.Top() })
	return lines
}

func countVotes(runs []*TextRun) (rtl, ltr int) {
	for _, r := range runs {
		if r.IsWhitespace {
			continue
		}
		if r.IsRTL() {
			rtl++
		} else {
			ltr++
		}
	}
	return rtl, ltr
}

// verticalOverlap returns the length of the shared vertical span
func verticalOverlap(a, b model.BBox) float64 {
	return math.Min(a.Bottom(), b.Bottom()) - math.Max(a.Top(), b.Top())
}

// horizontalOverlap returns the length of the shared horizontal span
func horizontalOverlap(a, b model.BBox) float64 {
	return math.Min(a.Right(), b.Right()) - math.Max(a.Left(), b.Left())
}

const edgeEpsilon = 0.5

func sharesEdge(a, b model.BBox) bool {
	near := func(x, y float64) bool { return math.Abs(x-y) < edgeEpsilon }
	return near(a.Top(), b.Top()) ||
		near(a.Bottom(), b.Bottom()) ||
		near(a.Left(), b.Left()) ||
		near(a.Right(), b.Right())
}
