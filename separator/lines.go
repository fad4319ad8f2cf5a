package separator

import (
	"math"
	"sort"

	"github.com/tsawler/reflow/model"
)

// Config holds the separator thresholds
type Config struct {
	// Lines closer than half of this share an entry
	MinSeparation float64 `yaml:"min_separation"`

	// Fraction of the perpendicular span tolerated at each end of a query
	Fudge float64 `yaml:"fudge"`
}

// DefaultConfig returns the default separator thresholds
func DefaultConfig() Config {
	return Config{
		MinSeparation: 3,
		Fudge:         0.1,
	}
}

// Line is one recorded rule: its coordinate on the perpendicular axis and
// the interval it covers along its own axis
type Line struct {
	Coord float64
	Start float64
	End   float64
}

type interval struct {
	start, end float64
}

type entry struct {
	coord     float64
	intervals []interval
}

// LineCollection stores horizontal and vertical rule lines
type LineCollection struct {
	config      Config
	horizontals []entry
	verticals   []entry
}

// NewLineCollection creates an empty collection with default thresholds
func NewLineCollection() *LineCollection {
	return NewLineCollectionWithConfig(DefaultConfig())
}

// NewLineCollectionWithConfig creates an empty collection
func NewLineCollectionWithConfig(config Config) *LineCollection {
	return &LineCollection{config: config}
}

// AddHorizontal records a horizontal line at y from x0 to x1
func (lc *LineCollection) AddHorizontal(y, x0, x1 float64) {
	lc.horizontals = lc.add(lc.horizontals, y, x0, x1)
}

// AddVertical records a vertical line at x from y0 to y1
func (lc *LineCollection) AddVertical(x, y0, y1 float64) {
	lc.verticals = lc.add(lc.verticals, x, y0, y1)
}

// IsHorizontallySeparated reports whether a horizontal line lies between the
// top and bottom of rect and spans its width
func (lc *LineCollection) IsHorizontallySeparated(rect model.BBox) bool {
	return lc.query(lc.horizontals, rect.Top(), rect.Bottom(), rect.Left(), rect.Right())
}

// IsVerticallySeparated reports whether a vertical line lies between the
// left and right of rect and spans its height
func (lc *LineCollection) IsVerticallySeparated(rect model.BBox) bool {
	return lc.query(lc.verticals, rect.Left(), rect.Right(), rect.Top(), rect.Bottom())
}

// Horizontals returns the recorded horizontal lines ordered by coordinate
func (lc *LineCollection) Horizontals() []Line {
	return flatten(lc.horizontals)
}

// Verticals returns the recorded vertical lines ordered by coordinate
func (lc *LineCollection) Verticals() []Line {
	return flatten(lc.verticals)
}

// Len returns the number of recorded intervals
func (lc *LineCollection) Len() int {
	n := 0
	for _, e := range lc.horizontals {
		n += len(e.intervals)
	}
	for _, e := range lc.verticals {
		n += len(e.intervals)
	}
	return n
}

func (lc *LineCollection) add(entries []entry, coord, a, b float64) []entry {
	if math.IsNaN(coord) || math.IsNaN(a) || math.IsNaN(b) ||
		math.IsInf(coord, 0) || math.IsInf(a, 0) || math.IsInf(b, 0) {
		return entries
	}
	if a > b {
		a, b = b, a
	}
	if b-a <= 0 {
		return entries
	}

	i := sort.Search(len(entries), func(i int) bool { return entries[i].coord >= coord })
	half := lc.config.MinSeparation / 2

	// Merge into the nearest neighbour when close enough
	best := -1
	for _, j := range []int{i - 1, i} {
		if j < 0 || j >= len(entries) {
			continue
		}
		d := math.Abs(entries[j].coord - coord)
		if d < half && (best < 0 || d < math.Abs(entries[best].coord-coord)) {
			best = j
		}
	}
	if best >= 0 {
		entries[best].intervals = insertInterval(entries[best].intervals, interval{a, b})
		return entries
	}

	entries = append(entries, entry{})
	copy(entries[i+1:], entries[i:])
	entries[i] = entry{coord: coord, intervals: []interval{{a, b}}}
	return entries
}

// insertInterval adds iv to a sorted, disjoint list, coalescing overlaps
func insertInterval(list []interval, iv interval) []interval {
	i := sort.Search(len(list), func(i int) bool { return list[i].end >= iv.start })

	j := i
	for j < len(list) && list[j].start <= iv.end {
		iv.start = math.Min(iv.start, list[j].start)
		iv.end = math.Max(iv.end, list[j].end)
		j++
	}

	result := make([]interval, 0, len(list)-(j-i)+1)
	result = append(result, list[:i]...)
	result = append(result, iv)
	result = append(result, list[j:]...)
	return result
}

func (lc *LineCollection) query(entries []entry, lo, hi, from, to float64) bool {
	if len(entries) == 0 || math.IsNaN(lo) || math.IsNaN(hi) || hi < lo || to < from {
		return false
	}

	fudge := (to - from) * lc.config.Fudge
	from += fudge
	to -= fudge

	i := sort.Search(len(entries), func(i int) bool { return entries[i].coord >= lo })
	for ; i < len(entries) && entries[i].coord <= hi; i++ {
		if covers(entries[i].intervals, from, to) {
			return true
		}
	}
	return false
}

// covers reports whether one interval holds [from, to]
func covers(list []interval, from, to float64) bool {
	// Last interval starting at or before from
	i := sort.Search(len(list), func(i int) bool { return list[i].start > from }) - 1
	return i >= 0 && list[i].end >= to
}

func flatten(entries []entry) []Line {
	var lines []Line
	for _, e := range entries {
		for _, iv := range e.intervals {
			lines = append(lines, Line{Coord: e.coord, Start: iv.start, End: iv.end})
		}
	}
	return lines
}
