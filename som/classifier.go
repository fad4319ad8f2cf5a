package som

import (
	"path"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"

	"github.com/tsawler/reflow/font"
	"github.com/tsawler/reflow/internal/logging"
	"github.com/tsawler/reflow/model"
	"github.com/tsawler/reflow/separator"
	"github.com/tsawler/reflow/text"
)

// Classifier turns page primitives into classified elements
type Classifier struct {
	config Config
	logger logrus.FieldLogger
}

// NewClassifier creates a classifier
func NewClassifier(config Config, logger logrus.FieldLogger) *Classifier {
	return &Classifier{config: config, logger: logging.OrDiscard(logger)}
}

// Classify converts the [start, end) range of a primitive drawn under ctm
// into an element. An end below zero selects the rest of the run. It returns
// nil for empty runs, unsupported primitives and degenerate boxes.
func (c *Classifier) Classify(node model.Node, addr model.FixedNode, start, end int, ctm model.Matrix) Element {
	switch n := node.(type) {
	case *model.Glyphs:
		if r := c.classifyGlyphs(n, addr, newGlyphLayout(n), start, end, ctm); r != nil {
			return r
		}
	case *model.Path:
		if img := c.classifyImage(n, addr, ctm); img != nil {
			return img
		}
	}
	return nil
}

// ClassifyRun classifies a whole glyph run, splitting it where whitespace
// leaves a wide gap or a vertical rule crosses it. lines may be nil.
func (c *Classifier) ClassifyRun(g *model.Glyphs, addr model.FixedNode, ctm model.Matrix, lines *separator.LineCollection) []*TextRun {
	if g == nil || g.IsEmpty() {
		return nil
	}
	layout := newGlyphLayout(g)

	var runs []*TextRun
	from := 0
	for _, at := range c.splitPoints(g, layout, ctm, lines) {
		if r := c.classifyGlyphs(g, addr, layout, from, at, ctm); r != nil {
			runs = append(runs, r)
		}
		from = at
	}
	if r := c.classifyGlyphs(g, addr, layout, from, layout.n, ctm); r != nil {
		runs = append(runs, r)
	}
	return runs
}

func (c *Classifier) classifyGlyphs(g *model.Glyphs, addr model.FixedNode, layout glyphLayout, start, end int, ctm model.Matrix) *TextRun {
	if g.IsEmpty() || layout.n == 0 {
		return nil
	}
	if end < 0 || end > layout.n {
		end = layout.n
	}
	if start < 0 {
		start = 0
	}
	if start >= end {
		return nil
	}

	metrics := metricsOf(g)
	local := layout.box(g, metrics, start, end)
	bbox := ctm.TransformBBox(local)
	if bbox.IsDegenerate() {
		c.logger.WithFields(logrus.Fields{
			"node":  addr.String(),
			"start": start,
			"end":   end,
		}).Debug("skipping degenerate glyph run")
		return nil
	}

	run := &TextRun{
		base:        newBase(bbox),
		Node:        addr,
		Start:       start,
		End:         end,
		Glyphs:      g,
		Transform:   ctm,
		Baseline:    ctm.Transform(model.Point{X: g.OriginX, Y: g.OriginY}).Y,
		FontSize:    g.FontRenderingEmSize * ctm.ScaleY(),
		FontFamily:  familyOf(g, metrics),
		Bold:        g.StyleSimulations.IsBold() || metrics.Bold(),
		Italic:      g.StyleSimulations.IsItalic() || metrics.Italic(),
		Stretch:     "Normal",
		Culture:     cultureOf(g.Language),
		BidiLevel:   g.BidiLevel,
		IsSideways:  g.IsSideways,
		NavigateURI: g.NavigateURI,
	}
	if solid, ok := g.Fill.(*model.SolidColorBrush); ok {
		run.Foreground = solid.Color
		run.HasForeground = true
	}

	if layout.runes == nil {
		// Glyph indices without characters draw symbols, never whitespace
		run.IsWhitespace = false
		return run
	}

	s := string(layout.runes[start:end])
	run.Text = s
	run.IsWhitespace = text.IsWhitespace(s)

	if text.IsMostlyRTL(s) &&
		!g.IsSideways &&
		g.BidiLevel == 0 &&
		start == 0 && end == layout.n &&
		g.CaretStops == "" {
		run.IsReversed = true
		run.Text = text.Reverse(s)
	}
	return run
}

func (c *Classifier) classifyImage(p *model.Path, addr model.FixedNode, ctm model.Matrix) *Image {
	brush, ok := p.Fill.(*model.ImageBrush)
	if !ok || p.Data == nil {
		return nil
	}

	m := p.Data.Transform.Multiply(ctm)
	bbox := model.EmptyBBox()
	for _, fig := range p.Data.Figures {
		bbox = bbox.UnionPoint(m.Transform(fig.StartPoint))
		for _, seg := range fig.Segments {
			for _, pt := range seg.Points {
				bbox = bbox.UnionPoint(m.Transform(pt))
			}
		}
	}
	if bbox.IsDegenerate() {
		c.logger.WithField("node", addr.String()).Debug("skipping degenerate image")
		return nil
	}

	return &Image{
		base:        newBase(bbox),
		Node:        addr,
		Source:      brush.ImageSource,
		PixelWidth:  brush.PixelWidth,
		PixelHeight: brush.PixelHeight,
		NavigateURI: p.NavigateURI,
	}
}

// splitPoints returns the character offsets at which a run is split
func (c *Classifier) splitPoints(g *model.Glyphs, layout glyphLayout, ctm model.Matrix, lines *separator.LineCollection) []int {
	if layout.n < 2 {
		return nil
	}
	var points []int
	em := g.FontRenderingEmSize
	metrics := metricsOf(g)
	ascent, descent := metrics.Ascent(em), metrics.Descent(em)

	i := 0
	for i < layout.n {
		if layout.runes != nil && unicode.IsSpace(layout.runes[i]) {
			j := i
			for j < layout.n && unicode.IsSpace(layout.runes[j]) {
				j++
			}
			if i > 0 && j < layout.n && layout.offsets[j]-layout.offsets[i] > c.config.SplitGapRatio*em {
				points = append(points, j)
			}
			i = j
			continue
		}

		if lines != nil && i > 0 {
			// Centre of the previous character to the centre of this one
			left := (layout.offsets[i-1] + layout.offsets[i]) / 2
			right := (layout.offsets[i] + layout.offsets[i+1]) / 2
			x0, x1 := layout.span(g, left, right)
			gap := ctm.TransformBBox(model.NewBBoxLTRB(x0, g.OriginY-ascent, x1, g.OriginY+descent))
			if lines.IsVerticallySeparated(gap) && (len(points) == 0 || points[len(points)-1] != i) {
				points = append(points, i)
			}
		}
		i++
	}
	return points
}

// glyphLayout holds the cumulative advances of a run's characters, or of its
// glyphs when the run has no characters
type glyphLayout struct {
	runes   []rune
	n       int
	offsets []float64 // n+1 cumulative advances from the origin
}

func newGlyphLayout(g *model.Glyphs) glyphLayout {
	metrics := metricsOf(g)
	em := g.FontRenderingEmSize

	var runes []rune
	if g.UnicodeString != "" {
		runes = []rune(g.UnicodeString)
	}

	n := len(runes)
	if n == 0 {
		n = g.GlyphCount()
	}
	advances := make([]float64, n)

	pos := 0
	for _, m := range g.Indices {
		if pos >= n {
			break
		}
		chars := max(m.ClusterCodeUnits, 1)
		glyphs := max(m.ClusterGlyphs, 1)
		if runes == nil {
			// One position per glyph
			chars = glyphs
		}
		chars = min(chars, n-pos)

		// Only the first glyph of a cluster carries an index or advance in
		// this model; further glyphs use the font's advance for the
		// cluster's first character
		total := 0.0
		for k := 0; k < glyphs; k++ {
			switch {
			case k == 0 && m.HasAdvance:
				total += m.Advance / 100 * em
			case k == 0 && m.Index >= 0:
				total += metrics.Advance(m.Index, em)
			case runes != nil:
				total += metrics.RuneAdvance(runes[pos], em)
			default:
				total += metrics.Advance(-1, em)
			}
		}
		if runes == nil {
			// Glyph positions advance independently
			for k := 0; k < chars; k++ {
				advances[pos+k] = total / float64(glyphs)
			}
		} else {
			for k := 0; k < chars; k++ {
				advances[pos+k] = total / float64(chars)
			}
		}
		pos += chars
	}
	for ; pos < n; pos++ {
		if runes != nil {
			advances[pos] = metrics.RuneAdvance(runes[pos], em)
		} else {
			advances[pos] = metrics.Advance(-1, em)
		}
	}

	offsets := make([]float64, n+1)
	for i, a := range advances {
		offsets[i+1] = offsets[i] + a
	}
	return glyphLayout{runes: runes, n: n, offsets: offsets}
}

// box returns the local alignment box of [start, end), with leading and
// trailing whitespace trimmed unless the range is all whitespace
func (l glyphLayout) box(g *model.Glyphs, metrics model.GlyphMetrics, start, end int) model.BBox {
	s, e := start, end
	if l.runes != nil {
		for s < e && unicode.IsSpace(l.runes[s]) {
			s++
		}
		for e > s && unicode.IsSpace(l.runes[e-1]) {
			e--
		}
		if s == e {
			s, e = start, end
		}
	}

	em := g.FontRenderingEmSize
	x0, x1 := l.span(g, l.offsets[s], l.offsets[e])
	return model.NewBBoxLTRB(x0, g.OriginY-metrics.Ascent(em), x1, g.OriginY+metrics.Descent(em))
}

// span maps advances from the origin to local X coordinates. Odd bidi
// levels lay glyphs out leftward.
func (l glyphLayout) span(g *model.Glyphs, from, to float64) (float64, float64) {
	if g.BidiLevel%2 == 1 {
		return g.OriginX - to, g.OriginX - from
	}
	return g.OriginX + from, g.OriginX + to
}

func metricsOf(g *model.Glyphs) model.GlyphMetrics {
	if g.Metrics != nil {
		return g.Metrics
	}
	return font.Fallback()
}

func familyOf(g *model.Glyphs, metrics model.GlyphMetrics) string {
	if f := metrics.Family(); f != "" {
		return f
	}
	if g.FontURI == "" {
		return ""
	}
	base := path.Base(g.FontURI)
	return strings.TrimSuffix(base, path.Ext(base))
}

func cultureOf(tag string) language.Tag {
	if tag == "" {
		return language.Und
	}
	t, err := language.Parse(tag)
	if err != nil {
		return language.Und
	}
	return t
}
