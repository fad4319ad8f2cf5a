package som

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/tsawler/reflow/graphicsstate"
	"github.com/tsawler/reflow/internal/logging"
	"github.com/tsawler/reflow/model"
	"github.com/tsawler/reflow/separator"
)

// PageConstructor builds the semantic object model of fixed pages
type PageConstructor struct {
	config     Config
	logger     logrus.FieldLogger
	classifier *Classifier
	walker     *graphicsstate.Walker
}

// NewPageConstructor creates a constructor with default thresholds
func NewPageConstructor() *PageConstructor {
	return NewPageConstructorWithConfig(DefaultConfig(), nil)
}

// NewPageConstructorWithConfig creates a constructor. A nil logger discards
// output.
func NewPageConstructorWithConfig(config Config, logger logrus.FieldLogger) *PageConstructor {
	logger = logging.OrDiscard(logger)
	return &PageConstructor{
		config:     config,
		logger:     logger,
		classifier: NewClassifier(config, logger),
		walker:     graphicsstate.NewWalker(),
	}
}

// Config returns the constructor thresholds
func (pc *PageConstructor) Config() Config {
	return pc.config
}

// rule is a candidate separator line in page space
type rule struct {
	horizontal bool
	coord      float64
	start      float64
	end        float64
}

func (r rule) bbox() model.BBox {
	if r.horizontal {
		return model.NewBBoxLTRB(r.start, r.coord, r.end, r.coord)
	}
	return model.NewBBoxLTRB(r.coord, r.start, r.coord, r.end)
}

type glyphItem struct {
	glyphs *model.Glyphs
	addr   model.FixedNode
	ctm    model.Matrix
}

// Construct builds the semantic object model of page. Malformed content is
// skipped; an error is returned only for a nil page or a negative index.
func (pc *PageConstructor) Construct(page *model.Page, pageIndex int) (*Page, error) {
	if page == nil {
		return nil, fmt.Errorf("%w: nil page", ErrInvalidArgument)
	}
	if pageIndex < 0 {
		return nil, fmt.Errorf("%w: negative page index %d", ErrInvalidArgument, pageIndex)
	}

	out := newPage(page, pageIndex)

	// Walk the tree: text, images, geometry and markup order
	var (
		glyphs    []glyphItem
		elements  []Element
		order     []model.FixedNode
		collector graphicsstate.Collector
	)
	graphicsstate.WalkPage(page, pageIndex, func(n model.Node, addr model.FixedNode, ctm model.Matrix) bool {
		switch n := n.(type) {
		case *model.Glyphs:
			order = append(order, addr)
			glyphs = append(glyphs, glyphItem{n, addr, ctm})
		case *model.Path:
			order = append(order, addr)
			if el := pc.classifier.Classify(n, addr, 0, 1, ctm); el != nil {
				elements = append(elements, el)
				return true
			}
			pc.walkPath(n, ctm, &collector)
		}
		return true
	})
	out.Order = NewMarkupOrder(order)

	horizontals, verticals := pc.collectRules(&collector, page)

	lines := separator.NewLineCollectionWithConfig(pc.config.Separator)
	for _, v := range verticals {
		lines.AddVertical(v.coord, v.start, v.end)
	}

	var runs []*TextRun
	for _, item := range glyphs {
		runs = append(runs, pc.classifier.ClassifyRun(item.glyphs, item.addr, item.ctm, lines)...)
	}

	horizontals = pc.applyDecorations(runs, horizontals)
	for _, h := range horizontals {
		lines.AddHorizontal(h.coord, h.start, h.end)
	}
	out.Lines = lines

	for _, r := range runs {
		elements = append(elements, r)
	}
	out.setElements(elements)

	blocks, orphans := pc.clusterBlocks(runs, lines)
	out.orphans = orphans
	for _, b := range blocks {
		b.sortLines()
	}

	var images []*Image
	for _, el := range elements {
		if img, ok := el.(*Image); ok {
			images = append(images, img)
		}
	}

	candidates := make([]Box, 0, len(blocks)+len(images))
	for _, b := range blocks {
		candidates = append(candidates, b)
	}
	for _, img := range images {
		candidates = append(candidates, img)
	}

	rules := append(append([]rule(nil), horizontals...), verticals...)
	tables, claimed := pc.detectTables(rules, candidates, lines, out.Order)

	var children []Box
	for _, b := range candidates {
		if !claimed[b] {
			children = append(children, b)
		}
	}
	for _, t := range tables {
		children = append(children, t)
	}

	// Votes decide the page direction before ordering
	for _, b := range children {
		out.Add(b)
	}
	SortBoxes(children, out.IsRTL(), out.Order)
	out.reset(children)

	pc.logger.WithFields(logrus.Fields{
		"page":     pageIndex,
		"elements": len(elements),
		"blocks":   len(blocks),
		"tables":   len(tables),
		"orphans":  len(orphans),
	}).Debug("page constructed")

	return out, nil
}

func (pc *PageConstructor) walkPath(p *model.Path, ctm model.Matrix, sink graphicsstate.Sink) {
	stroked := painted(p.Stroke) && p.StrokeThickness > 0
	filled := painted(p.Fill)
	pc.walker.Walk(p.Data, ctm, stroked, filled, p.StrokeThickness, sink)
}

// painted reports whether a brush draws anything visible
func painted(b model.Brush) bool {
	switch v := b.(type) {
	case nil:
		return false
	case *model.SolidColorBrush:
		return v.Color.A > 0
	case *model.ImageBrush:
		return false
	}
	return true
}

// collectRules turns walked geometry into separator candidates. Thin fills
// become rules; other fills contribute their edges unless they cover most of
// the page.
func (pc *PageConstructor) collectRules(c *graphicsstate.Collector, page *model.Page) (horizontals, verticals []rule) {
	for _, seg := range c.Lines {
		if seg.IsHorizontal {
			horizontals = append(horizontals, rule{true, seg.Start.Y, seg.Start.X, seg.End.X})
		} else {
			verticals = append(verticals, rule{false, seg.Start.X, seg.Start.Y, seg.End.Y})
		}
	}

	pageArea := page.Width * page.Height
	for _, box := range c.Fills {
		if math.Min(box.Width, box.Height) < pc.config.MaxRuleThickness {
			center := box.Center()
			if box.Width >= box.Height {
				horizontals = append(horizontals, rule{true, center.Y, box.Left(), box.Right()})
			} else {
				verticals = append(verticals, rule{false, center.X, box.Top(), box.Bottom()})
			}
			continue
		}
		if pageArea > 0 && box.Area() >= pc.config.PageBackgroundRatio*pageArea {
			continue
		}
		horizontals = append(horizontals,
			rule{true, box.Top(), box.Left(), box.Right()},
			rule{true, box.Bottom(), box.Left(), box.Right()})
		verticals = append(verticals,
			rule{false, box.Left(), box.Top(), box.Bottom()},
			rule{false, box.Right(), box.Top(), box.Bottom()})
	}
	return horizontals, verticals
}

// applyDecorations marks underlined and struck-through runs and returns the
// horizontal rules that were not consumed as decorations
func (pc *PageConstructor) applyDecorations(runs []*TextRun, horizontals []rule) []rule {
	kept := horizontals[:0]
	for _, h := range horizontals {
		var under, strike []*TextRun
		covered := model.EmptyBBox()
		em := 0.0

		for _, r := range runs {
			if r.IsWhitespace {
				continue
			}
			box := r.BBox()
			tol := 0.5 * r.FontSize
			if box.Left() < h.start-tol || box.Right() > h.end+tol {
				continue
			}
			switch {
			case h.coord >= r.Baseline && h.coord <= box.Bottom()+0.15*r.FontSize:
				under = append(under, r)
			case h.coord >= box.Top()+0.3*box.Height && h.coord <= r.Baseline-0.15*r.FontSize:
				strike = append(strike, r)
			default:
				continue
			}
			covered = covered.Union(box)
			em = math.Max(em, r.FontSize)
		}

		if len(under)+len(strike) == 0 || covered.Left() > h.start+em || covered.Right() < h.end-em {
			kept = append(kept, h)
			continue
		}
		for _, r := range under {
			r.Underline = true
		}
		for _, r := range strike {
			r.Strikethrough = true
		}
	}
	return kept
}

// clusterBlocks groups runs into line blocks. Whitespace runs join a block
// only by continuing one of its lines; the rest are returned as orphans.
func (pc *PageConstructor) clusterBlocks(runs []*TextRun, lines *separator.LineCollection) ([]*FixedBlock, []*TextRun) {
	var blocks []*FixedBlock
	var whitespace []*TextRun

	for _, r := range runs {
		if r.IsWhitespace {
			whitespace = append(whitespace, r)
			continue
		}
		if b := pc.findBlock(blocks, r, lines, true); b != nil {
			b.Add(r)
			continue
		}
		b := NewFixedBlock(pc.config.LineHeightRatio)
		b.Add(r)
		blocks = append(blocks, b)
	}

	var orphans []*TextRun
	for _, r := range whitespace {
		if b := pc.findBlock(blocks, r, lines, false); b != nil {
			b.Add(r)
			continue
		}
		orphans = append(orphans, r)
	}
	return blocks, orphans
}

// findBlock returns the most recent block r continues, or nil
func (pc *PageConstructor) findBlock(blocks []*FixedBlock, r *TextRun, lines *separator.LineCollection, nextLine bool) *FixedBlock {
	for i := len(blocks) - 1; i >= 0; i-- {
		b := blocks[i]
		if pc.continuesLine(b, r, lines) {
			return b
		}
		if nextLine && pc.startsNextLine(b, r, lines) {
			return b
		}
	}
	return nil
}

// continuesLine reports whether r sits on the block's last line within a
// word gap and with no vertical rule in between
func (pc *PageConstructor) continuesLine(b *FixedBlock, r *TextRun, lines *separator.LineCollection) bool {
	last := b.Last()
	if last == nil {
		return false
	}
	lb, rb := last.BBox(), r.BBox()
	lh := b.LineHeight()

	overlap := verticalOverlap(lb, rb)
	if overlap <= 0 || overlap < 0.5*math.Min(lb.Height, rb.Height) {
		return false
	}

	left, right := lb, rb
	if rb.Left() < lb.Left() {
		left, right = rb, lb
	}
	gap := right.Left() - left.Right()
	if gap > pc.config.WordGapRatio*lh {
		return false
	}

	x0, x1 := left.Right(), right.Left()
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	top := math.Max(lb.Top(), rb.Top())
	bottom := math.Min(lb.Bottom(), rb.Bottom())
	return !lines.IsVerticallySeparated(model.NewBBoxLTRB(x0, top, x1, bottom))
}

// startsNextLine reports whether r begins a new line right below the block
func (pc *PageConstructor) startsNextLine(b *FixedBlock, r *TextRun, lines *separator.LineCollection) bool {
	last := b.Last()
	if last == nil {
		return false
	}
	bb, lb, rb := b.BBox(), last.BBox(), r.BBox()
	lh := b.LineHeight()

	if rb.Top() < lb.Top()+0.5*lh {
		return false
	}
	if rb.Top()-bb.Bottom() > pc.config.LineGapRatio*lh {
		return false
	}
	if horizontalOverlap(bb, rb) <= 0 {
		return false
	}

	size, other := b.FontSize(), r.FontSize
	if math.Abs(size-other) > pc.config.FontSizeTolerance*math.Max(size, other) {
		return false
	}

	x0 := math.Max(bb.Left(), rb.Left())
	x1 := math.Min(bb.Right(), rb.Right())
	y0, y1 := bb.Bottom(), rb.Top()
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	return !lines.IsHorizontallySeparated(model.NewBBoxLTRB(x0, y0, x1, y1))
}
