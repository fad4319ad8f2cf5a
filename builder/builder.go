package builder

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/tsawler/reflow/flow"
	"github.com/tsawler/reflow/internal/logging"
	"github.com/tsawler/reflow/model"
	"github.com/tsawler/reflow/som"
)

var (
	// ErrInvalidArgument is returned for nil inputs
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPageBuilt is returned when a page structure is no longer virtual
	ErrPageBuilt = errors.New("page already built")
)

// Builder emits flow trees for constructed pages
type Builder struct {
	logger logrus.FieldLogger
}

// New creates a builder. A nil logger discards output.
func New(logger logrus.FieldLogger) *Builder {
	return &Builder{logger: logging.OrDiscard(logger)}
}

// BuildPage emits the flow tree of page, splices its nodes into m in place
// of the page's virtual node and records the flow boundary and line table on
// ps. The returned Section stands for the page; its StartNode and EndNode
// are the page's first and last flow nodes.
func (b *Builder) BuildPage(ps *flow.PageStructure, page *som.Page, m *flow.FlowMap) (*FlowElement, error) {
	if ps == nil || page == nil || m == nil {
		return nil, fmt.Errorf("%w: nil page structure, page or flow map", ErrInvalidArgument)
	}
	if !ps.IsVirtual() {
		return nil, fmt.Errorf("%w: page %d", ErrPageBuilt, ps.PageIndex)
	}

	pb := &pageBuild{
		m:       m,
		page:    page,
		index:   page.Index,
		emitted: make(map[som.Element]bool),
		logger:  b.logger,
	}
	root := newElement(Section, page.Index)
	pb.stack = []*FlowElement{root}

	hinted := false
	if page.Source != nil && !page.Source.Structure.IsEmpty() {
		pb.indexNames()
		for _, frag := range page.Source.Structure.Fragments {
			pb.hint(frag, false)
		}
		hinted = true
	} else {
		for _, box := range page.Children() {
			pb.box(box)
		}
	}
	leftover := pb.sweep()

	if len(pb.nodes) == 0 {
		pb.nodes = append(pb.nodes, m.NewNode(flow.Noop, page.Index, page.Index))
	}
	root.StartNode = pb.nodes[0]
	root.EndNode = pb.nodes[len(pb.nodes)-1]

	if err := m.MappingReplace(ps.FlowStart, pb.nodes); err != nil {
		return nil, fmt.Errorf("splice page %d: %w", page.Index, err)
	}
	ps.SetFlowBoundary(root.StartNode, root.EndNode)
	ps.SetPage(page)

	b.logger.WithFields(logrus.Fields{
		"page":     page.Index,
		"nodes":    len(pb.nodes),
		"hinted":   hinted,
		"leftover": leftover,
	}).Debug("page flow built")

	return root, nil
}

type pageBuild struct {
	m       *flow.FlowMap
	page    *som.Page
	index   int
	nodes   []flow.NodeID
	stack   []*FlowElement
	emitted map[som.Element]bool
	names   map[string]model.FixedNode
	logger  logrus.FieldLogger
}

func (pb *pageBuild) parent() *FlowElement {
	return pb.stack[len(pb.stack)-1]
}

func (pb *pageBuild) open(kind Kind) *FlowElement {
	el := newElement(kind, pb.index)
	el.StartNode = pb.m.NewNode(flow.Start, pb.index, el)
	pb.nodes = append(pb.nodes, el.StartNode)
	pb.parent().Children = append(pb.parent().Children, el)
	pb.stack = append(pb.stack, el)
	return el
}

func (pb *pageBuild) close(el *FlowElement) {
	el.EndNode = pb.m.NewNode(flow.End, pb.index, el)
	pb.nodes = append(pb.nodes, el.EndNode)
	pb.stack = pb.stack[:len(pb.stack)-1]
}

func (pb *pageBuild) leaf(kind Kind, elems []som.Element) {
	typ := flow.Run
	if kind == InlineImage {
		typ = flow.Object
	}
	el := newElement(kind, pb.index)
	el.Elements = elems
	id := pb.m.NewNode(typ, pb.index, el)
	el.StartNode, el.EndNode = id, id
	pb.nodes = append(pb.nodes, id)
	pb.parent().Children = append(pb.parent().Children, el)

	for _, e := range elems {
		// The node is freshly allocated, so indexing cannot fail
		_ = pb.m.AddFixedElement(e, id)
		pb.emitted[e] = true
	}
}

// box emits one reconstructed container
func (pb *pageBuild) box(b som.Box) {
	switch v := b.(type) {
	case *som.FixedBlock:
		p := pb.open(Paragraph)
		pb.inline(runsOf(v))
		pb.close(p)
	case *som.Table:
		pb.table(v)
	case *som.Image:
		f := pb.open(Figure)
		pb.inline([]som.Element{v})
		pb.close(f)
	}
}

func (pb *pageBuild) table(t *som.Table) {
	table := pb.open(Table)
	group := pb.open(TableRowGroup)
	for _, r := range t.Rows {
		row := pb.open(TableRow)
		for _, c := range r.Cells {
			if c.Covered {
				continue
			}
			cell := pb.open(TableCell)
			cell.ColumnSpan, cell.RowSpan = c.ColumnSpan, c.RowSpan
			for _, child := range c.Children() {
				pb.box(child)
			}
			pb.close(cell)
		}
		pb.close(row)
	}
	pb.close(group)
	pb.close(table)
}

func runsOf(b *som.FixedBlock) []som.Element {
	runs := b.Runs()
	out := make([]som.Element, len(runs))
	for i, r := range runs {
		out[i] = r
	}
	return out
}

// inline emits content elements inside the current container. Elements
// sharing a navigate URI are wrapped in a hyperlink; consecutive text runs
// of one line with the same rich properties share a Run.
func (pb *pageBuild) inline(elems []som.Element) {
	var pending []som.Element
	for _, e := range elems {
		if !pb.emitted[e] {
			pending = append(pending, e)
		}
	}

	for i := 0; i < len(pending); {
		uri := navigateURI(pending[i])
		j := i + 1
		for j < len(pending) && navigateURI(pending[j]) == uri {
			j++
		}
		if uri != "" {
			link := pb.open(Hyperlink)
			link.NavigateURI = uri
			pb.leaves(pending[i:j])
			pb.close(link)
		} else {
			pb.leaves(pending[i:j])
		}
		i = j
	}
}

func (pb *pageBuild) leaves(elems []som.Element) {
	var group []som.Element
	flush := func() {
		if len(group) > 0 {
			pb.leaf(Run, group)
			group = nil
		}
	}

	for _, e := range elems {
		switch v := e.(type) {
		case *som.TextRun:
			if len(group) > 0 && !mergeable(group[len(group)-1].(*som.TextRun), v) {
				flush()
			}
			group = append(group, v)
		case *som.Image:
			flush()
			pb.leaf(InlineImage, []som.Element{v})
		}
	}
	flush()
}

func mergeable(a, b *som.TextRun) bool {
	return a.Block() == b.Block() &&
		math.Abs(a.Baseline-b.Baseline) < 0.5 &&
		som.HasSameRichProperties(a, b)
}

func navigateURI(e som.Element) string {
	switch v := e.(type) {
	case *som.TextRun:
		return v.NavigateURI
	case *som.Image:
		return v.NavigateURI
	}
	return ""
}

// sweep appends every element not yet emitted inside a trailing paragraph:
// reading order first, then markup order for elements outside any block.
// It returns the number of elements swept.
func (pb *pageBuild) sweep() int {
	var leftover []som.Element
	seen := make(map[som.Element]bool)
	collect := func(elems []som.Element) {
		for _, e := range elems {
			if !pb.emitted[e] && !seen[e] {
				seen[e] = true
				leftover = append(leftover, e)
			}
		}
	}
	collect(pb.page.ReadingOrder())
	collect(pb.page.Elements())

	if len(leftover) == 0 {
		return 0
	}
	p := pb.open(Paragraph)
	pb.inline(leftover)
	pb.close(p)
	return len(leftover)
}
