package builder

import (
	"math"
	"strings"
	"unicode"

	"github.com/tsawler/reflow/flow"
	"github.com/tsawler/reflow/som"
)

// Kind is the type of a flow element
type Kind int

const (
	Section Kind = iota
	Paragraph
	Table
	TableRowGroup
	TableRow
	TableCell
	List
	ListItem
	Figure
	Hyperlink
	Run
	InlineImage
)

var kindNames = [...]string{
	Section:       "Section",
	Paragraph:     "Paragraph",
	Table:         "Table",
	TableRowGroup: "TableRowGroup",
	TableRow:      "TableRow",
	TableCell:     "TableCell",
	List:          "List",
	ListItem:      "ListItem",
	Figure:        "Figure",
	Hyperlink:     "Hyperlink",
	Run:           "Run",
	InlineImage:   "InlineImage",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// IsLeaf reports whether elements of the kind hold content instead of
// children
func (k Kind) IsLeaf() bool {
	return k == Run || k == InlineImage
}

// FlowElement is a node of the flow tree. Containers own a Start and an End
// flow node; leaves own a single Run or Object node referenced by both
// StartNode and EndNode.
type FlowElement struct {
	Kind      Kind
	PageIndex int

	Children []*FlowElement

	// Elements holds the classified content of a leaf
	Elements []som.Element

	ColumnSpan int
	RowSpan    int

	NavigateURI string

	StartNode flow.NodeID
	EndNode   flow.NodeID
}

func newElement(kind Kind, page int) *FlowElement {
	return &FlowElement{
		Kind:       kind,
		PageIndex:  page,
		ColumnSpan: 1,
		RowSpan:    1,
		StartNode:  flow.None,
		EndNode:    flow.None,
	}
}

// FlowRange returns the flow positions of the element's first and last nodes
func (e *FlowElement) FlowRange(m *flow.FlowMap) (int, int, error) {
	start, err := m.Fp(e.StartNode)
	if err != nil {
		return -1, -1, err
	}
	end, err := m.Fp(e.EndNode)
	if err != nil {
		return -1, -1, err
	}
	return start, end, nil
}

// Walk visits the element and its descendants depth first. Returning false
// skips the children of the visited element.
func (e *FlowElement) Walk(fn func(*FlowElement) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.Children {
		c.Walk(fn)
	}
}

// AllElements returns the classified content under e in flow order
func (e *FlowElement) AllElements() []som.Element {
	var out []som.Element
	e.Walk(func(el *FlowElement) bool {
		out = append(out, el.Elements...)
		return true
	})
	return out
}

// Text returns the plain text of the element. Lines of a paragraph are
// joined by a space, cells by tabs and rows, paragraphs and other blocks by
// newlines.
func (e *FlowElement) Text() string {
	var sb strings.Builder
	e.writeText(&sb)
	return sb.String()
}

func (e *FlowElement) writeText(sb *strings.Builder) {
	switch e.Kind {
	case Run:
		for _, el := range e.Elements {
			if r, ok := el.(*som.TextRun); ok {
				sb.WriteString(r.Text)
			}
		}
	case InlineImage:
	case Paragraph, Hyperlink:
		e.writeInline(sb, math.NaN())
	case Table, TableRowGroup:
		e.writeJoined(sb, "\n")
	case TableRow:
		e.writeJoined(sb, "\t")
	default:
		e.writeJoined(sb, "\n")
	}
}

// writeInline writes inline children, separating runs that sit on different
// baselines. It returns the last baseline written.
func (e *FlowElement) writeInline(sb *strings.Builder, baseline float64) float64 {
	for _, c := range e.Children {
		switch c.Kind {
		case Run:
			if b, ok := c.baseline(); ok {
				if !math.IsNaN(baseline) && math.Abs(b-baseline) > 0.5 && !endsInSpace(sb) {
					sb.WriteByte(' ')
				}
				baseline = b
			}
			c.writeText(sb)
		case Hyperlink:
			baseline = c.writeInline(sb, baseline)
		default:
			c.writeText(sb)
		}
	}
	return baseline
}

func (e *FlowElement) writeJoined(sb *strings.Builder, sep string) {
	for i, c := range e.Children {
		if i > 0 {
			sb.WriteString(sep)
		}
		c.writeText(sb)
	}
}

func (e *FlowElement) baseline() (float64, bool) {
	for _, el := range e.Elements {
		if r, ok := el.(*som.TextRun); ok {
			return r.Baseline, true
		}
	}
	return 0, false
}

func endsInSpace(sb *strings.Builder) bool {
	s := sb.String()
	if s == "" {
		return true
	}
	return unicode.IsSpace(rune(s[len(s)-1]))
}
