package builder

import (
	"github.com/tsawler/reflow/model"
	"github.com/tsawler/reflow/som"
)

var structureKinds = map[model.StructureKind]Kind{
	model.StructureSection:       Section,
	model.StructureParagraph:     Paragraph,
	model.StructureTable:         Table,
	model.StructureTableRowGroup: TableRowGroup,
	model.StructureTableRow:      TableRow,
	model.StructureTableCell:     TableCell,
	model.StructureList:          List,
	model.StructureListItem:      ListItem,
	model.StructureFigure:        Figure,
}

// indexNames maps primitive names to their addresses. The first primitive
// carrying a name wins.
func (pb *pageBuild) indexNames() {
	pb.names = make(map[string]model.FixedNode)
	pb.page.Source.Walk(func(n model.Node, path []int) bool {
		if name := n.NodeName(); name != "" {
			if _, ok := pb.names[name]; !ok {
				pb.names[name] = model.NewFixedNode(pb.index, path...)
			}
		}
		return true
	})
}

// resolve returns the elements drawn by a named primitive, or under a named
// canvas, in markup order
func (pb *pageBuild) resolve(name string) []som.Element {
	addr, ok := pb.names[name]
	if !ok {
		return nil
	}
	var out []som.Element
	for _, e := range pb.page.Elements() {
		n := e.FixedNode()
		if (n == addr || addr.IsAncestorOf(n)) && !pb.emitted[e] {
			out = append(out, e)
		}
	}
	return out
}

// hint emits one structure node. Named references outside a paragraph get
// a paragraph of their own; unresolved references are skipped and left to
// the sweep.
func (pb *pageBuild) hint(n *model.StructureNode, inParagraph bool) {
	if n == nil {
		return
	}

	switch n.Kind {
	case model.StructureNamedElement:
		elems := pb.resolve(n.Name)
		if len(elems) == 0 {
			pb.logger.WithField("name", n.Name).Debug("unresolved structure reference")
			return
		}
		if inParagraph {
			pb.inline(elems)
			return
		}
		p := pb.open(Paragraph)
		pb.inline(elems)
		pb.close(p)
		return
	case model.StructureUnknown:
		for _, c := range n.Children {
			pb.hint(c, inParagraph)
		}
		return
	}

	kind, ok := structureKinds[n.Kind]
	if !ok {
		return
	}
	el := pb.open(kind)
	if kind == TableCell {
		el.ColumnSpan = max(n.ColumnSpan, 1)
		el.RowSpan = max(n.RowSpan, 1)
	}
	for _, c := range n.Children {
		pb.hint(c, kind == Paragraph || inParagraph)
	}
	pb.close(el)
}
