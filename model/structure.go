package model

import "strings"

// StructureKind identifies a structural hint
type StructureKind int

const (
	StructureUnknown StructureKind = iota
	StructureSection
	StructureParagraph
	StructureTable
	StructureTableRowGroup
	StructureTableRow
	StructureTableCell
	StructureList
	StructureListItem
	StructureFigure
	StructureNamedElement
)

var structureKindNames = map[StructureKind]string{
	StructureSection:       "Section",
	StructureParagraph:     "Paragraph",
	StructureTable:         "Table",
	StructureTableRowGroup: "TableRowGroup",
	StructureTableRow:      "TableRow",
	StructureTableCell:     "TableCell",
	StructureList:          "List",
	StructureListItem:      "ListItem",
	StructureFigure:        "Figure",
	StructureNamedElement:  "NamedElement",
}

func (k StructureKind) String() string {
	if name, ok := structureKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// ParseStructureKind maps a markup element name to its kind
func ParseStructureKind(name string) StructureKind {
	for k, n := range structureKindNames {
		if strings.EqualFold(n, name) {
			return k
		}
	}
	return StructureUnknown
}

// Structure carries the declared logical structure of a page
type Structure struct {
	Fragments []*StructureNode
}

// IsEmpty reports whether no structural hint is present
func (s *Structure) IsEmpty() bool {
	return s == nil || len(s.Fragments) == 0
}

// StructureNode is one node of the declared structure. NamedElement nodes
// reference a primitive by Name; the others group their children.
type StructureNode struct {
	Kind       StructureKind
	Name       string
	ColumnSpan int
	RowSpan    int
	Children   []*StructureNode
}

// Add appends a child node and returns it
func (n *StructureNode) Add(child *StructureNode) *StructureNode {
	n.Children = append(n.Children, child)
	return child
}

// NamedElement creates a reference node
func NamedElement(name string) *StructureNode {
	return &StructureNode{Kind: StructureNamedElement, Name: name}
}
