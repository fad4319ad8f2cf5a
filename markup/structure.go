package markup

import (
	"strconv"
	"strings"

	"github.com/tsawler/reflow/model"
)

// structure collects the story fragments of a page: those embedded in the
// page part followed by those of the StoryFragments part related to it.
// It returns nil when the page has none.
func (pp *pageParser) structure(root *element) *model.Structure {
	frags := root.find("storyfragment")

	for _, rel := range pp.d.relationships(pp.part) {
		if !strings.HasSuffix(strings.ToLower(rel.typ), relStoryFragments) {
			continue
		}
		part, err := pp.d.readPart(rel.target)
		if err != nil {
			pp.log.WithError(err).Debug("story fragments unreadable")
			continue
		}
		frags = append(frags, part.find("storyfragment")...)
	}

	if len(frags) == 0 {
		return nil
	}
	s := &model.Structure{}
	for _, f := range frags {
		s.Fragments = append(s.Fragments, structureNode(f))
	}
	return s
}

// structureNode converts a story fragment element. FooStructure elements map
// to kind Foo; NamedElement references keep their NameReference.
func structureNode(e *element) *model.StructureNode {
	if e.name == "namedelement" {
		ref, _ := e.attr("namereference")
		return model.NamedElement(ref)
	}

	n := &model.StructureNode{Kind: model.StructureUnknown}
	if base, ok := strings.CutSuffix(e.name, "structure"); ok {
		n.Kind = model.ParseStructureKind(base)
	}
	if n.Kind == model.StructureTableCell {
		n.ColumnSpan = span(e, "columnspan")
		n.RowSpan = span(e, "rowspan")
	}
	for _, c := range e.children {
		n.Add(structureNode(c))
	}
	return n
}

func span(e *element, attr string) int {
	v, ok := e.attr(attr)
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
