package som

import (
	"sort"

	"github.com/tsawler/reflow/model"
	"github.com/tsawler/reflow/separator"
)

// Page is the semantic object model of one fixed page: blocks, tables and
// images in reading order
type Page struct {
	container

	Index  int
	Width  float64
	Height float64

	// Source is the fixed page the model was built from
	Source *model.Page

	// Order is the page's markup order
	Order *MarkupOrder

	// Lines holds the rule lines found on the page
	Lines *separator.LineCollection

	orphans  []*TextRun
	elements []Element
}

func newPage(src *model.Page, index int) *Page {
	return &Page{
		container: newContainer(),
		Index:     index,
		Width:     src.Width,
		Height:    src.Height,
		Source:    src,
	}
}

// Add appends a top-level box and counts its direction vote
func (p *Page) Add(b Box) {
	p.add(b)
	switch v := b.(type) {
	case *FixedBlock:
		if rtl, ltr := v.Votes(); rtl+ltr > 0 {
			p.vote(v.IsRTL())
		}
	case *Table:
		if rtl, ltr := v.Votes(); rtl+ltr > 0 {
			p.vote(v.IsRTL())
		}
	}
}

// Elements returns every classified element of the page in markup order,
// orphans included
func (p *Page) Elements() []Element {
	return p.elements
}

// Orphans returns whitespace runs attached to no block
func (p *Page) Orphans() []*TextRun {
	return p.orphans
}

// Blocks returns the top-level blocks in reading order
func (p *Page) Blocks() []*FixedBlock {
	var blocks []*FixedBlock
	for _, b := range p.children {
		if fb, ok := b.(*FixedBlock); ok {
			blocks = append(blocks, fb)
		}
	}
	return blocks
}

// Tables returns the tables in reading order
func (p *Page) Tables() []*Table {
	var tables []*Table
	for _, b := range p.children {
		if t, ok := b.(*Table); ok {
			tables = append(tables, t)
		}
	}
	return tables
}

// Images returns the top-level images in reading order
func (p *Page) Images() []*Image {
	var images []*Image
	for _, b := range p.children {
		if img, ok := b.(*Image); ok {
			images = append(images, img)
		}
	}
	return images
}

// IsEmpty reports whether the page holds no classified element
func (p *Page) IsEmpty() bool {
	return len(p.elements) == 0
}

// ReadingOrder returns the elements under the page in reading order:
// blocks run by run, tables row by row and cell by cell
func (p *Page) ReadingOrder() []Element {
	var out []Element
	for _, b := range p.children {
		out = appendElements(out, b)
	}
	return out
}

func appendElements(out []Element, b Box) []Element {
	switch v := b.(type) {
	case *FixedBlock:
		for _, r := range v.Runs() {
			out = append(out, r)
		}
	case *Table:
		for _, row := range v.Rows {
			for _, c := range row.Cells {
				for _, child := range c.Children() {
					out = appendElements(out, child)
				}
			}
		}
	case Element:
		out = append(out, v)
	}
	return out
}

func (p *Page) setElements(elements []Element) {
	sort.SliceStable(elements, func(i, j int) bool {
		if c := elements[i].FixedNode().Compare(elements[j].FixedNode()); c != 0 {
			return c < 0
		}
		si, _ := elements[i].Range()
		sj, _ := elements[j].Range()
		return si < sj
	})
	p.elements = elements
}
