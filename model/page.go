package model

// Page is a parsed fixed page: absolutely positioned primitives with no
// inherent reading structure
type Page struct {
	Width    float64 // Page width in device-independent pixels
	Height   float64 // Page height in device-independent pixels
	Children []Node  // Top-level primitives in markup order

	// Structure holds optional structural hints (story fragments)
	Structure *Structure

	// Source is the part name the page was loaded from, if any
	Source string
}

// NewPage creates an empty page with given dimensions
func NewPage(width, height float64) *Page {
	return &Page{
		Width:    width,
		Height:   height,
		Children: make([]Node, 0),
	}
}

// Add appends a top-level primitive and returns its FixedNode path index
func (p *Page) Add(n Node) int {
	p.Children = append(p.Children, n)
	return len(p.Children) - 1
}

// BBox returns the page area
func (p *Page) BBox() BBox {
	return NewBBox(0, 0, p.Width, p.Height)
}

// Walk visits every primitive in markup order with its child-index path.
// Returning false from fn skips the children of a canvas.
func (p *Page) Walk(fn func(n Node, path []int) bool) {
	walkNodes(p.Children, nil, fn)
}

func walkNodes(nodes []Node, prefix []int, fn func(n Node, path []int) bool) {
	for i, n := range nodes {
		path := append(append([]int(nil), prefix...), i)
		if !fn(n, path) {
			continue
		}
		if c, ok := n.(*Canvas); ok {
			walkNodes(c.Children, path, fn)
		}
	}
}

// Resolve returns the primitive addressed by path, or nil
func (p *Page) Resolve(path []int) Node {
	nodes := p.Children
	var current Node
	for _, idx := range path {
		if idx < 0 || idx >= len(nodes) {
			return nil
		}
		current = nodes[idx]
		if c, ok := current.(*Canvas); ok {
			nodes = c.Children
		} else {
			nodes = nil
		}
	}
	return current
}

// Node is a fixed-page primitive: *Canvas, *Glyphs or *Path
type Node interface {
	NodeName() string
	fixedNode()
}

// Canvas groups primitives under a shared transform
type Canvas struct {
	Name            string
	RenderTransform Matrix
	NavigateURI     string
	Children        []Node
}

// NewCanvas creates an empty canvas with an identity transform
func NewCanvas() *Canvas {
	return &Canvas{RenderTransform: Identity()}
}

// Add appends a child primitive
func (c *Canvas) Add(n Node) {
	c.Children = append(c.Children, n)
}

func (c *Canvas) NodeName() string { return c.Name }
func (c *Canvas) fixedNode()       {}

// StyleSimulations are the synthetic styles applied to a glyph run
type StyleSimulations int

const (
	SimulationNone StyleSimulations = iota
	SimulationItalic
	SimulationBold
	SimulationBoldItalic
)

// IsBold reports whether bold is simulated
func (s StyleSimulations) IsBold() bool {
	return s == SimulationBold || s == SimulationBoldItalic
}

// IsItalic reports whether italic is simulated
func (s StyleSimulations) IsItalic() bool {
	return s == SimulationItalic || s == SimulationBoldItalic
}

// GlyphMapping is one entry of a glyph run's Indices: a cluster mapping
// characters to glyphs, the glyph index and its advance
type GlyphMapping struct {
	ClusterCodeUnits int // characters in the cluster (1 when not a cluster)
	ClusterGlyphs    int // glyphs in the cluster (1 when not a cluster)
	Index            int // glyph index, -1 when unspecified
	Advance          float64
	HasAdvance       bool // Advance was given explicitly, in 1/100 em
}

// GlyphMetrics resolves font metrics for a glyph run
type GlyphMetrics interface {
	Advance(glyphIndex int, emSize float64) float64
	RuneAdvance(r rune, emSize float64) float64
	Ascent(emSize float64) float64
	Descent(emSize float64) float64
	Family() string
	Bold() bool
	Italic() bool
}

// Glyphs is a run of positioned glyphs drawn with one font
type Glyphs struct {
	Name                string
	UnicodeString       string
	Indices             []GlyphMapping
	OriginX             float64
	OriginY             float64
	FontRenderingEmSize float64
	FontURI             string
	Fill                Brush
	StyleSimulations    StyleSimulations
	BidiLevel           int
	IsSideways          bool
	CaretStops          string
	Language            string
	RenderTransform     Matrix
	NavigateURI         string

	// Metrics resolves advances for glyphs without explicit advances;
	// nil means estimated metrics
	Metrics GlyphMetrics
}

// NewGlyphs creates a glyph run with an identity transform
func NewGlyphs(text string, originX, originY, emSize float64) *Glyphs {
	return &Glyphs{
		UnicodeString:       text,
		OriginX:             originX,
		OriginY:             originY,
		FontRenderingEmSize: emSize,
		RenderTransform:     Identity(),
		Fill:                &SolidColorBrush{Color: Color{A: 255}},
	}
}

func (g *Glyphs) NodeName() string { return g.Name }
func (g *Glyphs) fixedNode()       {}

// GlyphCount returns the number of glyphs drawn by the run
func (g *Glyphs) GlyphCount() int {
	if len(g.Indices) > 0 {
		n := 0
		for _, m := range g.Indices {
			n += maxInt(m.ClusterGlyphs, 1)
		}
		return n
	}
	return len([]rune(g.UnicodeString))
}

// IsEmpty reports whether the run draws nothing
func (g *Glyphs) IsEmpty() bool {
	return g.UnicodeString == "" && len(g.Indices) == 0
}

// Path is a vector drawing primitive
type Path struct {
	Name            string
	Data            *PathGeometry
	Fill            Brush
	Stroke          Brush
	StrokeThickness float64
	RenderTransform Matrix
	NavigateURI     string
}

// NewPath creates a path with an identity transform and unit stroke
func NewPath(data *PathGeometry) *Path {
	return &Path{
		Data:            data,
		StrokeThickness: 1,
		RenderTransform: Identity(),
	}
}

func (p *Path) NodeName() string { return p.Name }
func (p *Path) fixedNode()       {}

// Color represents an sRGB color with alpha
type Color struct {
	A, R, G, B uint8
}

// Brush paints a fill or stroke: *SolidColorBrush, *ImageBrush or *OpaqueBrush
type Brush interface {
	brush()
}

// SolidColorBrush paints with a single color
type SolidColorBrush struct {
	Color Color
}

// ImageBrush paints with a raster image
type ImageBrush struct {
	ImageSource string
	Viewbox     BBox
	Viewport    BBox
	PixelWidth  int
	PixelHeight int
	Format      string
}

// OpaqueBrush stands for any other brush (gradients, visual brushes)
type OpaqueBrush struct {
	Kind string
}

func (*SolidColorBrush) brush() {}
func (*ImageBrush) brush()      {}
func (*OpaqueBrush) brush()     {}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
