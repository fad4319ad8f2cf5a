package markup

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strconv"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/sirupsen/logrus"

	"github.com/tsawler/reflow/model"
)

// Default page size in device-independent pixels (US Letter at 96 dpi)
const (
	DefaultPageWidth  = 816
	DefaultPageHeight = 1056
)

// pageParser converts one FixedPage part
type pageParser struct {
	d    *Document
	part string
	log  logrus.FieldLogger
}

func (d *Document) parsePage(ref PageRef) (*model.Page, error) {
	root, err := d.readPart(ref.Part)
	if err != nil {
		return nil, err
	}
	fp := root.child("fixedpage")
	if fp == nil {
		return nil, fmt.Errorf("%w: no FixedPage element", ErrInvalidMarkup)
	}

	pp := &pageParser{d: d, part: ref.Part, log: d.logger.WithField("part", ref.Part)}

	w, _ := fp.attr("width")
	h, _ := fp.attr("height")
	width, err := parseFloat(w, firstPositive(ref.Width, DefaultPageWidth))
	if err != nil {
		return nil, err
	}
	height, err := parseFloat(h, firstPositive(ref.Height, DefaultPageHeight))
	if err != nil {
		return nil, err
	}

	page := model.NewPage(width, height)
	page.Source = ref.Part
	lang, _ := fp.attr("xml:lang")
	for _, c := range fp.children {
		if n := pp.node(c, lang); n != nil {
			page.Add(n)
		}
	}

	page.Structure = pp.structure(root)
	return page, nil
}

func firstPositive(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}

// node converts a content element. Malformed primitives are logged and
// skipped.
func (pp *pageParser) node(e *element, lang string) model.Node {
	var (
		n   model.Node
		err error
	)
	switch e.name {
	case "canvas":
		n, err = pp.canvas(e, lang)
	case "glyphs":
		n, err = pp.glyphs(e, lang)
	case "path":
		n, err = pp.path(e)
	default:
		if !e.isProperty() {
			pp.log.WithField("element", e.name).Debug("ignoring element")
		}
		return nil
	}
	if err != nil {
		pp.log.WithError(err).WithField("element", e.name).Debug("skipping malformed element")
		return nil
	}
	return n
}

func name(e *element) string {
	if v, ok := e.attr("name"); ok {
		return v
	}
	v, _ := e.attr("x:name")
	return v
}

func navigateURI(e *element) string {
	v, _ := e.attr("fixedpage.navigateuri")
	return v
}

func (pp *pageParser) canvas(e *element, lang string) (*model.Canvas, error) {
	c := model.NewCanvas()
	c.Name = name(e)
	c.NavigateURI = navigateURI(e)

	m, err := pp.transform(e, "rendertransform")
	if err != nil {
		return nil, err
	}
	c.RenderTransform = m

	if l, ok := e.attr("xml:lang"); ok {
		lang = l
	}
	for _, child := range e.children {
		if n := pp.node(child, lang); n != nil {
			c.Add(n)
		}
	}
	return c, nil
}

// transform reads a transform given as an attribute or as a property
// element holding a MatrixTransform
func (pp *pageParser) transform(e *element, prop string) (model.Matrix, error) {
	if v, ok := e.attr(prop); ok && v != "" && !strings.HasPrefix(v, "{") {
		return ParseMatrix(v)
	}
	if mt := e.property(prop); mt != nil && mt.name == "matrixtransform" {
		v, _ := mt.attr("matrix")
		return ParseMatrix(v)
	}
	return model.Identity(), nil
}

func (pp *pageParser) glyphs(e *element, lang string) (*model.Glyphs, error) {
	ox, _ := e.attr("originx")
	oy, _ := e.attr("originy")
	em, _ := e.attr("fontrenderingemsize")

	x, err := parseFloat(ox, 0)
	if err != nil {
		return nil, err
	}
	y, err := parseFloat(oy, 0)
	if err != nil {
		return nil, err
	}
	size, err := parseFloat(em, 0)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: font size %q", ErrInvalidMarkup, em)
	}

	g := model.NewGlyphs(unescape(e.attrs["unicodestring"]), x, y, size)
	g.Name = name(e)
	g.NavigateURI = navigateURI(e)
	g.CaretStops, _ = e.attr("caretstops")
	g.IsSideways = parseBool(e.attrs["issideways"])
	sim, _ := e.attr("stylesimulations")
	g.StyleSimulations = parseSimulations(sim)

	if v, ok := e.attr("bidilevel"); ok && v != "" {
		level, err := strconv.Atoi(v)
		if err != nil || level < 0 || level > 61 {
			return nil, fmt.Errorf("%w: bidi level %q", ErrInvalidMarkup, v)
		}
		g.BidiLevel = level
	}
	g.Language = lang
	if l, ok := e.attr("xml:lang"); ok {
		g.Language = l
	}

	if v, ok := e.attr("indices"); ok {
		if g.Indices, err = ParseIndices(v); err != nil {
			return nil, err
		}
	}
	if g.RenderTransform, err = pp.transform(e, "rendertransform"); err != nil {
		return nil, err
	}
	if fill := pp.brush(e, "fill"); fill != nil {
		g.Fill = fill
	}

	if uri, ok := e.attr("fonturi"); ok && uri != "" {
		g.FontURI = resolvePart(pp.part, uri)
		g.Metrics = pp.d.fonts.Get(g.FontURI)
	}
	return g, nil
}

func (pp *pageParser) path(e *element) (*model.Path, error) {
	geom, err := pp.geometry(e)
	if err != nil {
		return nil, err
	}
	p := model.NewPath(geom)
	p.Name = name(e)
	p.NavigateURI = navigateURI(e)
	p.Fill = pp.brush(e, "fill")
	p.Stroke = pp.brush(e, "stroke")

	if v, ok := e.attr("strokethickness"); ok {
		if p.StrokeThickness, err = parseFloat(v, 1); err != nil {
			return nil, err
		}
	}
	if p.RenderTransform, err = pp.transform(e, "rendertransform"); err != nil {
		return nil, err
	}
	return p, nil
}

func (pp *pageParser) geometry(e *element) (*model.PathGeometry, error) {
	if v, ok := e.attr("data"); ok && v != "" && !strings.HasPrefix(v, "{") {
		return ParsePathData(v)
	}
	pg := e.property("data")
	if pg == nil || pg.name != "pathgeometry" {
		return model.NewPathGeometry(), nil
	}

	g := model.NewPathGeometry()
	if v, ok := pg.attr("figures"); ok && v != "" {
		parsed, err := ParsePathData(v)
		if err != nil {
			return nil, err
		}
		g = parsed
	}
	if v, ok := pg.attr("fillrule"); ok {
		if strings.EqualFold(v, "nonzero") {
			g.FillRule = model.FillNonZero
		} else {
			g.FillRule = model.FillEvenOdd
		}
	}
	m, err := pp.transform(pg, "transform")
	if err != nil {
		return nil, err
	}
	g.Transform = m

	for _, fe := range pg.children {
		if fe.name != "pathfigure" {
			continue
		}
		if err := figure(g, fe); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func figure(g *model.PathGeometry, e *element) error {
	sp, _ := e.attr("startpoint")
	start, err := parsePoint(sp)
	if err != nil {
		return err
	}
	filled := true
	if v, ok := e.attr("isfilled"); ok {
		filled = parseBool(v)
	}
	f := g.AddFigure(start, parseBool(e.attrs["isclosed"]), filled)

	for _, s := range e.children {
		seg, err := segment(s)
		if err != nil {
			return err
		}
		if seg != nil {
			f.Segments = append(f.Segments, *seg)
		}
	}
	return nil
}

var segmentPoints = map[string]struct {
	kind  model.SegmentKind
	attrs []string
}{
	"linesegment":                {model.SegmentLine, []string{"point"}},
	"polylinesegment":            {model.SegmentPolyLine, []string{"points"}},
	"beziersegment":              {model.SegmentBezier, []string{"point1", "point2", "point3"}},
	"polybeziersegment":          {model.SegmentPolyBezier, []string{"points"}},
	"quadraticbeziersegment":     {model.SegmentQuadraticBezier, []string{"point1", "point2"}},
	"polyquadraticbeziersegment": {model.SegmentPolyQuadraticBezier, []string{"points"}},
	"arcsegment":                 {model.SegmentArc, []string{"point"}},
}

func segment(e *element) (*model.PathSegment, error) {
	shape, ok := segmentPoints[e.name]
	if !ok {
		return nil, nil
	}

	seg := &model.PathSegment{Kind: shape.kind, IsStroked: true}
	if v, ok := e.attr("isstroked"); ok {
		seg.IsStroked = parseBool(v)
	}
	for _, a := range shape.attrs {
		v, _ := e.attr(a)
		pts, err := ParsePoints(v)
		if err != nil {
			return nil, err
		}
		seg.Points = append(seg.Points, pts...)
	}
	if len(seg.Points) == 0 {
		return nil, fmt.Errorf("%w: %s without points", ErrInvalidMarkup, e.name)
	}

	if shape.kind == model.SegmentArc {
		v, _ := e.attr("size")
		size, err := parsePoint(v)
		if err != nil {
			return nil, err
		}
		seg.Size = size
		rot, _ := e.attr("rotationangle")
		if seg.RotationAngle, err = parseFloat(rot, 0); err != nil {
			return nil, err
		}
		seg.IsLargeArc = parseBool(e.attrs["islargearc"])
		sweep, _ := e.attr("sweepdirection")
		seg.SweepClockwise = strings.EqualFold(sweep, "clockwise")
	}
	return seg, nil
}

// brush reads a fill or stroke given as a colour attribute or a property
// element. Resource references and brushes other than solid colours and
// images are kept as opaque brushes.
func (pp *pageParser) brush(e *element, prop string) model.Brush {
	if v, ok := e.attr(prop); ok && v != "" {
		if strings.HasPrefix(v, "{") {
			return &model.OpaqueBrush{Kind: "resource"}
		}
		c, err := ParseColor(v)
		if err != nil {
			pp.log.WithError(err).Debug("unreadable colour")
			return &model.OpaqueBrush{Kind: "color"}
		}
		return &model.SolidColorBrush{Color: c}
	}

	b := e.property(prop)
	if b == nil {
		return nil
	}
	switch b.name {
	case "solidcolorbrush":
		v, _ := b.attr("color")
		c, err := ParseColor(v)
		if err != nil {
			pp.log.WithError(err).Debug("unreadable colour")
			return &model.OpaqueBrush{Kind: b.name}
		}
		if o, ok := b.attr("opacity"); ok {
			if op, err := parseFloat(o, 1); err == nil {
				c.A = uint8(float64(c.A) * min(max(op, 0), 1))
			}
		}
		return &model.SolidColorBrush{Color: c}
	case "imagebrush":
		return pp.imageBrush(b)
	}
	return &model.OpaqueBrush{Kind: b.name}
}

func (pp *pageParser) imageBrush(e *element) model.Brush {
	ib := &model.ImageBrush{}
	if v, ok := e.attr("viewbox"); ok {
		ib.Viewbox, _ = parseRect(v)
	}
	if v, ok := e.attr("viewport"); ok {
		ib.Viewport, _ = parseRect(v)
	}

	src, _ := e.attr("imagesource")
	if src == "" || strings.HasPrefix(src, "{") {
		return ib
	}
	ib.ImageSource = resolvePart(pp.part, src)

	f, err := pp.d.fsys.Open(ib.ImageSource)
	if err != nil {
		pp.log.WithError(err).Debug("image part missing")
		return ib
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		pp.log.WithError(err).WithField("image", ib.ImageSource).Debug("image header unreadable")
		return ib
	}
	ib.PixelWidth, ib.PixelHeight, ib.Format = cfg.Width, cfg.Height, format
	return ib
}
