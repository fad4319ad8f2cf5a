package markup

import (
	"fmt"
	"strconv"
	"unicode"

	"github.com/tsawler/reflow/model"
)

// pathScanner reads the abbreviated geometry syntax
type pathScanner struct {
	s   string
	pos int
}

func (sc *pathScanner) skip() {
	for sc.pos < len(sc.s) {
		c := sc.s[sc.pos]
		if c != ',' && !unicode.IsSpace(rune(c)) {
			return
		}
		sc.pos++
	}
}

// command returns the next command letter, if the next token is one
func (sc *pathScanner) command() (byte, bool) {
	sc.skip()
	if sc.pos >= len(sc.s) {
		return 0, false
	}
	c := sc.s[sc.pos]
	if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
		if c == 'e' || c == 'E' {
			return 0, false
		}
		sc.pos++
		return c, true
	}
	return 0, false
}

// hasNumber reports whether a number follows
func (sc *pathScanner) hasNumber() bool {
	sc.skip()
	if sc.pos >= len(sc.s) {
		return false
	}
	c := sc.s[sc.pos]
	return c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9')
}

func (sc *pathScanner) number() (float64, error) {
	sc.skip()
	start := sc.pos
	if sc.pos < len(sc.s) && (sc.s[sc.pos] == '-' || sc.s[sc.pos] == '+') {
		sc.pos++
	}
	seenDot, seenExp := false, false
scan:
	for sc.pos < len(sc.s) {
		c := sc.s[sc.pos]
		switch {
		case c >= '0' && c <= '9':
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
		case (c == 'e' || c == 'E') && !seenExp:
			seenExp = true
			if sc.pos+1 < len(sc.s) && (sc.s[sc.pos+1] == '-' || sc.s[sc.pos+1] == '+') {
				sc.pos++
			}
		default:
			break scan
		}
		sc.pos++
	}
	v, err := strconv.ParseFloat(sc.s[start:sc.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: path number at offset %d", ErrInvalidMarkup, start)
	}
	return v, nil
}

func (sc *pathScanner) point() (model.Point, error) {
	x, err := sc.number()
	if err != nil {
		return model.Point{}, err
	}
	y, err := sc.number()
	if err != nil {
		return model.Point{}, err
	}
	return model.Point{X: x, Y: y}, nil
}

// pathBuilder tracks the current figure while reading commands
type pathBuilder struct {
	g       *model.PathGeometry
	fig     *model.PathFigure
	current model.Point
	// last control point of the previous cubic or quadratic segment, for
	// the smooth variants
	lastCubic, lastQuad *model.Point
}

func (b *pathBuilder) figure() *model.PathFigure {
	if b.fig == nil {
		b.fig = b.g.AddFigure(b.current, false, true)
	}
	return b.fig
}

func (b *pathBuilder) resolve(p model.Point, relative bool) model.Point {
	if relative {
		return model.Point{X: b.current.X + p.X, Y: b.current.Y + p.Y}
	}
	return p
}

// ParsePathData parses the abbreviated geometry syntax used by Path.Data
// and PathGeometry.Figures, e.g. "F1 M 0,0 L 10,0 10,10 Z"
func ParsePathData(s string) (*model.PathGeometry, error) {
	sc := &pathScanner{s: s}
	b := &pathBuilder{g: model.NewPathGeometry()}

	var cmd byte
	for {
		c, ok := sc.command()
		if ok {
			cmd = c
		} else if !sc.hasNumber() {
			sc.skip()
			if sc.pos < len(sc.s) {
				return nil, fmt.Errorf("%w: unexpected %q in path data", ErrInvalidMarkup, sc.s[sc.pos])
			}
			return b.g, nil
		} else if cmd == 0 {
			return nil, fmt.Errorf("%w: path data must start with a command", ErrInvalidMarkup)
		}

		var err error
		cmd, err = b.apply(sc, cmd, ok)
		if err != nil {
			return nil, err
		}
	}
}

// apply runs one command. It returns the command that implicit repeats
// continue with.
func (b *pathBuilder) apply(sc *pathScanner, cmd byte, explicit bool) (byte, error) {
	relative := cmd >= 'a' && cmd <= 'z'
	upper := cmd &^ 0x20

	if upper != 'C' && upper != 'S' {
		b.lastCubic = nil
	}
	if upper != 'Q' && upper != 'T' {
		b.lastQuad = nil
	}

	switch upper {
	case 'F':
		if !explicit || len(b.g.Figures) > 0 {
			return 0, fmt.Errorf("%w: fill rule must precede figures", ErrInvalidMarkup)
		}
		v, err := sc.number()
		if err != nil {
			return 0, err
		}
		if v == 1 {
			b.g.FillRule = model.FillNonZero
		} else {
			b.g.FillRule = model.FillEvenOdd
		}
		return 0, nil

	case 'M':
		p, err := sc.point()
		if err != nil {
			return 0, err
		}
		b.current = b.resolve(p, relative)
		b.fig = b.g.AddFigure(b.current, false, true)
		// subsequent pairs are implicit line commands
		if relative {
			return 'l', nil
		}
		return 'L', nil

	case 'L':
		var pts []model.Point
		for {
			p, err := sc.point()
			if err != nil {
				return 0, err
			}
			b.current = b.resolve(p, relative)
			pts = append(pts, b.current)
			if !sc.hasNumber() {
				break
			}
		}
		if len(pts) == 1 {
			b.figure().LineTo(pts[0])
		} else {
			b.figure().PolyLineTo(pts...)
		}

	case 'H', 'V':
		v, err := sc.number()
		if err != nil {
			return 0, err
		}
		p := b.current
		switch {
		case upper == 'H' && relative:
			p.X += v
		case upper == 'H':
			p.X = v
		case relative:
			p.Y += v
		default:
			p.Y = v
		}
		b.current = p
		b.figure().LineTo(p)

	case 'C', 'S':
		var pts []model.Point
		for {
			var c1 model.Point
			if upper == 'S' {
				c1 = b.current
				if b.lastCubic != nil {
					c1 = model.Point{X: 2*b.current.X - b.lastCubic.X, Y: 2*b.current.Y - b.lastCubic.Y}
				}
			} else {
				p, err := sc.point()
				if err != nil {
					return 0, err
				}
				c1 = b.resolve(p, relative)
			}
			p2, err := sc.point()
			if err != nil {
				return 0, err
			}
			p3, err := sc.point()
			if err != nil {
				return 0, err
			}
			c2, end := b.resolve(p2, relative), b.resolve(p3, relative)
			pts = append(pts, c1, c2, end)
			b.current = end
			b.lastCubic = &c2
			if !sc.hasNumber() {
				break
			}
		}
		b.curve(model.SegmentBezier, model.SegmentPolyBezier, pts, 3)

	case 'Q', 'T':
		var pts []model.Point
		for {
			var c model.Point
			if upper == 'T' {
				c = b.current
				if b.lastQuad != nil {
					c = model.Point{X: 2*b.current.X - b.lastQuad.X, Y: 2*b.current.Y - b.lastQuad.Y}
				}
			} else {
				p, err := sc.point()
				if err != nil {
					return 0, err
				}
				c = b.resolve(p, relative)
			}
			p2, err := sc.point()
			if err != nil {
				return 0, err
			}
			end := b.resolve(p2, relative)
			pts = append(pts, c, end)
			b.current = end
			b.lastQuad = &c
			if !sc.hasNumber() {
				break
			}
		}
		b.curve(model.SegmentQuadraticBezier, model.SegmentPolyQuadraticBezier, pts, 2)

	case 'A':
		size, err := sc.point()
		if err != nil {
			return 0, err
		}
		var vals [3]float64
		for i := range vals {
			if vals[i], err = sc.number(); err != nil {
				return 0, err
			}
		}
		p, err := sc.point()
		if err != nil {
			return 0, err
		}
		b.current = b.resolve(p, relative)
		f := b.figure()
		f.Segments = append(f.Segments, model.PathSegment{
			Kind:           model.SegmentArc,
			Points:         []model.Point{b.current},
			IsStroked:      true,
			Size:           size,
			RotationAngle:  vals[0],
			IsLargeArc:     vals[1] != 0,
			SweepClockwise: vals[2] != 0,
		})

	case 'Z':
		if b.fig != nil {
			b.fig.IsClosed = true
			b.current = b.fig.StartPoint
			b.fig = nil
		}
		return 0, nil

	default:
		return 0, fmt.Errorf("%w: unknown path command %q", ErrInvalidMarkup, string(cmd))
	}
	return cmd, nil
}

func (b *pathBuilder) curve(single, poly model.SegmentKind, pts []model.Point, per int) {
	kind := single
	if len(pts) > per {
		kind = poly
	}
	f := b.figure()
	f.Segments = append(f.Segments, model.PathSegment{Kind: kind, Points: pts, IsStroked: true})
}
