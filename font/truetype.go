package font

import (
	"fmt"
	"strings"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// TrueTypeFont holds metrics read from a TrueType or OpenType font program.
// It is not safe for concurrent use.
type TrueTypeFont struct {
	font *sfnt.Font
	buf  sfnt.Buffer

	unitsPerEm float64
	ppem       fixed.Int26_6

	// Vertical metrics as fractions of the em
	ascent  float64
	descent float64

	family    string
	subfamily string

	// Glyph index -> advance as a fraction of the em
	advances map[sfnt.GlyphIndex]float64
	glyphs   map[rune]sfnt.GlyphIndex
}

// Parse reads a TrueType or OpenType font program
func Parse(data []byte) (*TrueTypeFont, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFont, err)
	}

	upem := float64(f.UnitsPerEm())
	if upem <= 0 {
		return nil, fmt.Errorf("%w: units per em is zero", ErrInvalidFont)
	}

	tt := &TrueTypeFont{
		font:       f,
		unitsPerEm: upem,
		// Querying at ppem == unitsPerEm yields values in font units
		ppem:     fixed.I(int(f.UnitsPerEm())),
		advances: make(map[sfnt.GlyphIndex]float64),
		glyphs:   make(map[rune]sfnt.GlyphIndex),
	}

	m, err := f.Metrics(&tt.buf, tt.ppem, xfont.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("%w: reading metrics: %v", ErrInvalidFont, err)
	}
	tt.ascent = fromFixed(m.Ascent) / upem
	tt.descent = fromFixed(m.Descent) / upem
	if tt.ascent <= 0 {
		tt.ascent = FallbackAscent
	}
	if tt.descent < 0 {
		tt.descent = -tt.descent
	}

	// Name records are optional
	tt.family, _ = f.Name(&tt.buf, sfnt.NameIDFamily)
	tt.subfamily, _ = f.Name(&tt.buf, sfnt.NameIDSubfamily)

	return tt, nil
}

// NumGlyphs returns the number of glyphs in the font
func (t *TrueTypeFont) NumGlyphs() int {
	return t.font.NumGlyphs()
}

// Advance returns the advance width of a glyph. Unknown glyphs get the
// estimated half-em advance.
func (t *TrueTypeFont) Advance(glyphIndex int, emSize float64) float64 {
	if glyphIndex < 0 || glyphIndex >= t.font.NumGlyphs() {
		return FallbackAdvance * emSize
	}
	return t.glyphAdvance(sfnt.GlyphIndex(glyphIndex)) * emSize
}

// RuneAdvance returns the advance width of the glyph mapped to r
func (t *TrueTypeFont) RuneAdvance(r rune, emSize float64) float64 {
	idx, ok := t.glyphs[r]
	if !ok {
		var err error
		idx, err = t.font.GlyphIndex(&t.buf, r)
		if err != nil {
			idx = 0
		}
		t.glyphs[r] = idx
	}
	if idx == 0 {
		return FallbackAdvance * emSize
	}
	return t.glyphAdvance(idx) * emSize
}

func (t *TrueTypeFont) glyphAdvance(idx sfnt.GlyphIndex) float64 {
	if adv, ok := t.advances[idx]; ok {
		return adv
	}
	adv := FallbackAdvance
	if a, err := t.font.GlyphAdvance(&t.buf, idx, t.ppem, xfont.HintingNone); err == nil {
		adv = fromFixed(a) / t.unitsPerEm
	}
	t.advances[idx] = adv
	return adv
}

// Ascent returns the distance from the baseline to the top of the em box
func (t *TrueTypeFont) Ascent(emSize float64) float64 {
	return t.ascent * emSize
}

// Descent returns the distance from the baseline to the bottom of the em box
func (t *TrueTypeFont) Descent(emSize float64) float64 {
	return t.descent * emSize
}

// Family returns the font family name
func (t *TrueTypeFont) Family() string {
	return t.family
}

// Bold reports whether the sub-family names a bold face
func (t *TrueTypeFont) Bold() bool {
	s := strings.ToLower(t.subfamily)
	return strings.Contains(s, "bold") || strings.Contains(s, "black") || strings.Contains(s, "heavy")
}

// Italic reports whether the sub-family names an italic or oblique face
func (t *TrueTypeFont) Italic() bool {
	s := strings.ToLower(t.subfamily)
	return strings.Contains(s, "italic") || strings.Contains(s, "oblique")
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
