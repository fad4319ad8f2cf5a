// Package font resolves glyph metrics for glyph runs.
//
// Metrics come from embedded TrueType/OpenType font parts parsed with
// golang.org/x/image/font/sfnt. Obfuscated font parts (.odttf) are
// deobfuscated first.
//
// # Loading
//
//	m, err := font.Parse(data)
//	if err != nil {
//		m = font.Fallback()
//	}
//	width := m.RuneAdvance('A', 12)
//
// [Cache] memoises parsed fonts by URI and falls back to estimated metrics
// when a font cannot be read or parsed.
//
// # Estimated metrics
//
// [Fallback] returns metrics that assume half-em advances, an ascent of
// 0.8 em and a descent of 0.2 em.
package font
