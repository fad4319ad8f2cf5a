package som

import (
	"github.com/tsawler/reflow/model"
)

// glyphsAt builds a run whose characters all advance by advance/100 em.
// Fallback metrics put the top of the run at originY - 0.8 em.
func glyphsAt(s string, originX, originY, em, advance float64) *model.Glyphs {
	g := model.NewGlyphs(s, originX, originY, em)
	for range []rune(s) {
		g.Indices = append(g.Indices, model.GlyphMapping{
			ClusterCodeUnits: 1,
			ClusterGlyphs:    1,
			Index:            -1,
			Advance:          advance,
			HasAdvance:       true,
		})
	}
	return g
}

func runAt(box model.BBox, s string) *TextRun {
	return &TextRun{
		base:     newBase(box),
		Node:     model.NewFixedNode(0, int(box.Left())),
		End:      len([]rune(s)),
		Text:     s,
		FontSize: box.Height,
		Baseline: box.Bottom(),
	}
}

func blockOf(runs ...*TextRun) *FixedBlock {
	b := NewFixedBlock(DefaultConfig().LineHeightRatio)
	for _, r := range runs {
		b.Add(r)
	}
	return b
}

func solid() model.Brush {
	return &model.SolidColorBrush{Color: model.Color{A: 255}}
}
