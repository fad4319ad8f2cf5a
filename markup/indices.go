package markup

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tsawler/reflow/model"
)

// ParseIndices parses a glyph run's Indices attribute: entries separated by
// semicolons, each of the form
//
//	[(codeUnits[:glyphs])][glyphIndex][,advance[,uOffset[,vOffset]]]
//
// Advances are in hundredths of the em size. Offsets are accepted and
// ignored.
func ParseIndices(s string) ([]model.GlyphMapping, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	entries := strings.Split(s, ";")
	out := make([]model.GlyphMapping, 0, len(entries))
	for _, entry := range entries {
		m, err := parseMapping(strings.TrimSpace(entry))
		if err != nil {
			return nil, fmt.Errorf("indices entry %q: %w", entry, err)
		}
		out = append(out, m)
	}
	return out, nil
}

func parseMapping(entry string) (model.GlyphMapping, error) {
	m := model.GlyphMapping{ClusterCodeUnits: 1, ClusterGlyphs: 1, Index: -1}

	if strings.HasPrefix(entry, "(") {
		end := strings.IndexByte(entry, ')')
		if end < 0 {
			return m, fmt.Errorf("%w: unterminated cluster map", ErrInvalidMarkup)
		}
		units, glyphs, hasGlyphs := strings.Cut(entry[1:end], ":")
		n, err := strconv.Atoi(strings.TrimSpace(units))
		if err != nil || n < 1 {
			return m, fmt.Errorf("%w: cluster code units %q", ErrInvalidMarkup, units)
		}
		m.ClusterCodeUnits = n
		if hasGlyphs {
			g, err := strconv.Atoi(strings.TrimSpace(glyphs))
			if err != nil || g < 1 {
				return m, fmt.Errorf("%w: cluster glyphs %q", ErrInvalidMarkup, glyphs)
			}
			m.ClusterGlyphs = g
		}
		entry = entry[end+1:]
	}

	fields := strings.Split(entry, ",")
	if idx := strings.TrimSpace(fields[0]); idx != "" {
		v, err := strconv.Atoi(idx)
		if err != nil || v < 0 {
			return m, fmt.Errorf("%w: glyph index %q", ErrInvalidMarkup, idx)
		}
		m.Index = v
	}
	if len(fields) > 1 {
		if adv := strings.TrimSpace(fields[1]); adv != "" {
			v, err := strconv.ParseFloat(adv, 64)
			if err != nil {
				return m, fmt.Errorf("%w: advance %q", ErrInvalidMarkup, adv)
			}
			m.Advance, m.HasAdvance = v, true
		}
	}
	for _, f := range fields[min(len(fields), 2):] {
		if f = strings.TrimSpace(f); f == "" {
			continue
		}
		if _, err := strconv.ParseFloat(f, 64); err != nil {
			return m, fmt.Errorf("%w: offset %q", ErrInvalidMarkup, f)
		}
	}
	return m, nil
}
