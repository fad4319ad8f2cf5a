// Package search extracts page-bounded text from constructed pages and
// pre-filters pages that may contain a query before exact range search.
package search

import (
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	textsearch "golang.org/x/text/search"
	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/reflow/som"
)

// PageText returns the visible glyph-run strings of page in reading order
// followed by runs outside any block. Runs on the same line are joined
// directly, lines by a space and blocks by a newline. With restoreRTL set,
// runs stored in right-to-left visual order are returned in logical order;
// otherwise the characters are returned as drawn.
func PageText(page *som.Page, restoreRTL bool) string {
	if page == nil {
		return ""
	}

	var sb strings.Builder
	var prev *som.TextRun
	write := func(e som.Element) {
		r, ok := e.(*som.TextRun)
		if !ok {
			return
		}
		if prev != nil {
			switch {
			case r.Block() == nil || r.Block() != prev.Block():
				sb.WriteByte('\n')
			case math.Abs(r.Baseline-prev.Baseline) > 0.5:
				sb.WriteByte(' ')
			}
		}
		if restoreRTL {
			sb.WriteString(r.Text)
		} else {
			sb.WriteString(r.VisibleText())
		}
		prev = r
	}

	seen := make(map[som.Element]bool)
	for _, e := range page.ReadingOrder() {
		seen[e] = true
		write(e)
	}
	for _, e := range page.Elements() {
		if !seen[e] {
			write(e)
		}
	}
	return sb.String()
}

// Options selects the comparison used when matching a query
type Options struct {
	IgnoreCase       bool
	IgnoreDiacritics bool
	IgnoreWidth      bool

	// Language selects the collation; the zero value uses the root collation
	Language language.Tag
}

// Range is a match as [Start, End) character offsets
type Range struct {
	Start int
	End   int
}

// Matcher finds a query in page texts. Texts and query are compared after
// NFC normalisation.
type Matcher struct {
	m     *textsearch.Matcher
	query string
}

// NewMatcher creates a matcher for query
func NewMatcher(query string, opts Options) *Matcher {
	var so []textsearch.Option
	if opts.IgnoreCase {
		so = append(so, textsearch.IgnoreCase)
	}
	if opts.IgnoreDiacritics {
		so = append(so, textsearch.IgnoreDiacritics)
	}
	if opts.IgnoreWidth {
		so = append(so, textsearch.IgnoreWidth)
	}
	return &Matcher{
		m:     textsearch.New(opts.Language, so...),
		query: norm.NFC.String(query),
	}
}

// Contains reports whether text holds the query
func (m *Matcher) Contains(text string) bool {
	if m.query == "" {
		return false
	}
	start, _ := m.m.IndexString(norm.NFC.String(text), m.query)
	return start >= 0
}

// FindAll returns every non-overlapping match in text as character offsets
// into the normalised text
func (m *Matcher) FindAll(text string) []Range {
	if m.query == "" {
		return nil
	}

	s := norm.NFC.String(text)
	var out []Range
	offset, chars := 0, 0
	for offset < len(s) {
		start, end := m.m.IndexString(s[offset:], m.query)
		if start < 0 || end <= start {
			break
		}
		begin := chars + utf8.RuneCountInString(s[offset:offset+start])
		length := utf8.RuneCountInString(s[offset+start : offset+end])
		out = append(out, Range{Start: begin, End: begin + length})

		chars = begin + length
		offset += end
	}
	return out
}

// Prefilter returns the indices of texts that may contain query, in order
func Prefilter(texts []string, query string, opts Options) []int {
	m := NewMatcher(query, opts)
	var out []int
	for i, t := range texts {
		if m.Contains(t) {
			out = append(out, i)
		}
	}
	return out
}
