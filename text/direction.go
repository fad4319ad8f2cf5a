package text

import (
	"unicode"

	"golang.org/x/text/unicode/bidi"
)

// Direction represents the writing direction of text.
// It is used to detect and handle bidirectional text (bidi) in glyph runs.
type Direction int

const (
	// LTR (Left-to-Right) for Latin, Cyrillic, etc.
	LTR Direction = iota
	// RTL (Right-to-Left) for Arabic, Hebrew, etc.
	RTL
	// Neutral for numbers, punctuation, etc.
	Neutral
)

// String returns a string representation of the direction ("LTR", "RTL", or "Neutral").
func (d Direction) String() string {
	switch d {
	case LTR:
		return "LTR"
	case RTL:
		return "RTL"
	case Neutral:
		return "Neutral"
	default:
		return "Unknown"
	}
}

// DetectDirection analyzes a string and returns its dominant text direction
// based on Unicode bidi classes. It counts strong directional characters
// and returns the direction with the higher count, or Neutral if no strong
// directional characters are present.
func DetectDirection(text string) Direction {
	ltrCount, rtlCount := 0, 0

	for _, r := range text {
		switch GetCharDirection(r) {
		case LTR:
			ltrCount++
		case RTL:
			rtlCount++
		}
	}

	if ltrCount == 0 && rtlCount == 0 {
		return Neutral
	}
	if rtlCount > ltrCount {
		return RTL
	}
	return LTR
}

// GetCharDirection returns the inherent direction of a single character.
// Bidi classes R and AL are RTL, L is LTR; digits, separators, marks and
// other weak or neutral classes are Neutral.
func GetCharDirection(r rune) Direction {
	props, _ := bidi.LookupRune(r)
	switch props.Class() {
	case bidi.R, bidi.AL:
		return RTL
	case bidi.L:
		// Unassigned code points and controls default to L in the tables
		if unicode.IsLetter(r) || unicode.IsMark(r) {
			return LTR
		}
		return Neutral
	default:
		return Neutral
	}
}

// IsRTL reports whether r belongs to a right-to-left script
func IsRTL(r rune) bool {
	return GetCharDirection(r) == RTL
}

// IsMostlyRTL reports whether strictly more than half of the non-whitespace
// characters of s are right-to-left. Strings with no non-whitespace
// characters are not RTL.
func IsMostlyRTL(s string) bool {
	total, rtl := 0, 0
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if IsRTL(r) {
			rtl++
		}
	}
	return total > 0 && 2*rtl > total
}
