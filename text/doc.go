// Package text provides the character-level helpers used while classifying
// glyph runs: reading direction, whitespace detection and visual-order
// reversal.
//
// # Text Direction
//
// The package supports bidirectional text with the [Direction] type:
//
//   - LTR - left-to-right (Latin, CJK, etc.)
//   - RTL - right-to-left (Arabic, Hebrew, etc.)
//   - Neutral - direction-neutral characters (numbers, punctuation)
//
// [DetectDirection] returns the dominant direction of a string and
// [IsMostlyRTL] applies the majority test used to recover logical order from
// runs stored in visual order:
//
//	if text.IsMostlyRTL(run) {
//		run = text.Reverse(run)
//	}
//
// [Reverse] works on grapheme clusters so base characters keep their marks.
package text
