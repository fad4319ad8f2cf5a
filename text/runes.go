package text

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
)

// IsWhitespace reports whether every character of s is whitespace.
// The empty string is not whitespace.
func IsWhitespace(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// Reverse reverses s by grapheme cluster, so combining marks stay attached
// to their base character.
func Reverse(s string) string {
	if s == "" {
		return s
	}

	var clusters []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		clusters = append(clusters, g.Str())
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i := len(clusters) - 1; i >= 0; i-- {
		sb.WriteString(clusters[i])
	}
	return sb.String()
}

// GraphemeCount returns the number of user-perceived characters in s
func GraphemeCount(s string) int {
	return uniseg.GraphemeClusterCount(s)
}
