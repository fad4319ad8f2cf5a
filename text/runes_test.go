package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsWhitespace(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"space", " ", true},
		{"mixed blanks", " \t  ", true},
		{"empty", "", false},
		{"word", "Alpha", false},
		{"padded word", "  x  ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsWhitespace(tt.text))
		})
	}
}

func TestReverse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"empty", "", ""},
		{"ascii", "abc", "cba"},
		{"hebrew visual order", "םולש", "שלום"},
		{"combining mark stays attached", "aé", "éa"},
		{"single", "x", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reverse(tt.text))
		})
	}
}

func TestReverseRoundTrip(t *testing.T) {
	for _, s := range []string{"Hello, World", "مرحبا بالعالم", "été"} {
		assert.Equal(t, s, Reverse(Reverse(s)))
	}
}

func TestGraphemeCount(t *testing.T) {
	assert.Equal(t, 3, GraphemeCount("abc"))
	assert.Equal(t, 2, GraphemeCount("aé"))
	assert.Equal(t, 0, GraphemeCount(""))
}
