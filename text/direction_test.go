package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetCharDirection(t *testing.T) {
	tests := []struct {
		name string
		char rune
		want Direction
	}{
		// Arabic
		{"Arabic alif", 'ا', RTL},
		{"Arabic meem", 'م', RTL},

		// Hebrew
		{"Hebrew alef", 'א', RTL},
		{"Hebrew shin", 'ש', RTL},

		// LTR scripts
		{"Latin A", 'A', LTR},
		{"Latin é", 'é', LTR},
		{"Cyrillic я", 'я', LTR},
		{"Greek Omega", 'Ω', LTR},
		{"CJK 中", '中', LTR},
		{"Hiragana あ", 'あ', LTR},

		// Neutral characters
		{"Space", ' ', Neutral},
		{"Digit 5", '5', Neutral},
		{"Arabic-Indic digit", '٣', Neutral},
		{"Period", '.', Neutral},
		{"Question", '?', Neutral},
		{"Tab", '\t', Neutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetCharDirection(tt.char), "U+%04X", tt.char)
		})
	}
}

func TestDetectDirection(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Direction
	}{
		{"English", "Hello World", LTR},
		{"Russian", "Привет мир", LTR},
		{"Chinese", "你好世界", LTR},
		{"Arabic", "السلام عليكم", RTL},
		{"Hebrew", "שלום", RTL},
		{"English with Arabic", "Hello مرحبا World", LTR},
		{"Arabic with English", "مرحبا Hello عليكم", RTL},
		{"Numbers only", "12345", Neutral},
		{"Punctuation", "...", Neutral},
		{"Empty string", "", Neutral},
		{"Arabic + numbers", "مرحبا 123", RTL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDirection(tt.text))
		})
	}
}

func TestIsMostlyRTL(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"pure Hebrew", "שלום", true},
		{"Hebrew with spaces", " שלום עולם ", true},
		{"half and half", "ab שש", false},
		{"Hebrew majority", "a שלום", true},
		{"digit counts against", "1 של", true},
		{"digits tip the balance", "123 של", false},
		{"Latin", "Alpha", false},
		{"whitespace only", "   ", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMostlyRTL(tt.text))
		})
	}
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "LTR", LTR.String())
	assert.Equal(t, "RTL", RTL.String())
	assert.Equal(t, "Neutral", Neutral.String())
	assert.Equal(t, "Unknown", Direction(42).String())
}
