package font

import (
	"errors"

	"github.com/tsawler/reflow/model"
)

// Ratios of the em size used by the estimated metrics
const (
	FallbackAdvance = 0.5
	FallbackAscent  = 0.8
	FallbackDescent = 0.2
)

var (
	// ErrInvalidFont is returned when font data cannot be parsed
	ErrInvalidFont = errors.New("invalid font data")

	// ErrInvalidGUID is returned when an obfuscated font name carries no GUID
	ErrInvalidGUID = errors.New("font name does not contain a GUID")
)

// Metrics is the glyph metrics collaborator consumed by the classifier.
// All lengths are returned for the given em size.
type Metrics interface {
	model.GlyphMetrics
}

// fallbackMetrics estimates metrics when no font program is available
type fallbackMetrics struct{}

// Fallback returns estimated metrics
func Fallback() Metrics {
	return fallbackMetrics{}
}

func (fallbackMetrics) Advance(_ int, emSize float64) float64 {
	return FallbackAdvance * emSize
}

func (fallbackMetrics) RuneAdvance(_ rune, emSize float64) float64 {
	return FallbackAdvance * emSize
}

func (fallbackMetrics) Ascent(emSize float64) float64  { return FallbackAscent * emSize }
func (fallbackMetrics) Descent(emSize float64) float64 { return FallbackDescent * emSize }
func (fallbackMetrics) Family() string                 { return "" }
func (fallbackMetrics) Bold() bool                     { return false }
func (fallbackMetrics) Italic() bool                   { return false }

// IsFallback reports whether m holds estimated metrics
func IsFallback(m model.GlyphMetrics) bool {
	_, ok := m.(fallbackMetrics)
	return m == nil || ok
}
