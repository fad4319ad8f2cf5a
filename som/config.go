package som

import (
	"fmt"

	"github.com/tsawler/reflow/separator"
)

// Config holds every tunable threshold of page construction. Lengths are in
// page units; ratios are relative to the stated reference.
type Config struct {
	// WordGapRatio is the largest horizontal gap, relative to the line
	// height, between two runs continuing the same line
	WordGapRatio float64 `yaml:"word_gap_ratio"`

	// LineGapRatio is the largest vertical gap, relative to the line height,
	// between a block and a run starting its next line
	LineGapRatio float64 `yaml:"line_gap_ratio"`

	// LineHeightRatio is the height difference above which a trailing run
	// does not set the line height
	LineHeightRatio float64 `yaml:"line_height_ratio"`

	// FontSizeTolerance is the relative font size difference accepted
	// between lines of one block
	FontSizeTolerance float64 `yaml:"font_size_tolerance"`

	// SplitGapRatio is the whitespace advance, relative to the em size, at
	// which a glyph run is split
	SplitGapRatio float64 `yaml:"split_gap_ratio"`

	// MaxRuleThickness is the largest filled-rectangle thickness treated as
	// a rule line
	MaxRuleThickness float64 `yaml:"max_rule_thickness"`

	// PageBackgroundRatio is the page area fraction above which a filled
	// rectangle is treated as a background
	PageBackgroundRatio float64 `yaml:"page_background_ratio"`

	// CellShrink is the fraction each box is shrunk by per side before the
	// cell containment test
	CellShrink float64 `yaml:"cell_shrink"`

	// MinRowHeight is the height below which empty rows are deleted
	MinRowHeight float64 `yaml:"min_row_height"`

	// MinColumnWidth is the width below which empty columns are deleted
	MinColumnWidth float64 `yaml:"min_column_width"`

	// AlignmentTolerance is the distance within which cell edges count as
	// aligned
	AlignmentTolerance float64 `yaml:"alignment_tolerance"`

	// JoinTolerance is the distance within which rule segments connect
	JoinTolerance float64 `yaml:"join_tolerance"`

	// TableGapRatio is the largest gap, relative to the line height, between
	// a rule grid and a block extending one of its open sides
	TableGapRatio float64 `yaml:"table_gap_ratio"`

	// Separator holds the rule line thresholds
	Separator separator.Config `yaml:"separator"`
}

// DefaultConfig returns the default construction thresholds
func DefaultConfig() Config {
	return Config{
		WordGapRatio:        1.5,
		LineGapRatio:        0.75,
		LineHeightRatio:     0.25,
		FontSizeTolerance:   0.25,
		SplitGapRatio:       1.0,
		MaxRuleThickness:    3,
		PageBackgroundRatio: 0.8,
		CellShrink:          0.2,
		MinRowHeight:        10,
		MinColumnWidth:      5,
		AlignmentTolerance:  1,
		JoinTolerance:       2,
		TableGapRatio:       2,
		Separator:           separator.DefaultConfig(),
	}
}

// Validate checks that every threshold is usable
func (c Config) Validate() error {
	ratios := map[string]float64{
		"word_gap_ratio":        c.WordGapRatio,
		"line_gap_ratio":        c.LineGapRatio,
		"line_height_ratio":     c.LineHeightRatio,
		"font_size_tolerance":   c.FontSizeTolerance,
		"split_gap_ratio":       c.SplitGapRatio,
		"page_background_ratio": c.PageBackgroundRatio,
		"table_gap_ratio":       c.TableGapRatio,
	}
	for name, v := range ratios {
		if v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidConfig, name, v)
		}
	}
	if c.CellShrink < 0 || c.CellShrink >= 0.5 {
		return fmt.Errorf("%w: cell_shrink must be in [0, 0.5), got %v", ErrInvalidConfig, c.CellShrink)
	}
	lengths := map[string]float64{
		"max_rule_thickness":       c.MaxRuleThickness,
		"min_row_height":           c.MinRowHeight,
		"min_column_width":         c.MinColumnWidth,
		"alignment_tolerance":      c.AlignmentTolerance,
		"join_tolerance":           c.JoinTolerance,
		"separator.min_separation": c.Separator.MinSeparation,
		"separator.fudge":          c.Separator.Fudge,
	}
	for name, v := range lengths {
		if v < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %v", ErrInvalidConfig, name, v)
		}
	}
	return nil
}
