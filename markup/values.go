package markup

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tsawler/reflow/model"
)

// parseNumbers splits s on commas and whitespace and parses every field
func parseNumbers(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: number %q", ErrInvalidMarkup, f)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseFloat(s string, def float64) (float64, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: number %q", ErrInvalidMarkup, s)
	}
	return v, nil
}

// ParseMatrix parses "m11,m12,m21,m22,offsetX,offsetY"
func ParseMatrix(s string) (model.Matrix, error) {
	nums, err := parseNumbers(s)
	if err != nil {
		return model.Identity(), err
	}
	if len(nums) != 6 {
		return model.Identity(), fmt.Errorf("%w: matrix %q needs 6 values", ErrInvalidMarkup, s)
	}
	var m model.Matrix
	copy(m[:], nums)
	return m, nil
}

// ParsePoints parses "x,y x,y ..."
func ParsePoints(s string) ([]model.Point, error) {
	nums, err := parseNumbers(s)
	if err != nil {
		return nil, err
	}
	if len(nums)%2 != 0 {
		return nil, fmt.Errorf("%w: odd coordinate count in %q", ErrInvalidMarkup, s)
	}
	out := make([]model.Point, 0, len(nums)/2)
	for i := 0; i < len(nums); i += 2 {
		out = append(out, model.Point{X: nums[i], Y: nums[i+1]})
	}
	return out, nil
}

func parsePoint(s string) (model.Point, error) {
	pts, err := ParsePoints(s)
	if err != nil {
		return model.Point{}, err
	}
	if len(pts) != 1 {
		return model.Point{}, fmt.Errorf("%w: point %q", ErrInvalidMarkup, s)
	}
	return pts[0], nil
}

// parseRect parses "x,y,width,height"
func parseRect(s string) (model.BBox, error) {
	nums, err := parseNumbers(s)
	if err != nil {
		return model.BBox{}, err
	}
	if len(nums) != 4 {
		return model.BBox{}, fmt.Errorf("%w: rectangle %q", ErrInvalidMarkup, s)
	}
	return model.NewBBox(nums[0], nums[1], nums[2], nums[3]), nil
}

// ParseColor parses "#RRGGBB", "#AARRGGBB" and scRGB "sc#[A,]R,G,B" colours
func ParseColor(s string) (model.Color, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(strings.ToLower(s), "sc#"):
		nums, err := parseNumbers(s[3:])
		if err != nil {
			return model.Color{}, err
		}
		switch len(nums) {
		case 3:
			nums = append([]float64{1}, nums...)
		case 4:
		default:
			return model.Color{}, fmt.Errorf("%w: colour %q", ErrInvalidMarkup, s)
		}
		return model.Color{A: unit(nums[0]), R: unit(nums[1]), G: unit(nums[2]), B: unit(nums[3])}, nil

	case strings.HasPrefix(s, "#"):
		hex := s[1:]
		if len(hex) == 6 {
			hex = "ff" + hex
		}
		if len(hex) != 8 {
			return model.Color{}, fmt.Errorf("%w: colour %q", ErrInvalidMarkup, s)
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return model.Color{}, fmt.Errorf("%w: colour %q", ErrInvalidMarkup, s)
		}
		return model.Color{A: uint8(v >> 24), R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
	}
	return model.Color{}, fmt.Errorf("%w: colour %q", ErrInvalidMarkup, s)
}

func unit(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

func parseBool(s string) bool {
	return strings.EqualFold(s, "true")
}

func parseSimulations(s string) model.StyleSimulations {
	switch strings.ToLower(s) {
	case "italicsimulation":
		return model.SimulationItalic
	case "boldsimulation":
		return model.SimulationBold
	case "bolditalicsimulation":
		return model.SimulationBoldItalic
	}
	return model.SimulationNone
}

// unescape drops the "{}" prefix that escapes a leading brace
func unescape(s string) string {
	return strings.TrimPrefix(s, "{}")
}
