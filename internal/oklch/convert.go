// Package oklch converts between sRGB hex strings and the OKLCH color space
// and provides the small amount of color algebra the palette engines need.
package oklch

import (
	"math"
	"regexp"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var hexPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Color is a point in OKLCH. L is in [0,1], C is non-negative and H is in
// degrees on [0,360).
type Color struct {
	L float64 `json:"l"`
	C float64 `json:"c"`
	H float64 `json:"h"`
}

// IsValidHex reports whether hex is a '#' followed by exactly six hex digits.
func IsValidHex(hex string) bool {
	return hexPattern.MatchString(hex)
}

// NormalizeHex returns the canonical lowercase form of hex.
func NormalizeHex(hex string) (string, bool) {
	if !IsValidHex(hex) {
		return "", false
	}
	return strings.ToLower(hex), true
}

// FromHex converts an sRGB hex color to OKLCH. The second result is false
// when hex is malformed.
func FromHex(hex string) (Color, bool) {
	if !IsValidHex(hex) {
		return Color{}, false
	}

	parsed, err := colorful.Hex(hex)
	if err != nil {
		return Color{}, false
	}

	l, c, h := parsed.OkLch()
	return Color{
		L: clamp(l, 0, 1),
		C: math.Max(c, 0),
		H: NormalizeHue(h),
	}, true
}

// Hex converts c back to an sRGB hex string. Channels that land outside the
// sRGB gamut are clipped independently, which can shift the hue of very
// saturated colors.
func (c Color) Hex() string {
	return colorful.OkLch(c.L, math.Max(c.C, 0), NormalizeHue(c.H)).Clamped().Hex()
}

// WithHue returns c rotated to hue h.
func (c Color) WithHue(h float64) Color {
	c.H = NormalizeHue(h)
	return c
}

// NormalizeHue wraps h into [0,360).
func NormalizeHue(h float64) float64 {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return 0
	}
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	if h >= 360 {
		h = 0
	}
	return h
}

// HueDistance is the shortest angular distance between two hues, in [0,180].
func HueDistance(a, b float64) float64 {
	d := math.Abs(NormalizeHue(a) - NormalizeHue(b))
	if d > 180 {
		d = 360 - d
	}
	return d
}

func clamp(value float64, minimum float64, maximum float64) float64 {
	if value < minimum {
		return minimum
	}
	if value > maximum {
		return maximum
	}
	return value
}
